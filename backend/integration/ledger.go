// Copyright (C) 2025 intelgroups
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package integration holds adapters for the external services this core
// delegates to: the balance ledger and the Telegram bot API.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/intelgroups/groups/backend/models"
)

// ErrLedgerUnavailable covers transport failures and malformed responses
// from the balance ledger, as opposed to an explicit business rejection.
var ErrLedgerUnavailable = errors.New("balance ledger unavailable")

// PurchaseRejectedError is the ledger refusing a settlement, e.g. a bad
// passcode or insufficient balance. Nothing has been debited.
type PurchaseRejectedError struct {
	Reason string
}

func (e *PurchaseRejectedError) Error() string {
	return "purchase rejected: " + e.Reason
}

// LedgerClient talks to the balance server. All balance state lives there;
// this side only mirrors referral shares into group bookkeeping.
type LedgerClient struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

func NewLedgerClient(baseURL, secretKey string) *LedgerClient {
	return &LedgerClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		secretKey:  secretKey,
	}
}

func (c *LedgerClient) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLedgerUnavailable, path, err)
	}
	return resp, nil
}

// errorReason pulls the ledger's {"error": ...} message out of a
// non-success response, falling back to the status code.
func errorReason(resp *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return body.Error
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}

func (c *LedgerClient) GetBalance(ctx context.Context, userID string) (*models.Balance, error) {
	resp, err := c.post(ctx, "/get-balance", map[string]string{"telegramId": userID})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: get-balance: %s", ErrLedgerUnavailable, errorReason(resp))
	}

	var balance models.Balance
	if err := json.NewDecoder(resp.Body).Decode(&balance); err != nil {
		return nil, fmt.Errorf("%w: get-balance: %v", ErrLedgerUnavailable, err)
	}
	return &balance, nil
}

// IssuePasscode asks the ledger to mint a purchase passcode and deliver it
// to the user out-of-band. The ledger stores it; settlement validates it.
func (c *LedgerClient) IssuePasscode(ctx context.Context, userID string) error {
	resp, err := c.post(ctx, "/generate-passcode", map[string]string{"telegramId": userID})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: generate-passcode: %s", ErrLedgerUnavailable, errorReason(resp))
	}
	return nil
}

// SettlePurchase runs the whole money movement in one ledger call: passcode
// validation, the buyer debit and, when a beneficiary was resolved, the
// owner credit. A returned *PurchaseRejectedError means it was a clean
// no-op on the ledger side.
func (c *LedgerClient) SettlePurchase(ctx context.Context, settle models.SettleRequest) (*models.SettleResult, error) {
	payload := struct {
		models.SettleRequest
		SecretKey string `json:"secretKey"` // server-to-server auth
	}{settle, c.secretKey}

	resp, err := c.post(ctx, "/api/premium-purchase", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// The ledger looked at the request and said no. Money did not move.
		return nil, &PurchaseRejectedError{Reason: errorReason(resp)}
	default:
		// 5xx is the ledger being down, not the purchase being refused.
		return nil, fmt.Errorf("%w: premium-purchase: %s", ErrLedgerUnavailable, errorReason(resp))
	}

	var result models.SettleResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: premium-purchase: %v", ErrLedgerUnavailable, err)
	}
	return &result, nil
}
