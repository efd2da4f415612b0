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

package handlers

import (
	"context"
	"net/http"

	"github.com/intelgroups/groups/backend/models"
	"github.com/intelgroups/groups/backend/service"
	"github.com/intelgroups/groups/backend/storage"
)

// LedgerProxy is the slice of the balance ledger exposed straight through
// to clients: balance reads and passcode issuance. Settlement goes through
// the purchase service instead.
type LedgerProxy interface {
	GetBalance(ctx context.Context, userID string) (*models.Balance, error)
	IssuePasscode(ctx context.Context, userID string) error
}

// Purchaser runs the full purchase orchestration.
type Purchaser interface {
	Buy(ctx context.Context, req service.PurchaseRequest) (*models.SettleResult, error)
}

type PremiumHandler struct {
	premium   storage.PremiumStore
	ledger    LedgerProxy
	purchases Purchaser
}

func NewPremiumHandler(premium storage.PremiumStore, ledger LedgerProxy, purchases Purchaser) *PremiumHandler {
	return &PremiumHandler{premium: premium, ledger: ledger, purchases: purchases}
}

// GetBalance proxies the buyer's balance from the ledger. An anonymous
// request gets an empty balance instead of an error; the pages poll this
// before the user has identified themselves.
func (h *PremiumHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"telegramId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusOK, models.Balance{Ngn: 0, Usd: 0, UsdRate: 1600})
		return
	}

	balance, err := h.ledger.GetBalance(r.Context(), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (h *PremiumHandler) ListPremium(w http.ResponseWriter, r *http.Request) {
	users, err := h.premium.ListPremium(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []string{}
	}
	writeJSON(w, http.StatusOK, users)
}

// GeneratePasscode delegates passcode issuance to the ledger, which also
// validates it at settlement time and delivers it to the user directly.
func (h *PremiumHandler) GeneratePasscode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"telegramId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		badRequest(w, "Missing Telegram ID")
		return
	}

	if err := h.ledger.IssuePasscode(r.Context(), req.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Passcode sent to your Telegram",
	})
}

func (h *PremiumHandler) BuyPremium(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"telegramId"`
		Name     string `json:"name"`
		Username string `json:"username"`
		Passcode string `json:"passcode"`
		GroupID  string `json:"groupId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		badRequest(w, "Missing Telegram ID")
		return
	}

	result, err := h.purchases.Buy(r.Context(), service.PurchaseRequest{
		BuyerID:       req.UserID,
		BuyerName:     req.Name,
		BuyerUsername: req.Username,
		Passcode:      req.Passcode,
		GroupID:       req.GroupID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	message := result.Message
	if message == "" {
		message = "🎉 You are now Premium!"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        message,
		"newBalance":     result.NewBuyerBalance,
		"buyerUsd":       result.BuyerUsd,
		"premiumCostNgn": result.PremiumCostNgn,
		"premiumCostUsd": result.PremiumCostUsd,
		"ownerEarnedNgn": result.OwnerEarnedNgn,
		"ownerEarnedUsd": result.OwnerEarnedUsd,
	})
}
