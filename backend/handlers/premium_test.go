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
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/intelgroups/groups/backend/integration"
	"github.com/intelgroups/groups/backend/models"
	"github.com/intelgroups/groups/backend/service"
	"github.com/intelgroups/groups/backend/storage"
)

type fakeLedgerProxy struct {
	balance models.Balance
	issued  []string
}

func (l *fakeLedgerProxy) GetBalance(_ context.Context, _ string) (*models.Balance, error) {
	b := l.balance
	return &b, nil
}

func (l *fakeLedgerProxy) IssuePasscode(_ context.Context, userID string) error {
	l.issued = append(l.issued, userID)
	return nil
}

type fakePurchaser struct {
	result *models.SettleResult
	err    error
	last   service.PurchaseRequest
}

func (p *fakePurchaser) Buy(_ context.Context, req service.PurchaseRequest) (*models.SettleResult, error) {
	p.last = req
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

type staticPremium struct {
	users []string
}

func (s *staticPremium) ListPremium(context.Context) ([]string, error) { return s.users, nil }
func (s *staticPremium) AddPremium(context.Context, string) error     { return nil }
func (s *staticPremium) RemovePremium(context.Context, string) error  { return nil }

func newPremiumServer(t *testing.T, ledger *fakeLedgerProxy, purchases *fakePurchaser) *httptest.Server {
	t.Helper()
	h := NewPremiumHandler(&staticPremium{users: []string{"100"}}, ledger, purchases)
	r := mux.NewRouter()
	r.HandleFunc("/get-balance", h.GetBalance).Methods("POST")
	r.HandleFunc("/api/premium-list", h.ListPremium).Methods("GET")
	r.HandleFunc("/generate-premium-passcode", h.GeneratePasscode).Methods("POST")
	r.HandleFunc("/api/buy-premium", h.BuyPremium).Methods("POST")
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestGetBalanceAnonymous(t *testing.T) {
	srv := newPremiumServer(t, &fakeLedgerProxy{}, &fakePurchaser{})

	// No id yields an empty balance rather than an error.
	status, body := doJSON(t, "POST", srv.URL+"/get-balance", map[string]any{})
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body["ngn"] != float64(0) || body["usdRate"] != float64(1600) {
		t.Errorf("anonymous balance = %v", body)
	}
}

func TestGetBalanceProxied(t *testing.T) {
	ledger := &fakeLedgerProxy{balance: models.Balance{Ngn: 9000, Usd: 5.63, UsdRate: 1600}}
	srv := newPremiumServer(t, ledger, &fakePurchaser{})

	status, body := doJSON(t, "POST", srv.URL+"/get-balance", map[string]any{"telegramId": "100"})
	if status != http.StatusOK || body["ngn"] != float64(9000) {
		t.Fatalf("balance = %d %v", status, body)
	}
}

func TestGeneratePasscode(t *testing.T) {
	ledger := &fakeLedgerProxy{}
	srv := newPremiumServer(t, ledger, &fakePurchaser{})

	status, body := doJSON(t, "POST", srv.URL+"/generate-premium-passcode", map[string]any{"telegramId": "100"})
	if status != http.StatusOK || body["message"] != "Passcode sent to your Telegram" {
		t.Fatalf("passcode response = %d %v", status, body)
	}
	if len(ledger.issued) != 1 || ledger.issued[0] != "100" {
		t.Errorf("issued = %v, want [100]", ledger.issued)
	}

	status, _ = doJSON(t, "POST", srv.URL+"/generate-premium-passcode", map[string]any{})
	if status != http.StatusBadRequest {
		t.Errorf("missing id status = %d, want 400", status)
	}
}

func TestBuyPremium(t *testing.T) {
	purchases := &fakePurchaser{result: &models.SettleResult{
		Message:         "🎉 You are now Premium!",
		NewBuyerBalance: 2000,
		OwnerEarnedNgn:  models.ReferralShareNgn,
	}}
	srv := newPremiumServer(t, &fakeLedgerProxy{}, purchases)

	status, body := doJSON(t, "POST", srv.URL+"/api/buy-premium", map[string]any{
		"telegramId": "300", "name": "Carol", "username": "carol",
		"passcode": "123456", "groupId": "ABCDEF1234",
	})
	if status != http.StatusOK {
		t.Fatalf("buy status = %d, body %v", status, body)
	}
	if body["success"] != true || body["newBalance"] != float64(2000) {
		t.Errorf("buy response = %v", body)
	}
	if purchases.last.BuyerID != "300" || purchases.last.GroupID != "ABCDEF1234" || purchases.last.Passcode != "123456" {
		t.Errorf("purchase request = %+v", purchases.last)
	}
}

func TestBuyPremiumStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ledger rejection", &integration.PurchaseRejectedError{Reason: "Invalid passcode"}, http.StatusPaymentRequired},
		{"rate limited", service.ErrTooManyAttempts, http.StatusTooManyRequests},
		{"ledger down", integration.ErrLedgerUnavailable, http.StatusBadGateway},
		{"document conflict", storage.ErrVersionConflict, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newPremiumServer(t, &fakeLedgerProxy{}, &fakePurchaser{err: tt.err})
			status, _ := doJSON(t, "POST", srv.URL+"/api/buy-premium", map[string]any{
				"telegramId": "300", "passcode": "000000",
			})
			if status != tt.wantStatus {
				t.Errorf("status = %d, want %d", status, tt.wantStatus)
			}
		})
	}
}

func TestFormatNgn(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{500, "500"},
		{5000, "5,000"},
		{2500000, "2,500,000"},
	}
	for _, tt := range tests {
		if got := formatNgn(tt.in); got != tt.want {
			t.Errorf("formatNgn(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
