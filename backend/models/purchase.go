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

package models

import "time"

// Premium pricing in NGN. The ledger owns the authoritative amounts; these
// mirror them for local bookkeeping of the owner's referral share.
const (
	PremiumCostNgn   int64 = 5000
	ReferralShareNgn int64 = 2500
)

// Balance is the ledger's view of a user's funds.
type Balance struct {
	Ngn     int64   `json:"ngn"`
	Usd     float64 `json:"usd"`
	UsdRate float64 `json:"usdRate"`
}

// SettleRequest is the single atomic operation delegated to the ledger:
// validate the passcode, debit the buyer, credit the beneficiary if one was
// resolved.
type SettleRequest struct {
	BuyerID        string `json:"telegramId"`
	BuyerName      string `json:"buyerName"`
	BuyerUsername  string `json:"buyerUsername"`
	GroupOwnerID   string `json:"groupOwnerId,omitempty"`
	GroupOwnerName string `json:"groupOwnerName,omitempty"`
	GroupName      string `json:"groupName,omitempty"`
	Passcode       string `json:"passcode"`
}

// SettleResult is the ledger's cost breakdown after a successful settlement.
type SettleResult struct {
	Message         string  `json:"message"`
	NewBuyerBalance int64   `json:"newBuyerBalance"`
	BuyerUsd        float64 `json:"buyerUsd"`
	PremiumCostNgn  int64   `json:"premiumCostNgn"`
	PremiumCostUsd  float64 `json:"premiumCostUsd"`
	OwnerEarnedNgn  int64   `json:"ownerEarnedNgn"`
	OwnerEarnedUsd  float64 `json:"ownerEarnedUsd"`
}

// Settlement is the durable outbox record written after the ledger reports
// success and before any local write-back. The applied flags track which
// pieces of bookkeeping still need reconciling.
type Settlement struct {
	ID              string    `json:"id" db:"id"`
	BuyerID         string    `json:"buyer_id" db:"buyer_id"`
	GroupID         string    `json:"group_id,omitempty" db:"group_id"`
	OwnerID         string    `json:"owner_id,omitempty" db:"owner_id"`
	EarnedNgn       int64     `json:"earned_ngn" db:"earned_ngn"`
	EarningsApplied bool      `json:"earnings_applied" db:"earnings_applied"`
	RosterApplied   bool      `json:"roster_applied" db:"roster_applied"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Pending reports whether any bookkeeping remains. A settlement with no
// beneficiary has nothing to apply on the earnings side.
func (s *Settlement) Pending() bool {
	if s.GroupID != "" && !s.EarningsApplied {
		return true
	}
	return !s.RosterApplied
}
