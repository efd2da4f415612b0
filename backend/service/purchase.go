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

// Package service orchestrates the premium purchase flow across the ledger,
// the group document and the premium roster.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/intelgroups/groups/backend/models"
	"github.com/intelgroups/groups/backend/storage"
)

const maxSettleAttempts = 5

// ErrTooManyAttempts means the buyer hit the settlement rate limit before
// the ledger was ever contacted.
var ErrTooManyAttempts = errors.New("too many purchase attempts, try again later")

// Ledger is the slice of the balance server this flow needs.
type Ledger interface {
	SettlePurchase(ctx context.Context, settle models.SettleRequest) (*models.SettleResult, error)
}

// PurchaseRequest is one buyer's attempt, optionally in a group's context.
type PurchaseRequest struct {
	BuyerID       string
	BuyerName     string
	BuyerUsername string
	Passcode      string
	GroupID       string
}

type PurchaseService struct {
	groups   storage.GroupStore
	premium  storage.PremiumStore
	outbox   storage.OutboxStore
	attempts storage.AttemptCounter
	ledger   Ledger
}

func NewPurchaseService(groups storage.GroupStore, premium storage.PremiumStore, outbox storage.OutboxStore, attempts storage.AttemptCounter, ledger Ledger) *PurchaseService {
	return &PurchaseService{
		groups:   groups,
		premium:  premium,
		outbox:   outbox,
		attempts: attempts,
		ledger:   ledger,
	}
}

// Buy runs one purchase attempt: resolve the beneficiary, settle on the
// ledger, then apply local bookkeeping. No local state is touched before
// the ledger reports success, so a rejection there is a clean no-op. After
// settlement the outbox row is written first; the write-backs that follow
// are each allowed to fail independently and will be reconciled later.
func (s *PurchaseService) Buy(ctx context.Context, req PurchaseRequest) (*models.SettleResult, error) {
	if s.attempts != nil {
		n, err := s.attempts.IncrAttempts(ctx, req.BuyerID)
		if err != nil {
			slog.Warn("attempt counter unavailable, not limiting", "error", err)
		} else if n > maxSettleAttempts {
			slog.Warn("purchase attempt limit hit", "buyer_id", req.BuyerID, "attempts", n)
			return nil, ErrTooManyAttempts
		}
	}

	settle := models.SettleRequest{
		BuyerID:       req.BuyerID,
		BuyerName:     req.BuyerName,
		BuyerUsername: req.BuyerUsername,
		Passcode:      req.Passcode,
	}

	// Resolve the earnings beneficiary. A failed lookup only loses the
	// owner's referral credit, so it is logged rather than fatal.
	beneficiary := false
	if req.GroupID != "" {
		group, err := s.groups.GetGroup(ctx, req.GroupID)
		switch {
		case err != nil:
			slog.Error("group lookup failed during purchase", "group_id", req.GroupID, "error", err)
		case group.OwnerID != "" && group.OwnerID != req.BuyerID:
			beneficiary = true
			settle.GroupOwnerID = group.OwnerID
			settle.GroupOwnerName = orDefault(group.OwnerName, group.OwnerID)
			settle.GroupName = orDefault(group.Name, req.GroupID)
		}
	}

	result, err := s.ledger.SettlePurchase(ctx, settle)
	if err != nil {
		return nil, err
	}

	settlement := &models.Settlement{
		ID:      uuid.NewString(),
		BuyerID: req.BuyerID,
	}
	if beneficiary {
		settlement.GroupID = req.GroupID
		settlement.OwnerID = settle.GroupOwnerID
		settlement.EarnedNgn = result.OwnerEarnedNgn
		if settlement.EarnedNgn == 0 {
			settlement.EarnedNgn = models.ReferralShareNgn
		}
	}

	if err := s.outbox.RecordSettlement(ctx, settlement); err != nil {
		// The ledger already moved the money. Without the outbox row the
		// write-backs below are the only shot, so log loudly for manual
		// reconciliation.
		slog.Error("settlement outbox write failed",
			"buyer_id", req.BuyerID, "group_id", settlement.GroupID, "error", err)
	}

	s.applyBookkeeping(ctx, settlement)

	slog.Info("premium purchase completed",
		"buyer_id", req.BuyerID,
		"group_id", settlement.GroupID,
		"owner_earned_ngn", settlement.EarnedNgn)
	return result, nil
}

// applyBookkeeping runs the two independent write-backs, marking each in
// the outbox as it lands. Failures are logged and left for the reconciler.
func (s *PurchaseService) applyBookkeeping(ctx context.Context, settlement *models.Settlement) {
	if settlement.GroupID != "" && !settlement.EarningsApplied {
		err := s.groups.AddEarnings(ctx, settlement.GroupID, settlement.EarnedNgn)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			// Group deleted since settlement; nothing left to credit.
			slog.Warn("earnings skipped, group gone", "group_id", settlement.GroupID)
			err = nil
		case err != nil:
			slog.Error("earnings write-back failed", "group_id", settlement.GroupID, "error", err)
		}
		if err == nil {
			settlement.EarningsApplied = true
			if err := s.outbox.MarkEarningsApplied(ctx, settlement.ID); err != nil {
				slog.Error("outbox earnings mark failed", "settlement_id", settlement.ID, "error", err)
			}
		}
	}

	if !settlement.RosterApplied {
		if err := s.premium.AddPremium(ctx, settlement.BuyerID); err != nil {
			slog.Error("premium roster write-back failed", "buyer_id", settlement.BuyerID, "error", err)
		} else {
			settlement.RosterApplied = true
			if err := s.outbox.MarkRosterApplied(ctx, settlement.ID); err != nil {
				slog.Error("outbox roster mark failed", "settlement_id", settlement.ID, "error", err)
			}
		}
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
