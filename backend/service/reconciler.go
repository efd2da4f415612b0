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

package service

import (
	"context"
	"log/slog"
	"time"
)

const reconcileBatch = 50

// Reconcile reapplies bookkeeping for settlements whose write-backs were
// lost, typically to a version conflict after the ledger had already
// settled. Each pass is idempotent: earnings mark themselves applied and
// the roster insert is a no-op for existing members.
func (s *PurchaseService) Reconcile(ctx context.Context) error {
	pending, err := s.outbox.ListPending(ctx, reconcileBatch)
	if err != nil {
		return err
	}
	for i := range pending {
		settlement := &pending[i]
		slog.Info("reconciling settlement",
			"settlement_id", settlement.ID,
			"buyer_id", settlement.BuyerID,
			"group_id", settlement.GroupID)
		s.applyBookkeeping(ctx, settlement)
	}
	return nil
}

// RunReconciler loops until ctx is done. Meant to run as a goroutine from
// main.
func (s *PurchaseService) RunReconciler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Reconcile(ctx); err != nil {
				slog.Error("outbox reconcile pass failed", "error", err)
			}
		}
	}
}
