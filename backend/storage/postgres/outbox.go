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

package postgres

import (
	"context"
	"time"

	"github.com/intelgroups/groups/backend/models"
)

// RecordSettlement writes the outbox row. Settlements without a beneficiary
// insert with earnings already marked applied, so only the roster remains.
func (s *Store) RecordSettlement(ctx context.Context, settlement *models.Settlement) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO purchase_outbox
		(id, buyer_id, group_id, owner_id, earned_ngn, earnings_applied, roster_applied, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		settlement.ID, settlement.BuyerID, settlement.GroupID, settlement.OwnerID,
		settlement.EarnedNgn, settlement.GroupID == "", false, time.Now())
	return err
}

func (s *Store) MarkEarningsApplied(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE purchase_outbox SET earnings_applied = TRUE
		WHERE id = $1`,
		id)
	return err
}

func (s *Store) MarkRosterApplied(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE purchase_outbox SET roster_applied = TRUE
		WHERE id = $1`,
		id)
	return err
}

// ReclaimAge is how long a settlement must sit before the reconciler picks
// it up. The originating request applies bookkeeping inline right after the
// insert; without this grace period a tick landing in that window (or a
// second server instance) would apply the same earnings twice.
const ReclaimAge = 5 * time.Minute

// ListPending returns settlements with unapplied bookkeeping, oldest first.
// Rows younger than ReclaimAge are left to their originating request.
func (s *Store) ListPending(ctx context.Context, limit int) ([]models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, buyer_id, group_id, owner_id, earned_ngn, earnings_applied, roster_applied, created_at
		FROM purchase_outbox
		WHERE (NOT earnings_applied OR NOT roster_applied)
		  AND created_at < $2
		ORDER BY created_at
		LIMIT $1`,
		limit, time.Now().Add(-ReclaimAge))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []models.Settlement
	for rows.Next() {
		var st models.Settlement
		if err := rows.Scan(&st.ID, &st.BuyerID, &st.GroupID, &st.OwnerID,
			&st.EarnedNgn, &st.EarningsApplied, &st.RosterApplied, &st.CreatedAt); err != nil {
			return nil, err
		}
		pending = append(pending, st)
	}

	return pending, rows.Err()
}
