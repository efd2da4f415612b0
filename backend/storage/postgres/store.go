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

// Package postgres holds the settlement outbox: the durable record that a
// ledger debit/credit went through and which local write-backs still owe.
package postgres

import (
	"database/sql"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS purchase_outbox (
			id VARCHAR(64) PRIMARY KEY,
			buyer_id VARCHAR(255) NOT NULL,
			group_id VARCHAR(64) NOT NULL DEFAULT '',
			owner_id VARCHAR(255) NOT NULL DEFAULT '',
			earned_ngn BIGINT NOT NULL DEFAULT 0,
			earnings_applied BOOLEAN NOT NULL DEFAULT FALSE,
			roster_applied BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Reconciler scans for anything not fully applied.
		`CREATE INDEX IF NOT EXISTS idx_outbox_pending
		ON purchase_outbox(created_at)
		WHERE NOT earnings_applied OR NOT roster_applied`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}
