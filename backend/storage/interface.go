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

package storage

import (
	"context"

	"github.com/intelgroups/groups/backend/models"
)

// BlobStore is a remote versioned file: reads return an opaque version
// token, writes are rejected with ErrVersionConflict when the token is
// stale. Implementations never retry; that is the document stores' job.
type BlobStore interface {
	ReadBlob(ctx context.Context, name string) (content []byte, version string, err error)
	WriteBlob(ctx context.Context, name string, content []byte, version, note string) error
}

// GroupStore is the per-request view of the groups document. Every mutating
// call is a full read-mutate-write cycle against the backing blob store.
type GroupStore interface {
	CreateGroup(ctx context.Context, params models.CreateGroupParams) (string, error)
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	ListGroups(ctx context.Context) (map[string]*models.Group, error)
	JoinGroup(ctx context.Context, id, userID, name, username string) error
	LeaveGroup(ctx context.Context, id, userID string) error
	EditGroup(ctx context.Context, id, userID string, patch models.GroupPatch) error
	DeleteGroup(ctx context.Context, id, requesterID string) error
	ForceDeleteGroup(ctx context.Context, id string) error
	AddEarnings(ctx context.Context, id string, amountNgn int64) error

	AppendMessage(ctx context.Context, groupID string, msg models.Message) (*models.Group, error)
	ListMessages(ctx context.Context, groupID string, limit int) ([]models.Message, error)
	DeleteMessage(ctx context.Context, groupID, messageID, requesterID string) error
}

// PremiumStore is the premium roster document. AddPremium is idempotent.
type PremiumStore interface {
	ListPremium(ctx context.Context) ([]string, error)
	AddPremium(ctx context.Context, userID string) error
	RemovePremium(ctx context.Context, userID string) error
}

// AudioCache holds voice-note payloads keyed by message id. Entries expire;
// it is a delivery convenience, not a store of record.
type AudioCache interface {
	PutAudio(ctx context.Context, messageID string, data []byte) error
	GetAudio(ctx context.Context, messageID string) ([]byte, error)
}

// AttemptCounter rate-limits settlement attempts per buyer.
type AttemptCounter interface {
	IncrAttempts(ctx context.Context, userID string) (int64, error)
}

// OutboxStore persists settlements whose local bookkeeping may still be
// pending, so a write-back lost to a version conflict can be reapplied.
type OutboxStore interface {
	RecordSettlement(ctx context.Context, s *models.Settlement) error
	MarkEarningsApplied(ctx context.Context, id string) error
	MarkRosterApplied(ctx context.Context, id string) error

	// ListPending returns settlements with unapplied bookkeeping, oldest
	// first. Implementations hold back freshly recorded rows so the
	// reconciler never races the request that is still applying them.
	ListPending(ctx context.Context, limit int) ([]models.Settlement, error)
}
