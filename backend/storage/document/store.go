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

// Package document implements the group and premium-roster repositories on
// top of a versioned blob store. There is no in-process locking: two
// concurrent writers both read version V and exactly one write-back wins.
// The loser re-reads and reapplies its mutation, up to writeRetries times,
// before ErrVersionConflict surfaces.
package document

import (
	"context"
	"errors"
	"log/slog"

	"github.com/intelgroups/groups/backend/models"
	"github.com/intelgroups/groups/backend/storage"
)

const writeRetries = 3

type Store struct {
	blobs       storage.BlobStore
	groupsFile  string
	premiumFile string
	adminID     string
}

func NewStore(blobs storage.BlobStore, groupsFile, premiumFile, adminID string) *Store {
	return &Store{
		blobs:       blobs,
		groupsFile:  groupsFile,
		premiumFile: premiumFile,
		adminID:     adminID,
	}
}

func (s *Store) readGroups(ctx context.Context) (map[string]*models.Group, string, error) {
	content, version, err := s.blobs.ReadBlob(ctx, s.groupsFile)
	if err != nil {
		return nil, "", err
	}
	groups, err := DecodeGroups(content)
	if err != nil {
		return nil, "", err
	}
	return groups, version, nil
}

// updateGroups runs one read-mutate-write cycle, retrying on version
// conflicts. fn mutates the decoded collection in place and returns whether
// a write-back is needed; returning false reports success without writing.
func (s *Store) updateGroups(ctx context.Context, note string, fn func(groups map[string]*models.Group) (bool, error)) error {
	var lastErr error
	for attempt := 0; attempt < writeRetries; attempt++ {
		groups, version, err := s.readGroups(ctx)
		if err != nil {
			return err
		}

		changed, err := fn(groups)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		content, err := EncodeGroups(groups)
		if err != nil {
			return err
		}
		err = s.blobs.WriteBlob(ctx, s.groupsFile, content, version, note)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) {
			return err
		}
		lastErr = err
		slog.Warn("groups write lost the version race, retrying", "note", note, "attempt", attempt+1)
	}
	return lastErr
}

func (s *Store) readPremium(ctx context.Context) ([]string, string, error) {
	content, version, err := s.blobs.ReadBlob(ctx, s.premiumFile)
	if err != nil {
		return nil, "", err
	}
	users, err := DecodePremium(content)
	if err != nil {
		return nil, "", err
	}
	return users, version, nil
}

func (s *Store) updatePremium(ctx context.Context, note string, fn func(users []string) ([]string, bool, error)) error {
	var lastErr error
	for attempt := 0; attempt < writeRetries; attempt++ {
		users, version, err := s.readPremium(ctx)
		if err != nil {
			return err
		}

		users, changed, err := fn(users)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		content, err := EncodePremium(users)
		if err != nil {
			return err
		}
		err = s.blobs.WriteBlob(ctx, s.premiumFile, content, version, note)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) {
			return err
		}
		lastErr = err
		slog.Warn("premium write lost the version race, retrying", "note", note, "attempt", attempt+1)
	}
	return lastErr
}
