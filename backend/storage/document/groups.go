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

package document

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/intelgroups/groups/backend/models"
	"github.com/intelgroups/groups/backend/storage"
)

// newGroupID returns a short uppercase hex code. 40 random bits keep the
// collision probability negligible; CreateGroup still re-checks against the
// document it already holds and regenerates on a hit.
func newGroupID() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate group id: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

func (s *Store) CreateGroup(ctx context.Context, params models.CreateGroupParams) (string, error) {
	var groupID string
	err := s.updateGroups(ctx, "Create group", func(groups map[string]*models.Group) (bool, error) {
		for {
			id, err := newGroupID()
			if err != nil {
				return false, err
			}
			if _, taken := groups[id]; !taken {
				groupID = id
				break
			}
		}

		now := nowMillis()
		groups[groupID] = &models.Group{
			Name:          models.Truncate(params.Name, models.MaxGroupNameLen),
			Description:   models.Truncate(params.Description, models.MaxDescriptionLen),
			OwnerID:       params.OwnerID,
			OwnerName:     params.OwnerName,
			Avatar:        models.SanitizeAvatar(params.Avatar),
			IsPrivate:     params.IsPrivate,
			IsPremiumOnly: params.IsPremiumOnly,
			CreatedAt:     now,
			TotalEarnings: 0,
			Members: map[string]models.Member{
				params.OwnerID: {Name: params.OwnerName, JoinedAt: now},
			},
		}
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return groupID, nil
}

func (s *Store) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	groups, _, err := s.readGroups(ctx)
	if err != nil {
		return nil, err
	}
	group, ok := groups[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return group, nil
}

func (s *Store) ListGroups(ctx context.Context) (map[string]*models.Group, error) {
	groups, _, err := s.readGroups(ctx)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// JoinGroup is idempotent: joining a group you are already in writes
// nothing and still succeeds.
func (s *Store) JoinGroup(ctx context.Context, id, userID, name, username string) error {
	note := fmt.Sprintf("%s joined %s", userID, id)
	return s.updateGroups(ctx, note, func(groups map[string]*models.Group) (bool, error) {
		group, ok := groups[id]
		if !ok {
			return false, storage.ErrNotFound
		}
		if group.IsMember(userID) {
			return false, nil
		}

		now := nowMillis()
		if group.Members == nil {
			group.Members = make(map[string]models.Member)
		}
		group.Members[userID] = models.Member{Name: name, Username: username, JoinedAt: now}
		group.Messages = append(group.Messages, models.Message{
			ID:        uuid.NewString(),
			Type:      models.MessageTypeSystem,
			Text:      name + " joined the group",
			Timestamp: now,
		})
		preview := name + " joined"
		group.LastMessage = &preview
		group.LastMessageAt = &now
		return true, nil
	})
}

func (s *Store) LeaveGroup(ctx context.Context, id, userID string) error {
	note := fmt.Sprintf("%s left %s", userID, id)
	return s.updateGroups(ctx, note, func(groups map[string]*models.Group) (bool, error) {
		group, ok := groups[id]
		if !ok {
			return false, storage.ErrNotFound
		}
		if group.OwnerID == userID {
			return false, storage.ErrOwnerCannotLeave
		}

		leaverName := userID
		if m, ok := group.Members[userID]; ok {
			leaverName = m.Name
		}
		delete(group.Members, userID)
		group.Messages = append(group.Messages, models.Message{
			ID:        uuid.NewString(),
			Type:      models.MessageTypeSystem,
			Text:      leaverName + " left the group",
			Timestamp: nowMillis(),
		})
		return true, nil
	})
}

func (s *Store) EditGroup(ctx context.Context, id, userID string, patch models.GroupPatch) error {
	return s.updateGroups(ctx, "Edit group "+id, func(groups map[string]*models.Group) (bool, error) {
		group, ok := groups[id]
		if !ok {
			return false, storage.ErrNotFound
		}
		if group.OwnerID != userID {
			return false, storage.ErrNotOwner
		}

		if patch.Name != nil && *patch.Name != "" {
			group.Name = models.Truncate(*patch.Name, models.MaxGroupNameLen)
		}
		if patch.Description != nil {
			group.Description = models.Truncate(*patch.Description, models.MaxDescriptionLen)
		}
		if patch.Avatar != nil {
			group.Avatar = models.SanitizeAvatar(patch.Avatar)
		}
		if patch.IsPrivate != nil {
			group.IsPrivate = *patch.IsPrivate
		}
		if patch.IsPremiumOnly != nil {
			group.IsPremiumOnly = *patch.IsPremiumOnly
		}
		return true, nil
	})
}

// DeleteGroup removes a group for its owner or the administrator. There is
// no soft delete; the member roster and message log go with it.
func (s *Store) DeleteGroup(ctx context.Context, id, requesterID string) error {
	return s.updateGroups(ctx, "Delete group "+id, func(groups map[string]*models.Group) (bool, error) {
		group, ok := groups[id]
		if !ok {
			return false, storage.ErrNotFound
		}
		if group.OwnerID != requesterID && requesterID != s.adminID {
			return false, storage.ErrNotAuthorized
		}
		delete(groups, id)
		return true, nil
	})
}

// ForceDeleteGroup removes a group with no ownership check. Callers are
// expected to have passed admin authentication already.
func (s *Store) ForceDeleteGroup(ctx context.Context, id string) error {
	return s.updateGroups(ctx, "Admin deleted group "+id, func(groups map[string]*models.Group) (bool, error) {
		if _, ok := groups[id]; !ok {
			return false, storage.ErrNotFound
		}
		delete(groups, id)
		return true, nil
	})
}

func (s *Store) AddEarnings(ctx context.Context, id string, amountNgn int64) error {
	return s.updateGroups(ctx, "Premium sale in group "+id, func(groups map[string]*models.Group) (bool, error) {
		group, ok := groups[id]
		if !ok {
			return false, storage.ErrNotFound
		}
		group.TotalEarnings += amountNgn
		return true, nil
	})
}
