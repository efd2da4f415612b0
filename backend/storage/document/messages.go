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

	"github.com/intelgroups/groups/backend/models"
	"github.com/intelgroups/groups/backend/storage"
)

// AppendMessage adds msg to the group's log, enforces the retention cap and
// refreshes the denormalized preview. It returns the group as written so
// the caller can fan out notifications without a second read.
func (s *Store) AppendMessage(ctx context.Context, groupID string, msg models.Message) (*models.Group, error) {
	var updated *models.Group
	err := s.updateGroups(ctx, "Message in "+groupID, func(groups map[string]*models.Group) (bool, error) {
		group, ok := groups[groupID]
		if !ok {
			return false, storage.ErrNotFound
		}

		if msg.Type == models.MessageTypeText {
			msg.Text = models.Truncate(msg.Text, models.MaxMessageTextLen)
		}
		group.Messages = append(group.Messages, msg)
		if len(group.Messages) > models.MessageRetention {
			group.Messages = group.Messages[len(group.Messages)-models.MessageRetention:]
		}

		preview := previewFor(msg)
		group.LastMessage = &preview
		group.LastMessageAt = &msg.Timestamp

		updated = group
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func previewFor(msg models.Message) string {
	if msg.Type == models.MessageTypeVoice {
		return "🎤 " + msg.SenderName + ": Voice note"
	}
	return msg.SenderName + ": " + models.Truncate(msg.Text, 60)
}

// ListMessages returns the trailing limit messages, newest last.
func (s *Store) ListMessages(ctx context.Context, groupID string, limit int) ([]models.Message, error) {
	groups, _, err := s.readGroups(ctx)
	if err != nil {
		return nil, err
	}
	group, ok := groups[groupID]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if limit <= 0 {
		limit = models.DefaultMessageWindow
	}
	msgs := group.Messages
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	// Always hand back a non-nil slice; the API contract is an array.
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// DeleteMessage removes a single message. Authorization is derived from the
// stored document alone: only the sender or the group owner may delete, no
// matter what the request claims.
func (s *Store) DeleteMessage(ctx context.Context, groupID, messageID, requesterID string) error {
	return s.updateGroups(ctx, "Delete msg "+messageID, func(groups map[string]*models.Group) (bool, error) {
		group, ok := groups[groupID]
		if !ok {
			return false, storage.ErrNotFound
		}

		idx := -1
		for i, m := range group.Messages {
			if m.ID == messageID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false, storage.ErrMessageNotFound
		}

		msg := group.Messages[idx]
		if msg.SenderID != requesterID && group.OwnerID != requesterID {
			return false, storage.ErrNotAuthorized
		}

		group.Messages = append(group.Messages[:idx], group.Messages[idx+1:]...)
		return true, nil
	})
}
