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

// Field limits enforced on every write; oversized input is truncated, not
// rejected, matching what the browser clients already rely on.
const (
	MaxGroupNameLen   = 64
	MaxDescriptionLen = 255
	MaxMessageTextLen = 4000

	// MessageRetention caps a group's message log; the oldest entries are
	// evicted first.
	MessageRetention = 500

	// DefaultMessageWindow is how many trailing messages a listing returns
	// when the caller does not ask for a specific window.
	DefaultMessageWindow = 200
)

const (
	MessageTypeText   = "text"
	MessageTypeVoice  = "voice"
	MessageTypeSystem = "system"
)

// Member is one entry in a group's member roster, keyed by user id.
type Member struct {
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	JoinedAt int64  `json:"joinedAt"`
}

// Message is a single chat log entry. Timestamps are Unix milliseconds
// because the persisted document is also loaded directly by browser clients.
// Voice messages carry only an AudioURL reference; the payload itself lives
// in the audio cache and is never written to the document store.
type Message struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	SenderID   string `json:"senderId,omitempty"`
	SenderName string `json:"senderName,omitempty"`
	Text       string `json:"text,omitempty"`
	Duration   string `json:"duration,omitempty"`
	AudioURL   string `json:"audioUrl,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// Group is one entry in the groups document, keyed by its short code.
// LastMessage/LastMessageAt are denormalized from the tail of Messages so
// listings never need the full log.
type Group struct {
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	OwnerID       string            `json:"ownerId"`
	OwnerName     string            `json:"ownerName"`
	Avatar        *string           `json:"avatar"`
	IsPrivate     bool              `json:"isPrivate"`
	IsPremiumOnly bool              `json:"isPremiumOnly"`
	CreatedAt     int64             `json:"createdAt"`
	LastMessage   *string           `json:"lastMessage"`
	LastMessageAt *int64            `json:"lastMessageAt"`
	TotalEarnings int64             `json:"totalEarnings"`
	Members       map[string]Member `json:"members"`
	Messages      []Message         `json:"messages,omitempty"`
}

// WithoutMessages returns a shallow copy suitable for listing responses.
func (g *Group) WithoutMessages() *Group {
	if g == nil {
		return nil
	}
	stripped := *g
	stripped.Messages = nil
	return &stripped
}

// IsMember reports whether userID is on the group's roster.
func (g *Group) IsMember(userID string) bool {
	_, ok := g.Members[userID]
	return ok
}

// Truncate returns s cut to at most max characters. Cutting happens on
// rune boundaries so truncated text stays valid UTF-8 and survives a
// JSON encode/decode round trip unchanged.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
