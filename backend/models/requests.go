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

import "encoding/json"

// CreateGroupParams carries the validated input for a new group. Avatar is
// kept raw until SanitizeAvatar decides what, if anything, gets stored.
type CreateGroupParams struct {
	OwnerID       string          `json:"telegramId"`
	OwnerName     string          `json:"ownerName"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	IsPrivate     bool            `json:"isPrivate"`
	IsPremiumOnly bool            `json:"isPremiumOnly"`
	Avatar        json.RawMessage `json:"avatar,omitempty"`
}

// GroupPatch is a partial update: nil fields are left untouched, fields
// explicitly present are applied even when empty or false. An empty Name is
// the one exception — a group cannot be renamed to nothing.
type GroupPatch struct {
	Name          *string         `json:"name"`
	Description   *string         `json:"description"`
	Avatar        json.RawMessage `json:"avatar,omitempty"`
	IsPrivate     *bool           `json:"isPrivate"`
	IsPremiumOnly *bool           `json:"isPremiumOnly"`
}
