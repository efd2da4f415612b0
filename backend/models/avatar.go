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

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`^https?://.+`)

// SanitizeAvatar normalizes a client-supplied avatar value before it is
// persisted. Accepted forms: a plain http(s) URL, a {"type":"url","src":...}
// descriptor (unwrapped to the bare URL), or a {"type":"emoji",...}
// descriptor (kept verbatim). Inline image data is always dropped to nil so
// a single avatar cannot bloat the shared document. Anything else is nil.
func SanitizeAvatar(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		// Not a JSON string; some clients send the descriptor unquoted.
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil
		}
		compact, err := json.Marshal(obj)
		if err != nil {
			return nil
		}
		s = string(compact)
	}

	return sanitizeAvatarString(s)
}

func sanitizeAvatarString(avatar string) *string {
	if avatar == "" {
		return nil
	}

	if strings.HasPrefix(avatar, "data:image/") {
		slog.Warn("avatar rejected: inline image data, use a URL instead")
		return nil
	}

	if strings.HasPrefix(avatar, "{") {
		var parsed struct {
			Type string `json:"type"`
			Src  string `json:"src"`
		}
		if err := json.Unmarshal([]byte(avatar), &parsed); err == nil {
			switch parsed.Type {
			case "url":
				if parsed.Src != "" {
					return &parsed.Src
				}
			case "emoji":
				// Emoji descriptors stay as the raw JSON string.
				return &avatar
			}
		}
		return nil
	}

	if urlPattern.MatchString(avatar) {
		return &avatar
	}
	return nil
}
