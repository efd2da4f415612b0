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
	"encoding/json"
	"fmt"
	"strings"

	"github.com/intelgroups/groups/backend/models"
	"github.com/intelgroups/groups/backend/storage"
)

// The persisted documents double as browser-loadable script assets, so each
// one is pretty-printed JSON behind a fixed assignment prefix.
const (
	groupsPrefix  = "window.GROUPS_DATA ="
	premiumPrefix = "window.PREMIUM_USERS ="
)

// DecodeGroups parses the groups document.
func DecodeGroups(data []byte) (map[string]*models.Group, error) {
	body := stripPrefix(data, groupsPrefix)
	groups := make(map[string]*models.Group)
	if err := json.Unmarshal(body, &groups); err != nil {
		return nil, fmt.Errorf("%w: groups: %v", storage.ErrMalformedDocument, err)
	}
	return groups, nil
}

// EncodeGroups renders the groups document. DecodeGroups(EncodeGroups(g))
// yields g back for any valid collection.
func EncodeGroups(groups map[string]*models.Group) ([]byte, error) {
	if groups == nil {
		groups = make(map[string]*models.Group)
	}
	body, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(groupsPrefix+" "), body...), nil
}

// DecodePremium parses the premium roster document.
func DecodePremium(data []byte) ([]string, error) {
	body := stripPrefix(data, premiumPrefix)
	var users []string
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("%w: premium roster: %v", storage.ErrMalformedDocument, err)
	}
	return users, nil
}

// EncodePremium renders the premium roster document.
func EncodePremium(users []string) ([]byte, error) {
	if users == nil {
		users = []string{}
	}
	body, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(premiumPrefix+" "), body...), nil
}

func stripPrefix(data []byte, prefix string) []byte {
	s := strings.TrimSpace(string(data))
	s = strings.TrimPrefix(s, prefix)
	return []byte(strings.TrimSpace(s))
}
