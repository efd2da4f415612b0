// Copyright (C) 2025 intelgroups
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package document

import (
	"context"
)

func (s *Store) ListPremium(ctx context.Context) ([]string, error) {
	users, _, err := s.readPremium(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// AddPremium puts userID on the roster. Adding an existing member writes
// nothing, so a user can never appear twice.
func (s *Store) AddPremium(ctx context.Context, userID string) error {
	return s.updatePremium(ctx, "Premium added: "+userID, func(users []string) ([]string, bool, error) {
		for _, u := range users {
			if u == userID {
				return users, false, nil
			}
		}
		return append(users, userID), true, nil
	})
}

func (s *Store) RemovePremium(ctx context.Context, userID string) error {
	return s.updatePremium(ctx, "Premium removed: "+userID, func(users []string) ([]string, bool, error) {
		kept := users[:0]
		removed := false
		for _, u := range users {
			if u == userID {
				removed = true
				continue
			}
			kept = append(kept, u)
		}
		return kept, removed, nil
	})
}
