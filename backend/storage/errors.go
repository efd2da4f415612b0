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

import "errors"

// Sentinel errors shared by every store implementation. Handlers translate
// these into HTTP status codes with errors.Is, so wrap rather than replace.
var (
	ErrNotFound        = errors.New("group not found")
	ErrMessageNotFound = errors.New("message not found")

	ErrNotOwner         = errors.New("only the group owner may do this")
	ErrNotAuthorized    = errors.New("not allowed")
	ErrOwnerCannotLeave = errors.New("Owner cannot leave. Delete the group instead.")

	// ErrVersionConflict means a concurrent writer won the version-checked
	// write race. Document stores retry internally; if it still surfaces,
	// the caller's mutation was never applied.
	ErrVersionConflict = errors.New("document version conflict")

	// ErrStoreUnavailable covers transport failures and non-success
	// responses from the backing file store.
	ErrStoreUnavailable = errors.New("document store unavailable")

	ErrMalformedDocument = errors.New("malformed document")
)
