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

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/intelgroups/groups/backend/integration"
	"github.com/intelgroups/groups/backend/service"
	"github.com/intelgroups/groups/backend/storage"
)

// Notifier is the slice of the Telegram gateway handlers need. Every method
// is best-effort and may be called from request goroutines.
type Notifier interface {
	SendText(userID, text string)
	SendPhoto(userID string, photo []byte, caption string)
	NotifyAdmin(text string)
	NotifyAdminPhoto(photo []byte, caption string)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError translates the storage/service error taxonomy into statuses.
// Validation and authorization failures happen before any write, so every
// 4xx here implies the documents are untouched.
func writeError(w http.ResponseWriter, err error) {
	var rejected *integration.PurchaseRejectedError
	switch {
	case errors.As(err, &rejected):
		writeJSON(w, http.StatusPaymentRequired, map[string]string{"error": rejected.Reason})
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrMessageNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, storage.ErrNotOwner), errors.Is(err, storage.ErrNotAuthorized):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, storage.ErrOwnerCannotLeave):
		badRequest(w, err.Error())
	case errors.Is(err, service.ErrTooManyAttempts):
		writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": err.Error()})
	case errors.Is(err, storage.ErrVersionConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "the group changed while saving, please retry"})
	case errors.Is(err, storage.ErrStoreUnavailable), errors.Is(err, integration.ErrLedgerUnavailable):
		slog.Error("upstream unavailable", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "upstream service unavailable"})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "Invalid request body")
		return false
	}
	return true
}
