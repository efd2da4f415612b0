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
	"net/http"

	"github.com/gorilla/mux"

	"github.com/intelgroups/groups/backend/storage"
)

// AdminHandler exposes the moderation surface. Authentication happens in
// middleware; these handlers assume the caller is the admin.
type AdminHandler struct {
	groups   storage.GroupStore
	premium  storage.PremiumStore
	notifier Notifier
}

func NewAdminHandler(groups storage.GroupStore, premium storage.PremiumStore, notifier Notifier) *AdminHandler {
	return &AdminHandler{groups: groups, premium: premium, notifier: notifier}
}

// ListAllGroups returns the full document, message history included.
func (h *AdminHandler) ListAllGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ListGroups(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// ForceDeleteGroup removes a group regardless of ownership.
func (h *AdminHandler) ForceDeleteGroup(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.groups.ForceDeleteGroup(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *AdminHandler) CheckPremium(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"telegramId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	users, err := h.premium.ListPremium(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []string{}
	}
	isPremium := false
	for _, u := range users {
		if u == req.UserID {
			isPremium = true
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"isPremium": isPremium, "users": users})
}

func (h *AdminHandler) AddPremium(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"telegramId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		badRequest(w, "Missing Telegram ID")
		return
	}

	users, err := h.premium.ListPremium(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	already := false
	for _, u := range users {
		if u == req.UserID {
			already = true
			break
		}
	}
	if !already {
		if err := h.premium.AddPremium(r.Context(), req.UserID); err != nil {
			writeError(w, err)
			return
		}
		users = append(users, req.UserID)
		h.notifier.SendText(req.UserID, "⭐ You have been granted Premium access by admin!")
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "users": users})
}

func (h *AdminHandler) RemovePremium(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"telegramId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		badRequest(w, "Missing Telegram ID")
		return
	}

	if err := h.premium.RemovePremium(r.Context(), req.UserID); err != nil {
		writeError(w, err)
		return
	}
	users, err := h.premium.ListPremium(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	updated := users[:0:0]
	for _, u := range users {
		if u != req.UserID {
			updated = append(updated, u)
		}
	}
	if updated == nil {
		updated = []string{}
	}
	h.notifier.SendText(req.UserID, "⚠️ Your Premium access has been removed by admin.")
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "users": updated})
}
