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
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/intelgroups/groups/backend/models"
	"github.com/intelgroups/groups/backend/storage"
)

type GroupHandler struct {
	store    storage.GroupStore
	notifier Notifier
}

func NewGroupHandler(store storage.GroupStore, notifier Notifier) *GroupHandler {
	return &GroupHandler{store: store, notifier: notifier}
}

// ListGroups returns every group without its message log; listings never
// need chat history.
func (h *GroupHandler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.store.ListGroups(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	stripped := make(map[string]*models.Group, len(groups))
	for id, g := range groups {
		stripped[id] = g.WithoutMessages()
	}
	writeJSON(w, http.StatusOK, stripped)
}

func (h *GroupHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.store.GetGroup(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, group.WithoutMessages())
}

func (h *GroupHandler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var params models.CreateGroupParams
	if !decodeBody(w, r, &params) {
		return
	}
	if params.OwnerID == "" || params.Name == "" {
		badRequest(w, "Missing required fields")
		return
	}

	groupID, err := h.store.CreateGroup(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}

	h.notifier.NotifyAdmin(fmt.Sprintf(
		"🆕 <b>New Group Created</b>\n📌 %s\n🆔 %s\n👤 %s (%s)",
		params.Name, groupID, params.OwnerName, params.OwnerID))

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "groupId": groupID})
}

func (h *GroupHandler) JoinGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"telegramId"`
		Name     string `json:"name"`
		Username string `json:"username"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" {
		badRequest(w, "Missing Telegram ID")
		return
	}

	if err := h.store.JoinGroup(r.Context(), mux.Vars(r)["id"], req.UserID, req.Name, req.Username); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *GroupHandler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"telegramId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.store.LeaveGroup(r.Context(), mux.Vars(r)["id"], req.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *GroupHandler) EditGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"telegramId"`
		models.GroupPatch
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.store.EditGroup(r.Context(), mux.Vars(r)["id"], req.UserID, req.GroupPatch); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *GroupHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"telegramId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.store.DeleteGroup(r.Context(), mux.Vars(r)["id"], req.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
