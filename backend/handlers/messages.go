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
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/intelgroups/groups/backend/integration"
	"github.com/intelgroups/groups/backend/models"
	"github.com/intelgroups/groups/backend/storage"
)

type MessageHandler struct {
	store    storage.GroupStore
	audio    storage.AudioCache
	notifier Notifier

	// groupLink is the deep link appended to member notifications so the
	// recipient can jump back into the web app. Optional.
	groupLink string
}

func NewMessageHandler(store storage.GroupStore, audio storage.AudioCache, notifier Notifier, groupLink string) *MessageHandler {
	return &MessageHandler{store: store, audio: audio, notifier: notifier, groupLink: groupLink}
}

func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	msgs, err := h.store.ListMessages(r.Context(), mux.Vars(r)["id"], limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *MessageHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SenderID   string `json:"telegramId"`
		SenderName string `json:"senderName"`
		Type       string `json:"type"`
		Text       string `json:"text"`
		AudioData  string `json:"audioData"`
		Duration   string `json:"duration"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.SenderID == "" {
		badRequest(w, "Missing Telegram ID")
		return
	}

	msg := models.Message{
		ID:         uuid.NewString(),
		SenderID:   req.SenderID,
		SenderName: req.SenderName,
		Timestamp:  time.Now().UnixMilli(),
	}

	if req.Type == models.MessageTypeVoice {
		payload, err := base64.StdEncoding.DecodeString(req.AudioData)
		if err != nil || len(payload) == 0 {
			badRequest(w, "Invalid audio data")
			return
		}
		if err := h.audio.PutAudio(r.Context(), msg.ID, payload); err != nil {
			writeError(w, err)
			return
		}
		msg.Type = models.MessageTypeVoice
		msg.Duration = req.Duration
		if msg.Duration == "" {
			msg.Duration = "0:00"
		}
		msg.AudioURL = "/api/audio/" + msg.ID
	} else {
		if strings.TrimSpace(req.Text) == "" {
			badRequest(w, "Empty message")
			return
		}
		msg.Type = models.MessageTypeText
		msg.Text = req.Text
	}

	group, err := h.store.AppendMessage(r.Context(), mux.Vars(r)["id"], msg)
	if err != nil {
		writeError(w, err)
		return
	}

	// Delivery is best-effort and must not hold up the response.
	go h.fanout(group, msg)

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "msgId": msg.ID})
}

// fanout notifies every member except the sender. User-written text is
// redacted before it reaches the messaging channel.
func (h *MessageHandler) fanout(group *models.Group, msg models.Message) {
	safe := "🎤 Sent a voice note"
	if msg.Type == models.MessageTypeText {
		safe = integration.SanitizeForBot(models.Truncate(msg.Text, 200))
	}

	notif := fmt.Sprintf("💬 <b>%s</b> in <b>%s</b>:\n%s", msg.SenderName, group.Name, safe)
	if h.groupLink != "" {
		notif += fmt.Sprintf("\n\n<a href=\"%s\">👉 View in group</a>", h.groupLink)
	}

	for memberID := range group.Members {
		if memberID == msg.SenderID {
			continue
		}
		h.notifier.SendText(memberID, notif)
	}
}

// GetAudio streams a cached voice payload. Entries expire, so a 404 here
// just means the note aged out; a cache outage is not a 404.
func (h *MessageHandler) GetAudio(w http.ResponseWriter, r *http.Request) {
	data, err := h.audio.GetAudio(r.Context(), mux.Vars(r)["msgId"])
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Audio not found", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "audio/webm")
	w.Write(data)
}

func (h *MessageHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"telegramId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	vars := mux.Vars(r)
	if err := h.store.DeleteMessage(r.Context(), vars["id"], vars["msgId"], req.UserID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
