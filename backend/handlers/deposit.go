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
	"fmt"
	"net/http"
	"strings"
)

// DepositHandler forwards deposit proofs to the admin over Telegram.
// No balance is touched here; the admin credits the ledger manually.
type DepositHandler struct {
	notifier Notifier
}

func NewDepositHandler(notifier Notifier) *DepositHandler {
	return &DepositHandler{notifier: notifier}
}

func (h *DepositHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"telegramId"`
		Name     string `json:"name"`
		Username string `json:"username"`
		Method   string `json:"method"`
		Amount   int64  `json:"amount"`
		WhatsApp string `json:"whatsapp"`
		Image    string `json:"image"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserID == "" || req.Image == "" {
		badRequest(w, "Missing required fields")
		return
	}

	raw := req.Image
	if idx := strings.Index(raw, "base64,"); idx >= 0 {
		raw = raw[idx+len("base64,"):]
	}
	photo, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(photo) == 0 {
		badRequest(w, "Invalid image data")
		return
	}

	whatsapp := req.WhatsApp
	if whatsapp == "" {
		whatsapp = "N/A"
	}
	amount := formatNgn(req.Amount)
	caption := fmt.Sprintf(
		"<b>💰 DEPOSIT REQUEST</b>\n"+
			"━━━━━━━━━━━━━━━━━━━━\n"+
			"👤 <b>Name:</b> %s\n"+
			"🔗 <b>Username:</b> %s\n"+
			"🆔 <b>ID:</b> <code>%s</code>\n"+
			"💳 <b>Method:</b> %s\n"+
			"💵 <b>Amount:</b> ₦%s\n"+
			"📱 <b>WhatsApp:</b> %s\n"+
			"━━━━━━━━━━━━━━━━━━━━\n"+
			"Credit ID <code>%s</code> ₦%s via balance server admin.",
		req.Name, req.Username, req.UserID, req.Method, amount, whatsapp, req.UserID, amount)

	h.notifier.NotifyAdminPhoto(photo, caption)
	h.notifier.SendText(req.UserID, fmt.Sprintf(
		"✅ Deposit request of ₦%s received!\nAdmin will review and credit your balance shortly.", amount))

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// formatNgn renders an amount with thousands separators, e.g. 5000 -> "5,000".
func formatNgn(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
