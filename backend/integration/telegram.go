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

package integration

import (
	"log/slog"
	"regexp"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	linkPattern  = regexp.MustCompile(`(?i)https?://\S+`)
	phonePattern = regexp.MustCompile(`(\+\d{1,4}[\s-]?)?\(?\d{3,5}\)?[\s-]?\d{3,5}[\s-]?\d{3,6}`)
	digitPattern = regexp.MustCompile(`\b\d{9,}\b`)
)

// SanitizeForBot redacts links, phone-shaped digit runs and long numbers
// from text before it is relayed to a Telegram channel. Message content
// comes from end users; the admin channel and member notifications must not
// become a contact-smuggling side channel.
func SanitizeForBot(text string) string {
	text = linkPattern.ReplaceAllString(text, "[link]")
	text = phonePattern.ReplaceAllString(text, "[phone]")
	text = digitPattern.ReplaceAllString(text, "[number]")
	return text
}

// Notifier delivers best-effort Telegram notifications. Every send failure
// is logged and absorbed; callers never see an error. With no bot token the
// notifier is a no-op, which keeps local development working.
type Notifier struct {
	api     *tgbotapi.BotAPI
	adminID string
}

func NewNotifier(token, adminID string) (*Notifier, error) {
	n := &Notifier{adminID: adminID}
	if token == "" {
		slog.Warn("bot token not set, telegram notifications disabled")
		return n, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	slog.Info("telegram notifier ready", "bot", api.Self.UserName)
	n.api = api
	return n, nil
}

// SendText delivers an HTML-formatted message to the user's chat.
func (n *Notifier) SendText(userID, text string) {
	chatID, ok := n.chatID(userID)
	if !ok {
		return
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := n.api.Send(msg); err != nil {
		slog.Error("telegram send failed", "chat_id", chatID, "error", err)
	}
}

// SendPhoto delivers an image with an HTML caption.
func (n *Notifier) SendPhoto(userID string, photo []byte, caption string) {
	chatID, ok := n.chatID(userID)
	if !ok {
		return
	}
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "photo.jpg", Bytes: photo})
	msg.Caption = caption
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.api.Send(msg); err != nil {
		slog.Error("telegram photo send failed", "chat_id", chatID, "error", err)
	}
}

// NotifyAdmin sends to the configured administrator channel.
func (n *Notifier) NotifyAdmin(text string) {
	n.SendText(n.adminID, text)
}

func (n *Notifier) NotifyAdminPhoto(photo []byte, caption string) {
	n.SendPhoto(n.adminID, photo, caption)
}

func (n *Notifier) chatID(userID string) (int64, bool) {
	if n.api == nil || userID == "" {
		return 0, false
	}
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		slog.Warn("notification dropped: bad chat id", "user_id", userID)
		return 0, false
	}
	return chatID, true
}
