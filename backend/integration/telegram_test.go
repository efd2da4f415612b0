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

import "testing"

func TestSanitizeForBot(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello world", "hello world"},
		{"link", "visit https://example.com/page now", "visit [link] now"},
		{"uppercase scheme", "HTTP://EXAMPLE.COM", "[link]"},
		{"international phone", "call +234 803 555 1234", "call [phone]"},
		{"local phone", "reach me on 08035551234", "reach me on [phone]"},
		{"nine digit run", "a 123456789 b", "a [phone] b"},
		{"short number kept", "room 42 at 12345", "room 42 at 12345"},
		{"mixed", "https://t.me/x or 08035551234", "[link] or [phone]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeForBot(tt.in); got != tt.want {
				t.Errorf("SanitizeForBot(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDisabledNotifierIsNoOp(t *testing.T) {
	n, err := NewNotifier("", "12345")
	if err != nil {
		t.Fatalf("NewNotifier() error = %v", err)
	}
	// With no bot API configured every send is a silent no-op.
	n.SendText("100", "hi")
	n.SendPhoto("100", []byte{1}, "caption")
	n.NotifyAdmin("hi")
	n.NotifyAdminPhoto([]byte{1}, "caption")
}

func TestChatID(t *testing.T) {
	n := &Notifier{adminID: "1"}
	if _, ok := n.chatID("100"); ok {
		t.Error("nil api should drop every send")
	}
}
