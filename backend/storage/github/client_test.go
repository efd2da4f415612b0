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

package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/intelgroups/groups/backend/storage"
)

// fakeContentsAPI is a single-file slice of the GitHub contents API with
// sha-checked writes.
type fakeContentsAPI struct {
	content []byte
	sha     string
}

func (f *fakeContentsAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "token test-token" {
			t.Errorf("Authorization = %q, want token test-token", got)
		}
		if r.URL.Path != "/repos/owner/data/contents/groups.js" {
			http.NotFound(w, r)
			return
		}

		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]string{
				"content": base64.StdEncoding.EncodeToString(f.content),
				"sha":     f.sha,
			})
		case http.MethodPut:
			var body struct {
				Message string `json:"message"`
				Sha     string `json:"sha"`
				Content string `json:"content"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if body.Sha != f.sha {
				w.WriteHeader(http.StatusConflict)
				return
			}
			raw, err := base64.StdEncoding.DecodeString(body.Content)
			if err != nil {
				w.WriteHeader(http.StatusUnprocessableEntity)
				return
			}
			f.content = raw
			f.sha = body.Sha + "x"
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func TestReadBlob(t *testing.T) {
	doc := []byte(`window.GROUPS_DATA = {}`)
	// Serve the content split across wrapped base64 lines, the way the
	// live API does.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "token test-token" {
			t.Errorf("Authorization = %q, want token test-token", got)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"content": base64.StdEncoding.EncodeToString(doc[:12]) + "\n" + base64.StdEncoding.EncodeToString(doc[12:]),
			"sha":     "abc123",
		})
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test-token", "owner/data", srv.URL)
	content, version, err := c.ReadBlob(context.Background(), "groups.js")
	if err != nil {
		t.Fatalf("ReadBlob() error = %v", err)
	}
	if version != "abc123" {
		t.Errorf("version = %q, want abc123", version)
	}
	if string(content) != string(doc) {
		t.Errorf("content = %q, want %q", content, doc)
	}
}

func TestWriteBlobRoundTrip(t *testing.T) {
	api := &fakeContentsAPI{content: []byte("{}"), sha: "v1"}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	c := NewClientWithBaseURL("test-token", "owner/data", srv.URL)
	err := c.WriteBlob(context.Background(), "groups.js", []byte(`window.GROUPS_DATA = {}`), "v1", "update")
	if err != nil {
		t.Fatalf("WriteBlob() error = %v", err)
	}
	if string(api.content) != `window.GROUPS_DATA = {}` {
		t.Errorf("stored content = %q", api.content)
	}
}

func TestWriteBlobStaleVersion(t *testing.T) {
	api := &fakeContentsAPI{content: []byte("{}"), sha: "v2"}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	c := NewClientWithBaseURL("test-token", "owner/data", srv.URL)
	err := c.WriteBlob(context.Background(), "groups.js", []byte("x"), "v1", "update")
	if !errors.Is(err, storage.ErrVersionConflict) {
		t.Fatalf("WriteBlob() error = %v, want ErrVersionConflict", err)
	}
}

func TestReadBlobUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("test-token", "owner/data", srv.URL)
	_, _, err := c.ReadBlob(context.Background(), "groups.js")
	if !errors.Is(err, storage.ErrStoreUnavailable) {
		t.Fatalf("ReadBlob() error = %v, want ErrStoreUnavailable", err)
	}
}
