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

// Package github stores named blobs as files in a GitHub repository through
// the contents API. The file's blob sha is the version token: a write whose
// sha no longer matches the current file is rejected, which is the only
// concurrency control the document layer gets.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/intelgroups/groups/backend/storage"
)

const defaultBaseURL = "https://api.github.com"

type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	repo       string // "owner/name"
}

// NewClient returns a blob store backed by the given repository.
func NewClient(token, repo string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		token:      token,
		repo:       repo,
	}
}

// NewClientWithBaseURL is NewClient pointed at a different API host; tests
// use it to aim at a local server.
func NewClientWithBaseURL(token, repo, baseURL string) *Client {
	c := NewClient(token, repo)
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

func (c *Client) contentsURL(name string) string {
	return fmt.Sprintf("%s/repos/%s/contents/%s", c.baseURL, c.repo, name)
}

type contentsResponse struct {
	Content string `json:"content"`
	Sha     string `json:"sha"`
}

func (c *Client) ReadBlob(ctx context.Context, name string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.contentsURL(name), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "token "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: read %s: %v", storage.ErrStoreUnavailable, name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: read %s: status %d", storage.ErrStoreUnavailable, name, resp.StatusCode)
	}

	var file contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return nil, "", fmt.Errorf("%w: read %s: %v", storage.ErrStoreUnavailable, name, err)
	}

	// The API wraps base64 at 60 columns; strip the newlines first.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read %s: decode content: %v", storage.ErrStoreUnavailable, name, err)
	}
	return raw, file.Sha, nil
}

func (c *Client) WriteBlob(ctx context.Context, name string, content []byte, version, note string) error {
	payload, err := json.Marshal(map[string]string{
		"message": note,
		"sha":     version,
		"content": base64.StdEncoding.EncodeToString(content),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentsURL(name), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", storage.ErrStoreUnavailable, name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return nil
	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity:
		// Stale sha: someone else wrote the file since we read it.
		return fmt.Errorf("%w: write %s", storage.ErrVersionConflict, name)
	default:
		return fmt.Errorf("%w: write %s: status %d", storage.ErrStoreUnavailable, name, resp.StatusCode)
	}
}
