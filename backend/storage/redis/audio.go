// Copyright (C) 2025 intelgroups
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/intelgroups/groups/backend/storage"
)

const (
	// AudioTTL bounds how long a voice-note payload stays fetchable. The
	// document only ever holds the reference; once the payload expires the
	// audio endpoint returns not-found, which clients already handle.
	AudioTTL = 1 * time.Hour

	audioKeyPrefix = "audio:" // audio:{messageId} -> raw payload
)

// AudioCache keeps voice payloads out of the group document. It is a
// bounded, time-evicted cache, not a store of record.
type AudioCache struct {
	rdb *redis.Client
}

func NewAudioCache(rdb *redis.Client) *AudioCache {
	return &AudioCache{rdb: rdb}
}

func (c *AudioCache) PutAudio(ctx context.Context, messageID string, data []byte) error {
	if err := c.rdb.Set(ctx, audioKeyPrefix+messageID, data, AudioTTL).Err(); err != nil {
		return fmt.Errorf("%w: cache audio %s: %v", storage.ErrStoreUnavailable, messageID, err)
	}
	return nil
}

func (c *AudioCache) GetAudio(ctx context.Context, messageID string) ([]byte, error) {
	data, err := c.rdb.Get(ctx, audioKeyPrefix+messageID).Bytes()
	if err == redis.Nil {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: fetch audio %s: %v", storage.ErrStoreUnavailable, messageID, err)
	}
	return data, nil
}
