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
)

const (
	attemptWindow    = 10 * time.Minute
	attemptKeyPrefix = "purchase:attempts:" // purchase:attempts:{userId} -> counter
)

// AttemptCounter counts settlement attempts per buyer over a sliding-ish
// window so passcode guessing gets cut off before the ledger sees it.
type AttemptCounter struct {
	rdb *redis.Client
}

func NewAttemptCounter(rdb *redis.Client) *AttemptCounter {
	return &AttemptCounter{rdb: rdb}
}

// IncrAttempts bumps the buyer's counter and returns the new value. The key
// expires attemptWindow after the first attempt.
func (c *AttemptCounter) IncrAttempts(ctx context.Context, userID string) (int64, error) {
	key := attemptKeyPrefix + userID
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("count purchase attempts: %w", err)
	}
	if n == 1 {
		c.rdb.Expire(ctx, key, attemptWindow)
	}
	return n, nil
}
