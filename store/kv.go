// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("key not found")
	ErrMalformed = errors.New("stored value is not a JSON array")
)

// Entry is a stored value and the number of times it has been written.
type Entry struct {
	Value   []byte
	Version int64
}

// KV is a key-value store with full-blob replace semantics. Put writes every
// given key in one atomic step. There is no compare-and-swap: concurrent
// writers race and the last write wins.
type KV interface {
	Get(ctx context.Context, key string) (Entry, error)
	Put(ctx context.Context, values map[string][]byte) error
	Close() error
}
