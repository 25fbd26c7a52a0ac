// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/danielhkuo/livepoll/models"
)

// Keys of the two stored arrays.
const (
	KeyPolls        = "polls"
	KeyTransactions = "transactions"
)

// Store reads and writes the poll list and the transaction ledger.
// Each is one JSON array under its own key.
type Store struct {
	kv KV
}

func New(kv KV) *Store {
	return &Store{kv: kv}
}

// Polls returns the stored polls and the version they were read at.
// It returns ErrNotFound when nothing was stored yet and ErrMalformed when
// the stored value is not a JSON array of polls.
func (s *Store) Polls(ctx context.Context) ([]models.Poll, int64, error) {
	return load[models.Poll](ctx, s.kv, KeyPolls)
}

// Transactions returns the stored ledger, newest entry first.
func (s *Store) Transactions(ctx context.Context) ([]models.Transaction, int64, error) {
	return load[models.Transaction](ctx, s.kv, KeyTransactions)
}

// SavePolls replaces the stored poll list.
func (s *Store) SavePolls(ctx context.Context, polls []models.Poll) error {
	raw, err := encode(polls)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, map[string][]byte{KeyPolls: raw})
}

// Commit replaces the poll list and the ledger in a single write so no
// reader observes one without the other.
func (s *Store) Commit(ctx context.Context, polls []models.Poll, txs []models.Transaction) error {
	rawPolls, err := encode(polls)
	if err != nil {
		return err
	}
	rawTxs, err := encode(txs)
	if err != nil {
		return err
	}
	return s.kv.Put(ctx, map[string][]byte{
		KeyPolls:        rawPolls,
		KeyTransactions: rawTxs,
	})
}

func load[T any](ctx context.Context, kv KV, key string) ([]T, int64, error) {
	entry, err := kv.Get(ctx, key)
	if err != nil {
		return nil, 0, err
	}

	items, err := decodeArray[T](entry.Value)
	if err != nil {
		return nil, entry.Version, fmt.Errorf("%s: %w", key, err)
	}
	return items, entry.Version, nil
}

func decodeArray[T any](raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrMalformed
	}

	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// encode never produces "null"; an empty list is stored as "[]".
func encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode: %w", err)
	}
	return raw, nil
}
