// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"
)

// SQLKV stores blobs in the kv_entry table created by db.CreateSchema.
type SQLKV struct {
	db *sql.DB
}

func NewSQLKV(db *sql.DB) *SQLKV {
	return &SQLKV{db: db}
}

func (s *SQLKV) Get(ctx context.Context, key string) (Entry, error) {
	var value string
	var entry Entry
	err := s.db.QueryRowContext(ctx, `
		SELECT value, version FROM kv_entry WHERE name = $1
	`, key).Scan(&value, &entry.Version)

	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("failed to read %s: %w", key, err)
	}

	entry.Value = []byte(value)
	return entry, nil
}

func (s *SQLKV) Put(ctx context.Context, values map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Fixed key order keeps lock acquisition consistent on postgres
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := time.Now().UTC()
	for _, key := range keys {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO kv_entry (name, value, version, updated_at)
			VALUES ($1, $2, 1, $3)
			ON CONFLICT (name) DO UPDATE
			SET value = excluded.value,
			    version = kv_entry.version + 1,
			    updated_at = excluded.updated_at
		`, key, string(values[key]), now)

		if err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Close is a no-op; the *sql.DB is owned by the caller.
func (s *SQLKV) Close() error {
	return nil
}

var _ KV = (*SQLKV)(nil)
