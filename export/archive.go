// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/store"
)

// BlobWriter stores an object under a key. s3blob.Writer implements it.
type BlobWriter interface {
	Put(ctx context.Context, key string, data io.Reader, contentType string) error
}

// LedgerSource returns the current ledger. store.Store implements it.
type LedgerSource interface {
	Transactions(ctx context.Context) ([]models.Transaction, int64, error)
}

// Archiver uploads the ledger as CSV to object storage.
type Archiver struct {
	writer        BlobWriter
	ledger        LedgerSource
	prefix        string
	includeWeight bool
	now           func() time.Time
}

func NewArchiver(writer BlobWriter, ledger LedgerSource, prefix string, includeWeight bool) *Archiver {
	return &Archiver{
		writer:        writer,
		ledger:        ledger,
		prefix:        prefix,
		includeWeight: includeWeight,
		now:           time.Now,
	}
}

// ArchivePath builds the object key for an export taken at t:
//
//	ledger/transactions_20250913T101500Z.csv
func ArchivePath(prefix string, t time.Time) string {
	return path.Join(prefix, fmt.Sprintf("transactions_%s.csv", t.UTC().Format("20060102T150405Z")))
}

// Archive uploads the full ledger and returns the object key and row count.
// An empty or missing ledger still produces a file with only the header.
func (a *Archiver) Archive(ctx context.Context) (string, int, error) {
	txs, _, err := a.ledger.Transactions(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", 0, fmt.Errorf("export: read ledger: %w", err)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, txs, a.includeWeight); err != nil {
		return "", 0, fmt.Errorf("export: encode csv: %w", err)
	}

	key := ArchivePath(a.prefix, a.now())
	if err := a.writer.Put(ctx, key, &buf, ContentType); err != nil {
		return "", 0, fmt.Errorf("export: upload: %w", err)
	}

	slog.Info("ledger archived", "path", key, "rows", len(txs))
	return key, len(txs), nil
}

// Run archives every interval until ctx is cancelled. Failed uploads are
// logged and retried on the next tick.
func (a *Archiver) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, _, err := a.Archive(ctx); err != nil {
				slog.Error("ledger archive failed", "error", err)
			}
		}
	}
}
