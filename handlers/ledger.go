// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/export"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/refresh"
	"github.com/danielhkuo/livepoll/results"
	"github.com/danielhkuo/livepoll/vote"
)

// Archiver uploads the ledger. export.Archiver implements it.
type Archiver interface {
	Archive(ctx context.Context) (string, int, error)
}

type LedgerHandler struct {
	proc     *vote.Processor
	loop     *refresh.Loop
	archiver Archiver // nil when S3 is not configured
	cfg      cliparse.Config
}

func NewLedgerHandler(proc *vote.Processor, loop *refresh.Loop, archiver Archiver, cfg cliparse.Config) *LedgerHandler {
	return &LedgerHandler{proc: proc, loop: loop, archiver: archiver, cfg: cfg}
}

// ListTransactions handles GET /transactions
// Optional ?poll= limits the list to one poll; unknown polls give an empty list.
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	snap := h.loop.Snapshot()
	txs := snap.Transactions

	if pollID := r.URL.Query().Get("poll"); pollID != "" {
		filtered := make([]models.Transaction, 0)
		for _, p := range snap.Polls {
			if p.ID == pollID {
				filtered = results.ForTransactions(p, txs)
				break
			}
		}
		txs = filtered
	}

	middleware.JSONResponse(w, http.StatusOK, txs)
}

// DeleteTransaction handles DELETE /transactions/{id}
func (h *LedgerHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.proc.DeleteTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeProcessorError(w, err, "Failed to delete transaction")
		return
	}

	h.loop.Refresh(r.Context())

	middleware.JSONResponse(w, http.StatusOK, models.DeleteTransactionResponse{
		Transaction: tx,
		Message:     "Transaction deleted",
	})
}

// ExportCSV handles GET /transactions/export
func (h *LedgerHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, h.loop.Snapshot().Transactions, h.cfg.Export.IncludeWeight); err != nil {
		slog.Error("failed to render csv export", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to export transactions")
		return
	}

	middleware.AttachmentResponse(w, export.Filename, export.ContentType, buf.Bytes())
}

// Archive handles POST /transactions/archive
func (h *LedgerHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if h.archiver == nil {
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Archiving is not configured")
		return
	}

	path, rows, err := h.archiver.Archive(r.Context())
	if err != nil {
		slog.Error("failed to archive ledger", "error", err)
		middleware.ErrorResponse(w, http.StatusBadGateway, "Failed to archive transactions")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.ArchiveResponse{Path: path, Rows: rows})
}
