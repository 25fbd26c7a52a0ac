// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/danielhkuo/livepoll/events"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/refresh"
	"github.com/danielhkuo/livepoll/results"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

type ResultsHandler struct {
	loop *refresh.Loop
	feed *events.Feed
}

func NewResultsHandler(loop *refresh.Loop, feed *events.Feed) *ResultsHandler {
	return &ResultsHandler{loop: loop, feed: feed}
}

// GetDashboard handles GET /dashboard
func (h *ResultsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	snap := h.loop.Snapshot()
	middleware.JSONResponse(w, http.StatusOK, results.Summarize(snap.Polls, snap.Transactions, defaultLeaderboardLimit))
}

// GetLeaderboard handles GET /leaderboard?limit=N
func (h *ResultsHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxLeaderboardLimit {
			middleware.ErrorResponse(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	middleware.JSONResponse(w, http.StatusOK, results.Leaderboard(h.loop.Snapshot().Transactions, limit))
}

// GetOverlay handles GET /overlay/{id}
func (h *ResultsHandler) GetOverlay(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	snap := h.loop.Snapshot()

	for _, p := range snap.Polls {
		if p.ID == pollID {
			middleware.JSONResponse(w, http.StatusOK, results.Overlay(p, snap.Transactions))
			return
		}
	}

	middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
}

// GetNotifications handles GET /notifications
func (h *ResultsHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.feed.Active())
}
