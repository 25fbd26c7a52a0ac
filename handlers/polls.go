// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/refresh"
	"github.com/danielhkuo/livepoll/results"
	"github.com/danielhkuo/livepoll/vote"
)

type PollHandler struct {
	proc *vote.Processor
	loop *refresh.Loop
}

func NewPollHandler(proc *vote.Processor, loop *refresh.Loop) *PollHandler {
	return &PollHandler{proc: proc, loop: loop}
}

// ListPolls handles GET /polls
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	snap := h.loop.Snapshot()

	out := make([]models.PollResults, 0, len(snap.Polls))
	for _, p := range snap.Polls {
		out = append(out, results.ForPoll(p))
	}

	middleware.JSONResponse(w, http.StatusOK, out)
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	for _, p := range h.loop.Snapshot().Polls {
		if p.ID == pollID {
			middleware.JSONResponse(w, http.StatusOK, results.ForPoll(p))
			return
		}
	}

	middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, err := h.proc.CreatePoll(r.Context(), req)
	if err != nil {
		writeProcessorError(w, err, "Failed to create poll")
		return
	}

	h.loop.Refresh(r.Context())
	middleware.JSONResponse(w, http.StatusCreated, poll)
}
