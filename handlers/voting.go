// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/refresh"
	"github.com/danielhkuo/livepoll/vote"
)

type VotingHandler struct {
	proc *vote.Processor
	loop *refresh.Loop
}

func NewVotingHandler(proc *vote.Processor, loop *refresh.Loop) *VotingHandler {
	return &VotingHandler{proc: proc, loop: loop}
}

// SubmitVote handles POST /polls/{id}/votes
func (h *VotingHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")

	var req models.SubmitVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	rcpt, err := h.proc.Submit(r.Context(), vote.Ballot{
		PollID:      pollID,
		OptionIndex: req.OptionIndex,
		VoterName:   req.VoterName,
		Donation:    float64(req.DonationAmount),
	})
	if err != nil {
		writeProcessorError(w, err, "Failed to record vote")
		return
	}

	h.loop.Refresh(r.Context())

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitVoteResponse{
		Poll:        rcpt.Poll,
		Transaction: rcpt.Transaction,
		Message:     rcpt.Message,
	})
}
