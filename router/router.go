// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/events"
	"github.com/danielhkuo/livepoll/handlers"
	"github.com/danielhkuo/livepoll/middleware"
	"github.com/danielhkuo/livepoll/refresh"
	"github.com/danielhkuo/livepoll/vote"
	"github.com/danielhkuo/livepoll/ws"
)

// Deps holds what the handlers need. Archiver may be nil.
type Deps struct {
	Config    cliparse.Config
	Processor *vote.Processor
	Loop      *refresh.Loop
	Feed      *events.Feed
	Hub       *ws.Hub
	Archiver  handlers.Archiver
}

func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()
	withLogging := middleware.WithLogging(d.Config.LogSalt)

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(d.Processor, d.Loop)
	votingHandler := handlers.NewVotingHandler(d.Processor, d.Loop)
	ledgerHandler := handlers.NewLedgerHandler(d.Processor, d.Loop, d.Archiver, d.Config)
	resultsHandler := handlers.NewResultsHandler(d.Loop, d.Feed)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Polls
	mux.HandleFunc("GET /polls", withLogging(pollHandler.ListPolls))
	mux.HandleFunc("POST /polls", withLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls/{id}", withLogging(pollHandler.GetPoll))
	mux.HandleFunc("POST /polls/{id}/votes", withLogging(votingHandler.SubmitVote))

	// Ledger
	mux.HandleFunc("GET /transactions", withLogging(ledgerHandler.ListTransactions))
	mux.HandleFunc("GET /transactions/export", withLogging(ledgerHandler.ExportCSV))
	mux.HandleFunc("POST /transactions/archive", withLogging(ledgerHandler.Archive))
	mux.HandleFunc("DELETE /transactions/{id}", withLogging(ledgerHandler.DeleteTransaction))

	// Results
	mux.HandleFunc("GET /dashboard", withLogging(resultsHandler.GetDashboard))
	mux.HandleFunc("GET /leaderboard", withLogging(resultsHandler.GetLeaderboard))
	mux.HandleFunc("GET /overlay/{id}", withLogging(resultsHandler.GetOverlay))
	mux.HandleFunc("GET /notifications", resultsHandler.GetNotifications)

	// Live updates
	if d.Hub != nil {
		mux.HandleFunc("GET /ws", withLogging(d.Hub.HandleWS))
	}

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("livepoll API v1"))
	})

	return middleware.CORS(mux)
}
