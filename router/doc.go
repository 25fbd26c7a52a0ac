// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the livepoll API.

# Route Registration

NewRouter wires every handler into an http.ServeMux and wraps it in CORS:

	mux := router.NewRouter(router.Deps{Config: cfg, Processor: proc, ...})

# Endpoints

Health:

	GET /health

Polls:

	GET  /polls            - All polls with percentages
	POST /polls            - Create poll
	GET  /polls/{id}       - One poll with percentages
	POST /polls/{id}/votes - Vote, optionally with a donation

Ledger:

	GET    /transactions         - Newest first, ?poll= to filter
	GET    /transactions/export  - CSV download
	POST   /transactions/archive - Upload CSV to S3
	DELETE /transactions/{id}    - Remove a vote and reverse its totals

Results:

	GET /dashboard     - Totals, polls and top donors
	GET /leaderboard   - Donors ranked, ?limit=N
	GET /overlay/{id}  - Compact poll view for stream overlays
	GET /notifications - Toasts from the last few seconds

Live updates:

	GET /ws?poll={id} - WebSocket stream of overlays and events

Every route except /health, /notifications and / is wrapped in
middleware.WithLogging. Notifications are polled often enough that
logging them would drown everything else.
*/
package router
