// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the livepoll API.

# Handler Types

Each handler is a struct holding the pieces it reads from or writes to:

  - PollHandler: List, inspect and create polls
  - VotingHandler: Vote submission
  - LedgerHandler: Ledger listing, deletion, CSV export and S3 archiving
  - ResultsHandler: Dashboard, leaderboard, overlay and notifications

Handlers are created via constructor functions:

	pollHandler := handlers.NewPollHandler(proc, loop)

# Reads and Writes

Reads are served from the refresh loop's snapshot and never touch storage.
Writes go through the vote processor, after which the handler refreshes
the snapshot so the caller sees its own change immediately.

	POST /polls               → CreatePoll
	POST /polls/{id}/votes    → SubmitVote
	DELETE /transactions/{id} → DeleteTransaction

# Errors

Validation failures map to 400, unknown polls and transactions to 404, and
deletion while it is disabled to 403. Storage failures return 500 with a
generic message; the detail is logged.
*/
package handlers
