// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the livepoll server.

livepoll runs live match polls where every vote can carry a donation.
Donations buy extra vote weight, feed a fundraising goal per poll, and rank
donors on a leaderboard. Stream overlays follow results over WebSockets.

# Starting the Server

With no configuration the server stores everything in livepoll.db and
seeds three sample polls:

	go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..."

# Configuration

See package cliparse. Common settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres or redis
  - LIVEPOLL_WEIGHT_RULE: tiered or gated
  - LIVEPOLL_SIMULATION_ENABLED: generate random votes for demos
  - LIVEPOLL_S3_BUCKET: enables ledger archiving

# Architecture

Background workers run in one errgroup and stop together on SIGINT/SIGTERM:

  - vote: the single writer of polls and the ledger
  - refresh: re-reads storage on a timer and on bus events
  - events: in-process or Redis pub/sub, plus the toast feed
  - ws: WebSocket hub pushing overlays to stream clients
  - simulate: optional random vote generator
  - export: CSV rendering and periodic S3 archiving
  - handlers, router, middleware: the HTTP API
  - store, db: key/value storage over SQL or Redis
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
