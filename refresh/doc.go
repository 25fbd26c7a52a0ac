// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package refresh keeps an in-memory copy of the stored polls and ledger.

Every read path of the service (poll lists, the dashboard, the overlay, CSV
export) works from a Loop's Snapshot rather than from the store directly.
The Loop re-reads the store every interval (2s by default) and whenever a
change event arrives:

	loop := refresh.NewLoop(st, cfg.Refresh.Interval.Duration)
	events, _ := bus.Subscribe(ctx)
	go loop.Run(ctx, refresh.Trigger(ctx, events))

A value that is missing or fails to decode as a JSON array is ignored and
the previous copy stays in place. Nothing is logged above debug level for
this path. Each key carries a version, so a refresh that finds nothing new
does not notify OnChange listeners.
*/
package refresh
