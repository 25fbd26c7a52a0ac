// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package events carries change events and the short-lived notifications shown
to users.

# Bus

Every successful change to the stored polls or ledger publishes an Event. A
rejected submission publishes one too, with an error notification:

	bus.Publish(ctx, models.Event{
		Type:   models.EventVote,
		PollID: poll.ID,
		Notification: models.Notification{
			Message: "Alex voted successfully!",
			Type:    models.NotifySuccess,
		},
	})

Two implementations exist:

  - MemoryBus fans out within one process. Publish never blocks; a
    subscriber whose buffer is full misses the event.
  - RedisBus publishes JSON on the Redis channel "livepoll:events" so every
    instance sharing the store hears about changes made by the others.

Subscribers receive a channel that is closed when their context ends.

# Feed

Feed keeps the five newest notifications. Each stays visible for three
seconds, after which Active no longer returns it. Follow drains a bus
subscription into the feed.
*/
package events
