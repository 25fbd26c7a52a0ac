// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package events

import (
	"context"
	"sync"
	"time"

	"github.com/danielhkuo/livepoll/models"
)

const (
	// FeedSize is the number of notifications kept visible at once.
	FeedSize = 5
	// FeedLifetime is how long a notification stays visible.
	FeedLifetime = 3 * time.Second
)

// Feed holds the most recent notifications, newest first. Entries older than
// FeedLifetime are dropped on read.
type Feed struct {
	mu    sync.Mutex
	items []models.Notification
	now   func() time.Time
}

func NewFeed() *Feed {
	return &Feed{now: time.Now}
}

// Add puts n at the front of the feed, keeping at most FeedSize entries.
func (f *Feed) Add(n models.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if n.Timestamp.IsZero() {
		n.Timestamp = f.now()
	}

	items := make([]models.Notification, 0, FeedSize)
	items = append(items, n)
	for _, it := range f.items {
		if len(items) == FeedSize {
			break
		}
		items = append(items, it)
	}
	f.items = items
}

// Active returns the notifications that have not expired yet.
func (f *Feed) Active() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	cutoff := f.now().Add(-FeedLifetime)
	kept := f.items[:0]
	for _, it := range f.items {
		if it.Timestamp.After(cutoff) {
			kept = append(kept, it)
		}
	}
	f.items = kept

	out := make([]models.Notification, len(kept))
	copy(out, kept)
	return out
}

// Follow adds the notification of every event on ch until ch is closed or
// ctx is cancelled.
func (f *Feed) Follow(ctx context.Context, ch <-chan models.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Notification.Message != "" {
				f.Add(ev.Notification)
			}
		}
	}
}
