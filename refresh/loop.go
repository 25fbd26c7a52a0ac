// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package refresh

import (
	"context"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/store"
)

// Snapshot is a view's private copy of the stored polls and ledger.
type Snapshot struct {
	Polls        []models.Poll
	Transactions []models.Transaction
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Polls:        make([]models.Poll, len(s.Polls)),
		Transactions: make([]models.Transaction, len(s.Transactions)),
	}
	for i, p := range s.Polls {
		out.Polls[i] = p.Clone()
	}
	copy(out.Transactions, s.Transactions)
	return out
}

// Loop keeps a Snapshot in step with the store by re-reading it on a timer.
type Loop struct {
	store    *store.Store
	interval time.Duration

	mu           sync.RWMutex
	snap         Snapshot
	pollsVersion int64
	txsVersion   int64
	listeners    []func(Snapshot)
}

func NewLoop(st *store.Store, interval time.Duration) *Loop {
	return &Loop{
		store:    st,
		interval: interval,
		snap: Snapshot{
			Polls:        []models.Poll{},
			Transactions: []models.Transaction{},
		},
	}
}

// OnChange registers fn to be called with a fresh copy of the snapshot each
// time a refresh changes it. Register before Run.
func (l *Loop) OnChange(fn func(Snapshot)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners = append(l.listeners, fn)
}

// Snapshot returns a copy the caller may modify freely.
func (l *Loop) Snapshot() Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap.Clone()
}

// Refresh re-reads both keys. A key that is missing, unreadable or not a
// JSON array leaves its copy as it was. A readable key is compared by
// version and then by content, since other writers may replace a value
// without bumping its version. Reports whether anything changed.
func (l *Loop) Refresh(ctx context.Context) bool {
	polls, pv, perr := l.store.Polls(ctx)
	txs, tv, terr := l.store.Transactions(ctx)

	l.mu.Lock()
	changed := false
	if perr != nil {
		slog.Debug("keeping previous polls", "error", perr)
	} else if pv != l.pollsVersion || !reflect.DeepEqual(polls, l.snap.Polls) {
		l.snap.Polls = polls
		l.pollsVersion = pv
		changed = true
	}
	if terr != nil {
		slog.Debug("keeping previous ledger", "error", terr)
	} else if tv != l.txsVersion || !reflect.DeepEqual(txs, l.snap.Transactions) {
		l.snap.Transactions = txs
		l.txsVersion = tv
		changed = true
	}

	var (
		listeners []func(Snapshot)
		snap      Snapshot
	)
	if changed {
		listeners = l.listeners
		snap = l.snap.Clone()
	}
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
	return changed
}

// Run refreshes once, then on every tick and every value received from
// trigger, until ctx is cancelled. trigger may be nil.
func (l *Loop) Run(ctx context.Context, trigger <-chan struct{}) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.Refresh(ctx)
		case _, ok := <-trigger:
			if !ok {
				trigger = nil
				continue
			}
			l.Refresh(ctx)
		}
	}
}

// Trigger turns bus events into refresh requests. The returned channel is
// buffered by one so a burst of events causes a single extra refresh.
func Trigger(ctx context.Context, events <-chan models.Event) <-chan struct{} {
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out
}
