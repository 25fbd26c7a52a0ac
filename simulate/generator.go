// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package simulate

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/refresh"
	"github.com/danielhkuo/livepoll/vote"
)

const (
	// DonationChance is the share of simulated votes that carry a donation.
	DonationChance = 0.3
	// Donations are whole amounts in [MinDonation, MinDonation+DonationSpread).
	MinDonation    = 5
	DonationSpread = 50
	// GatedScale lifts the donation range to start at vote.GateSize.
	GatedScale = vote.GateSize / MinDonation
)

// Names are the display names given to simulated voters.
var Names = []string{"Alex", "Sarah", "Mike", "Lisa", "John", "Emma", "David", "Jessica"}

// ErrNoPolls is returned by Step when there is nothing to vote on.
var ErrNoPolls = errors.New("no polls with options to vote on")

// Submitter records a ballot. vote.Processor implements it.
type Submitter interface {
	Submit(ctx context.Context, b vote.Ballot) (vote.Receipt, error)
}

// SnapshotSource provides the polls to pick from. refresh.Loop implements it.
type SnapshotSource interface {
	Snapshot() refresh.Snapshot
}

// Generator casts random demo votes through the normal vote path.
type Generator struct {
	sub         Submitter
	src         SnapshotSource
	policy      vote.Policy
	minInterval time.Duration
	maxInterval time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a generator drawing from a PCG source seeded with seed.
// Donations are fitted to policy so that every ballot it produces is
// accepted.
func NewGenerator(sub Submitter, src SnapshotSource, policy vote.Policy, minInterval, maxInterval time.Duration, seed uint64) *Generator {
	return &Generator{
		sub:         sub,
		src:         src,
		policy:      policy,
		minInterval: minInterval,
		maxInterval: maxInterval,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Step submits one random ballot: a uniformly chosen poll and option, a
// random name, and a donation for roughly three in ten votes. Under the
// gated rule every ballot donates, scaled by GatedScale. Donations never
// fall below the policy minimum.
func (g *Generator) Step(ctx context.Context) (vote.Receipt, error) {
	snap := g.src.Snapshot()

	candidates := snap.Polls[:0]
	for _, p := range snap.Polls {
		if len(p.Options) > 0 {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return vote.Receipt{}, ErrNoPolls
	}

	g.mu.Lock()
	poll := candidates[g.rng.IntN(len(candidates))]
	option := g.rng.IntN(len(poll.Options))
	name := Names[g.rng.IntN(len(Names))]
	gated := g.policy.Rule == cliparse.RuleGated
	donation := 0.0
	if gated || g.rng.Float64() < DonationChance {
		donation = float64(g.rng.IntN(DonationSpread) + MinDonation)
		if gated {
			donation *= GatedScale
		}
	}
	g.mu.Unlock()

	donation = max(donation, math.Ceil(g.policy.MinDonation))

	return g.sub.Submit(ctx, vote.Ballot{
		PollID:      poll.ID,
		OptionIndex: &option,
		VoterName:   name,
		Donation:    donation,
		Simulated:   true,
	})
}

// Run calls Step after every random pause in [min, max) until ctx is
// cancelled. Rejected ballots are logged and skipped.
func (g *Generator) Run(ctx context.Context) error {
	slog.Info("vote simulation started", "min_interval", g.minInterval, "max_interval", g.maxInterval)

	timer := time.NewTimer(g.nextDelay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			rcpt, err := g.Step(ctx)
			switch {
			case err == nil:
				slog.Debug("simulated vote", "poll_id", rcpt.Poll.ID, "weight", rcpt.Transaction.VoteWeight)
			case vote.IsValidation(err), errors.Is(err, ErrNoPolls), errors.Is(err, vote.ErrPollNotFound):
				slog.Debug("simulated vote skipped", "error", err)
			default:
				slog.Warn("simulated vote failed", "error", err)
			}
			timer.Reset(g.nextDelay())
		}
	}
}

func (g *Generator) nextDelay() time.Duration {
	spread := g.maxInterval - g.minInterval
	if spread <= 0 {
		return g.minInterval
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.minInterval + time.Duration(g.rng.Int64N(int64(spread)))
}
