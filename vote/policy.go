// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"fmt"
	"math"

	"github.com/danielhkuo/livepoll/cliparse"
)

const (
	// TierSize is the donation that buys one extra vote under the tiered rule.
	TierSize = 10
	// GateSize is both the smallest accepted donation and the price of one
	// vote under the gated rule.
	GateSize = 100
)

// Policy decides how much a submission counts and which optional features
// are on.
type Policy struct {
	Rule          string
	MinDonation   float64
	AllowDeletion bool
}

func PolicyFromConfig(cfg cliparse.VotingConfig) Policy {
	return Policy{
		Rule:          cfg.WeightRule,
		MinDonation:   cfg.MinDonation,
		AllowDeletion: cfg.AllowDeletion,
	}
}

// Weight converts a donation into a number of votes.
//
// Tiered: a free vote counts 1, and every full TierSize donated adds one,
// so 9 gives 1 and 10 gives 2. Gated: donations below GateSize are refused
// and every full GateSize counts 1, so 100 gives 1 and 250 gives 2.
// Weights are always floored.
func (p Policy) Weight(donation float64) (int, error) {
	if math.IsNaN(donation) || math.IsInf(donation, 0) || donation < 0 {
		return 0, ErrInvalidDonation
	}
	if p.MinDonation > 0 && donation < p.MinDonation {
		return 0, fmt.Errorf("%w of %g", ErrDonationBelowMinimum, p.MinDonation)
	}

	switch p.Rule {
	case cliparse.RuleGated:
		if donation < GateSize {
			return 0, fmt.Errorf("%w of %d", ErrDonationBelowMinimum, GateSize)
		}
		return int(math.Floor(donation / GateSize)), nil
	default:
		if donation > 0 {
			return int(math.Floor(donation/TierSize)) + 1, nil
		}
		return 1, nil
	}
}
