// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package vote turns submissions into stored vote counts.

# Weight Rules

The Policy picks one rule for every submission, including simulated ones:

	Rule      Donation   Weight
	tiered    0          1
	tiered    9          1
	tiered    10         2
	tiered    25         3
	gated     99         rejected
	gated     100        1
	gated     250        2

Weights are floored. An optional MinDonation rejects anything below it under
either rule.

# Processor

Processor owns every write to the stored polls and ledger:

  - Submit adds the weight to the chosen option and the poll total, adds the
    donation to the poll, and puts a new transaction at the head of the
    ledger.
  - CreatePoll puts a new poll at the head of the list.
  - DeleteTransaction takes an entry's weight and donation back off its poll,
    clamping at zero, and removes the entry.
  - Seed writes the sample polls when none are stored.

Each operation holds the processor mutex for its whole read-modify-write
cycle and writes both keys in one commit. If validation or the commit fails
the store is untouched and an "error" notification is published. Other
processes writing the same store are not coordinated with; the last write
wins.
*/
package vote
