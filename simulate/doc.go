// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package simulate generates demo votes.

It is off unless simulation.enabled is set. When running it waits a random
3 to 8 seconds (configurable), picks a poll and an option at random, and
submits a ballot under one of a fixed set of names. About 30% of ballots
carry a donation between 5 and 54.

Ballots go through vote.Processor like any other, so they use the configured
weight rule and land in the ledger. Under the gated rule most simulated
ballots are refused; those are logged at debug level and skipped.
*/
package simulate
