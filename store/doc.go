// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store holds the Poll Store and the Transaction Ledger.

# Layout

Two independent keys, each a complete JSON array:

	polls         [{"id":"1","title":"...","options":[...],"totalVotes":295,...}]
	transactions  [{"id":"...","voterName":"Alex","supportedTeam":"...",...}]

Every write replaces the whole array. Commit writes both keys atomically,
which the vote processor relies on so that totals and ledger never diverge.

# Backends

KV is the storage contract. Two implementations:

  - SQLKV: a kv_entry table on sqlite or postgres (see package db)
  - RedisKV: plain Redis string keys under the "livepoll:" prefix

# Concurrency

There is no optimistic locking. Two processes writing at the same time race
and the later write wins; the vote processor serialises writers within one
process only. Each entry carries a version counter that readers use to skip
decoding a value they have already seen.

# Errors

  - ErrNotFound: the key was never written
  - ErrMalformed: the value is not a JSON array of the expected records
*/
package store
