// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package results derives everything the views display from a snapshot of
polls and the ledger. All functions are pure.

  - ForPoll: option percentages (one decimal, 0 when a poll has no votes),
    the leading option (first one with the highest count) and goal progress.
  - Summarize: dashboard totals. Total votes come from the polls, total
    donations and the submission count from the ledger.
  - Leaderboard: donors ranked by donation, then votes, then name.
  - Overlay: one poll plus its most recent donation.

Goal progress is capped at 100. A poll without a goal is measured against
1000.
*/
package results
