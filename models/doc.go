// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreatePollRequest: title, options, goal, match_date, venue
  - SubmitVoteRequest: option_index, voter_name, donation_amount

donation_amount is an Amount, which accepts either a number or a numeric
string. Unparseable values decode to 0 instead of failing the request:

	{"option_index": 0, "voter_name": "Alex", "donation_amount": "25"}

# Response Types

  - SubmitVoteResponse: poll, transaction, message
  - DeleteTransactionResponse: transaction, message
  - ArchiveResponse: path, rows
  - ErrorResponse: error, message

# Domain Types

Poll and Transaction are the records held in the two stored arrays. Their
JSON field names are camelCase so existing stored data keeps decoding:

	[{"id":"1","title":"...","options":[{"text":"A","votes":3}],
	  "totalVotes":3,"totalDonations":20,"isActive":true,"goal":1000}]

Invariants maintained by the vote package:

  - Poll.TotalVotes equals the sum of Options[i].Votes
  - Poll.TotalDonations equals the sum of donations recorded against the poll

# Result Types

Derived views computed by the results package:

  - PollResults: per-option percentages, leading option, goal progress
  - Dashboard: totals across polls and the ledger, donor leaderboard
  - Overlay: compact payload for the stream overlay
*/
package models
