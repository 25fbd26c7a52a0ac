// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package export renders the transaction ledger as CSV and archives it.

# Format

	"name","supported_team","donation_amount","vote_weight","poll_title","timestamp"
	"Sarah","Vidyartha College 🦁","25","3","Who wins?","2025-09-13T10:15:00Z"

Every field is quoted and quotes inside a field are doubled. Donation
amounts use the shortest decimal form. The vote_weight column can be turned
off with export.include_weight = false for a five column file.

# Archiving

Archiver uploads the ledger to object storage under
<prefix>/transactions_<UTC time>.csv, on demand or on an interval.
*/
package export
