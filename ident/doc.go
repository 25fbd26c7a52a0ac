// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ident generates record identifiers and log-safe client fingerprints.

# Identifiers

Polls, ledger entries, and notifications get random UUIDs:

	id := ident.NewID()

Stored data may also contain the short numeric IDs of the seeded sample
polls ("1", "2", "3"); nothing depends on the identifier format.

# IP Hashing

Vote submissions are logged with a salted hash of the client address:

	hash := ident.HashIP(middleware.GetClientIP(r), cfg.LogSalt)

Returns the first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package ident
