// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the SQL database and creates its schema.

# Opening

Open picks the driver from the configured database type, pings, and runs
CreateSchema:

	conn, err := db.Open("sqlite", "livepoll.db")
	conn, err := db.Open("postgres", "postgres://...")

sqlite uses the pure Go modernc.org/sqlite driver, postgres uses lib/pq.

# Schema Creation

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS.

# Tables

  - kv_entry: one row per stored blob (name, value, version, updated_at)

The application keeps two rows, "polls" and "transactions", each holding a
whole JSON array. Writes replace the full value and bump version.
*/
package db
