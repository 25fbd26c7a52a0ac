// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a validated Config:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Sources are applied in this order, later ones winning:

 1. Defaults()
 2. TOML file given by -c or LIVEPOLL_CONFIG
 3. .env file in the working directory (loaded into the environment)
 4. Environment variables
 5. CLI flags

# CLI Flags

	-p          Server port (default 3318)
	-d          Database URL (default livepoll.db for sqlite)
	-t          Database type: sqlite, postgres, redis
	-c          TOML config file
	-log-level  debug, info, warn, error

# Environment Variables

	PORT, DATABASE_URL, DATABASE_TYPE
	LIVEPOLL_WEIGHT_RULE, LIVEPOLL_MIN_DONATION, LIVEPOLL_ALLOW_DELETION
	LIVEPOLL_REFRESH_INTERVAL, LIVEPOLL_SIMULATION_ENABLED
	LIVEPOLL_REDIS_ADDR, LIVEPOLL_S3_BUCKET, ...

See applyEnvOverrides for the full list.

# Config File

	port = 3318
	currency = "Rs."

	[voting]
	weight_rule = "tiered"   # or "gated"
	min_donation = 0
	allow_deletion = true

	[refresh]
	interval = "2s"

	[simulation]
	enabled = false
	min_interval = "3s"
	max_interval = "8s"

	[redis]
	addr = "localhost:6379"

	[s3]
	bucket = "livepoll"
	endpoint = "http://localhost:9000"

	[export]
	include_weight = true
	archive_interval = "1h"

Unknown keys are rejected so typos do not silently fall back to defaults.
*/
package cliparse
