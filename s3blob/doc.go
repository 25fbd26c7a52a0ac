// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package s3blob writes ledger archives to S3 or an S3-compatible store
// (MinIO, R2) using the AWS SDK v2.
package s3blob
