// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ident

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID returns a random identifier for a poll, ledger entry, or notification.
func NewID() string {
	return uuid.NewString()
}

// HashIP creates a one-way hash of an IP address so request logs
// can correlate submissions without storing the address itself.
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// First 8 bytes are enough to correlate log lines
	return hex.EncodeToString(sum[:8])
}
