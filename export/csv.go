// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/danielhkuo/livepoll/models"
)

// Filename is the name offered for downloaded exports.
const Filename = "transactions_export.csv"

// ContentType is sent with downloads and archive uploads.
const ContentType = "text/csv;charset=utf-8"

// Header returns the column names, with or without the vote weight column.
func Header(includeWeight bool) []string {
	if includeWeight {
		return []string{"name", "supported_team", "donation_amount", "vote_weight", "poll_title", "timestamp"}
	}
	return []string{"name", "supported_team", "donation_amount", "poll_title", "timestamp"}
}

// WriteCSV writes one row per ledger entry in ledger order. Every field is
// wrapped in double quotes with embedded quotes doubled, and rows are
// separated by a single newline with none after the last row.
func WriteCSV(w io.Writer, txs []models.Transaction, includeWeight bool) error {
	bw := bufio.NewWriter(w)

	writeRow(bw, Header(includeWeight))
	for _, tx := range txs {
		bw.WriteByte('\n')
		writeRow(bw, Row(tx, includeWeight))
	}
	return bw.Flush()
}

// Row renders the fields of one ledger entry, unquoted.
func Row(tx models.Transaction, includeWeight bool) []string {
	ts := ""
	if !tx.Timestamp.IsZero() {
		ts = tx.Timestamp.UTC().Format(time.RFC3339)
	}

	row := []string{
		tx.VoterName,
		tx.SupportedTeam,
		strconv.FormatFloat(tx.DonationAmount, 'f', -1, 64),
	}
	if includeWeight {
		row = append(row, strconv.Itoa(tx.VoteWeight))
	}
	return append(row, tx.PollTitle, ts)
}

func writeRow(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.WriteByte('"')
	}
}
