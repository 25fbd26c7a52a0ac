// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/store"
)

func sampleLedger() []models.Transaction {
	ts := time.Date(2025, 9, 13, 10, 15, 0, 0, time.UTC)
	return []models.Transaction{
		{ID: "2", VoterName: `Mike "The Bat"`, SupportedTeam: "Lions", DonationAmount: 12.5, VoteWeight: 2, PollTitle: `Who wins "the big one"?`, Timestamp: ts},
		{ID: "1", VoterName: "Sarah", SupportedTeam: "Knights, of course", DonationAmount: 0, VoteWeight: 1, PollTitle: "Who wins?", Timestamp: ts},
	}
}

func TestWriteCSV_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleLedger(), false); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := `"name","supported_team","donation_amount","poll_title","timestamp"` + "\n" +
		`"Mike ""The Bat""","Lions","12.5","Who wins ""the big one""?","2025-09-13T10:15:00Z"` + "\n" +
		`"Sarah","Knights, of course","0","Who wins?","2025-09-13T10:15:00Z"`

	if buf.String() != want {
		t.Errorf("unexpected csv:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	ledger := sampleLedger()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, ledger, true); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(records) != len(ledger)+1 {
		t.Fatalf("expected %d records, got %d", len(ledger)+1, len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(Header(true), ",") {
		t.Errorf("unexpected header %v", records[0])
	}
	for i, tx := range ledger {
		row := records[i+1]
		if row[0] != tx.VoterName || row[1] != tx.SupportedTeam || row[4] != tx.PollTitle {
			t.Errorf("row %d does not match entry %s: %v", i, tx.ID, row)
		}
	}
	if records[1][3] != "2" {
		t.Errorf("expected vote weight 2, got %q", records[1][3])
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil, true); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if strings.Contains(buf.String(), "\n") {
		t.Errorf("expected header only, got %q", buf.String())
	}
}

type memWriter struct {
	key         string
	body        string
	contentType string
	err         error
}

func (m *memWriter) Put(_ context.Context, key string, data io.Reader, contentType string) error {
	if m.err != nil {
		return m.err
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.key, m.body, m.contentType = key, string(b), contentType
	return nil
}

type staticLedger struct {
	txs []models.Transaction
	err error
}

func (s staticLedger) Transactions(context.Context) ([]models.Transaction, int64, error) {
	return s.txs, 1, s.err
}

func TestArchiver_Archive(t *testing.T) {
	w := &memWriter{}
	a := NewArchiver(w, staticLedger{txs: sampleLedger()}, "ledger/", true)
	a.now = func() time.Time { return time.Date(2025, 9, 13, 10, 15, 0, 0, time.FixedZone("IST", 19800)) }

	key, rows, err := a.Archive(context.Background())
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	if key != "ledger/transactions_20250913T044500Z.csv" {
		t.Errorf("unexpected key %q", key)
	}
	if rows != 2 || w.key != key {
		t.Errorf("rows=%d uploaded=%q", rows, w.key)
	}
	if w.contentType != ContentType {
		t.Errorf("unexpected content type %q", w.contentType)
	}
	if !strings.HasPrefix(w.body, `"name","supported_team","donation_amount","vote_weight"`) {
		t.Errorf("unexpected body %q", w.body)
	}
}

func TestArchiver_Errors(t *testing.T) {
	t.Run("missing ledger uploads header", func(t *testing.T) {
		w := &memWriter{}
		a := NewArchiver(w, staticLedger{err: store.ErrNotFound}, "ledger", false)
		if _, rows, err := a.Archive(context.Background()); err != nil || rows != 0 {
			t.Errorf("rows=%d err=%v", rows, err)
		}
		if w.body == "" {
			t.Error("nothing uploaded")
		}
	})

	t.Run("malformed ledger", func(t *testing.T) {
		a := NewArchiver(&memWriter{}, staticLedger{err: store.ErrMalformed}, "ledger", false)
		if _, _, err := a.Archive(context.Background()); !errors.Is(err, store.ErrMalformed) {
			t.Errorf("expected ErrMalformed, got %v", err)
		}
	})

	t.Run("upload failure", func(t *testing.T) {
		a := NewArchiver(&memWriter{err: errors.New("503")}, staticLedger{}, "ledger", false)
		if _, _, err := a.Archive(context.Background()); err == nil {
			t.Error("expected upload error")
		}
	})
}
