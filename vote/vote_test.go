// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/db"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/store"
)

// flakyKV fails writes while failPut is set.
type flakyKV struct {
	store.KV
	failPut bool
}

func (f *flakyKV) Put(ctx context.Context, values map[string][]byte) error {
	if f.failPut {
		return errors.New("disk full")
	}
	return f.KV.Put(ctx, values)
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recorder) Publish(_ context.Context, ev models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) last() models.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return models.Event{}
	}
	return r.events[len(r.events)-1]
}

type fixture struct {
	proc  *Processor
	store *store.Store
	kv    *flakyKV
	bus   *recorder
}

func setup(t *testing.T, policy Policy) fixture {
	t.Helper()

	conn, err := db.Open("sqlite", filepath.Join(t.TempDir(), "vote.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	kv := &flakyKV{KV: store.NewSQLKV(conn)}
	st := store.New(kv)
	bus := &recorder{}
	proc := NewProcessor(st, bus, policy, "Rs.")

	if _, err := proc.Seed(context.Background()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return fixture{proc: proc, store: st, kv: kv, bus: bus}
}

func tiered() Policy {
	return Policy{Rule: cliparse.RuleTiered, AllowDeletion: true}
}

func intPtr(i int) *int { return &i }

func (f fixture) poll(t *testing.T, id string) models.Poll {
	t.Helper()
	polls, _, err := f.store.Polls(context.Background())
	if err != nil {
		t.Fatalf("Polls() error = %v", err)
	}
	for _, p := range polls {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("poll %s not stored", id)
	return models.Poll{}
}

func (f fixture) submit(t *testing.T, b Ballot) Receipt {
	t.Helper()
	rcpt, err := f.proc.Submit(context.Background(), b)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	return rcpt
}

func (f fixture) polls(t *testing.T) []models.Poll {
	t.Helper()
	polls, _, err := f.store.Polls(context.Background())
	if err != nil {
		t.Fatalf("Polls() error = %v", err)
	}
	return polls
}

func (f fixture) ledger(t *testing.T) []models.Transaction {
	t.Helper()
	txs, _, err := f.store.Transactions(context.Background())
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	return txs
}

func sumOptions(p models.Poll) int {
	n := 0
	for _, o := range p.Options {
		n += o.Votes
	}
	return n
}

func TestPolicy_Weight(t *testing.T) {
	tests := []struct {
		name     string
		policy   Policy
		donation float64
		want     int
		wantErr  error
	}{
		{"tiered free vote", Policy{Rule: cliparse.RuleTiered}, 0, 1, nil},
		{"tiered below step", Policy{Rule: cliparse.RuleTiered}, 9, 1, nil},
		{"tiered exact step", Policy{Rule: cliparse.RuleTiered}, 10, 2, nil},
		{"tiered 25", Policy{Rule: cliparse.RuleTiered}, 25, 3, nil},
		{"tiered fractional", Policy{Rule: cliparse.RuleTiered}, 19.99, 2, nil},
		{"gated 99 rejected", Policy{Rule: cliparse.RuleGated}, 99, 0, ErrDonationBelowMinimum},
		{"gated free rejected", Policy{Rule: cliparse.RuleGated}, 0, 0, ErrDonationBelowMinimum},
		{"gated 100", Policy{Rule: cliparse.RuleGated}, 100, 1, nil},
		{"gated 200", Policy{Rule: cliparse.RuleGated}, 200, 2, nil},
		{"gated 250", Policy{Rule: cliparse.RuleGated}, 250, 2, nil},
		{"minimum applies to tiered", Policy{Rule: cliparse.RuleTiered, MinDonation: 50}, 49, 0, ErrDonationBelowMinimum},
		{"minimum met", Policy{Rule: cliparse.RuleTiered, MinDonation: 50}, 50, 6, nil},
		{"negative", Policy{Rule: cliparse.RuleTiered}, -5, 0, ErrInvalidDonation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.policy.Weight(tt.donation)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Weight(%v) = %d, want %d", tt.donation, got, tt.want)
			}
		})
	}
}

func TestSeed_OnlyWhenMissing(t *testing.T) {
	f := setup(t, tiered())

	seeded, err := f.proc.Seed(context.Background())
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if seeded {
		t.Error("second Seed() must not overwrite stored polls")
	}

	p := f.poll(t, "1")
	if p.TotalVotes != 295 || p.Goal != 15000 {
		t.Errorf("unexpected sample poll: %+v", p)
	}
	if txs := f.ledger(t); len(txs) != 0 {
		t.Errorf("expected empty ledger, got %d entries", len(txs))
	}
}

func TestSubmit_UpdatesTotalsAndLedger(t *testing.T) {
	f := setup(t, tiered())
	ctx := context.Background()

	before := f.poll(t, "1")

	rcpt, err := f.proc.Submit(ctx, Ballot{
		PollID:      "1",
		OptionIndex: intPtr(1),
		VoterName:   "  Sarah ",
		Donation:    25,
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	after := f.poll(t, "1")
	if after.TotalVotes != before.TotalVotes+3 {
		t.Errorf("totalVotes: expected %d, got %d", before.TotalVotes+3, after.TotalVotes)
	}
	if after.TotalVotes != sumOptions(after) {
		t.Errorf("totalVotes %d != sum of options %d", after.TotalVotes, sumOptions(after))
	}
	if after.Options[1].Votes != before.Options[1].Votes+3 {
		t.Errorf("option votes not incremented")
	}
	if after.TotalDonations != before.TotalDonations+25 {
		t.Errorf("totalDonations: expected %v, got %v", before.TotalDonations+25, after.TotalDonations)
	}

	txs := f.ledger(t)
	if len(txs) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(txs))
	}
	tx := txs[0]
	if tx.VoterName != "Sarah" || tx.SupportedTeam != before.Options[1].Text ||
		tx.VoteWeight != 3 || tx.PollTitle != before.Title || tx.PollID != "1" {
		t.Errorf("unexpected ledger entry: %+v", tx)
	}
	if tx.ID != rcpt.Transaction.ID {
		t.Errorf("receipt id %s does not match ledger %s", rcpt.Transaction.ID, tx.ID)
	}

	want := "Sarah donated Rs. 25 and voted with 3 votes!"
	if rcpt.Message != want {
		t.Errorf("expected message %q, got %q", want, rcpt.Message)
	}
	if ev := f.bus.last(); ev.Type != models.EventVote || ev.Notification.Message != want {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestSubmit_NewestFirst(t *testing.T) {
	f := setup(t, tiered())
	ctx := context.Background()

	for _, name := range []string{"Alex", "Mike"} {
		if _, err := f.proc.Submit(ctx, Ballot{PollID: "2", OptionIndex: intPtr(0), VoterName: name}); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	txs := f.ledger(t)
	if len(txs) != 2 || txs[0].VoterName != "Mike" {
		t.Errorf("expected newest entry first, got %+v", txs)
	}
	if f.bus.last().Notification.Message != "Mike voted successfully!" {
		t.Errorf("unexpected message %q", f.bus.last().Notification.Message)
	}
}

func TestSubmit_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		ballot  Ballot
		wantErr error
	}{
		{"missing name", tiered(), Ballot{PollID: "1", OptionIndex: intPtr(0), VoterName: "  "}, ErrNameRequired},
		{"no option", tiered(), Ballot{PollID: "1", VoterName: "Alex"}, ErrOptionRequired},
		{"option out of range", tiered(), Ballot{PollID: "1", OptionIndex: intPtr(3), VoterName: "Alex"}, ErrInvalidOption},
		{"negative option", tiered(), Ballot{PollID: "1", OptionIndex: intPtr(-1), VoterName: "Alex"}, ErrInvalidOption},
		{"unknown poll", tiered(), Ballot{PollID: "99", OptionIndex: intPtr(0), VoterName: "Alex"}, ErrPollNotFound},
		{"negative donation", tiered(), Ballot{PollID: "1", OptionIndex: intPtr(0), VoterName: "Alex", Donation: -1}, ErrInvalidDonation},
		{"gated below 100", Policy{Rule: cliparse.RuleGated}, Ballot{PollID: "1", OptionIndex: intPtr(0), VoterName: "Alex", Donation: 99}, ErrDonationBelowMinimum},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, tt.policy)
			before := f.poll(t, "1")

			_, err := f.proc.Submit(context.Background(), tt.ballot)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			after := f.poll(t, "1")
			if after.TotalVotes != before.TotalVotes || after.TotalDonations != before.TotalDonations {
				t.Error("rejected vote mutated the poll")
			}
			if len(f.ledger(t)) != 0 {
				t.Error("rejected vote wrote a ledger entry")
			}
			if ev := f.bus.last(); ev.Type != models.EventRejected || ev.Notification.Type != models.NotifyError {
				t.Errorf("expected error notification, got %+v", ev)
			}
		})
	}
}

func TestSubmit_WriteFailureLeavesStoreUntouched(t *testing.T) {
	f := setup(t, tiered())
	before := f.poll(t, "1")

	f.kv.failPut = true
	_, err := f.proc.Submit(context.Background(), Ballot{PollID: "1", OptionIndex: intPtr(0), VoterName: "Alex", Donation: 40})
	if err == nil {
		t.Fatal("expected error when the store rejects the write")
	}
	f.kv.failPut = false

	after := f.poll(t, "1")
	if after.TotalVotes != before.TotalVotes || after.Options[0].Votes != before.Options[0].Votes {
		t.Error("failed write changed stored totals")
	}
	if len(f.ledger(t)) != 0 {
		t.Error("failed write left a ledger entry")
	}

	ev := f.bus.last()
	if ev.Type != models.EventRejected || ev.Notification.Message != "Something went wrong, please try again" {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestSubmit_MalformedLedgerAborts(t *testing.T) {
	f := setup(t, tiered())
	ctx := context.Background()

	if err := f.kv.Put(ctx, map[string][]byte{store.KeyTransactions: []byte(`{"broken":true}`)}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	_, err := f.proc.Submit(ctx, Ballot{PollID: "1", OptionIndex: intPtr(0), VoterName: "Alex"})
	if !errors.Is(err, store.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}

	entry, err := f.kv.Get(ctx, store.KeyTransactions)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(entry.Value) != `{"broken":true}` {
		t.Error("malformed ledger was overwritten")
	}
}

func TestCreatePoll(t *testing.T) {
	f := setup(t, tiered())
	ctx := context.Background()

	poll, err := f.proc.CreatePoll(ctx, models.CreatePollRequest{
		Title:   "  Best bowler? ",
		Options: []string{" Perera", "Silva "},
	})
	if err != nil {
		t.Fatalf("CreatePoll() error = %v", err)
	}

	if poll.Title != "Best bowler?" || poll.Options[0].Text != "Perera" || poll.Options[1].Text != "Silva" {
		t.Errorf("labels not trimmed: %+v", poll)
	}
	if !poll.IsActive || poll.Goal != models.DefaultGoal || poll.TotalVotes != 0 {
		t.Errorf("unexpected defaults: %+v", poll)
	}

	polls := f.polls(t)
	if len(polls) != 4 || polls[0].ID != poll.ID {
		t.Errorf("expected new poll first of 4, got %d polls", len(polls))
	}
	if ev := f.bus.last(); ev.Type != models.EventPollCreated || ev.PollID != poll.ID {
		t.Errorf("unexpected event: %+v", ev)
	}
}

func TestCreatePoll_Invalid(t *testing.T) {
	tests := []struct {
		name string
		req  models.CreatePollRequest
	}{
		{"missing title", models.CreatePollRequest{Title: " ", Options: []string{"a", "b"}}},
		{"one option", models.CreatePollRequest{Title: "t", Options: []string{"a"}}},
		{"blank option", models.CreatePollRequest{Title: "t", Options: []string{"a", " "}}},
		{"duplicate option", models.CreatePollRequest{Title: "t", Options: []string{"a", " a"}}},
		{"negative goal", models.CreatePollRequest{Title: "t", Options: []string{"a", "b"}, Goal: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t, tiered())
			_, err := f.proc.CreatePoll(context.Background(), tt.req)
			if !errors.Is(err, ErrInvalidPoll) {
				t.Errorf("expected ErrInvalidPoll, got %v", err)
			}
		})
	}
}

func TestDeleteTransaction_RestoresTotals(t *testing.T) {
	f := setup(t, tiered())
	ctx := context.Background()

	before := f.poll(t, "3")
	rcpt, err := f.proc.Submit(ctx, Ballot{PollID: "3", OptionIndex: intPtr(2), VoterName: "Lisa", Donation: 30})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if _, err := f.proc.DeleteTransaction(ctx, rcpt.Transaction.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}

	after := f.poll(t, "3")
	if after.TotalVotes != before.TotalVotes || after.TotalDonations != before.TotalDonations ||
		after.Options[2].Votes != before.Options[2].Votes {
		t.Errorf("totals not restored: before %+v after %+v", before, after)
	}
	if len(f.ledger(t)) != 0 {
		t.Error("entry not removed from ledger")
	}

	// A second delete of the same id finds nothing
	if _, err := f.proc.DeleteTransaction(ctx, rcpt.Transaction.ID); !errors.Is(err, ErrTransactionNotFound) {
		t.Errorf("expected ErrTransactionNotFound, got %v", err)
	}
}

func TestDeleteTransaction_ClampsAtZero(t *testing.T) {
	f := setup(t, tiered())
	ctx := context.Background()

	poll, err := f.proc.CreatePoll(ctx, models.CreatePollRequest{Title: "Toss", Options: []string{"Heads", "Tails"}})
	if err != nil {
		t.Fatalf("CreatePoll() error = %v", err)
	}

	first := f.submit(t, Ballot{PollID: poll.ID, OptionIndex: intPtr(0), VoterName: "John", Donation: 50})
	second := f.submit(t, Ballot{PollID: poll.ID, OptionIndex: intPtr(0), VoterName: "Emma", Donation: 10})

	// Simulate another writer having reset the poll totals underneath us
	polls := f.polls(t)
	polls[0].Options[0].Votes = 1
	polls[0].TotalVotes = 1
	polls[0].TotalDonations = 5
	if err := f.store.SavePolls(ctx, polls); err != nil {
		t.Fatalf("SavePolls() error = %v", err)
	}

	// Delete out of order
	for _, id := range []string{second.Transaction.ID, first.Transaction.ID} {
		if _, err := f.proc.DeleteTransaction(ctx, id); err != nil {
			t.Fatalf("DeleteTransaction(%s) error = %v", id, err)
		}
	}

	got := f.poll(t, poll.ID)
	if got.TotalVotes != 0 || got.Options[0].Votes != 0 || got.TotalDonations != 0 {
		t.Errorf("expected totals clamped at zero, got %+v", got)
	}
}

func TestDeleteTransaction_MissingPoll(t *testing.T) {
	f := setup(t, tiered())
	ctx := context.Background()

	rcpt := f.submit(t, Ballot{PollID: "2", OptionIndex: intPtr(0), VoterName: "David"})

	polls := f.polls(t)
	if err := f.store.SavePolls(ctx, polls[:1]); err != nil {
		t.Fatalf("SavePolls() error = %v", err)
	}
	before := f.poll(t, "1")

	if _, err := f.proc.DeleteTransaction(ctx, rcpt.Transaction.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}
	if len(f.ledger(t)) != 0 {
		t.Error("entry not removed")
	}
	if after := f.poll(t, "1"); after.TotalVotes != before.TotalVotes {
		t.Error("unrelated poll changed")
	}
}

func TestDeleteTransaction_Disabled(t *testing.T) {
	f := setup(t, Policy{Rule: cliparse.RuleTiered})
	ctx := context.Background()

	rcpt := f.submit(t, Ballot{PollID: "1", OptionIndex: intPtr(0), VoterName: "Jessica"})
	if _, err := f.proc.DeleteTransaction(ctx, rcpt.Transaction.ID); !errors.Is(err, ErrDeletionDisabled) {
		t.Errorf("expected ErrDeletionDisabled, got %v", err)
	}
	if len(f.ledger(t)) != 1 {
		t.Error("entry removed although deletion is disabled")
	}
}

func TestSubmit_Concurrent(t *testing.T) {
	f := setup(t, tiered())
	ctx := context.Background()
	before := f.poll(t, "1")

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := f.proc.Submit(ctx, Ballot{PollID: "1", OptionIndex: intPtr(i % 3), VoterName: "Alex"}); err != nil {
				t.Errorf("Submit() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	after := f.poll(t, "1")
	if after.TotalVotes != before.TotalVotes+n {
		t.Errorf("expected %d votes, got %d", before.TotalVotes+n, after.TotalVotes)
	}
	if after.TotalVotes != sumOptions(after) {
		t.Error("option sum diverged from totalVotes")
	}
	if len(f.ledger(t)) != n {
		t.Errorf("expected %d ledger entries, got %d", n, len(f.ledger(t)))
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		currency string
		amount   float64
		want     string
	}{
		{"Rs.", 25, "Rs. 25"},
		{"Rs.", 1250, "Rs. 1,250"},
		{"$", 12.5, "$ 12.5"},
		{"", 7, "7"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.currency, tt.amount); got != tt.want {
			t.Errorf("FormatAmount(%q, %v) = %q, want %q", tt.currency, tt.amount, got, tt.want)
		}
	}
}
