// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/livepoll/ident"
	"github.com/danielhkuo/livepoll/models"
	"github.com/danielhkuo/livepoll/store"
	"github.com/dustin/go-humanize"
)

// Publisher receives an event after every change and every rejection.
type Publisher interface {
	Publish(ctx context.Context, ev models.Event) error
}

// Ballot is one vote submission. OptionIndex is nil when nothing was selected.
// Rejected Simulated ballots are returned to the caller without publishing an
// error notification.
type Ballot struct {
	PollID      string
	OptionIndex *int
	VoterName   string
	Donation    float64
	Simulated   bool
}

// Receipt describes a recorded vote.
type Receipt struct {
	Poll        models.Poll
	Transaction models.Transaction
	Message     string
}

// Processor is the only writer of the stored polls and ledger. Each
// operation reads both, validates, and writes them back in one commit.
// Nothing is published unless the commit succeeded.
type Processor struct {
	mu       sync.Mutex
	store    *store.Store
	pub      Publisher
	policy   Policy
	currency string
	now      func() time.Time
}

func NewProcessor(st *store.Store, pub Publisher, policy Policy, currency string) *Processor {
	return &Processor{
		store:    st,
		pub:      pub,
		policy:   policy,
		currency: currency,
		now:      time.Now,
	}
}

// Submit records a vote. On any failure nothing is written and, unless the
// ballot is simulated, an error notification is published.
func (p *Processor) Submit(ctx context.Context, b Ballot) (Receipt, error) {
	rcpt, err := p.submit(ctx, b)
	if err != nil {
		if !b.Simulated {
			p.reject(ctx, b.PollID, err)
		}
		return Receipt{}, err
	}

	slog.Info("vote recorded",
		"poll_id", rcpt.Poll.ID,
		"transaction_id", rcpt.Transaction.ID,
		"weight", rcpt.Transaction.VoteWeight,
		"donation", rcpt.Transaction.DonationAmount)

	p.publish(ctx, models.EventVote, rcpt.Poll.ID, rcpt.Message, models.NotifySuccess)
	return rcpt, nil
}

func (p *Processor) submit(ctx context.Context, b Ballot) (Receipt, error) {
	name := strings.TrimSpace(b.VoterName)
	if name == "" {
		return Receipt{}, ErrNameRequired
	}
	if b.OptionIndex == nil {
		return Receipt{}, ErrOptionRequired
	}
	weight, err := p.policy.Weight(b.Donation)
	if err != nil {
		return Receipt{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	polls, txs, err := p.load(ctx)
	if err != nil {
		return Receipt{}, err
	}

	idx := findPoll(polls, b.PollID)
	if idx < 0 {
		return Receipt{}, ErrPollNotFound
	}
	opt := *b.OptionIndex
	if opt < 0 || opt >= len(polls[idx].Options) {
		return Receipt{}, ErrInvalidOption
	}

	// Work on copies so a failed commit leaves nothing half-applied
	poll := polls[idx].Clone()
	poll.Options[opt].Votes += weight
	poll.TotalVotes += weight
	poll.TotalDonations += b.Donation

	tx := models.Transaction{
		ID:             ident.NewID(),
		VoterName:      name,
		SupportedTeam:  poll.Options[opt].Text,
		DonationAmount: b.Donation,
		VoteWeight:     weight,
		PollTitle:      poll.Title,
		PollID:         poll.ID,
		Timestamp:      p.now().UTC(),
	}

	nextPolls := replacePoll(polls, idx, poll)
	nextTxs := append([]models.Transaction{tx}, txs...)

	if err := p.store.Commit(ctx, nextPolls, nextTxs); err != nil {
		return Receipt{}, fmt.Errorf("failed to save vote: %w", err)
	}

	return Receipt{Poll: poll, Transaction: tx, Message: p.voteMessage(tx)}, nil
}

// CreatePoll validates req and stores a new poll ahead of the existing ones.
func (p *Processor) CreatePoll(ctx context.Context, req models.CreatePollRequest) (models.Poll, error) {
	poll, err := p.createPoll(ctx, req)
	if err != nil {
		p.reject(ctx, "", err)
		return models.Poll{}, err
	}

	slog.Info("poll created", "poll_id", poll.ID, "options", len(poll.Options))
	p.publish(ctx, models.EventPollCreated, poll.ID, "Poll created successfully!", models.NotifySuccess)
	return poll, nil
}

func (p *Processor) createPoll(ctx context.Context, req models.CreatePollRequest) (models.Poll, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || len(req.Options) < 2 || req.Goal < 0 {
		return models.Poll{}, ErrInvalidPoll
	}

	seen := make(map[string]bool, len(req.Options))
	options := make([]models.PollOption, 0, len(req.Options))
	for _, label := range req.Options {
		label = strings.TrimSpace(label)
		if label == "" || seen[label] {
			return models.Poll{}, ErrInvalidPoll
		}
		seen[label] = true
		options = append(options, models.PollOption{Text: label})
	}

	goal := req.Goal
	if goal == 0 {
		goal = models.DefaultGoal
	}

	poll := models.Poll{
		ID:        ident.NewID(),
		Title:     title,
		Options:   options,
		IsActive:  true,
		Goal:      goal,
		MatchDate: strings.TrimSpace(req.MatchDate),
		Venue:     strings.TrimSpace(req.Venue),
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	polls, _, err := p.store.Polls(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return models.Poll{}, fmt.Errorf("failed to load polls: %w", err)
	}

	if err := p.store.SavePolls(ctx, append([]models.Poll{poll}, polls...)); err != nil {
		return models.Poll{}, fmt.Errorf("failed to save poll: %w", err)
	}
	return poll, nil
}

// DeleteTransaction removes a ledger entry and takes its votes and donation
// back off the poll it was recorded against. Totals never go below zero.
// When the poll or option is gone the entry is still removed.
func (p *Processor) DeleteTransaction(ctx context.Context, id string) (models.Transaction, error) {
	tx, err := p.deleteTransaction(ctx, id)
	if err != nil {
		p.reject(ctx, "", err)
		return models.Transaction{}, err
	}

	slog.Info("transaction deleted", "transaction_id", tx.ID, "poll_id", tx.PollID, "weight", tx.VoteWeight)
	p.publish(ctx, models.EventTransactionDeleted, tx.PollID,
		fmt.Sprintf("Removed %s's vote", tx.VoterName), models.NotifyInfo)
	return tx, nil
}

func (p *Processor) deleteTransaction(ctx context.Context, id string) (models.Transaction, error) {
	if !p.policy.AllowDeletion {
		return models.Transaction{}, ErrDeletionDisabled
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	polls, txs, err := p.load(ctx)
	if err != nil {
		return models.Transaction{}, err
	}

	ti := -1
	for i := range txs {
		if txs[i].ID == id {
			ti = i
			break
		}
	}
	if ti < 0 {
		return models.Transaction{}, ErrTransactionNotFound
	}
	tx := txs[ti]

	nextPolls := polls
	if pi := findTransactionPoll(polls, tx); pi >= 0 {
		poll := polls[pi].Clone()
		for i := range poll.Options {
			if poll.Options[i].Text == tx.SupportedTeam {
				poll.Options[i].Votes = max(0, poll.Options[i].Votes-tx.VoteWeight)
				poll.TotalVotes = max(0, poll.TotalVotes-tx.VoteWeight)
				poll.TotalDonations = max(0, poll.TotalDonations-tx.DonationAmount)
				nextPolls = replacePoll(polls, pi, poll)
				break
			}
		}
	} else {
		slog.Warn("deleted transaction references a missing poll", "transaction_id", tx.ID, "poll_title", tx.PollTitle)
	}

	nextTxs := make([]models.Transaction, 0, len(txs)-1)
	nextTxs = append(nextTxs, txs[:ti]...)
	nextTxs = append(nextTxs, txs[ti+1:]...)

	if err := p.store.Commit(ctx, nextPolls, nextTxs); err != nil {
		return models.Transaction{}, fmt.Errorf("failed to save deletion: %w", err)
	}
	return tx, nil
}

// Seed stores the sample polls when no poll list exists yet. A stored list
// that fails to decode is left alone.
func (p *Processor) Seed(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, _, err := p.store.Polls(ctx)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, store.ErrMalformed):
		slog.Warn("stored polls are malformed, not seeding", "error", err)
		return false, nil
	case !errors.Is(err, store.ErrNotFound):
		return false, fmt.Errorf("failed to check polls: %w", err)
	}

	_, _, err = p.store.Transactions(ctx)
	if errors.Is(err, store.ErrNotFound) {
		err = p.store.Commit(ctx, SamplePolls(), nil)
	} else {
		err = p.store.SavePolls(ctx, SamplePolls())
	}
	if err != nil {
		return false, fmt.Errorf("failed to seed polls: %w", err)
	}

	slog.Info("seeded sample polls", "count", len(SamplePolls()))
	return true, nil
}

// load reads both arrays. Missing keys count as empty; anything else that
// stops a read aborts the operation.
func (p *Processor) load(ctx context.Context) ([]models.Poll, []models.Transaction, error) {
	polls, _, err := p.store.Polls(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to load polls: %w", err)
	}
	txs, _, err := p.store.Transactions(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return polls, txs, nil
}

func (p *Processor) voteMessage(tx models.Transaction) string {
	if tx.DonationAmount > 0 {
		return fmt.Sprintf("%s donated %s and voted with %d votes!",
			tx.VoterName, FormatAmount(p.currency, tx.DonationAmount), tx.VoteWeight)
	}
	return fmt.Sprintf("%s voted successfully!", tx.VoterName)
}

func (p *Processor) reject(ctx context.Context, pollID string, err error) {
	msg := "Something went wrong, please try again"
	if IsValidation(err) || errors.Is(err, ErrPollNotFound) ||
		errors.Is(err, ErrTransactionNotFound) || errors.Is(err, ErrDeletionDisabled) {
		msg = err.Error()
	} else {
		slog.Error("vote processor failed", "poll_id", pollID, "error", err)
	}
	p.publish(ctx, models.EventRejected, pollID, msg, models.NotifyError)
}

func (p *Processor) publish(ctx context.Context, typ, pollID, msg, kind string) {
	if p.pub == nil {
		return
	}
	ev := models.Event{
		Type:   typ,
		PollID: pollID,
		Notification: models.Notification{
			ID:        ident.NewID(),
			Message:   msg,
			Type:      kind,
			Timestamp: p.now().UTC(),
		},
	}
	if err := p.pub.Publish(ctx, ev); err != nil {
		slog.Warn("failed to publish event", "type", typ, "error", err)
	}
}

// FormatAmount renders a donation with the currency label, e.g. "Rs. 1,250".
func FormatAmount(currency string, amount float64) string {
	s := humanize.CommafWithDigits(amount, 2)
	if currency == "" {
		return s
	}
	return currency + " " + s
}

func findPoll(polls []models.Poll, id string) int {
	for i := range polls {
		if polls[i].ID == id {
			return i
		}
	}
	return -1
}

// findTransactionPoll matches by poll id, falling back to the title for
// entries written without one.
func findTransactionPoll(polls []models.Poll, tx models.Transaction) int {
	if tx.PollID != "" {
		return findPoll(polls, tx.PollID)
	}
	for i := range polls {
		if polls[i].Title == tx.PollTitle {
			return i
		}
	}
	return -1
}

func replacePoll(polls []models.Poll, idx int, poll models.Poll) []models.Poll {
	next := make([]models.Poll, len(polls))
	copy(next, polls)
	next[idx] = poll
	return next
}
