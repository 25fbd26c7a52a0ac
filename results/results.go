// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package results

import (
	"math"
	"sort"
	"strings"

	"github.com/danielhkuo/livepoll/models"
)

// ForPoll computes option percentages, the leading option and progress
// towards the fundraising goal.
func ForPoll(p models.Poll) models.PollResults {
	res := models.PollResults{
		Poll:         p.Clone(),
		Options:      make([]models.OptionResult, len(p.Options)),
		GoalProgress: GoalProgress(p),
	}

	for i, o := range p.Options {
		pct := 0.0
		if p.TotalVotes > 0 {
			pct = round1(float64(o.Votes) / float64(p.TotalVotes) * 100)
		}
		res.Options[i] = models.OptionResult{Text: o.Text, Votes: o.Votes, Percentage: pct}
	}

	// First option with the most votes wins ties
	for i := range res.Options {
		if res.Leading == nil || res.Options[i].Votes > res.Leading.Votes {
			res.Leading = &res.Options[i]
		}
	}
	return res
}

// GoalProgress is totalDonations as a percentage of the goal, capped at 100.
// Polls without a goal are measured against models.DefaultGoal.
func GoalProgress(p models.Poll) float64 {
	goal := p.Goal
	if goal <= 0 {
		goal = models.DefaultGoal
	}
	return round1(math.Min(p.TotalDonations/goal*100, 100))
}

// Summarize builds the dashboard totals. Votes are summed over the polls and
// donations over the ledger.
func Summarize(polls []models.Poll, txs []models.Transaction, leaderboardLimit int) models.Dashboard {
	d := models.Dashboard{
		TotalSubmissions: len(txs),
		Polls:            make([]models.PollResults, 0, len(polls)),
		Leaderboard:      Leaderboard(txs, leaderboardLimit),
	}
	for _, p := range polls {
		d.TotalVotes += p.TotalVotes
		d.Polls = append(d.Polls, ForPoll(p))
	}
	for _, tx := range txs {
		d.TotalDonations += tx.DonationAmount
	}
	return d
}

// Leaderboard ranks donors by total donation, then by votes, then by name.
// Names are compared after trimming. A limit of zero or less returns every
// donor.
func Leaderboard(txs []models.Transaction, limit int) []models.LeaderboardEntry {
	byName := make(map[string]*models.LeaderboardEntry)
	for _, tx := range txs {
		name := strings.TrimSpace(tx.VoterName)
		if name == "" {
			continue
		}
		e, ok := byName[name]
		if !ok {
			e = &models.LeaderboardEntry{VoterName: name}
			byName[name] = e
		}
		e.TotalDonation += tx.DonationAmount
		e.TotalVotes += tx.VoteWeight
		e.Submissions++
	}

	entries := make([]models.LeaderboardEntry, 0, len(byName))
	for _, e := range byName {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalDonation != entries[j].TotalDonation {
			return entries[i].TotalDonation > entries[j].TotalDonation
		}
		if entries[i].TotalVotes != entries[j].TotalVotes {
			return entries[i].TotalVotes > entries[j].TotalVotes
		}
		return entries[i].VoterName < entries[j].VoterName
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Overlay is the compact view of one poll shown over a stream, with the most
// recent donation made on it.
func Overlay(p models.Poll, txs []models.Transaction) models.Overlay {
	r := ForPoll(p)
	o := models.Overlay{
		PollID:         p.ID,
		Title:          p.Title,
		Options:        r.Options,
		TotalVotes:     p.TotalVotes,
		TotalDonations: p.TotalDonations,
		Goal:           p.Goal,
		GoalProgress:   r.GoalProgress,
	}
	if o.Goal <= 0 {
		o.Goal = models.DefaultGoal
	}

	// Ledger is newest first
	for i := range txs {
		if txs[i].DonationAmount > 0 && belongsTo(txs[i], p) {
			tx := txs[i]
			o.LatestDonation = &tx
			break
		}
	}
	return o
}

// ForTransactions returns the transactions recorded against p.
func ForTransactions(p models.Poll, txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, 0)
	for _, tx := range txs {
		if belongsTo(tx, p) {
			out = append(out, tx)
		}
	}
	return out
}

func belongsTo(tx models.Transaction, p models.Poll) bool {
	if tx.PollID != "" {
		return tx.PollID == p.ID
	}
	return tx.PollTitle == p.Title
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
