// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"time"
)

// Notification type constants
const (
	NotifySuccess = "success"
	NotifyError   = "error"
	NotifyInfo    = "info"
)

// Event type constants
const (
	EventVote               = "vote"
	EventPollCreated        = "poll_created"
	EventTransactionDeleted = "transaction_deleted"
	EventRejected           = "rejected"
)

// DefaultGoal is the fundraising goal given to polls created without one.
const DefaultGoal = 1000

// Request types

type CreatePollRequest struct {
	Title     string   `json:"title"`
	Options   []string `json:"options"`
	Goal      float64  `json:"goal,omitempty"`
	MatchDate string   `json:"match_date,omitempty"`
	Venue     string   `json:"venue,omitempty"`
}

// OptionIndex is a pointer so that a missing selection can be told apart from option 0.
type SubmitVoteRequest struct {
	OptionIndex    *int   `json:"option_index"`
	VoterName      string `json:"voter_name"`
	DonationAmount Amount `json:"donation_amount"`
}

// Response types

type SubmitVoteResponse struct {
	Poll        Poll        `json:"poll"`
	Transaction Transaction `json:"transaction"`
	Message     string      `json:"message"`
}

type DeleteTransactionResponse struct {
	Transaction Transaction `json:"transaction"`
	Message     string      `json:"message"`
}

type ArchiveResponse struct {
	Path string `json:"path"`
	Rows int    `json:"rows"`
}

// Domain types
//
// Poll and Transaction keep the camelCase field names of the stored arrays.

type PollOption struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type Poll struct {
	ID             string       `json:"id"`
	Title          string       `json:"title,omitempty"`
	Options        []PollOption `json:"options"`
	TotalVotes     int          `json:"totalVotes"`
	TotalDonations float64      `json:"totalDonations"`
	IsActive       bool         `json:"isActive"`
	Goal           float64      `json:"goal,omitempty"`
	MatchDate      string       `json:"matchDate,omitempty"`
	Venue          string       `json:"venue,omitempty"`
}

// Clone returns a copy of p that shares no option storage with it.
func (p Poll) Clone() Poll {
	c := p
	c.Options = make([]PollOption, len(p.Options))
	copy(c.Options, p.Options)
	return c
}

type Transaction struct {
	ID             string    `json:"id"`
	VoterName      string    `json:"voterName"`
	SupportedTeam  string    `json:"supportedTeam"`
	DonationAmount float64   `json:"donationAmount"`
	VoteWeight     int       `json:"voteWeight"`
	PollTitle      string    `json:"pollTitle"`
	PollID         string    `json:"pollId,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Event is published on every change to the stored polls or ledger, and on
// rejected submissions so that open views can show the message.
type Event struct {
	Type         string       `json:"type"`
	PollID       string       `json:"poll_id,omitempty"`
	Notification Notification `json:"notification"`
}

// Result types

type OptionResult struct {
	Text       string  `json:"text"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

type PollResults struct {
	Poll         Poll           `json:"poll"`
	Options      []OptionResult `json:"options"`
	Leading      *OptionResult  `json:"leading,omitempty"`
	GoalProgress float64        `json:"goal_progress"`
}

type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	VoterName     string  `json:"voter_name"`
	TotalDonation float64 `json:"total_donation"`
	TotalVotes    int     `json:"total_votes"`
	Submissions   int     `json:"submissions"`
}

type Dashboard struct {
	TotalVotes       int                `json:"total_votes"`
	TotalDonations   float64            `json:"total_donations"`
	TotalSubmissions int                `json:"total_submissions"`
	Polls            []PollResults      `json:"polls"`
	Leaderboard      []LeaderboardEntry `json:"leaderboard"`
}

// Overlay is the compact payload rendered on top of a live stream.
type Overlay struct {
	PollID         string         `json:"poll_id"`
	Title          string         `json:"title"`
	Options        []OptionResult `json:"options"`
	TotalVotes     int            `json:"total_votes"`
	TotalDonations float64        `json:"total_donations"`
	Goal           float64        `json:"goal"`
	GoalProgress   float64        `json:"goal_progress"`
	LatestDonation *Transaction   `json:"latest_donation,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
