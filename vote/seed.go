// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package vote

import "github.com/danielhkuo/livepoll/models"

// SamplePolls returns the polls written on first start when nothing is stored.
func SamplePolls() []models.Poll {
	return []models.Poll{
		{
			ID:    "1",
			Title: `🏏 Vidyartha vs Sylvester Big Match 2025 - Who Will Win "The Battles of the Babes"?`,
			Options: []models.PollOption{
				{Text: "Vidyartha College 🦁", Votes: 142},
				{Text: "Sylvester College ⚔️", Votes: 118},
				{Text: "Match Will Be Drawn 🤝", Votes: 35},
			},
			TotalVotes:     295,
			TotalDonations: 6250,
			IsActive:       true,
			Goal:           15000,
			MatchDate:      "September 13th, 2025",
		},
		{
			ID:    "2",
			Title: "🏆 Who will be the Man of the Match in Vidyartha vs Sylvester?",
			Options: []models.PollOption{
				{Text: "Vidyartha Captain 🦁", Votes: 78},
				{Text: "Sylvester All-rounder ⚔️", Votes: 65},
				{Text: "Vidyartha Bowler 🦁", Votes: 43},
				{Text: "Sylvester Batsman ⚔️", Votes: 52},
			},
			TotalVotes:     238,
			TotalDonations: 3450,
			IsActive:       true,
			Goal:           8000,
		},
		{
			ID:    "3",
			Title: "📊 What will be the winning margin in the Big Match 2025?",
			Options: []models.PollOption{
				{Text: "Win by 100+ runs 💪", Votes: 45},
				{Text: "Win by 50-99 runs 🏏", Votes: 67},
				{Text: "Win by 1-49 runs ⚡", Votes: 89},
				{Text: "Win by wickets 🎯", Votes: 54},
			},
			TotalVotes:     255,
			TotalDonations: 2890,
			IsActive:       true,
			Goal:           5000,
		},
	}
}
