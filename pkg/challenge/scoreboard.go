// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package challenge

import "sort"

// ScoreEntry is one ranked participant.
type ScoreEntry struct {
	Rank     int    `json:"rank"`
	Identity string `json:"identity"`
	Delta    int    `json:"delta"`
	Initial  int    `json:"initial"`
	Current  int    `json:"current"`
}

// Scoreboard is the final ranking of a session.
type Scoreboard struct {
	Entries []ScoreEntry `json:"entries"`
	Winners []string     `json:"winners"`
}

// Empty reports whether nobody took part.
func (s Scoreboard) Empty() bool {
	return len(s.Entries) == 0
}

// ComputeScoreboard ranks participants by pages read during the session
// (current minus initial progress), highest first. Ties keep registration
// order and share a rank. Every entry with the top delta is a winner.
func ComputeScoreboard(participants []Participant) Scoreboard {
	entries := make([]ScoreEntry, 0, len(participants))
	for _, p := range participants {
		entries = append(entries, ScoreEntry{
			Identity: p.Identity,
			Delta:    p.CurrentProgress - p.InitialProgress,
			Initial:  p.InitialProgress,
			Current:  p.CurrentProgress,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Delta > entries[j].Delta
	})

	board := Scoreboard{Entries: entries, Winners: []string{}}
	for i := range entries {
		if i > 0 && entries[i].Delta == entries[i-1].Delta {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = i + 1
		}
		if entries[i].Delta == entries[0].Delta {
			board.Winners = append(board.Winners, entries[i].Identity)
		}
	}

	return board
}
