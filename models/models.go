// models/models.go
package models

import (
	"sort"
	"time"
)

// GameRecord is the archived outcome of a finished room.
type GameRecord struct {
	RoomCode   string         `json:"room_code"`
	CreatorID  string         `json:"creator_id"`
	Rounds     int            `json:"rounds"`
	TimeLimit  int            `json:"time_limit"`
	Categories []string       `json:"categories"`
	Players    []PlayerResult `json:"players"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// PlayerResult is one player's final standing.
type PlayerResult struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"` // 1 is best; equal scores share a rank
}

// Duration is how long the game ran.
func (r GameRecord) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Winners returns the players ranked first.
func (r GameRecord) Winners() []PlayerResult {
	var winners []PlayerResult
	for _, p := range r.Players {
		if p.Rank == 1 {
			winners = append(winners, p)
		}
	}
	return winners
}

// RankPlayers sorts players by score, highest first, and assigns ranks.
func RankPlayers(players []PlayerResult) {
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})
	for i := range players {
		if i > 0 && players[i].Score == players[i-1].Score {
			players[i].Rank = players[i-1].Rank
			continue
		}
		players[i].Rank = i + 1
	}
}
