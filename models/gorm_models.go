// models/gorm_models.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// GormGameRecord is a finished game.
type GormGameRecord struct {
	gorm.Model
	RoomCode   string             `gorm:"index;not null"`
	CreatorID  string             `gorm:"not null"`
	Rounds     int                `gorm:"not null"`
	TimeLimit  int                `gorm:"not null"`
	Categories []string           `gorm:"type:jsonb;serializer:json;not null"`
	Duration   int                `gorm:"default:0"` // seconds
	Players    []GormPlayerResult `gorm:"foreignKey:GameRecordID;constraint:OnDelete:CASCADE"`
}

// GormPlayerResult is one player's standing in a finished game.
type GormPlayerResult struct {
	gorm.Model
	GameRecordID uint   `gorm:"index;not null"`
	PlayerID     string `gorm:"index;not null"`
	Name         string `gorm:"not null"`
	Score        int    `gorm:"not null"`
	Rank         int    `gorm:"not null"`
}

// NewGormGameRecord converts a record for GORM.
func NewGormGameRecord(record GameRecord) GormGameRecord {
	out := GormGameRecord{
		RoomCode:   record.RoomCode,
		CreatorID:  record.CreatorID,
		Rounds:     record.Rounds,
		TimeLimit:  record.TimeLimit,
		Categories: record.Categories,
		Duration:   int(record.Duration().Seconds()),
	}
	out.CreatedAt = record.FinishedAt
	for _, p := range record.Players {
		out.Players = append(out.Players, GormPlayerResult{
			PlayerID: p.PlayerID,
			Name:     p.Name,
			Score:    p.Score,
			Rank:     p.Rank,
		})
	}
	return out
}

// GameRecord converts back to the archive shape. StartedAt is derived from
// the stored duration.
func (g GormGameRecord) GameRecord() GameRecord {
	record := GameRecord{
		RoomCode:   g.RoomCode,
		CreatorID:  g.CreatorID,
		Rounds:     g.Rounds,
		TimeLimit:  g.TimeLimit,
		Categories: g.Categories,
		FinishedAt: g.CreatedAt,
		StartedAt:  g.CreatedAt.Add(-time.Duration(g.Duration) * time.Second),
	}
	for _, p := range g.Players {
		record.Players = append(record.Players, PlayerResult{
			PlayerID: p.PlayerID,
			Name:     p.Name,
			Score:    p.Score,
			Rank:     p.Rank,
		})
	}
	return record
}
