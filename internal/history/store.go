package history

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/DoyleJ11/ludo-backend/pkg/types"
)

// MatchRecord is one finished game. Rooms themselves are never restored from
// here; this is a write-mostly archive.
type MatchRecord struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RoomID     string    `gorm:"index;not null" json:"room_id"`
	WinnerID   string    `gorm:"not null" json:"winner_id"`
	Version    int       `json:"version"`
	FinishedAt time.Time `gorm:"index" json:"finished_at"`

	Players []MatchPlayerRecord `gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE" json:"players"`
}

type MatchPlayerRecord struct {
	ID            uint   `gorm:"primaryKey" json:"-"`
	MatchID       uint   `gorm:"index;not null" json:"-"`
	PlayerID      string `gorm:"not null" json:"player_id"`
	Name          string `json:"name"`
	Color         string `json:"color"`
	Seat          int    `json:"seat"`
	Score         int    `json:"score"`
	Captures      int    `json:"captures"`
	PawnsFinished int    `json:"pawns_finished"`
}

type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the archive tables.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	s := New(db)
	if err := s.Migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&MatchRecord{}, &MatchPlayerRecord{}); err != nil {
		return fmt.Errorf("migrate archive: %w", err)
	}
	return nil
}

func (s *Store) RecordResult(ctx context.Context, final types.StateSnapshot) error {
	rec := NewMatchRecord(final, time.Now().UTC())
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("record match %s: %w", final.RoomID, err)
	}
	return nil
}

// Recent returns the latest finished games, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]MatchRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []MatchRecord
	err := s.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("seat") }).
		Order("finished_at desc").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return out, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewMatchRecord flattens a final snapshot into archive rows.
func NewMatchRecord(final types.StateSnapshot, at time.Time) MatchRecord {
	seat := make(map[string]int, len(final.TurnOrder))
	for i, id := range final.TurnOrder {
		seat[id] = i
	}

	rec := MatchRecord{
		RoomID:     final.RoomID,
		WinnerID:   final.WinnerID,
		Version:    final.Version,
		FinishedAt: at,
	}
	for _, p := range final.Players {
		finished := 0
		for _, pawn := range p.Pawns {
			if pawn.Zone == "finished" {
				finished++
			}
		}
		rec.Players = append(rec.Players, MatchPlayerRecord{
			PlayerID:      p.ID,
			Name:          p.Name,
			Color:         p.Color,
			Seat:          seat[p.ID],
			Score:         final.Scores.PlayerScores[p.ID],
			Captures:      final.Scores.Captures[p.ID],
			PawnsFinished: finished,
		})
	}
	return rec
}
