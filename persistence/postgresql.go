// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/wfunc/wordrace/models"
)

const queryTimeout = 5 * time.Second

// PostgreSQL is the raw SQL archive on lib/pq.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	db, err := sql.Open("postgres", dsn(host, port, user, password, dbname))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init tables: %w", err)
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(16) NOT NULL,
            creator_id VARCHAR(64) NOT NULL,
            rounds INTEGER NOT NULL,
            time_limit INTEGER NOT NULL,
            categories TEXT[] NOT NULL,
            players JSONB NOT NULL,
            started_at TIMESTAMPTZ NOT NULL,
            finished_at TIMESTAMPTZ NOT NULL
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        CREATE INDEX IF NOT EXISTS idx_game_records_room_code ON game_records(room_code);
        CREATE INDEX IF NOT EXISTS idx_game_records_finished_at ON game_records(finished_at);
    `)
	return err
}

func (p *PostgreSQL) SaveGameRecord(ctx context.Context, record models.GameRecord) error {
	players, err := json.Marshal(record.Players)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
        INSERT INTO game_records
            (room_code, creator_id, rounds, time_limit, categories, players, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `
	_, err = p.db.ExecContext(ctx, query,
		record.RoomCode,
		record.CreatorID,
		record.Rounds,
		record.TimeLimit,
		pq.Array(record.Categories),
		players,
		record.StartedAt,
		record.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert game record %s: %w", record.RoomCode, err)
	}
	return nil
}

func (p *PostgreSQL) RecentGames(ctx context.Context, limit int) ([]models.GameRecord, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
        SELECT room_code, creator_id, rounds, time_limit, categories, players, started_at, finished_at
        FROM game_records
        ORDER BY finished_at DESC
        LIMIT $1
    `
	rows, err := p.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.GameRecord
	for rows.Next() {
		var (
			record  models.GameRecord
			players []byte
		)
		if err := rows.Scan(
			&record.RoomCode,
			&record.CreatorID,
			&record.Rounds,
			&record.TimeLimit,
			pq.Array(&record.Categories),
			&players,
			&record.StartedAt,
			&record.FinishedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(players, &record.Players); err != nil {
			return nil, fmt.Errorf("decode players of %s: %w", record.RoomCode, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
