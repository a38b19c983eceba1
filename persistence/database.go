// persistence/database.go
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/wfunc/wordrace/config"
	"github.com/wfunc/wordrace/models"
)

// Database archives finished games.
type Database interface {
	SaveGameRecord(ctx context.Context, record models.GameRecord) error
	// RecentGames returns up to limit games, most recently finished first.
	RecentGames(ctx context.Context, limit int) ([]models.GameRecord, error)
	Close() error
}

var ErrInvalidLimit = errors.New("limit must be positive")

// Open connects the archive selected by cfg.Driver. With no driver the
// archive discards everything.
func Open(cfg config.DatabaseConfig) (Database, error) {
	pg := cfg.Postgres
	switch cfg.Driver {
	case config.DriverNone:
		return Nop{}, nil
	case config.DriverPostgres:
		return NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	case config.DriverGorm:
		return NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func dsn(host string, port int, user, password, dbname string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// Nop is the archive used when none is configured.
type Nop struct{}

func (Nop) SaveGameRecord(context.Context, models.GameRecord) error { return nil }

func (Nop) RecentGames(_ context.Context, limit int) ([]models.GameRecord, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	return nil, nil
}

func (Nop) Close() error { return nil }
