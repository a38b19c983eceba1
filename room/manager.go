package room

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// maxCodeAttempts bounds retries on code collisions. With 36^6 codes a
// collision is already rare; running out means the source is broken.
const maxCodeAttempts = 32

// Config seeds a new room.
type Config struct {
	CreatorID   string
	CreatorName string
	Rounds      int
	TimeLimit   int // seconds
	Categories  []string
}

func (c Config) validate() error {
	switch {
	case c.CreatorID == "":
		return newError(CodeInvalidInput, "creator id is required")
	case c.Rounds < 1:
		return newError(CodeInvalidInput, "rounds must be at least 1, got %d", c.Rounds)
	case c.TimeLimit < 1:
		return newError(CodeInvalidInput, "time limit must be at least 1 second, got %d", c.TimeLimit)
	case len(c.Categories) == 0:
		return newError(CodeInvalidInput, "at least one category is required")
	}
	seen := make(map[string]struct{}, len(c.Categories))
	for _, category := range c.Categories {
		if isBlank(category) {
			return newError(CodeInvalidInput, "category names must not be empty")
		}
		if _, dup := seen[category]; dup {
			return newError(CodeInvalidInput, "duplicate category %q", category)
		}
		seen[category] = struct{}{}
	}
	return nil
}

// Manager is the registry of live rooms.
type Manager struct {
	store Store
	codes CodeSource
	now   func() time.Time
}

type Option func(*Manager)

func WithStore(s Store) Option {
	return func(m *Manager) { m.store = s }
}

func WithCodeSource(c CodeSource) Option {
	return func(m *Manager) { m.codes = c }
}

// WithClock replaces time.Now for every room the manager creates.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewRoomManager(opts ...Option) *Manager {
	m := &Manager{
		store: NewMemoryStore(),
		codes: RandomCodes{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateRoom registers a room under a fresh code with the creator as its
// only player.
func (m *Manager) CreateRoom(cfg Config) (*Room, error) {
	cfg.Categories = trimAll(cfg.Categories)
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		r := newRoom(NormalizeCode(m.codes.NewCode()), cfg, m.now)
		err := m.store.Insert(r)
		if err == nil {
			return r, nil
		}
		if !errors.Is(err, ErrCodeTaken) {
			return nil, fmt.Errorf("store room: %w", err)
		}
	}
	return nil, fmt.Errorf("no free room code after %d attempts", maxCodeAttempts)
}

func (m *Manager) GetRoom(code string) (*Room, error) {
	r, exists := m.store.Get(NormalizeCode(code))
	if !exists {
		return nil, newError(CodeNotFound, "game does not exist")
	}
	return r, nil
}

func (m *Manager) ListRooms() []*Room {
	return m.store.List()
}

func (m *Manager) Count() int {
	return m.store.Len()
}

// EvictFinished removes rooms that have been finished for at least ttl and
// returns their codes. A zero ttl disables eviction.
func (m *Manager) EvictFinished(now time.Time, ttl time.Duration) []string {
	if ttl <= 0 {
		return nil
	}
	var evicted []string
	for _, r := range m.store.List() {
		at, finished := r.FinishedAt()
		if finished && now.Sub(at) >= ttl {
			m.store.Delete(r.Code())
			evicted = append(evicted, r.Code())
		}
	}
	return evicted
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}
	return out
}
