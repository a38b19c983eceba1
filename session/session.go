// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/wfunc/wordrace/network"
)

// Session is one connected client. The player identity and room are set by
// commands and read by the broadcaster from other goroutines.
type Session struct {
	ID         string
	Conn       network.Connection
	CreatedAt  time.Time
	playerID   string
	playerName string
	roomCode   string
	lastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		lastActive: now,
	}
}

// Identity returns the player id, display name and room code.
func (s *Session) Identity() (playerID, playerName, roomCode string) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.playerID, s.playerName, s.roomCode
}

// UpdateIdentity stores the player identity and moves the session from
// fromRoom to toRoom. The room is left alone if it is no longer fromRoom, so a
// concurrent LeaveRoom is not undone. It reports whether the room was moved.
func (s *Session) UpdateIdentity(playerID, playerName, fromRoom, toRoom string) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.playerID, s.playerName = playerID, playerName
	if s.roomCode != fromRoom {
		return false
	}
	s.roomCode = toRoom
	return true
}

func (s *Session) PlayerID() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.playerID
}

func (s *Session) RoomCode() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.roomCode
}

// LeaveRoom clears the room if it is still code.
func (s *Session) LeaveRoom(code string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.roomCode == code {
		s.roomCode = ""
	}
}

func (s *Session) Touch() {
	s.mutex.Lock()
	s.lastActive = time.Now()
	s.mutex.Unlock()
}

func (s *Session) LastActive() time.Time {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.lastActive
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.Touch()
	return s.Conn.Send(msgID, data)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager tracks live sessions.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// GetByPlayerID returns every session of a player.
func (m *Manager) GetByPlayerID(playerID string) []*Session {
	return m.filter(func(s *Session) bool { return s.PlayerID() == playerID })
}

// GetByRoom returns every session currently in the room.
func (m *Manager) GetByRoom(roomCode string) []*Session {
	return m.filter(func(s *Session) bool { return s.RoomCode() == roomCode })
}

func (m *Manager) filter(keep func(*Session) bool) []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var result []*Session
	for _, session := range m.sessions {
		if keep(session) {
			result = append(result, session)
		}
	}
	return result
}
