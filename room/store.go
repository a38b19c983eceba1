package room

import (
	"sort"
	"sync"
)

// MemoryStore keeps rooms in a map for the life of the process.
type MemoryStore struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rooms: make(map[string]*Room)}
}

func (s *MemoryStore) Insert(r *Room) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.rooms[r.Code()]; exists {
		return ErrCodeTaken
	}
	s.rooms[r.Code()] = r
	return nil
}

func (s *MemoryStore) Get(code string) (*Room, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	r, exists := s.rooms[code]
	return r, exists
}

// List returns the rooms ordered by creation time.
func (s *MemoryStore) List() []*Room {
	s.mutex.RLock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mutex.RUnlock()

	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].CreatedAt().Equal(rooms[j].CreatedAt()) {
			return rooms[i].Code() < rooms[j].Code()
		}
		return rooms[i].CreatedAt().Before(rooms[j].CreatedAt())
	})
	return rooms
}

func (s *MemoryStore) Delete(code string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.rooms, code)
}

func (s *MemoryStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.rooms)
}
