package room

import "errors"

// ErrCodeTaken is returned by Store.Insert when a room already uses the code.
var ErrCodeTaken = errors.New("room code already in use")

// Store holds the live rooms keyed by code. The manager never assumes a
// particular backend; MemoryStore is the default.
type Store interface {
	// Insert adds r unless its code is taken, atomically.
	Insert(r *Room) error
	Get(code string) (*Room, bool)
	List() []*Room
	Delete(code string)
	Len() int
}

// CodeSource produces candidate room codes. Uniqueness is enforced by the
// manager, not the source.
type CodeSource interface {
	NewCode() string
}
