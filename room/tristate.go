package room

import (
	"bytes"
	"fmt"
)

// Flag is a review judgement that is unset, true or false. On the wire it is
// null, true or false.
type Flag int8

const (
	Unset Flag = iota
	True
	False
)

// FlagOf converts an optional boolean.
func FlagOf(b *bool) Flag {
	switch {
	case b == nil:
		return Unset
	case *b:
		return True
	default:
		return False
	}
}

func (f Flag) IsTrue() bool {
	return f == True
}

func (f Flag) String() string {
	switch f {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unset"
	}
}

func (f Flag) MarshalJSON() ([]byte, error) {
	switch f {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "null":
		*f = Unset
	case "true":
		*f = True
	case "false":
		*f = False
	default:
		return fmt.Errorf("review flag must be true, false or null, got %s", data)
	}
	return nil
}

// Review is one reviewer's judgement of one answer. The "unique implies
// valid" convention is kept by clients; nothing here relies on it.
type Review struct {
	IsValid  Flag `json:"isValid"`
	IsUnique Flag `json:"isUnique"`
}
