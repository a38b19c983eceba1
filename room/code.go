package room

import (
	"math/rand/v2"
	"strings"
)

const (
	CodeLength  = 6
	codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// RandomCodes draws codes uniformly from A-Z and 0-9.
type RandomCodes struct{}

func (RandomCodes) NewCode() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(codeCharset[rand.IntN(len(codeCharset))])
	}
	return b.String()
}

// NormalizeCode upper-cases and trims a code typed by a player.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
