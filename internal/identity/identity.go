// Package identity mints the opaque tokens that identify resume entries
// across edits.
package identity

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Generator produces opaque identity tokens.
type Generator interface {
	NewToken() string
}

// UUIDGenerator returns random (v4) UUID strings. It is stateless and safe for
// concurrent use.
type UUIDGenerator struct{}

func (UUIDGenerator) NewToken() string {
	return uuid.NewString()
}

// SequenceGenerator returns "<prefix>-1", "<prefix>-2", ... and is used where
// deterministic tokens are needed (tests, offline tooling).
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceGenerator{prefix: prefix}
}

func (g *SequenceGenerator) NewToken() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return g.prefix + "-" + strconv.Itoa(g.n)
}

// Unique draws tokens from gen until one is neither empty nor in reserved,
// records it in reserved and returns it.
func Unique(gen Generator, reserved map[string]struct{}) string {
	for {
		tok := gen.NewToken()
		if tok == "" {
			continue
		}
		if _, taken := reserved[tok]; taken {
			continue
		}
		reserved[tok] = struct{}{}
		return tok
	}
}
