package testutil

import (
	"fmt"
	"sync"
)

// SequenceKeyGenerator returns predictable API keys for tests:
// "<prefix>-1", "<prefix>-2", ...
//
// Thread-safety: safe for concurrent use.
type SequenceKeyGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceKeyGenerator creates a generator. An empty prefix becomes "key".
func NewSequenceKeyGenerator(prefix string) *SequenceKeyGenerator {
	if prefix == "" {
		prefix = "key"
	}
	return &SequenceKeyGenerator{prefix: prefix}
}

// NewKey returns the next key in the sequence.
func (g *SequenceKeyGenerator) NewKey() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}
