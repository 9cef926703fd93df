// Package ids allocates opaque identifiers for workshops, elements and bounded contexts.
package ids

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator produces globally unique, opaque IDs.
type Generator interface {
	NewID() string
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func() string

// NewID calls f.
func (f GeneratorFunc) NewID() string {
	return f()
}

// UUID returns a Generator backed by random (v4) UUIDs.
func UUID() Generator {
	return GeneratorFunc(func() string {
		return uuid.NewString()
	})
}

// Sequential is a deterministic Generator for tests: prefix-1, prefix-2, ...
type Sequential struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequential creates a Sequential generator with the given prefix.
func NewSequential(prefix string) *Sequential {
	return &Sequential{prefix: prefix}
}

// NewID returns the next ID in the sequence.
func (s *Sequential) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s-%d", s.prefix, s.next)
}
