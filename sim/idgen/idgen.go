// Package idgen provides ID generators for particles and runs.
package idgen

import (
	"strconv"
	"sync/atomic"

	"github.com/rs/xid"
)

// Generator produces unique identifiers.
type Generator interface {
	Generate() string
}

// NewSequential returns a generator whose first emitted ID is "1". IDs are
// deterministic across runs.
func NewSequential() Generator {
	return &sequentialGenerator{}
}

// NewPrefixed returns a sequential generator whose IDs carry prefix, e.g.
// "larva-1".
func NewPrefixed(prefix string) Generator {
	return &sequentialGenerator{prefix: prefix}
}

type sequentialGenerator struct {
	prefix string
	next   uint64
}

func (g *sequentialGenerator) Generate() string {
	n := atomic.AddUint64(&g.next, 1)

	return g.prefix + strconv.FormatUint(n, 10)
}

// NewGlobal returns a generator of globally unique, non-deterministic IDs.
func NewGlobal() Generator {
	return globalGenerator{}
}

type globalGenerator struct{}

func (globalGenerator) Generate() string {
	return xid.New().String()
}
