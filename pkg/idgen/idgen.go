// Package idgen produces the stringified millisecond-timestamp ids used as
// primary keys for every stored record.
package idgen

import (
	"strconv"
	"sync"
	"time"
)

// Generator hands out strictly increasing timestamp ids. When two ids are
// requested within the same millisecond the second one is bumped forward.
type Generator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// New creates a Generator backed by the wall clock
func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock creates a Generator backed by the given clock
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Next returns the next id
func (g *Generator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}

var defaultGenerator = New()

// Next returns the next id from the process-wide generator
func Next() string {
	return defaultGenerator.Next()
}
