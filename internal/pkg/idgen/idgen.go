package idgen

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator hands out ULIDs that sort by creation time. IDs created within
// the same millisecond are strictly increasing.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// New returns a Generator reading the wall clock.
func New() *Generator {
	return NewWithClock(time.Now)
}

// NewWithClock returns a Generator that stamps IDs with now().
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     now,
	}
}

// NewID returns the next ID as a 26 character string.
func (g *Generator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}
