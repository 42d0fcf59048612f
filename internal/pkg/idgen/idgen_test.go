package idgen

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_MonotonicWithinMillisecond(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	g := NewWithClock(func() time.Time { return fixed })

	prev := g.NewID()
	for range 1000 {
		next := g.NewID()
		require.Less(t, prev, next)
		prev = next
	}

	id, err := ulid.Parse(prev)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(fixed), id.Time())
}

func TestGenerator_ConcurrentUnique(t *testing.T) {
	g := New()

	var (
		mu  sync.Mutex
		ids []string
		wg  sync.WaitGroup
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, 250)
			for range 250 {
				local = append(local, g.NewID())
			}
			mu.Lock()
			ids = append(ids, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.Strings(ids)
	for i := 1; i < len(ids); i++ {
		assert.NotEqual(t, ids[i-1], ids[i])
	}
	assert.Len(t, ids, 2000)
}
