package scheduler

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueDedupesAndKeepsOrder(t *testing.T) {
	t.Parallel()

	q := NewQueue()
	require.True(t, q.Add("https://a.example"))
	require.True(t, q.Add("https://b.example"))
	require.False(t, q.Add("https://a.example"))
	require.Equal(t, 2, q.Len())

	l, ok := q.Pop()
	require.True(t, ok)
	require.Equal(t, "https://a.example", l)
	l, ok = q.Pop()
	require.True(t, ok)
	require.Equal(t, "https://b.example", l)
	_, ok = q.Pop()
	require.False(t, ok)

	require.False(t, q.Add("https://a.example"), "popped links stay deduplicated")
}

func TestQueueConcurrentPopNeverDuplicates(t *testing.T) {
	t.Parallel()

	q := NewQueue()
	for i := range 500 {
		q.Add(fmt.Sprintf("https://host%d.example", i))
	}
	total := q.Len()

	var (
		mu   sync.Mutex
		seen = make(map[string]int)
		wg   sync.WaitGroup
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				l, ok := q.Pop()
				if !ok {
					return
				}
				mu.Lock()
				seen[l]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, total)
	for l, n := range seen {
		require.Equal(t, 1, n, l)
	}
}
