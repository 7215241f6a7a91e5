package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/md-check-link/internal/link"
	"github.com/JakeFAU/md-check-link/internal/progress"
	"github.com/JakeFAU/md-check-link/internal/resolver"
)

func TestPoolPropagatesToEveryEntry(t *testing.T) {
	t.Parallel()

	prop := newEntryIndex()
	a1 := prop.add("https://a.example")
	a2 := prop.add("https://a.example")
	a3 := prop.add("https://a.example")
	b1 := prop.add("https://b.example")

	res := &fakeResolver{verdicts: map[string]link.Status{
		"https://a.example": link.StatusAlive,
		"https://b.example": link.StatusDead,
	}}
	q := NewQueue()
	q.Add("https://a.example")
	q.Add("https://b.example")

	stats, err := New(res, prop, nil, Config{Parallel: 4}, zap.NewNop()).Run(context.Background(), q)
	require.NoError(t, err)
	require.Equal(t, Stats{Resolved: 2, Updated: 4}, stats)

	for _, e := range []*link.Entry{a1, a2, a3} {
		require.Equal(t, link.StatusAlive, e.Status())
	}
	require.Equal(t, link.StatusDead, b1.Status())
	require.Equal(t, 1, res.count("https://a.example"))
}

func TestPoolDispatchesEachLinkOnce(t *testing.T) {
	t.Parallel()

	prop := newEntryIndex()
	q := NewQueue()
	for i := range 50 {
		l := fmt.Sprintf("https://host%d.example", i%10)
		prop.add(l)
		q.Add(l)
	}
	res := &fakeResolver{delay: time.Millisecond}

	_, err := New(res, prop, nil, Config{Parallel: 8}, nil).Run(context.Background(), q)
	require.NoError(t, err)
	for i := range 10 {
		require.Equal(t, 1, res.count(fmt.Sprintf("https://host%d.example", i)))
	}
}

func TestPoolRespectsParallelism(t *testing.T) {
	t.Parallel()

	prop := newEntryIndex()
	q := NewQueue()
	for i := range 20 {
		l := fmt.Sprintf("https://host%d.example", i)
		prop.add(l)
		q.Add(l)
	}
	res := &fakeResolver{delay: 5 * time.Millisecond}

	_, err := New(res, prop, nil, Config{Parallel: 3}, nil).Run(context.Background(), q)
	require.NoError(t, err)
	require.LessOrEqual(t, res.peak.Load(), int64(3))
	require.Equal(t, int64(20), res.calls.Load())
}

func TestPoolStopsOnCancel(t *testing.T) {
	t.Parallel()

	prop := newEntryIndex()
	q := NewQueue()
	for i := range 10 {
		l := fmt.Sprintf("https://host%d.example", i)
		prop.add(l)
		q.Add(l)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := New(&fakeResolver{}, prop, nil, Config{Parallel: 2}, nil).Run(ctx, q)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled))
	require.Zero(t, stats.Resolved)
	require.Equal(t, 10, q.Len())
}

func TestPoolEmitsResolvedEvents(t *testing.T) {
	t.Parallel()

	prop := newEntryIndex()
	prop.add("https://Example.COM/page")
	prop.add("https://Example.COM/page")
	q := NewQueue()
	q.Add("https://Example.COM/page")

	rec := &recordingEmitter{}
	runID := [16]byte{1}
	res := &fakeResolver{code: 200, attempts: 2}
	_, err := New(res, prop, rec, Config{RunID: runID}, nil).Run(context.Background(), q)
	require.NoError(t, err)

	events := rec.all()
	require.Len(t, events, 1)
	evt := events[0]
	require.NoError(t, evt.Validate())
	require.Equal(t, progress.StageLinkResolved, evt.Stage)
	require.Equal(t, runID, evt.RunID)
	require.Equal(t, "example.com", evt.Host)
	require.Equal(t, "alive", evt.Verdict)
	require.Equal(t, progress.Status2xx, evt.StatusClass)
	require.Equal(t, 2, evt.Attempts)
	require.Equal(t, 2, evt.Occurrences)
}

func TestPoolEmptyQueue(t *testing.T) {
	t.Parallel()

	stats, err := New(&fakeResolver{}, newEntryIndex(), nil, Config{}, nil).Run(context.Background(), NewQueue())
	require.NoError(t, err)
	require.Zero(t, stats.Resolved)
}

type fakeResolver struct {
	verdicts map[string]link.Status
	code     int
	attempts int
	delay    time.Duration

	mu       sync.Mutex
	counts   map[string]int
	calls    atomic.Int64
	inflight atomic.Int64
	peak     atomic.Int64
}

func (f *fakeResolver) Resolve(_ context.Context, l string) resolver.Result {
	cur := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if cur <= p || f.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	f.calls.Add(1)
	f.mu.Lock()
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[l]++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	status, ok := f.verdicts[l]
	if !ok {
		status = link.StatusAlive
	}
	attempts := f.attempts
	if attempts == 0 {
		attempts = 1
	}
	return resolver.Result{Status: status, StatusCode: f.code, Attempts: attempts}
}

func (f *fakeResolver) count(l string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[l]
}

type entryIndex struct {
	entries map[string][]*link.Entry
}

func newEntryIndex() *entryIndex {
	return &entryIndex{entries: make(map[string][]*link.Entry)}
}

func (x *entryIndex) add(l string) *link.Entry {
	e := link.NewEntry(l, link.KindRemote, link.StatusPending)
	x.entries[l] = append(x.entries[l], e)
	return e
}

func (x *entryIndex) Propagate(l string, status link.Status) int {
	n := 0
	for _, e := range x.entries[l] {
		if e.Resolve(status) {
			n++
		}
	}
	return n
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []progress.Event
}

func (r *recordingEmitter) Emit(evt progress.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordingEmitter) all() []progress.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]progress.Event(nil), r.events...)
}
