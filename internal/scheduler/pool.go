package scheduler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/md-check-link/internal/link"
	"github.com/JakeFAU/md-check-link/internal/progress"
	"github.com/JakeFAU/md-check-link/internal/resolver"
)

// DefaultParallel is the worker count used when none is configured.
const DefaultParallel = 2

// Resolver decides the verdict for one remote link.
type Resolver interface {
	Resolve(ctx context.Context, l string) resolver.Result
}

// Propagator writes a verdict to every pending entry carrying a link.
type Propagator interface {
	Propagate(l string, status link.Status) int
}

// Config configures a Pool.
type Config struct {
	Parallel int
	RunID    [16]byte
}

// Stats summarizes one Pool run.
type Stats struct {
	Resolved int
	Updated  int
}

// Pool fans pending links out to a fixed number of workers.
type Pool struct {
	resolver   Resolver
	propagator Propagator
	emitter    progress.Emitter
	cfg        Config
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a Pool.
func New(res Resolver, prop Propagator, emitter progress.Emitter, cfg Config, logger *zap.Logger) *Pool {
	if cfg.Parallel <= 0 {
		cfg.Parallel = DefaultParallel
	}
	if emitter == nil {
		emitter = progress.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		resolver:   res,
		propagator: prop,
		emitter:    emitter,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Run drains q and blocks until every worker has stopped. Workers stop when
// the queue is empty or ctx ends; links left in the queue keep their pending
// entries untouched.
func (p *Pool) Run(ctx context.Context, q *Queue) (Stats, error) {
	var resolved, updated atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	workers := min(p.cfg.Parallel, max(q.Len(), 1))
	for i := range workers {
		g.Go(func() error {
			return p.work(gctx, i, q, &resolved, &updated)
		})
	}
	err := g.Wait()
	stats := Stats{Resolved: int(resolved.Load()), Updated: int(updated.Load())}
	if err != nil {
		return stats, fmt.Errorf("resolve links: %w", err)
	}
	return stats, nil
}

func (p *Pool) work(ctx context.Context, id int, q *Queue, resolved, updated *atomic.Int64) error {
	for {
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck // wrapped by Run
		}
		l, ok := q.Pop()
		if !ok {
			return nil
		}
		res := p.resolver.Resolve(ctx, l)
		n := p.propagator.Propagate(l, res.Status)
		resolved.Add(1)
		updated.Add(int64(n))
		p.logger.Debug("link resolved",
			zap.Int("worker", id),
			zap.String("link", l),
			zap.Stringer("status", res.Status),
			zap.Int("status_code", res.StatusCode),
			zap.Int("attempts", res.Attempts),
			zap.Int("entries", n),
			zap.Error(res.Err),
		)
		p.emit(l, res, n)
	}
}

func (p *Pool) emit(l string, res resolver.Result, occurrences int) {
	evt := progress.Event{
		RunID:       p.cfg.RunID,
		TS:          p.now().UTC(),
		Stage:       progress.StageLinkResolved,
		Link:        l,
		Host:        hostOf(l),
		Verdict:     res.Status.String(),
		StatusClass: progress.ClassifyStatus(res.StatusCode),
		Attempts:    res.Attempts,
		Occurrences: occurrences,
		Dur:         res.Elapsed,
	}
	if res.Err != nil {
		evt.Note = res.Err.Error()
	}
	p.emitter.Emit(evt)
}

func hostOf(l string) string {
	u, err := url.Parse(l)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
