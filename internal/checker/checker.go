package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/md-check-link/internal/document"
	"github.com/JakeFAU/md-check-link/internal/link"
	"github.com/JakeFAU/md-check-link/internal/progress"
	"github.com/JakeFAU/md-check-link/internal/scheduler"
)

// Registry is the document store a run reads from and writes verdicts into.
type Registry interface {
	LoadDeferred() int
	Documents() []*document.Document
	Lookup(path string) (*document.Document, bool)
	Propagate(l string, status link.Status) int
}

// IDGenerator issues run identifiers.
type IDGenerator interface {
	NewRunID() (uuid.UUID, error)
}

// Clock supplies wall time.
type Clock interface {
	Now() time.Time
}

// Config configures a Checker.
type Config struct {
	Parallel int
}

// Checker resolves every pending entry in a Registry.
type Checker struct {
	registry Registry
	resolver scheduler.Resolver
	emitter  progress.Emitter
	ids      IDGenerator
	clock    Clock
	cfg      Config
	logger   *zap.Logger
}

// New wires a Checker.
func New(
	registry Registry,
	res scheduler.Resolver,
	emitter progress.Emitter,
	ids IDGenerator,
	clock Clock,
	cfg Config,
	logger *zap.Logger,
) *Checker {
	if emitter == nil {
		emitter = progress.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		registry: registry,
		resolver: res,
		emitter:  emitter,
		ids:      ids,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run resolves all pending entries and returns the aggregated Summary. Entries
// already holding a verdict keep it, so running twice yields the same counts.
func (c *Checker) Run(ctx context.Context) (Summary, error) {
	start := c.clock.Now()
	runID, err := c.ids.NewRunID()
	if err != nil {
		return Summary{}, fmt.Errorf("new run id: %w", err)
	}
	rid := progress.UUIDToBytes(runID)
	c.emitter.Emit(progress.Event{RunID: rid, TS: start.UTC(), Stage: progress.StageRunStart})

	if n := c.registry.LoadDeferred(); n > 0 {
		c.logger.Debug("anchor targets loaded", zap.Int("documents", n))
	}
	anchors := c.resolveAnchors()

	q := scheduler.NewQueue()
	for _, doc := range c.registry.Documents() {
		for _, e := range doc.Entries {
			if e.Status() == link.StatusPending {
				q.Add(e.Link)
			}
		}
	}
	c.logger.Info("checking links",
		zap.Stringer("run_id", runID),
		zap.Int("anchors", anchors),
		zap.Int("remote", q.Len()),
	)

	pool := scheduler.New(c.resolver, c.registry, c.emitter, scheduler.Config{
		Parallel: c.cfg.Parallel,
		RunID:    rid,
	}, c.logger)
	stats, poolErr := pool.Run(ctx, q)
	c.logger.Debug("links resolved",
		zap.Stringer("run_id", runID),
		zap.Int("resolved", stats.Resolved),
		zap.Int("updated", stats.Updated),
	)

	sum := c.summarize()
	sum.RunID = runID
	sum.Elapsed = c.clock.Now().Sub(start)
	c.emitter.Emit(progress.Event{
		RunID: rid,
		TS:    c.clock.Now().UTC(),
		Stage: progress.StageRunDone,
		Links: sum.Total,
		Dead:  sum.Dead,
		Dur:   sum.Elapsed,
	})
	if poolErr != nil {
		return sum, fmt.Errorf("run %s: %w", runID, poolErr)
	}
	return sum, nil
}

func (c *Checker) resolveAnchors() int {
	resolved := 0
	for _, doc := range c.registry.Documents() {
		for _, e := range doc.Entries {
			if e.Kind != link.KindLocalAnchor || e.Status() != link.StatusPending {
				continue
			}
			status := link.StatusDead
			if target, ok := c.registry.Lookup(e.Target); ok {
				status = link.ResolveAnchor(target.Anchors, e.Anchor)
			}
			if e.Resolve(status) {
				resolved++
			}
		}
	}
	return resolved
}

func (c *Checker) summarize() Summary {
	var sum Summary
	for _, doc := range c.registry.Documents() {
		if doc.Deferred {
			continue
		}
		fr := FileResult{Path: doc.Path, Entries: doc.Entries, Dead: len(doc.Dead())}
		for _, e := range doc.Entries {
			sum.Total++
			switch e.Status() {
			case link.StatusAlive:
				sum.Alive++
			case link.StatusDead:
				sum.Dead++
			case link.StatusIgnored:
				sum.Ignored++
			case link.StatusError:
				sum.Errors++
			case link.StatusPending:
				sum.Pending++
			}
		}
		sum.Files = append(sum.Files, fr)
	}
	return sum
}
