package document

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/md-check-link/internal/link"
)

// Classifier assigns a kind and verdict to a raw link.
type Classifier interface {
	Classify(raw, docPath string, anchors link.AnchorSet) *link.Entry
}

// Options configures a Registry.
type Options struct {
	// IgnoreDisable turns off suppression comment handling.
	IgnoreDisable bool
	Logger        *zap.Logger
}

// Registry holds every loaded document. Loading happens on a single goroutine
// before resolution starts; Propagate and the read accessors are safe to call
// concurrently afterwards.
type Registry struct {
	classifier Classifier
	extractor  Extractor
	opts       Options
	logger     *zap.Logger

	mu       sync.RWMutex
	docs     map[string]*Document
	order    []string
	index    map[string][]*link.Entry
	deferred []string
	queued   map[string]struct{}
}

// NewRegistry builds an empty Registry.
func NewRegistry(classifier Classifier, extractor Extractor, opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		classifier: classifier,
		extractor:  extractor,
		opts:       opts,
		logger:     logger,
		docs:       make(map[string]*Document),
		index:      make(map[string][]*link.Entry),
		queued:     make(map[string]struct{}),
	}
}

// Load reads, extracts and classifies the document at path. Loading a path
// that is already present is a no-op.
func (r *Registry) Load(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve document path %s: %w", path, err)
	}
	r.mu.RLock()
	_, loaded := r.docs[abs]
	r.mu.RUnlock()
	if loaded {
		return nil
	}

	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("stat document %s: %w", abs, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("load document %s: %w", abs, ErrNotRegular)
	}
	content, err := os.ReadFile(abs) //nolint:gosec // paths come from the user
	if err != nil {
		return fmt.Errorf("read document %s: %w", abs, err)
	}
	if !r.opts.IgnoreDisable {
		content = StripSuppressed(content)
	}
	found, err := r.extractor.Extract(content)
	if err != nil {
		return fmt.Errorf("extract links from %s: %w", abs, err)
	}

	doc := &Document{
		Path:    abs,
		Anchors: link.NewAnchorSet(found.Anchors...),
		Entries: make([]*link.Entry, 0, len(found.Links)),
	}
	for _, raw := range found.Links {
		doc.Entries = append(doc.Entries, r.classifier.Classify(raw, abs, doc.Anchors))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.docs[abs]; dup {
		return nil
	}
	r.store(doc)
	for _, e := range doc.Entries {
		r.index[e.Link] = append(r.index[e.Link], e)
		if e.Kind == link.KindLocalAnchor && e.Status() == link.StatusPending {
			r.enqueue(e.Target)
		}
	}
	r.logger.Debug("document loaded",
		zap.String("path", abs),
		zap.Int("links", len(doc.Entries)),
		zap.Int("anchors", len(doc.Anchors)),
	)
	return nil
}

// LoadDeferred loads every queued anchor target that is not yet present and
// returns how many documents it added. Targets that are missing, are
// directories, or cannot be read become empty documents so that lookups for
// them always succeed.
func (r *Registry) LoadDeferred() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0
	for _, path := range r.deferred {
		if _, ok := r.docs[path]; ok {
			continue
		}
		r.store(r.readAnchorsOnly(path))
		added++
	}
	r.deferred = nil
	return added
}

func (r *Registry) readAnchorsOnly(path string) *Document {
	doc := &Document{Path: path, Anchors: link.AnchorSet{}, Deferred: true}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return doc
	}
	content, err := os.ReadFile(path) //nolint:gosec // path derived from a checked document
	if err != nil {
		r.logger.Warn("deferred document unreadable", zap.String("path", path), zap.Error(err))
		return doc
	}
	found, err := r.extractor.Extract(content)
	if err != nil {
		r.logger.Warn("deferred document extraction failed", zap.String("path", path), zap.Error(err))
		return doc
	}
	doc.Anchors = link.NewAnchorSet(found.Anchors...)
	return doc
}

// Lookup returns the document stored for an absolute path.
func (r *Registry) Lookup(path string) (*Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[path]
	return doc, ok
}

// Documents returns every document in load order.
func (r *Registry) Documents() []*Document {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Document, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, r.docs[p])
	}
	return out
}

// Propagate sets status on every still-pending entry carrying l and returns
// how many entries changed.
func (r *Registry) Propagate(l string, status link.Status) int {
	r.mu.RLock()
	entries := r.index[l]
	r.mu.RUnlock()

	changed := 0
	for _, e := range entries {
		if e.Resolve(status) {
			changed++
		}
	}
	return changed
}

func (r *Registry) store(doc *Document) {
	r.docs[doc.Path] = doc
	r.order = append(r.order, doc.Path)
}

func (r *Registry) enqueue(path string) {
	if _, ok := r.queued[path]; ok {
		return
	}
	r.queued[path] = struct{}{}
	r.deferred = append(r.deferred, path)
}
