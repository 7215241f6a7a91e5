package link

import "sync/atomic"

// Entry is one occurrence of a link inside a document. Entries are shared by
// pointer; the status field must never be copied.
type Entry struct {
	// Link is the normalized link string after rewrite rules.
	Link string
	// Kind records how the link was classified.
	Kind Kind
	// Target is the absolute path of the referenced file for local links.
	Target string
	// Anchor is the fragment (without '#') a local link points at.
	Anchor string

	status atomic.Int32
}

// NewEntry builds an Entry with an initial status.
func NewEntry(link string, kind Kind, status Status) *Entry {
	e := &Entry{Link: link, Kind: kind}
	e.status.Store(int32(status))
	return e
}

// Status returns the current verdict.
func (e *Entry) Status() Status {
	return Status(e.status.Load())
}

// Resolve moves a pending entry to a terminal status. It reports false when
// the entry was already resolved or when status is not terminal, so a verdict
// once set is never overwritten.
func (e *Entry) Resolve(status Status) bool {
	if !status.Terminal() {
		return false
	}
	return e.status.CompareAndSwap(int32(StatusPending), int32(status))
}

// AnchorSet holds the anchor identifiers found in a document, without '#'.
type AnchorSet map[string]struct{}

// NewAnchorSet builds a set from the given identifiers. A leading '#' is
// stripped from each one.
func NewAnchorSet(ids ...string) AnchorSet {
	set := make(AnchorSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	return set
}

// Add inserts an identifier.
func (s AnchorSet) Add(id string) {
	if len(id) > 0 && id[0] == '#' {
		id = id[1:]
	}
	if id == "" {
		return
	}
	s[id] = struct{}{}
}

// Has reports whether fragment is a known anchor. Nil sets contain nothing.
func (s AnchorSet) Has(fragment string) bool {
	if s == nil {
		return false
	}
	_, ok := s[fragment]
	return ok
}
