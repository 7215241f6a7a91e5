package document

import "github.com/JakeFAU/md-check-link/internal/link"

// Extraction is what an Extractor finds in a document's raw content.
type Extraction struct {
	// Links lists raw link strings in document order.
	Links []string
	// Anchors lists anchor identifiers the document defines.
	Anchors []string
}

// Extractor pulls links and anchors out of raw document content.
type Extractor interface {
	Extract(content []byte) (Extraction, error)
}

// Document is a loaded file with its classified link entries and anchors.
type Document struct {
	Path    string
	Entries []*link.Entry
	Anchors link.AnchorSet
	// Deferred marks documents loaded only to answer anchor lookups.
	Deferred bool
}

// Dead returns the entries whose verdict is dead.
func (d *Document) Dead() []*link.Entry {
	var out []*link.Entry
	for _, e := range d.Entries {
		if e.Status() == link.StatusDead {
			out = append(out, e)
		}
	}
	return out
}
