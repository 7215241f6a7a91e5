package checker

import (
	"time"

	"github.com/google/uuid"

	"github.com/JakeFAU/md-check-link/internal/link"
)

// FileResult holds one checked document and its entries in extraction order.
type FileResult struct {
	Path    string
	Entries []*link.Entry
	Dead    int
}

// Summary aggregates the verdicts of a run.
type Summary struct {
	RunID   uuid.UUID
	Files   []FileResult
	Total   int
	Alive   int
	Dead    int
	Ignored int
	Errors  int
	// Pending counts entries left unresolved by a cancelled run.
	Pending int
	Elapsed time.Duration
}

// Failed reports whether any entry is dead.
func (s Summary) Failed() bool {
	return s.Dead > 0
}
