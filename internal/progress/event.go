package progress

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Stage denotes the milestone an Event records.
type Stage string

// Supported stages.
const (
	StageRunStart     Stage = "RUN_START"
	StageLinkResolved Stage = "LINK_RESOLVED"
	StageRunDone      Stage = "RUN_DONE"
)

// StatusClass is a coarse HTTP response grouping.
type StatusClass string

// HTTP status classes; StatusNone marks resolutions without a response.
const (
	Status2xx   StatusClass = "2xx"
	Status3xx   StatusClass = "3xx"
	Status4xx   StatusClass = "4xx"
	Status5xx   StatusClass = "5xx"
	StatusNone  StatusClass = "none"
	StatusOther StatusClass = "other"
)

// Event captures one step of a checking run.
type Event struct {
	// RunID identifies the run in 16-byte UUID form.
	RunID [16]byte
	TS    time.Time
	Stage Stage
	// Link is the resolved link string for LINK_RESOLVED events.
	Link string
	// Host is the lowercase host of a remote link.
	Host string
	// Verdict is the status name the link resolved to.
	Verdict string
	// StatusClass groups the last HTTP status seen.
	StatusClass StatusClass
	// Attempts counts HEAD probes, retries included.
	Attempts int
	// Occurrences is how many link entries received the verdict.
	Occurrences int
	// Links and Dead summarize a run on RUN_DONE.
	Links int
	Dead  int
	Dur   time.Duration
	Note  string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.RunID == [16]byte{} {
		return errors.New("run id is required")
	}
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone:
	case StageLinkResolved:
		if e.Link == "" {
			return errors.New("link resolved requires link")
		}
		if e.Verdict == "" {
			return errors.New("link resolved requires verdict")
		}
	default:
		return fmt.Errorf("unknown stage %q", e.Stage)
	}
	if e.Dur < 0 {
		return errors.New("duration must be >= 0")
	}
	return nil
}

// RunUUID converts the binary run ID to uuid.UUID.
func (e Event) RunUUID() uuid.UUID {
	return uuid.UUID(e.RunID)
}

// UUIDToBytes encodes a uuid.UUID into the Event form.
func UUIDToBytes(id uuid.UUID) [16]byte {
	var dest [16]byte
	copy(dest[:], id[:])
	return dest
}

// ClassifyStatus groups HTTP status codes. Zero means no response arrived.
func ClassifyStatus(code int) StatusClass {
	switch {
	case code == 0:
		return StatusNone
	case code >= 200 && code < 300:
		return Status2xx
	case code >= 300 && code < 400:
		return Status3xx
	case code >= 400 && code < 500:
		return Status4xx
	case code >= 500 && code < 600:
		return Status5xx
	default:
		return StatusOther
	}
}
