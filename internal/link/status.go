package link

// Status is the verdict attached to a link occurrence.
type Status int32

// Supported verdicts. Pending is the only non-terminal value.
const (
	StatusPending Status = iota
	StatusAlive
	StatusDead
	StatusIgnored
	StatusError
)

// String returns the lowercase verdict name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAlive:
		return "alive"
	case StatusDead:
		return "dead"
	case StatusIgnored:
		return "ignored"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is a final verdict.
func (s Status) Terminal() bool {
	return s >= StatusAlive && s <= StatusError
}

// Kind is the category a link was classified into.
type Kind string

// Link categories.
const (
	KindIgnored     Kind = "ignored"
	KindAnchor      Kind = "anchor"
	KindMailto      Kind = "mailto"
	KindRemote      Kind = "remote"
	KindLocalFile   Kind = "local-file"
	KindLocalAnchor Kind = "local-file-anchor"
)
