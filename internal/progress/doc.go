// Package progress carries link-checking events from the scheduler to
// pluggable sinks. Emitters never block: events are buffered, batched on a
// background goroutine, and handed to sinks such as structured logs or
// Prometheus collectors.
package progress
