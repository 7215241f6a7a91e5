// Package sinks implements concrete progress consumers for structured logging
// and Prometheus metrics. Each sink satisfies progress.Sink.
package sinks
