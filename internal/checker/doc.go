// Package checker orchestrates a link checking run over a populated document
// registry: cross-file anchors first, then remote links through the worker
// pool, then aggregation.
package checker
