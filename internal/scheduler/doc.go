// Package scheduler resolves pending remote links with a bounded worker pool.
// Each distinct link is dispatched at most once per run and its verdict is
// written to every entry that carries it.
package scheduler
