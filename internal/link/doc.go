// Package link defines link entries and verdicts and classifies raw link strings.
//
// A raw link extracted from a document is rewritten by the configured rewrite
// rules, tested against the ignore rules, and then categorized as a
// same-document anchor, a mailto address, a remote URL, or a local file
// reference (optionally carrying a fragment that targets another document).
// Every category except remote URLs and local fragments is resolved on the
// spot; those two stay pending until the document registry and the scheduler
// settle them.
package link
