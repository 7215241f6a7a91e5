// Package document owns the set of loaded Markdown documents, their link
// entries and anchors, and the index from link string to every entry that
// carries it.
//
// Documents requested explicitly are fully loaded: suppression comments are
// stripped, links and anchors extracted, and every link classified. Documents
// that only show up as the target of a "file.md#fragment" link are queued and
// loaded afterwards by LoadDeferred, keeping only their anchors.
package document
