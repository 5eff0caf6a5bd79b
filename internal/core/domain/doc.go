// Package domain holds the core types of couchpush: the tagged-union
// document value, assembled documents, attachments, remote revision
// rows, and the diagnostic reporter every component records into.
// It has no dependencies on adapters or the filesystem.
package domain
