// Package services coordinates a push run: concurrent assembly of the
// design and loose document pipelines, revision reconciliation against
// the remote store, the pre-flight error gate, and the single bulk
// write.
package services
