package driven

import (
	"context"
	"encoding/json"

	"github.com/custodia-labs/couchpush-cli/internal/core/domain"
)

// Deletion schedules removal of a remote document at a known revision.
type Deletion struct {
	ID  string
	Rev string
}

// BulkResult is the per-document outcome of a bulk write.
type BulkResult struct {
	// ID is the document the result refers to.
	ID string

	// OK reports whether the store accepted the change.
	OK bool

	// Rev is the new revision token on success.
	Rev string

	// ErrorType is the store-supplied error class (e.g. "conflict").
	ErrorType string

	// Reason is the store-supplied human-readable explanation.
	Reason string
}

// DocumentStore is the remote document-store collaborator.
// The core only needs revision listings and one bulk write per run.
type DocumentStore interface {
	// Validate checks the target database exists and is reachable.
	Validate(ctx context.Context) error

	// ListRange returns revision rows for identifiers within
	// [startKey, endKey), including tombstones when the store
	// reports them.
	ListRange(ctx context.Context, startKey, endKey string) ([]domain.RevisionInfo, error)

	// ListKeys returns revision rows for an explicit identifier list.
	// Identifiers unknown to the store are omitted from the result.
	ListKeys(ctx context.Context, keys []string) ([]domain.RevisionInfo, error)

	// BulkWrite submits every upsert and deletion in a single request
	// and returns the per-document outcomes. A returned error means
	// the request itself failed and nothing was written.
	BulkWrite(ctx context.Context, docs []json.RawMessage, deletions []Deletion) ([]BulkResult, error)
}
