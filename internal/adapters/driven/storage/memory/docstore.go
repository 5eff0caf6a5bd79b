// Package memory provides an in-memory implementation of the document
// store port. It backs service-level tests and dry runs where no
// CouchDB instance is reachable.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/couchpush-cli/internal/core/domain"
	"github.com/custodia-labs/couchpush-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// BulkCall records one BulkWrite invocation for inspection.
type BulkCall struct {
	Docs      []json.RawMessage
	Deletions []driven.Deletion
}

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// Revisions are seeded with Seed and every write is recorded.
type DocumentStore struct {
	mu        sync.RWMutex
	revisions map[string]domain.RevisionInfo
	revSeq    int
	calls     []BulkCall

	// FailWrite, when set, makes BulkWrite fail at request level.
	FailWrite error

	// RejectIDs lists identifiers BulkWrite reports per-item errors for.
	RejectIDs map[string]string
}

// NewDocumentStore creates an empty in-memory store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{revisions: make(map[string]domain.RevisionInfo)}
}

// Seed installs a remote revision row.
func (s *DocumentStore) Seed(info domain.RevisionInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revisions[info.ID] = info
}

// Validate always succeeds; the in-memory database exists by
// definition.
func (s *DocumentStore) Validate(_ context.Context) error {
	return nil
}

// ListRange returns seeded rows within [startKey, endKey), sorted.
func (s *DocumentStore) ListRange(_ context.Context, startKey, endKey string) ([]domain.RevisionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var infos []domain.RevisionInfo
	for id, info := range s.revisions {
		if id >= startKey && id < endKey {
			infos = append(infos, info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// ListKeys returns seeded rows for exactly the requested keys.
func (s *DocumentStore) ListKeys(_ context.Context, keys []string) ([]domain.RevisionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var infos []domain.RevisionInfo
	for _, key := range keys {
		if info, ok := s.revisions[key]; ok {
			infos = append(infos, info)
		}
	}
	return infos, nil
}

// BulkWrite records the call and applies it to the revision map.
func (s *DocumentStore) BulkWrite(_ context.Context, docs []json.RawMessage, deletions []driven.Deletion) ([]driven.BulkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrite != nil {
		return nil, s.FailWrite
	}
	s.calls = append(s.calls, BulkCall{Docs: docs, Deletions: deletions})

	var results []driven.BulkResult
	for _, raw := range docs {
		var envelope struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("malformed document: %w", err)
		}

		if reason, rejected := s.RejectIDs[envelope.ID]; rejected {
			results = append(results, driven.BulkResult{ID: envelope.ID, ErrorType: "forbidden", Reason: reason})
			continue
		}

		s.revSeq++
		rev := fmt.Sprintf("%d-mem", s.revSeq)
		s.revisions[envelope.ID] = domain.RevisionInfo{ID: envelope.ID, Rev: rev}
		results = append(results, driven.BulkResult{ID: envelope.ID, OK: true, Rev: rev})
	}

	for _, del := range deletions {
		s.revSeq++
		s.revisions[del.ID] = domain.RevisionInfo{
			ID:      del.ID,
			Rev:     fmt.Sprintf("%d-mem", s.revSeq),
			Deleted: true,
		}
		results = append(results, driven.BulkResult{ID: del.ID, OK: true})
	}
	return results, nil
}

// Calls returns every recorded BulkWrite invocation.
func (s *DocumentStore) Calls() []BulkCall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]BulkCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// Revision returns the current revision row for id.
func (s *DocumentStore) Revision(id string) (domain.RevisionInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.revisions[id]
	return info, ok
}

// DesignIDs lists non-deleted identifiers in the design namespace.
func (s *DocumentStore) DesignIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, info := range s.revisions {
		if strings.HasPrefix(id, domain.DesignPrefix) && !info.Deleted {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
