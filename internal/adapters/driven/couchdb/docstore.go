package couchdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/custodia-labs/couchpush-cli/internal/core/domain"
	"github.com/custodia-labs/couchpush-cli/internal/core/ports/driven"
	"github.com/custodia-labs/couchpush-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store implements the document-store port over a CouchDB client.
type Store struct {
	client *Client
}

// NewStore creates a store backed by client.
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// allDocsRow is one row of an _all_docs response.
type allDocsRow struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Error string `json:"error"`
	Value struct {
		Rev     string `json:"rev"`
		Deleted bool   `json:"deleted"`
	} `json:"value"`
}

type allDocsResponse struct {
	Rows []allDocsRow `json:"rows"`
}

// Validate checks the database exists.
func (s *Store) Validate(ctx context.Context) error {
	if err := s.client.do(ctx, http.MethodHead, "", nil, nil, nil); err != nil {
		return fmt.Errorf("database %s: %w", s.client.DatabaseURL(), err)
	}
	return nil
}

// ListRange lists revisions for identifiers in [startKey, endKey).
func (s *Store) ListRange(ctx context.Context, startKey, endKey string) ([]domain.RevisionInfo, error) {
	query := url.Values{}
	query.Set("startkey", jsonKey(startKey))
	query.Set("endkey", jsonKey(endKey))
	query.Set("inclusive_end", "false")

	var resp allDocsResponse
	if err := s.client.do(ctx, http.MethodGet, "_all_docs", query, nil, &resp); err != nil {
		return nil, err
	}
	return rowsToInfos(resp.Rows), nil
}

// ListKeys lists revisions for an explicit identifier list.
func (s *Store) ListKeys(ctx context.Context, keys []string) ([]domain.RevisionInfo, error) {
	body := map[string][]string{"keys": keys}

	var resp allDocsResponse
	if err := s.client.do(ctx, http.MethodPost, "_all_docs", nil, body, &resp); err != nil {
		return nil, err
	}
	return rowsToInfos(resp.Rows), nil
}

// bulkDocsResult is one row of a _bulk_docs response.
type bulkDocsResult struct {
	ID     string `json:"id"`
	Rev    string `json:"rev"`
	OK     bool   `json:"ok"`
	Error  string `json:"error"`
	Reason string `json:"reason"`
}

// BulkWrite submits every upsert and deletion in one _bulk_docs call.
func (s *Store) BulkWrite(ctx context.Context, docs []json.RawMessage, deletions []driven.Deletion) ([]driven.BulkResult, error) {
	all := make([]json.RawMessage, 0, len(docs)+len(deletions))
	all = append(all, docs...)
	for _, del := range deletions {
		tombstone, err := json.Marshal(map[string]any{
			"_id":      del.ID,
			"_rev":     del.Rev,
			"_deleted": true,
		})
		if err != nil {
			return nil, fmt.Errorf("encode deletion %s: %w", del.ID, err)
		}
		all = append(all, tombstone)
	}

	logger.Info("bulk write: %d documents, %d deletions", len(docs), len(deletions))

	var results []bulkDocsResult
	body := map[string]any{"docs": all}
	if err := s.client.do(ctx, http.MethodPost, "_bulk_docs", nil, body, &results); err != nil {
		return nil, err
	}

	out := make([]driven.BulkResult, 0, len(results))
	for _, r := range results {
		out = append(out, driven.BulkResult{
			ID:        r.ID,
			OK:        r.Error == "",
			Rev:       r.Rev,
			ErrorType: r.Error,
			Reason:    r.Reason,
		})
	}
	return out, nil
}

// rowsToInfos drops not_found rows and converts the rest.
func rowsToInfos(rows []allDocsRow) []domain.RevisionInfo {
	infos := make([]domain.RevisionInfo, 0, len(rows))
	for _, row := range rows {
		if row.Error != "" || row.ID == "" {
			continue
		}
		infos = append(infos, domain.RevisionInfo{
			ID:      row.ID,
			Rev:     row.Value.Rev,
			Deleted: row.Value.Deleted,
		})
	}
	return infos
}

// jsonKey encodes a key for an _all_docs query parameter.
func jsonKey(key string) string {
	encoded, _ := json.Marshal(key)
	return string(encoded)
}
