package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/couchpush-cli/internal/core/domain"
	"github.com/custodia-labs/couchpush-cli/internal/core/ports/driven"
	"github.com/custodia-labs/couchpush-cli/internal/logger"
)

// designRangeEnd bounds the design-document key range. "0" is the
// first character after "/" in the store's collation, so the range
// ["_design/", "_design0") covers exactly the namespace.
const designRangeEnd = "_design0"

// Reconciler merges remote revisions into freshly assembled documents
// and computes the delete set for the design namespace.
type Reconciler struct {
	store    driven.DocumentStore
	reporter *domain.Reporter
}

// NewReconciler creates a reconciler against the given store.
func NewReconciler(store driven.DocumentStore, reporter *domain.Reporter) *Reconciler {
	return &Reconciler{store: store, reporter: reporter}
}

// ReconcileDesign fetches the full design-namespace revision range,
// attaches revisions to matching documents, and schedules every
// unclaimed remote design document for deletion. This is how removing
// a design directory locally removes the document remotely.
func (r *Reconciler) ReconcileDesign(ctx context.Context, docs []domain.Document) ([]domain.Document, []driven.Deletion, error) {
	infos, err := r.store.ListRange(ctx, domain.DesignPrefix, designRangeEnd)
	if err != nil {
		r.reporter.Errorf(domain.KindRemote, domain.DesignPrefix, "list revisions: %v", err)
		return nil, nil, fmt.Errorf("list design revisions: %w", err)
	}

	pending := indexByID(infos)
	docs = claim(docs, pending)

	var deletions []driven.Deletion
	for _, info := range infos {
		if _, unclaimed := pending[info.ID]; !unclaimed || info.Deleted {
			continue
		}
		logger.Debug("scheduling deletion of %s (rev %s)", info.ID, info.Rev)
		deletions = append(deletions, driven.Deletion{ID: info.ID, Rev: info.Rev})
	}
	return docs, deletions, nil
}

// ReconcileLoose fetches revisions for exactly the built identifiers
// and attaches them. Loose documents are never scheduled for deletion;
// only the design namespace is pruned.
func (r *Reconciler) ReconcileLoose(ctx context.Context, docs []domain.Document) ([]domain.Document, error) {
	if len(docs) == 0 {
		return docs, nil
	}

	keys := make([]string, len(docs))
	for i, doc := range docs {
		keys[i] = doc.ID
	}

	infos, err := r.store.ListKeys(ctx, keys)
	if err != nil {
		r.reporter.Errorf(domain.KindRemote, "", "list revisions: %v", err)
		return nil, fmt.Errorf("list document revisions: %w", err)
	}

	return claim(docs, indexByID(infos)), nil
}

// claim attaches the revision of every matching non-deleted remote
// entry and removes it from pending.
func claim(docs []domain.Document, pending map[string]domain.RevisionInfo) []domain.Document {
	for i := range docs {
		info, ok := pending[docs[i].ID]
		if !ok {
			continue
		}
		if !info.Deleted {
			docs[i].Rev = info.Rev
		}
		delete(pending, docs[i].ID)
	}
	return docs
}

func indexByID(infos []domain.RevisionInfo) map[string]domain.RevisionInfo {
	m := make(map[string]domain.RevisionInfo, len(infos))
	for _, info := range infos {
		m[info.ID] = info
	}
	return m
}
