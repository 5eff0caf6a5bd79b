package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/couchpush-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/couchpush-cli/internal/core/domain"
	"github.com/custodia-labs/couchpush-cli/internal/core/ports/driven"
)

func TestReconcileDesignClaimsAndDeletes(t *testing.T) {
	store := memory.NewDocumentStore()
	store.Seed(domain.RevisionInfo{ID: "_design/kept", Rev: "4-aaa"})
	store.Seed(domain.RevisionInfo{ID: "_design/stale", Rev: "2-bbb"})

	reporter := domain.NewReporter(nil)
	docs := []domain.Document{
		{ID: "_design/kept"},
		{ID: "_design/new"},
	}

	docs, deletions, err := NewReconciler(store, reporter).ReconcileDesign(context.Background(), docs)

	require.NoError(t, err)
	assert.Equal(t, "4-aaa", docs[0].Rev)
	assert.Empty(t, docs[1].Rev)
	require.Len(t, deletions, 1)
	assert.Equal(t, driven.Deletion{ID: "_design/stale", Rev: "2-bbb"}, deletions[0])
}

func TestReconcileDesignIgnoresTombstones(t *testing.T) {
	store := memory.NewDocumentStore()
	store.Seed(domain.RevisionInfo{ID: "_design/gone", Rev: "5-ccc", Deleted: true})
	store.Seed(domain.RevisionInfo{ID: "_design/back", Rev: "3-ddd", Deleted: true})

	reporter := domain.NewReporter(nil)
	docs := []domain.Document{{ID: "_design/back"}}

	docs, deletions, err := NewReconciler(store, reporter).ReconcileDesign(context.Background(), docs)

	require.NoError(t, err)
	// A tombstoned match is recreated fresh, without its old revision,
	// and tombstones are never re-deleted.
	assert.Empty(t, docs[0].Rev)
	assert.Empty(t, deletions)
}

func TestReconcileLooseAttachesWithoutDeleting(t *testing.T) {
	store := memory.NewDocumentStore()
	store.Seed(domain.RevisionInfo{ID: "settings", Rev: "9-eee"})
	store.Seed(domain.RevisionInfo{ID: "unrelated", Rev: "1-fff"})

	reporter := domain.NewReporter(nil)
	docs := []domain.Document{
		{ID: "settings"},
		{ID: "fresh"},
	}

	docs, err := NewReconciler(store, reporter).ReconcileLoose(context.Background(), docs)

	require.NoError(t, err)
	assert.Equal(t, "9-eee", docs[0].Rev)
	assert.Empty(t, docs[1].Rev)
}

func TestReconcileLooseEmptyInput(t *testing.T) {
	store := memory.NewDocumentStore()
	reporter := domain.NewReporter(nil)

	docs, err := NewReconciler(store, reporter).ReconcileLoose(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, docs)
}
