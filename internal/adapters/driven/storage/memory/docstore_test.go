package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/couchpush-cli/internal/core/domain"
	"github.com/custodia-labs/couchpush-cli/internal/core/ports/driven"
)

func TestListRangeHalfOpenInterval(t *testing.T) {
	store := NewDocumentStore()
	store.Seed(domain.RevisionInfo{ID: "_design/app", Rev: "1-a"})
	store.Seed(domain.RevisionInfo{ID: "_design/zzz", Rev: "1-b"})
	store.Seed(domain.RevisionInfo{ID: "_design0", Rev: "1-c"})
	store.Seed(domain.RevisionInfo{ID: "loose", Rev: "1-d"})

	infos, err := store.ListRange(context.Background(), "_design/", "_design0")

	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "_design/app", infos[0].ID)
	assert.Equal(t, "_design/zzz", infos[1].ID)
}

func TestListKeysReturnsOnlySeeded(t *testing.T) {
	store := NewDocumentStore()
	store.Seed(domain.RevisionInfo{ID: "settings", Rev: "2-a"})

	infos, err := store.ListKeys(context.Background(), []string{"settings", "missing"})

	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "settings", infos[0].ID)
}

func TestBulkWriteAssignsRevisionsAndRecordsCall(t *testing.T) {
	store := NewDocumentStore()

	docs := []json.RawMessage{
		json.RawMessage(`{"_id":"_design/foo"}`),
		json.RawMessage(`{"_id":"settings"}`),
	}
	results, err := store.BulkWrite(context.Background(), docs, nil)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].OK)
	assert.NotEmpty(t, results[0].Rev)

	info, ok := store.Revision("_design/foo")
	require.True(t, ok)
	assert.Equal(t, results[0].Rev, info.Rev)

	require.Len(t, store.Calls(), 1)
	assert.Len(t, store.Calls()[0].Docs, 2)
}

func TestBulkWriteDeletionsTombstone(t *testing.T) {
	store := NewDocumentStore()
	store.Seed(domain.RevisionInfo{ID: "_design/old", Rev: "3-x"})

	results, err := store.BulkWrite(context.Background(), nil,
		[]driven.Deletion{{ID: "_design/old", Rev: "3-x"}})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].OK)

	info, ok := store.Revision("_design/old")
	require.True(t, ok)
	assert.True(t, info.Deleted)
	assert.Empty(t, store.DesignIDs())
}

func TestBulkWriteRejection(t *testing.T) {
	store := NewDocumentStore()
	store.RejectIDs = map[string]string{"blocked": "forbidden by validator"}

	results, err := store.BulkWrite(context.Background(), []json.RawMessage{
		json.RawMessage(`{"_id":"blocked"}`),
		json.RawMessage(`{"_id":"allowed"}`),
	}, nil)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.False(t, results[0].OK)
	assert.Equal(t, "forbidden", results[0].ErrorType)
	assert.True(t, results[1].OK)

	_, rejected := store.Revision("blocked")
	assert.False(t, rejected)
}
