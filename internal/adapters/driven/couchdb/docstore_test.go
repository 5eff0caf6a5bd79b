package couchdb

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/couchpush-cli/internal/core/domain"
	"github.com/custodia-labs/couchpush-cli/internal/core/ports/driven"
)

// capturedRequest records what the fake server saw.
type capturedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Body   []byte
	Auth   string
}

func newFakeServer(t *testing.T, status int, response string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Method = r.Method
		captured.Path = r.URL.Path
		captured.Query = map[string]string{}
		for key := range r.URL.Query() {
			captured.Query[key] = r.URL.Query().Get(key)
		}
		captured.Body, _ = io.ReadAll(r.Body)
		captured.Auth = r.Header.Get("Authorization")
		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(server.Close)
	return server, captured
}

func newStore(t *testing.T, serverURL string, opts ...Option) *Store {
	t.Helper()
	client, err := NewClient(serverURL+"/myapp", opts...)
	require.NoError(t, err)
	return NewStore(client)
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "bad scheme", url: "ftp://host/db"},
		{name: "no database path", url: "http://host:5984"},
		{name: "slash-only path", url: "http://host:5984/"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewClient(tc.url)
			assert.Error(t, err)
		})
	}
}

func TestValidateExistingDatabase(t *testing.T) {
	server, captured := newFakeServer(t, http.StatusOK, "")
	store := newStore(t, server.URL)

	require.NoError(t, store.Validate(context.Background()))
	assert.Equal(t, http.MethodHead, captured.Method)
	assert.Equal(t, "/myapp", captured.Path)
}

func TestValidateMissingDatabase(t *testing.T) {
	server, _ := newFakeServer(t, http.StatusNotFound, `{"error":"not_found","reason":"Database does not exist."}`)
	store := newStore(t, server.URL)

	err := store.Validate(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestListRangeQueryAndDecode(t *testing.T) {
	response := `{"rows":[
		{"id":"_design/foo","key":"_design/foo","value":{"rev":"3-abc"}},
		{"id":"_design/bar","key":"_design/bar","value":{"rev":"5-def","deleted":true}},
		{"key":"_design/gone","error":"not_found"}
	]}`
	server, captured := newFakeServer(t, http.StatusOK, response)
	store := newStore(t, server.URL)

	infos, err := store.ListRange(context.Background(), "_design/", "_design0")

	require.NoError(t, err)
	assert.Equal(t, "/myapp/_all_docs", captured.Path)
	assert.Equal(t, `"_design/"`, captured.Query["startkey"])
	assert.Equal(t, `"_design0"`, captured.Query["endkey"])
	assert.Equal(t, "false", captured.Query["inclusive_end"])

	require.Len(t, infos, 2)
	assert.Equal(t, domain.RevisionInfo{ID: "_design/foo", Rev: "3-abc"}, infos[0])
	assert.Equal(t, domain.RevisionInfo{ID: "_design/bar", Rev: "5-def", Deleted: true}, infos[1])
}

func TestListKeysPostsBody(t *testing.T) {
	response := `{"rows":[{"id":"settings","key":"settings","value":{"rev":"1-aaa"}}]}`
	server, captured := newFakeServer(t, http.StatusOK, response)
	store := newStore(t, server.URL)

	infos, err := store.ListKeys(context.Background(), []string{"settings", "missing"})

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "/myapp/_all_docs", captured.Path)
	assert.JSONEq(t, `{"keys":["settings","missing"]}`, string(captured.Body))

	require.Len(t, infos, 1)
	assert.Equal(t, "1-aaa", infos[0].Rev)
}

func TestBulkWritePayloadAndResults(t *testing.T) {
	response := `[
		{"id":"_design/foo","rev":"4-new","ok":true},
		{"id":"settings","error":"conflict","reason":"Document update conflict."}
	]`
	server, captured := newFakeServer(t, http.StatusCreated, response)
	store := newStore(t, server.URL)

	docs := []json.RawMessage{json.RawMessage(`{"_id":"_design/foo","map":"x"}`)}
	deletions := []driven.Deletion{{ID: "_design/old", Rev: "7-xyz"}}

	results, err := store.BulkWrite(context.Background(), docs, deletions)

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "/myapp/_bulk_docs", captured.Path)
	assert.JSONEq(t, `{"docs":[
		{"_id":"_design/foo","map":"x"},
		{"_id":"_design/old","_rev":"7-xyz","_deleted":true}
	]}`, string(captured.Body))

	require.Len(t, results, 2)
	assert.Equal(t, driven.BulkResult{ID: "_design/foo", OK: true, Rev: "4-new"}, results[0])
	assert.Equal(t, driven.BulkResult{ID: "settings", ErrorType: "conflict", Reason: "Document update conflict."}, results[1])
}

func TestRequestsCarryBasicAuth(t *testing.T) {
	server, captured := newFakeServer(t, http.StatusOK, "")
	store := newStore(t, server.URL, WithCredentials("admin", "secret"))

	require.NoError(t, store.Validate(context.Background()))
	assert.NotEmpty(t, captured.Auth)
	assert.Contains(t, captured.Auth, "Basic ")
}

func TestServerErrorIncludesReason(t *testing.T) {
	server, _ := newFakeServer(t, http.StatusUnauthorized, `{"error":"unauthorized","reason":"Name or password is incorrect."}`)
	store := newStore(t, server.URL)

	_, err := store.ListRange(context.Background(), "_design/", "_design0")

	require.Error(t, err)
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusUnauthorized, serverErr.Status)
	assert.Equal(t, "unauthorized", serverErr.Err)
	assert.Equal(t, "Name or password is incorrect.", serverErr.Reason)
}
