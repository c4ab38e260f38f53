package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
)

type recorded struct {
	method string
	path   string
	body   map[string]any
}

func newTestIndex(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*UserIndex, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path}
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		calls = append(calls, rec)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewUserIndex(es, "users"), &calls
}

func TestIndexDocument(t *testing.T) {
	idx, calls := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	u := &entity.User{ID: "abc", Email: "a@example.com", Name: "A", Password: "hash", CreatedAt: time.Now()}
	require.NoError(t, idx.Index(context.Background(), u))

	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Equal(t, http.MethodPut, c.method)
	assert.Equal(t, "/users/_doc/abc", c.path)
	assert.Equal(t, "a@example.com", c.body["email"])
	assert.NotContains(t, c.body, "password")
}

func TestIndexErrorStatus(t *testing.T) {
	idx, _ := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad"}`))
	})
	err := idx.Index(context.Background(), &entity.User{ID: "abc"})
	assert.Error(t, err)
}

func TestDeleteIgnoresMissing(t *testing.T) {
	idx, calls := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	})
	require.NoError(t, idx.Delete(context.Background(), "abc"))
	assert.Equal(t, http.MethodDelete, (*calls)[0].method)
}

func TestSearch(t *testing.T) {
	idx, calls := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_id":"1","_source":{"id":"1","email":"ann@example.com"}}]}}`))
	})

	hits, err := idx.Search(context.Background(), "ann", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "ann@example.com", hits[0]["email"])

	c := (*calls)[0]
	assert.True(t, strings.HasSuffix(c.path, "/_search"))
	assert.EqualValues(t, 5, c.body["size"])
}

func TestDisabledIndexIsNoop(t *testing.T) {
	var idx *UserIndex
	assert.NoError(t, idx.Index(context.Background(), &entity.User{ID: "1"}))
	assert.NoError(t, idx.Delete(context.Background(), "1"))
	hits, err := idx.Search(context.Background(), "x", 1)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestEnsureIndexCreatesWhenMissing(t *testing.T) {
	idx, calls := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	})

	require.NoError(t, idx.EnsureIndex(context.Background()))
	require.Len(t, *calls, 2)
	assert.Equal(t, http.MethodPut, (*calls)[1].method)
	assert.Contains(t, (*calls)[1].body, "mappings")
}

func TestEnsureIndexSkipsExisting(t *testing.T) {
	idx, calls := newTestIndex(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, idx.EnsureIndex(context.Background()))
	assert.Len(t, *calls, 1)
}
