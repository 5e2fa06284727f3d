package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/maumeum/internal/models"
)

type recorded struct {
	method string
	path   string
	body   string
}

func newTestIndex(t *testing.T, status int, reply string) (*Index, *[]recorded) {
	t.Helper()

	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, body: string(b)})
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return New(client, "volunteers"), &calls
}

func TestIndexPosting(t *testing.T) {
	idx, calls := newTestIndex(t, http.StatusCreated, `{"result":"created"}`)

	err := idx.IndexPosting(context.Background(), &models.Posting{ID: "p1", Title: "Beach cleanup"})
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	got := (*calls)[0]
	assert.Equal(t, "/volunteers/_doc/p1", got.path)
	assert.Contains(t, got.body, `"title":"Beach cleanup"`)
}

func TestUpdatePostingStatus(t *testing.T) {
	idx, calls := newTestIndex(t, http.StatusOK, `{"result":"updated"}`)

	require.NoError(t, idx.UpdatePostingStatus(context.Background(), "p1", models.PostingClosed))

	require.Len(t, *calls, 1)
	got := (*calls)[0]
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/volunteers/_update/p1", got.path)

	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(got.body), &body))
	assert.Equal(t, "closed", body["doc"]["statusName"])
}

func TestSearch_DecodesHits(t *testing.T) {
	reply := `{"hits":{"total":{"value":2},"hits":[
		{"_source":{"id":"p1","title":"Beach cleanup","centName":"Busan"}},
		{"_source":{"id":"p2","title":"Library helper","centName":"Seoul"}}]}}`
	idx, calls := newTestIndex(t, http.StatusOK, reply)

	total, items, err := idx.Search(context.Background(), "clean", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, "Seoul", items[1].CentName)

	require.Len(t, *calls, 1)
	assert.Equal(t, "/volunteers/_search", (*calls)[0].path)
	assert.True(t, strings.Contains((*calls)[0].body, `"multi_match"`))
}

func TestSearch_ErrorStatus(t *testing.T) {
	idx, _ := newTestIndex(t, http.StatusBadRequest, `{"error":"bad query"}`)

	_, _, err := idx.Search(context.Background(), "x", 0, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestDeletePosting(t *testing.T) {
	idx, calls := newTestIndex(t, http.StatusOK, `{"result":"deleted"}`)

	require.NoError(t, idx.DeletePosting(context.Background(), "p1"))
	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodDelete, (*calls)[0].method)
	assert.Equal(t, "/volunteers/_doc/p1", (*calls)[0].path)
}

func TestDeletePosting_MissingDocument(t *testing.T) {
	idx, _ := newTestIndex(t, http.StatusNotFound, `{"result":"not_found"}`)
	assert.NoError(t, idx.DeletePosting(context.Background(), "gone"))

	idx, _ = newTestIndex(t, http.StatusInternalServerError, `{"error":"boom"}`)
	assert.Error(t, idx.DeletePosting(context.Background(), "p1"))
}
