// internal/search/search_test.go
package search

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idea-lab/internal/common/logger"
	"idea-lab/internal/models"
)

type fakeCluster struct {
	mu       sync.Mutex
	exists   bool
	requests []string
	bodies   map[string]string
	status   int
	response string
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, _ := io.ReadAll(r.Body)
	key := r.Method + " " + r.URL.Path
	f.requests = append(f.requests, key)
	f.bodies[key] = string(body)

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodHead:
		if f.exists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut:
		f.exists = true
		_, _ = w.Write([]byte(`{"acknowledged": true}`))
	default:
		if f.status != 0 {
			w.WriteHeader(f.status)
		}
		_, _ = w.Write([]byte(f.response))
	}
}

func newTestIndex(t *testing.T, f *fakeCluster) *IdeaIndex {
	f.bodies = map[string]string{}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{srv.URL},
		DisableRetry: true,
	})
	require.NoError(t, err)
	return NewIdeaIndex(es, "business_ideas", logger.NewTestLogger(t))
}

func TestEnsureIndex(t *testing.T) {
	f := &fakeCluster{}
	x := newTestIndex(t, f)

	require.NoError(t, x.EnsureIndex(context.Background()))
	require.NoError(t, x.EnsureIndex(context.Background()))

	assert.Equal(t, []string{
		"HEAD /business_ideas",
		"PUT /business_ideas",
		"HEAD /business_ideas",
	}, f.requests)
	assert.Contains(t, f.bodies["PUT /business_ideas"], `"industry"`)
}

func TestIndexBulk(t *testing.T) {
	f := &fakeCluster{response: `{"errors": false, "items": []}`}
	x := newTestIndex(t, f)

	ideas := []models.BusinessIdea{
		{MachineName: "Kiln", BusinessTitle: "Pottery", IsSaved: true},
		{ID: "fixed", MachineName: "Press", BusinessTitle: "Shirts"},
	}
	require.NoError(t, x.Index(context.Background(), ideas...))

	sc := bufio.NewScanner(strings.NewReader(f.bodies["POST /_bulk"]))
	var lines []map[string]interface{}
	for sc.Scan() {
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 4)
	meta := lines[0]["index"].(map[string]interface{})
	assert.Equal(t, ideas[0].StableID(), meta["_id"])
	assert.Equal(t, "business_ideas", meta["_index"])
	assert.Equal(t, "fixed", lines[2]["index"].(map[string]interface{})["_id"])
	_, saved := lines[1]["isSaved"]
	assert.False(t, saved, "per-user flags are not indexed")
}

func TestIndexBulkItemErrors(t *testing.T) {
	f := &fakeCluster{response: `{"errors": true, "items": []}`}
	x := newTestIndex(t, f)

	err := x.Index(context.Background(), models.BusinessIdea{ID: "a", BusinessTitle: "A"})
	assert.True(t, errors.Is(err, ErrSearchFailed))
}

func TestIndexNothing(t *testing.T) {
	f := &fakeCluster{}
	x := newTestIndex(t, f)
	require.NoError(t, x.Index(context.Background()))
	assert.Empty(t, f.requests)
}

func TestSearch(t *testing.T) {
	f := &fakeCluster{response: `{
		"hits": {
			"total": {"value": 2},
			"hits": [
				{"_source": {"id": "a", "businessTitle": "Pottery", "machineName": "Kiln", "industry": "Crafts"}},
				{"_source": {"id": "b", "businessTitle": "Candles", "machineName": "Wax Melter", "industry": "Crafts"}}
			]
		}
	}`}
	x := newTestIndex(t, f)

	res, err := x.Search(context.Background(), Query{Text: "pottery", Industry: "Crafts", Size: 500})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalHits)
	require.Len(t, res.Ideas, 2)
	assert.Equal(t, "Kiln", res.Ideas[0].MachineName)

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(f.bodies["POST /business_ideas/_search"]), &sent))
	assert.EqualValues(t, maxSize, sent["size"])
	assert.Contains(t, f.bodies["POST /business_ideas/_search"], `"industry.keyword":"Crafts"`)
	assert.Contains(t, f.bodies["POST /business_ideas/_search"], `"multi_match"`)
}

func TestSearchMissingIndex(t *testing.T) {
	f := &fakeCluster{status: http.StatusNotFound, response: `{"error": {"type": "index_not_found_exception"}}`}
	x := newTestIndex(t, f)

	res, err := x.Search(context.Background(), Query{Text: "x"})
	require.NoError(t, err)
	assert.Empty(t, res.Ideas)
}

func TestSearchServerError(t *testing.T) {
	f := &fakeCluster{status: http.StatusInternalServerError, response: `{"error": "boom"}`}
	x := newTestIndex(t, f)

	_, err := x.Search(context.Background(), Query{Text: "x"})
	assert.True(t, errors.Is(err, ErrSearchFailed))
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name     string
		q        Query
		wantSize int
		wantText bool
		wantSort bool
	}{
		{"empty uses match_all and sorts by recency", Query{}, defaultSize, false, true},
		{"text", Query{Text: "laser", Size: 5}, 5, true, false},
		{"industry only", Query{Industry: "Food"}, defaultSize, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := buildSearchQuery(tt.q)
			assert.Equal(t, tt.wantSize, body["size"])
			raw, _ := json.Marshal(body)
			assert.Equal(t, tt.wantText, strings.Contains(string(raw), "multi_match"))
			assert.Equal(t, !tt.wantText, strings.Contains(string(raw), "match_all"))
			_, sorted := body["sort"]
			assert.Equal(t, tt.wantSort, sorted)
		})
	}
}
