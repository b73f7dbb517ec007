// internal/search/search.go

// Package search indexes generated ideas in Elasticsearch and queries them.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"idea-lab/internal/common/logger"
	"idea-lab/internal/models"
)

var ErrSearchFailed = errors.New("SEARCH_FAILED")

const indexMapping = `{
	"mappings": {
		"properties": {
			"id":             {"type": "keyword"},
			"businessTitle":  {"type": "text"},
			"machineName":    {"type": "text"},
			"description":    {"type": "text"},
			"industry":       {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
			"sourcePlatform": {"type": "keyword"},
			"createdAt":      {"type": "date"}
		}
	}
}`

// IdeaIndex is the business idea index.
type IdeaIndex struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

// Result is one page of search hits.
type Result struct {
	Ideas     []models.BusinessIdea `json:"ideas"`
	TotalHits int                   `json:"totalHits"`
}

func NewIdeaIndex(client *elasticsearch.Client, index string, log logger.Logger) *IdeaIndex {
	return &IdeaIndex{
		client: client,
		index:  index,
		logger: log.With(map[string]interface{}{"component": "idea_index", "index": index}),
	}
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (x *IdeaIndex) EnsureIndex(ctx context.Context) error {
	res, err := x.client.Indices.Exists([]string{x.index}, x.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: index exists: %v", ErrSearchFailed, err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = x.client.Indices.Create(x.index,
		x.client.Indices.Create.WithContext(ctx),
		x.client.Indices.Create.WithBody(bytes.NewReader([]byte(indexMapping))))
	if err != nil {
		return fmt.Errorf("%w: create index: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: create index: %s", ErrSearchFailed, res.Status())
	}
	x.logger.Info("created search index", nil)
	return nil
}

// Index stores ideas in one bulk request, keyed by idea id.
func (x *IdeaIndex) Index(ctx context.Context, ideas ...models.BusinessIdea) error {
	if len(ideas) == 0 {
		return nil
	}
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for i := range ideas {
		idea := ideas[i]
		idea.EnsureID()
		idea.IsUpvoted, idea.IsSaved = false, false
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": x.index, "_id": idea.ID}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(idea); err != nil {
			return err
		}
	}

	res, err := x.client.Bulk(&body, x.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: bulk index: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: bulk index: %s", ErrSearchFailed, res.Status())
	}

	var bulk struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulk); err != nil {
		return fmt.Errorf("%w: decode bulk response: %v", ErrSearchFailed, err)
	}
	if bulk.Errors {
		return fmt.Errorf("%w: bulk index reported item errors", ErrSearchFailed)
	}
	return nil
}

// IndexAsync indexes in the background. Failures are logged only.
func (x *IdeaIndex) IndexAsync(ctx context.Context, ideas ...models.BusinessIdea) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := x.Index(ctx, ideas...); err != nil {
			x.logger.Warn("indexing ideas failed", map[string]interface{}{
				"count": len(ideas),
				"error": err,
			})
		}
	}()
}

func (x *IdeaIndex) Search(ctx context.Context, q Query) (*Result, error) {
	body, err := json.Marshal(buildSearchQuery(q))
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{x.index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, x.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return &Result{}, nil
	}
	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("%w: %s: %s", ErrSearchFailed, res.Status(), msg)
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.BusinessIdea `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}

	out := &Result{TotalHits: parsed.Hits.Total.Value}
	for _, h := range parsed.Hits.Hits {
		out.Ideas = append(out.Ideas, h.Source)
	}
	return out, nil
}
