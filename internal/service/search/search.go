package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/maumeum/internal/models"
)

// Index keeps volunteer postings searchable in Elasticsearch.
type Index struct {
	Client *elasticsearch.Client
	Name   string
}

func New(client *elasticsearch.Client, name string) *Index {
	return &Index{Client: client, Name: name}
}

func (i *Index) IndexPosting(ctx context.Context, p *models.Posting) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(p); err != nil {
		return fmt.Errorf("search: encode posting: %w", err)
	}

	res, err := i.Client.Index(i.Name, &buf,
		i.Client.Index.WithContext(ctx),
		i.Client.Index.WithDocumentID(p.ID),
	)
	if err != nil {
		return fmt.Errorf("search: index posting: %w", err)
	}
	return checkResponse("index posting", res)
}

func (i *Index) UpdatePostingStatus(ctx context.Context, id string, status models.PostingStatus) error {
	body := map[string]interface{}{
		"doc": map[string]interface{}{
			"statusName": status,
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return fmt.Errorf("search: encode status: %w", err)
	}

	res, err := i.Client.Update(i.Name, id, &buf, i.Client.Update.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: update status: %w", err)
	}
	return checkResponse("update status", res)
}

// DeletePosting drops a posting from the index. A document that is already
// gone is not an error.
func (i *Index) DeletePosting(ctx context.Context, id string) error {
	res, err := i.Client.Delete(i.Name, id, i.Client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: delete posting: %w", err)
	}
	if res.StatusCode == http.StatusNotFound {
		res.Body.Close()
		return nil
	}
	return checkResponse("delete posting", res)
}

func (i *Index) Search(ctx context.Context, query string, from, size int) (int64, []models.Posting, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"title^2", "content", "centName"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := i.Client.Search(
		i.Client.Search.WithContext(ctx),
		i.Client.Search.WithIndex(i.Name),
		i.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: query: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search: query returned %s: %s", res.Status(), msg)
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Source models.Posting `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search: decode response: %w", err)
	}

	postings := make([]models.Posting, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		postings[i] = hit.Source
	}
	return r.Hits.Total.Value, postings, nil
}

func checkResponse(op string, res *esapi.Response) error {
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("search: %s returned %s: %s", op, res.Status(), msg)
	}
	return nil
}
