package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-user-accounts/internal/domain/entity"
)

// UserIndex mirrors public profile fields into an Elasticsearch index.
type UserIndex struct {
	ES        *elasticsearch.Client
	IndexName string
	Timeout   time.Duration
}

func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	return &UserIndex{ES: es, IndexName: index, Timeout: 3 * time.Second}
}

func (x *UserIndex) enabled() bool { return x != nil && x.ES != nil && x.IndexName != "" }

func (x *UserIndex) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if x.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, x.Timeout)
}

func document(u *entity.User) map[string]any {
	return map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"phone":      u.Phone,
		"image":      u.Image,
		"is_active":  u.IsActive,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func (x *UserIndex) Index(ctx context.Context, u *entity.User) error {
	if !x.enabled() {
		return nil
	}
	b, err := json.Marshal(document(u))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: u.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := x.withTimeout(ctx)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (x *UserIndex) Delete(ctx context.Context, id string) error {
	if !x.enabled() {
		return nil
	}
	req := esapi.DeleteRequest{Index: x.IndexName, DocumentID: id}
	c, cancel := x.withTimeout(ctx)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search performs a multi_match search on email and name.
func (x *UserIndex) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if !x.enabled() {
		return []map[string]any{}, nil
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := x.withTimeout(ctx)
	defer cancel()

	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.IndexName),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

const usersMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "keyword"},
      "email":      {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "name":       {"type": "text"},
      "phone":      {"type": "keyword"},
      "image":      {"type": "keyword", "index": false},
      "is_active":  {"type": "boolean"},
      "created_at": {"type": "date"},
      "updated_at": {"type": "date"}
    }
  }
}`

// EnsureIndex creates the users index with its mapping when it does not exist.
func (x *UserIndex) EnsureIndex(ctx context.Context) error {
	if !x.enabled() {
		return nil
	}
	c, cancel := x.withTimeout(ctx)
	defer cancel()

	exists, err := esapi.IndicesExistsRequest{Index: []string{x.IndexName}}.Do(c, x.ES)
	if err != nil {
		return err
	}
	_ = exists.Body.Close()
	if exists.StatusCode == http.StatusOK {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{Index: x.IndexName, Body: bytes.NewReader([]byte(usersMapping))}.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return fmt.Errorf("es create index: %s", res.Status())
	}
	return nil
}
