// Package search keeps an Elasticsearch index of pokemons and queries it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/pokedex/services/catalog/internal/models"
)

const DefaultIndex = "pokemons"

type Indexer interface {
	Index(ctx context.Context, p *models.Pokemon) error
	Delete(ctx context.Context, id int) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Pokemon, error)
}

type Config struct {
	URL      string
	Username string
	Password string
	Index    string
}

// NewClient connects and checks the cluster answers before returning.
func NewClient(cfg Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch info: %s: %s", res.Status(), body)
	}
	return client, nil
}

type ESIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewESIndex(es *elasticsearch.Client, index string) *ESIndex {
	if index == "" {
		index = DefaultIndex
	}
	return &ESIndex{ES: es, IndexName: index}
}

func (x *ESIndex) Index(ctx context.Context, p *models.Pokemon) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(p); err != nil {
		return fmt.Errorf("index encode: %w", err)
	}

	res, err := x.ES.Index(x.IndexName, &buf,
		x.ES.Index.WithContext(ctx),
		x.ES.Index.WithDocumentID(strconv.Itoa(p.ID)),
	)
	if err != nil {
		return fmt.Errorf("index pokemon %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index pokemon %d: %s", p.ID, res.Status())
	}
	return nil
}

func (x *ESIndex) Delete(ctx context.Context, id int) error {
	res, err := x.ES.Delete(x.IndexName, strconv.Itoa(id), x.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete pokemon %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete pokemon %d: %s", id, res.Status())
	}
	return nil
}

func (x *ESIndex) Search(ctx context.Context, query string, from, size int) (int64, []models.Pokemon, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name.english^2", "name.french", "name.japanese", "name.chinese", "type"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search encode: %w", err)
	}

	res, err := x.ES.Search(
		x.ES.Search.WithContext(ctx),
		x.ES.Search.WithIndex(x.IndexName),
		x.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Pokemon `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("search decode: %w", err)
	}

	items := make([]models.Pokemon, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		items[i] = hit.Source
	}
	return r.Hits.Total.Value, items, nil
}
