package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"wearxture_back_end/internal/errs"
	"wearxture_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/gocql/gocql"
)

// ProductIndex indexe et recherche les produits.
type ProductIndex interface {
	Index(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id gocql.UUID) error
	Search(ctx context.Context, query string, limit int) ([]gocql.UUID, error)
}

type ElasticIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticIndex retourne nil si le client n'est pas configuré.
func NewElasticIndex(client *elasticsearch.Client, index string) *ElasticIndex {
	if client == nil {
		return nil
	}
	return &ElasticIndex{client: client, index: index}
}

type indexedProduct struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CategoryID  string   `json:"category_id"`
	Filter      string   `json:"filter"`
	Price       float64  `json:"price"`
	InStock     bool     `json:"in_stock"`
}

func (e *ElasticIndex) Index(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(indexedProduct{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Tags:        p.Tags,
		CategoryID:  p.CategoryID.String(),
		Filter:      p.Filter,
		Price:       p.EffectivePrice(),
		InStock:     p.InStock,
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: p.ID.String(),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return errs.Upstream("elasticsearch", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return errs.Upstream("elasticsearch", fmt.Errorf("indexation %s: %s", p.ID, res.Status()))
	}
	return nil
}

func (e *ElasticIndex) Delete(ctx context.Context, id gocql.UUID) error {
	req := esapi.DeleteRequest{Index: e.index, DocumentID: id.String()}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return errs.Upstream("elasticsearch", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return errs.Upstream("elasticsearch", fmt.Errorf("suppression %s: %s", id, res.Status()))
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source indexedProduct `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search retourne les ids des produits par ordre de pertinence.
func (e *ElasticIndex) Search(ctx context.Context, query string, limit int) ([]gocql.UUID, error) {
	var buf bytes.Buffer
	q := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^3", "description", "tags^2"},
				"fuzziness": "AUTO",
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %w", err)
	}

	req := esapi.SearchRequest{Index: []string{e.index}, Body: &buf}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, errs.Upstream("elasticsearch", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, errs.Upstream("elasticsearch", fmt.Errorf("recherche: %s", res.Status()))
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %w", err)
	}
	ids := make([]gocql.UUID, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := gocql.ParseUUID(hit.Source.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
