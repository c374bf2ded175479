package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"helperhive/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchClient indexes provider documents and serves the nearby
// provider search.
type ElasticsearchClient struct {
	client *elasticsearch.Client
	config Config
}

type Config struct {
	URL        string
	Username   string
	Password   string
	Index      string
	MaxRetries int
}

func NewElasticsearchClient(cfg Config) (*ElasticsearchClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &ElasticsearchClient{
		client: es,
		config: cfg,
	}

	if err := client.ensureIndex(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return client, nil
}

func (c *ElasticsearchClient) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	mapping := map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type": "long",
				},
				"first_name": map[string]interface{}{
					"type": "text",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{
							"type":         "keyword",
							"ignore_above": 256,
						},
					},
				},
				"last_name": map[string]interface{}{
					"type": "text",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{
							"type":         "keyword",
							"ignore_above": 256,
						},
					},
				},
				"bio": map[string]interface{}{
					"type": "text",
				},
				"service_ids": map[string]interface{}{
					"type": "long",
				},
				"categories": map[string]interface{}{
					"type": "keyword",
				},
				"rating_average": map[string]interface{}{
					"type": "double",
				},
				"rating_count": map[string]interface{}{
					"type": "integer",
				},
				"is_available": map[string]interface{}{
					"type": "boolean",
				},
				"approved": map[string]interface{}{
					"type": "boolean",
				},
				"location": map[string]interface{}{
					"type": "geo_point",
				},
				"updated_at": map[string]interface{}{
					"type": "date",
				},
			},
		},
	}

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  strings.NewReader(string(mappingJSON)),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

// IndexProvider upserts one provider document.
func (c *ElasticsearchClient) IndexProvider(ctx context.Context, doc *models.ProviderDocument) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal provider document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(doc.ID, 10),
		Body:       strings.NewReader(string(docJSON)),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index provider: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to index provider %d: %s", doc.ID, res.String())
	}

	return nil
}

func (c *ElasticsearchClient) DeleteProvider(ctx context.Context, providerID int64) error {
	req := esapi.DeleteRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(providerID, 10),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to delete provider: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("failed to delete provider %d: %s", providerID, res.String())
	}

	return nil
}

// NearbyProviders finds approved, available providers within radiusKm of the
// given point, closest first. Optional filters narrow by service and by a
// free-text query over name and bio.
func (c *ElasticsearchClient) NearbyProviders(ctx context.Context, req *models.NearbyProvidersRequest, limit int) ([]models.ProviderDocument, error) {
	radiusKm := req.RadiusKm
	if radiusKm <= 0 {
		radiusKm = 25
	}
	if limit <= 0 {
		limit = 20
	}

	filters := []map[string]interface{}{
		{"term": map[string]interface{}{"approved": true}},
		{"term": map[string]interface{}{"is_available": true}},
		{
			"geo_distance": map[string]interface{}{
				"distance": fmt.Sprintf("%.1fkm", radiusKm),
				"location": map[string]interface{}{
					"lon": req.Longitude,
					"lat": req.Latitude,
				},
			},
		},
	}
	if req.ServiceID > 0 {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"service_ids": req.ServiceID},
		})
	}

	boolQuery := map[string]interface{}{
		"filter": filters,
	}
	if req.Query != "" {
		boolQuery["must"] = []map[string]interface{}{
			{
				"multi_match": map[string]interface{}{
					"query":  req.Query,
					"fields": []string{"first_name", "last_name", "bio", "categories"},
				},
			},
		}
	}

	searchRequest := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []map[string]interface{}{
			{
				"_geo_distance": map[string]interface{}{
					"location": map[string]interface{}{
						"lon": req.Longitude,
						"lat": req.Latitude,
					},
					"order": "asc",
					"unit":  "km",
				},
			},
		},
		"size": limit,
	}

	searchJSON, err := json.Marshal(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	searchReq := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  strings.NewReader(string(searchJSON)),
	}

	res, err := searchReq.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source models.ProviderDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	providers := make([]models.ProviderDocument, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		providers[i] = hit.Source
	}

	return providers, nil
}

// HealthCheck verifies the cluster responds.
func (c *ElasticsearchClient) HealthCheck(ctx context.Context) error {
	res, err := c.client.Info()
	if err != nil {
		return fmt.Errorf("failed to get Elasticsearch info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("Elasticsearch health check failed: %s", res.String())
	}

	return nil
}
