package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"maitred/internal/config"
	"maitred/internal/models"
)

// ReservationIndex mirrors reservations into Elasticsearch for the day-sheet
// free-text search. Postgres stays the source of truth; indexing failures
// are logged and never fail the write path.
type ReservationIndex struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

// ReservationDoc is the indexed projection of a reservation
type ReservationDoc struct {
	ID         int64  `json:"id"`
	LocationID int64  `json:"location_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	PartySize  int    `json:"party_size"`
	Status     string `json:"status"`
	Channel    string `json:"channel"`
	GuestNotes string `json:"guest_notes,omitempty"`
}

func NewReservationIndex(cfg config.ElasticsearchConfig) (*ReservationIndex, error) {
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

	idx := &ReservationIndex{client: es, config: cfg}

	if err := idx.ensureIndex(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return idx, nil
}

func (c *ReservationIndex) ensureIndex(ctx context.Context) error {
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
				"id":          map[string]interface{}{"type": "long"},
				"location_id": map[string]interface{}{"type": "long"},
				"date":        map[string]interface{}{"type": "date", "format": "yyyy-MM-dd"},
				"start_time":  map[string]interface{}{"type": "keyword"},
				"end_time":    map[string]interface{}{"type": "keyword"},
				"party_size":  map[string]interface{}{"type": "integer"},
				"status":      map[string]interface{}{"type": "keyword"},
				"channel":     map[string]interface{}{"type": "keyword"},
				"guest_notes": map[string]interface{}{"type": "text"},
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

// Index writes or overwrites one reservation document.
func (c *ReservationIndex) Index(ctx context.Context, r *models.Reservation) error {
	doc := ReservationDoc{
		ID:         r.ID,
		LocationID: r.LocationID,
		Date:       r.Date,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		PartySize:  r.PartySize,
		Status:     r.Status,
		Channel:    r.Channel,
	}
	if r.GuestNotes != nil {
		doc.GuestNotes = *r.GuestNotes
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: strconv.FormatInt(r.ID, 10),
		Body:       strings.NewReader(string(docJSON)),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}

	return nil
}

// Search queries reservations by free text and/or date for one location.
func (c *ReservationIndex) Search(ctx context.Context, locationID int64, query, date string, page, pageSize int) ([]ReservationDoc, error) {
	from := 0
	if page > 0 && pageSize > 0 {
		from = (page - 1) * pageSize
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	searchRequest := map[string]interface{}{
		"query": c.buildSearchQuery(locationID, query, date),
		"sort": []map[string]interface{}{
			{"date": map[string]interface{}{"order": "asc"}},
			{"start_time": map[string]interface{}{"order": "asc"}},
		},
		"from": from,
		"size": pageSize,
	}

	searchJSON, err := json.Marshal(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  strings.NewReader(string(searchJSON)),
	}

	res, err := req.Do(ctx, c.client)
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
				Source ReservationDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	docs := make([]ReservationDoc, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		docs[i] = hit.Source
	}

	return docs, nil
}

func (c *ReservationIndex) buildSearchQuery(locationID int64, query, date string) map[string]interface{} {
	mustQueries := []map[string]interface{}{
		{"term": map[string]interface{}{"location_id": locationID}},
	}

	if query != "" {
		mustQueries = append(mustQueries, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"guest_notes", "channel", "status"},
				"fuzziness": "AUTO",
			},
		})
	}

	if date != "" {
		mustQueries = append(mustQueries, map[string]interface{}{
			"term": map[string]interface{}{"date": date},
		})
	}

	return map[string]interface{}{
		"bool": map[string]interface{}{
			"must": mustQueries,
		},
	}
}
