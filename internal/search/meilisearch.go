package search

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"real-estate-site/internal/models"

	"github.com/meilisearch/meilisearch-go"
)

type SearchClient struct {
	client *meilisearch.Client
	index  string
}

// Document is the shape indexed in Meilisearch
type Document struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Price       float64 `json:"price"`
	MainImage   string  `json:"main_image"`
	CreatedAt   int64   `json:"created_at"`
}

func NewSearchClient(host, apiKey string) *SearchClient {
	client := meilisearch.NewClient(meilisearch.ClientConfig{
		Host:   host,
		APIKey: apiKey,
	})

	return &SearchClient{
		client: client,
		index:  "properties",
	}
}

// InitIndex initializes the Meilisearch index
func (s *SearchClient) InitIndex() error {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        s.index,
		PrimaryKey: "id",
	})
	// Ignore error if index already exists
	if err != nil && err.Error() != "index already exists" {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSearchableAttributes(&[]string{
		"name",
		"description",
		"location",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateFilterableAttributes(&[]string{
		"id",
		"price",
		"location",
	})
	if err != nil {
		return err
	}

	_, err = s.client.Index(s.index).UpdateSortableAttributes(&[]string{
		"price",
		"created_at",
	})
	return err
}

// IndexProperty indexes a single property
func (s *SearchClient) IndexProperty(p *models.Property) error {
	_, err := s.client.Index(s.index).AddDocuments([]Document{toDocument(p)})
	return err
}

// IndexProperties indexes multiple properties in one call
func (s *SearchClient) IndexProperties(properties []models.Property) error {
	if len(properties) == 0 {
		return nil
	}
	docs := make([]Document, 0, len(properties))
	for i := range properties {
		docs = append(docs, toDocument(&properties[i]))
	}
	_, err := s.client.Index(s.index).AddDocuments(docs)
	return err
}

// DeleteProperty removes a property from the index
func (s *SearchClient) DeleteProperty(id int64) error {
	_, err := s.client.Index(s.index).DeleteDocument(strconv.FormatInt(id, 10))
	return err
}

// FilterParams holds the public search filters
type FilterParams struct {
	Query    string
	MinPrice *float64
	MaxPrice *float64
	SortBy   string // "price_asc", "price_desc", "newest"
	Limit    int64
}

// Search performs a plain full-text search
func (s *SearchClient) Search(query string, limit int64) ([]Document, error) {
	return s.FilterSearch(FilterParams{Query: query, Limit: limit})
}

// FilterSearch performs a search with price range and sort
func (s *SearchClient) FilterSearch(params FilterParams) ([]Document, error) {
	if params.Limit == 0 {
		params.Limit = 20
	}

	var filters []string
	if params.MinPrice != nil {
		filters = append(filters, fmt.Sprintf("price >= %f", *params.MinPrice))
	}
	if params.MaxPrice != nil {
		filters = append(filters, fmt.Sprintf("price <= %f", *params.MaxPrice))
	}

	var sorts []string
	switch params.SortBy {
	case "price_asc":
		sorts = append(sorts, "price:asc")
	case "price_desc":
		sorts = append(sorts, "price:desc")
	case "newest":
		sorts = append(sorts, "created_at:desc")
	}

	req := &meilisearch.SearchRequest{
		Limit: params.Limit,
	}
	if len(filters) > 0 {
		req.Filter = strings.Join(filters, " AND ")
	}
	if len(sorts) > 0 {
		req.Sort = sorts
	}

	res, err := s.client.Index(s.index).Search(params.Query, req)
	if err != nil {
		return nil, err
	}

	return decodeHits(res.Hits)
}

func toDocument(p *models.Property) Document {
	return Document{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Location:    p.Location,
		Price:       p.Price,
		MainImage:   p.MainImage,
		CreatedAt:   p.CreatedAt.Unix(),
	}
}

func decodeHits(hits []interface{}) ([]Document, error) {
	raw, err := json.Marshal(hits)
	if err != nil {
		return nil, err
	}
	var docs []Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
