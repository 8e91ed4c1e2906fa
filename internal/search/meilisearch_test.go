package search

import (
	"testing"
	"time"

	"real-estate-site/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDocument(t *testing.T) {
	created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	p := &models.Property{
		ID:          7,
		Name:        "Sunny apartment",
		Description: "Two bedrooms",
		Location:    "Riverside",
		Price:       185000,
		MainImage:   "abc12345_front.jpg",
		CreatedAt:   created,
	}

	doc := toDocument(p)
	assert.Equal(t, int64(7), doc.ID)
	assert.Equal(t, "Sunny apartment", doc.Name)
	assert.Equal(t, 185000.0, doc.Price)
	assert.Equal(t, "abc12345_front.jpg", doc.MainImage)
	assert.Equal(t, created.Unix(), doc.CreatedAt)
}

func TestDecodeHits(t *testing.T) {
	hits := []interface{}{
		map[string]interface{}{
			"id":    float64(1),
			"name":  "First",
			"price": float64(100000),
		},
		map[string]interface{}{
			"id":   float64(2),
			"name": "Second",
		},
	}

	docs, err := decodeHits(hits)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, int64(1), docs[0].ID)
	assert.Equal(t, "First", docs[0].Name)
	assert.Equal(t, 100000.0, docs[0].Price)
	assert.Equal(t, "Second", docs[1].Name)
}

func TestDecodeHitsEmpty(t *testing.T) {
	docs, err := decodeHits(nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
