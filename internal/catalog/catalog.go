package catalog

import (
	"real-estate-site/internal/editor"
	"real-estate-site/internal/models"
)

// Catalog is the read-only query surface behind the public pages.
// Ordering is stable: created_at descending with id as tiebreak.
type Catalog struct {
	repo editor.Repository
}

func New(repo editor.Repository) *Catalog {
	return &Catalog{repo: repo}
}

// List returns every property, newest first.
func (c *Catalog) List() ([]models.Property, error) {
	return c.repo.List()
}

// Featured returns the n newest properties for the landing page.
func (c *Catalog) Featured(n int) ([]models.Property, error) {
	properties, err := c.repo.List()
	if err != nil {
		return nil, err
	}
	if len(properties) > n {
		properties = properties[:n]
	}
	return properties, nil
}

// GetByID returns one property or editor.ErrNotFound.
func (c *Catalog) GetByID(id int64) (*models.Property, error) {
	return c.repo.GetByID(id)
}
