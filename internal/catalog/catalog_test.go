package catalog

import (
	"sort"
	"testing"

	"real-estate-site/internal/editor"
	"real-estate-site/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	seq   int64
	props map[int64]models.Property
}

func newMemRepo() *memRepo {
	return &memRepo{props: make(map[int64]models.Property)}
}

func (r *memRepo) Create(p *models.Property, gallery []string) error {
	r.seq++
	p.ID = r.seq
	p.Gallery = append([]string(nil), gallery...)
	r.props[p.ID] = *p
	return nil
}

func (r *memRepo) GetByID(id int64) (*models.Property, error) {
	p, ok := r.props[id]
	if !ok {
		return nil, editor.ErrNotFound
	}
	return &p, nil
}

func (r *memRepo) List() ([]models.Property, error) {
	out := make([]models.Property, 0, len(r.props))
	for _, p := range r.props {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memRepo) Update(p *models.Property, gallery []string) error {
	if _, ok := r.props[p.ID]; !ok {
		return editor.ErrNotFound
	}
	p.Gallery = append([]string(nil), gallery...)
	r.props[p.ID] = *p
	return nil
}

func (r *memRepo) Delete(id int64) error {
	if _, ok := r.props[id]; !ok {
		return editor.ErrNotFound
	}
	delete(r.props, id)
	return nil
}

func seed(t *testing.T, repo *memRepo, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, repo.Create(&models.Property{
			Name:      name,
			MainImage: name + ".jpg",
			Price:     100000,
		}, nil))
	}
}

func TestListNewestFirst(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, "first", "second", "third")
	cat := New(repo)

	list, err := cat.List()
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Name)
	assert.Equal(t, "first", list[2].Name)
}

func TestFeaturedLimitsToNewest(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, "a", "b", "c", "d", "e")
	cat := New(repo)

	featured, err := cat.Featured(3)
	require.NoError(t, err)
	require.Len(t, featured, 3)
	assert.Equal(t, "e", featured[0].Name)
	assert.Equal(t, "c", featured[2].Name)
}

func TestFeaturedWithFewerProperties(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, "only")
	cat := New(repo)

	featured, err := cat.Featured(3)
	require.NoError(t, err)
	assert.Len(t, featured, 1)
}

func TestGetByID(t *testing.T) {
	repo := newMemRepo()
	seed(t, repo, "house")
	cat := New(repo)

	p, err := cat.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, "house", p.Name)

	_, err = cat.GetByID(999)
	assert.ErrorIs(t, err, editor.ErrNotFound)
}
