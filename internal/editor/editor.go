package editor

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strconv"
	"strings"

	"real-estate-site/internal/models"

	"github.com/go-playground/validator/v10"
)

// Repository is the persistence surface the editor drives. Update and
// Delete must cover the property row and its gallery rows in one
// transaction. A missing id resolves to ErrNotFound.
type Repository interface {
	Create(p *models.Property, gallery []string) error
	GetByID(id int64) (*models.Property, error)
	List() ([]models.Property, error)
	Update(p *models.Property, gallery []string) error
	Delete(id int64) error
}

// ImageStore is the file surface the editor drives. Delete is idempotent:
// an absent file is success.
type ImageStore interface {
	Save(filename string, r io.Reader) (string, error)
	Delete(name string) error
}

// Searcher keeps the public search index in step with the repository.
// Index maintenance is best effort and never fails an editor call.
type Searcher interface {
	IndexProperty(p *models.Property) error
	DeleteProperty(id int64) error
}

// Submission carries the scalar fields of a create or edit request.
// Price arrives as the raw form value so a bad number is reported as a
// field violation instead of a decoding failure.
type Submission struct {
	Name        string `validate:"required,max=100"`
	Description string `validate:"required"`
	Location    string `validate:"required,max=200"`
	Price       string `validate:"required"`
}

// Editor orchestrates the property lifecycle: validation, image saves and
// deletes, and persistence, with cleanup of files it saved when the
// repository write fails mid-call.
type Editor struct {
	repo     Repository
	store    ImageStore
	search   Searcher
	validate *validator.Validate
}

func New(repo Repository, store ImageStore, search Searcher) *Editor {
	return &Editor{
		repo:     repo,
		store:    store,
		search:   search,
		validate: validator.New(),
	}
}

// Create validates the submission, saves the main image and every gallery
// image, and persists the new property. If the repository write fails,
// every file saved during this call is deleted again.
func (e *Editor) Create(actor string, sub Submission, mainImage *multipart.FileHeader, gallery []*multipart.FileHeader) (*models.Property, error) {
	v, price := e.validateSubmission(sub)
	if mainImage == nil {
		v.Add("main_image", "a main image is required")
	}
	if !v.Empty() {
		return nil, v
	}

	var saved []string
	mainRef, err := e.saveUpload(mainImage)
	if err != nil {
		return nil, err
	}
	saved = append(saved, mainRef)

	galleryRefs := make([]string, 0, len(gallery))
	for _, fh := range gallery {
		ref, err := e.saveUpload(fh)
		if err != nil {
			e.discardSaved(saved)
			return nil, err
		}
		saved = append(saved, ref)
		galleryRefs = append(galleryRefs, ref)
	}

	p := &models.Property{
		Name:        strings.TrimSpace(sub.Name),
		Description: sub.Description,
		Location:    strings.TrimSpace(sub.Location),
		Price:       price,
		MainImage:   mainRef,
	}

	if err := e.repo.Create(p, galleryRefs); err != nil {
		e.discardSaved(saved)
		return nil, fmt.Errorf("failed to persist property: %w", err)
	}

	e.indexProperty(p)
	log.Printf("[editor] actor=%s created property id=%d (%d gallery images)", actor, p.ID, len(galleryRefs))
	return p, nil
}

// Update applies scalar changes, optionally replaces the main image, and
// reconciles the gallery: (existing − removals) ∪ (new uploads). The new
// main image is saved and persisted before the previous file is deleted,
// so the record never references a missing cover image. Files belonging to
// removed references are deleted only after the row is persisted.
func (e *Editor) Update(actor string, id int64, sub Submission, newMain *multipart.FileHeader, newGallery []*multipart.FileHeader, removeRefs []string) (*models.Property, error) {
	p, err := e.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	v, price := e.validateSubmission(sub)

	current := make(map[string]bool, len(p.Gallery))
	for _, ref := range p.Gallery {
		current[ref] = true
	}
	for _, ref := range removeRefs {
		if !current[ref] {
			v.Add("remove_images", fmt.Sprintf("%q is not part of this property's gallery", ref))
		}
	}
	if !v.Empty() {
		return nil, v
	}

	var saved []string
	oldMain := p.MainImage
	if newMain != nil {
		ref, err := e.saveUpload(newMain)
		if err != nil {
			return nil, err
		}
		saved = append(saved, ref)
		p.MainImage = ref
	}

	addedRefs := make([]string, 0, len(newGallery))
	for _, fh := range newGallery {
		ref, err := e.saveUpload(fh)
		if err != nil {
			e.discardSaved(saved)
			return nil, err
		}
		saved = append(saved, ref)
		addedRefs = append(addedRefs, ref)
	}

	removing := make(map[string]bool, len(removeRefs))
	for _, ref := range removeRefs {
		removing[ref] = true
	}
	merged := make([]string, 0, len(p.Gallery)+len(addedRefs))
	for _, ref := range p.Gallery {
		if !removing[ref] {
			merged = append(merged, ref)
		}
	}
	merged = append(merged, addedRefs...)

	p.Name = strings.TrimSpace(sub.Name)
	p.Description = sub.Description
	p.Location = strings.TrimSpace(sub.Location)
	p.Price = price

	if err := e.repo.Update(p, merged); err != nil {
		e.discardSaved(saved)
		return nil, fmt.Errorf("failed to persist property %d: %w", id, err)
	}
	p.Gallery = merged

	// The row no longer references these files; disk failures here leave
	// orphans for the sweep, never dangling references.
	if newMain != nil && oldMain != "" && oldMain != p.MainImage {
		if err := e.store.Delete(oldMain); err != nil {
			log.Printf("[editor] warning: failed to delete replaced main image %s: %v", oldMain, err)
		}
	}
	for _, ref := range removeRefs {
		if err := e.store.Delete(ref); err != nil {
			log.Printf("[editor] warning: failed to delete removed gallery image %s: %v", ref, err)
		}
	}

	e.indexProperty(p)
	log.Printf("[editor] actor=%s updated property id=%d (+%d/-%d gallery images)", actor, id, len(addedRefs), len(removeRefs))
	return p, nil
}

// Delete removes the repository row first; if that fails no file is
// touched. Afterwards the main image and every gallery file are deleted
// from the store.
func (e *Editor) Delete(actor string, id int64) error {
	p, err := e.repo.GetByID(id)
	if err != nil {
		return err
	}

	if err := e.repo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete property %d: %w", id, err)
	}

	var fileErr error
	for _, ref := range append([]string{p.MainImage}, p.Gallery...) {
		if err := e.store.Delete(ref); err != nil {
			log.Printf("[editor] warning: failed to delete file %s of property %d: %v", ref, id, err)
			if fileErr == nil {
				fileErr = err
			}
		}
	}

	if e.search != nil {
		if err := e.search.DeleteProperty(id); err != nil {
			log.Printf("[editor] warning: failed to remove property %d from search index: %v", id, err)
		}
	}

	log.Printf("[editor] actor=%s deleted property id=%d (%s)", actor, id, p.Name)
	return fileErr
}

// ListProperties returns every property, newest first
func (e *Editor) ListProperties() ([]models.Property, error) {
	return e.repo.List()
}

// RemoveGalleryImage deletes one gallery image. The reference must be a
// current member of the gallery; the file is deleted before the reference
// is dropped, and a failed file delete leaves the record untouched.
func (e *Editor) RemoveGalleryImage(actor string, id int64, ref string) error {
	p, err := e.repo.GetByID(id)
	if err != nil {
		return err
	}

	member := false
	for _, g := range p.Gallery {
		if g == ref {
			member = true
			break
		}
	}
	if !member {
		v := newValidationError()
		v.Add("image", fmt.Sprintf("%q is not part of this property's gallery", ref))
		return v
	}

	if err := e.store.Delete(ref); err != nil {
		return err
	}

	remaining := make([]string, 0, len(p.Gallery)-1)
	for _, g := range p.Gallery {
		if g != ref {
			remaining = append(remaining, g)
		}
	}

	if err := e.repo.Update(p, remaining); err != nil {
		return fmt.Errorf("failed to persist gallery of property %d: %w", id, err)
	}
	p.Gallery = remaining

	e.indexProperty(p)
	log.Printf("[editor] actor=%s removed gallery image %s from property id=%d", actor, ref, id)
	return nil
}

// validateSubmission accumulates every scalar violation and returns the
// parsed price alongside. Fields are trimmed first so whitespace-only
// input fails the required checks instead of slipping past them.
func (e *Editor) validateSubmission(sub Submission) (*ValidationError, float64) {
	v := newValidationError()

	trimmed := Submission{
		Name:        strings.TrimSpace(sub.Name),
		Description: strings.TrimSpace(sub.Description),
		Location:    strings.TrimSpace(sub.Location),
		Price:       strings.TrimSpace(sub.Price),
	}
	if err := e.validate.Struct(trimmed); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				v.Add(fieldName(fe.Field()), fieldMessage(fe))
			}
		} else {
			v.Add("submission", err.Error())
		}
	}

	var price float64
	if trimmed.Price != "" {
		parsed, err := strconv.ParseFloat(trimmed.Price, 64)
		switch {
		case err != nil:
			v.Add("price", "must be a number")
		case parsed <= 0:
			v.Add("price", "must be a positive number")
		default:
			price = parsed
		}
	}

	return v, price
}

func (e *Editor) saveUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return e.store.Save(fh.Filename, f)
}

// discardSaved deletes files saved earlier in a failed call. Best effort:
// a file that cannot be removed becomes an orphan for the sweep.
func (e *Editor) discardSaved(refs []string) {
	for _, ref := range refs {
		if err := e.store.Delete(ref); err != nil {
			log.Printf("[editor] warning: failed to clean up file %s after aborted call: %v", ref, err)
		}
	}
}

func (e *Editor) indexProperty(p *models.Property) {
	if e.search == nil {
		return
	}
	if err := e.search.IndexProperty(p); err != nil {
		log.Printf("[editor] warning: failed to index property %d: %v", p.ID, err)
	}
}

func fieldName(structField string) string {
	switch structField {
	case "Name":
		return "name"
	case "Description":
		return "description"
	case "Location":
		return "location"
	case "Price":
		return "price"
	}
	return strings.ToLower(structField)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return fmt.Sprintf("is invalid (%s)", fe.Tag())
}
