package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Error represents a file write or delete failure in the image store.
// A delete of an already-absent file is not an Error.
type Error struct {
	Op   string
	Name string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("image store: %s %s: %v", e.Op, e.Name, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Store writes property images under a single directory and hands out the
// stored filename as the reference used everywhere else.
//
// Collision policy: the store disambiguates. Every stored name is prefixed
// with an 8-hex-char random tag, so two uploads named kitchen.jpg never
// overwrite each other and callers do not need to pick unique names.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created lazily
// on the first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the uploaded bytes under a sanitized, uniquely prefixed name
// and returns the stored reference.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	name := uniquePrefix() + "_" + SanitizeFilename(filename)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", &Error{Op: "save", Name: name, Err: err}
	}

	path := filepath.Join(s.dir, name)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", &Error{Op: "save", Name: name, Err: err}
	}

	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		os.Remove(path)
		return "", &Error{Op: "save", Name: name, Err: err}
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", &Error{Op: "save", Name: name, Err: err}
	}

	return name, nil
}

// SaveUpload opens a multipart file header and saves its contents.
func (s *Store) SaveUpload(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", &Error{Op: "save", Name: fh.Filename, Err: err}
	}
	defer f.Close()
	return s.Save(fh.Filename, f)
}

// Delete removes a stored file. A reference that no longer resolves to a
// file is treated as success so record deletion never fails on already
// divergent disk state.
func (s *Store) Delete(name string) error {
	if filepath.Base(name) != name || name == "" || name == "." {
		return &Error{Op: "delete", Name: name, Err: fmt.Errorf("invalid reference")}
	}

	path := filepath.Join(s.dir, name)
	if !strings.HasPrefix(filepath.Clean(path), filepath.Clean(s.dir)+string(os.PathSeparator)) {
		return &Error{Op: "delete", Name: name, Err: fmt.Errorf("reference escapes store directory")}
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &Error{Op: "delete", Name: name, Err: err}
	}
	return nil
}

// Exists reports whether a reference currently resolves to a file.
func (s *Store) Exists(name string) bool {
	if filepath.Base(name) != name {
		return false
	}
	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}

// SanitizeFilename reduces a client-supplied filename to a safe bare name:
// path components are stripped and anything outside [A-Za-z0-9._-] becomes
// an underscore. Pure function, independent of the storage backend.
func SanitizeFilename(name string) string {
	// Strip both unix and windows style path components.
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "file"
	}
	return out
}

func uniquePrefix() string {
	return uuid.NewString()[:8]
}
