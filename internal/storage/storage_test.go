package storage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// multipartFileHeader builds a real *multipart.FileHeader the way an HTTP
// upload would produce one.
func multipartFileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	files := form.File[field]
	require.Len(t, files, 1)
	return files[0]
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain name", "kitchen.jpg", "kitchen.jpg"},
		{"spaces replaced", "living room.png", "living_room.png"},
		{"unix path stripped", "/etc/passwd", "passwd"},
		{"relative path stripped", "../../secret.jpg", "secret.jpg"},
		{"windows path stripped", `C:\Users\me\photo.jpg`, "photo.jpg"},
		{"allowed punctuation kept", "front-door_v2.final.jpeg", "front-door_v2.final.jpeg"},
		{"leading dots trimmed", "...hidden.jpg", "hidden.jpg"},
		{"empty input", "", "file"},
		{"only separators", "///", "file"},
		{"only unsafe chars", "???", "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, filepath.Base(got), got, "sanitized name must be a bare filename")
		})
	}
}

func TestSaveStoresContentUnderPrefixedName(t *testing.T) {
	store := NewStore(t.TempDir())

	ref, err := store.Save("kitchen.jpg", strings.NewReader("image-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(ref, "_kitchen.jpg"), "stored name should keep the sanitized original: %s", ref)
	assert.Len(t, ref, len("_kitchen.jpg")+8)

	data, err := os.ReadFile(filepath.Join(store.Dir(), ref))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestSaveSameNameTwiceKeepsBothFiles(t *testing.T) {
	store := NewStore(t.TempDir())

	ref1, err := store.Save("kitchen.jpg", strings.NewReader("first"))
	require.NoError(t, err)
	ref2, err := store.Save("kitchen.jpg", strings.NewReader("second"))
	require.NoError(t, err)

	assert.NotEqual(t, ref1, ref2)
	assert.True(t, store.Exists(ref1))
	assert.True(t, store.Exists(ref2))

	data, err := os.ReadFile(filepath.Join(store.Dir(), ref1))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestSaveCreatesDirectoryLazily(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	store := NewStore(dir)

	_, err := os.Stat(dir)
	require.True(t, os.IsNotExist(err))

	ref, err := store.Save("a.png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, store.Exists(ref))
}

func TestSaveSanitizesHostileFilename(t *testing.T) {
	store := NewStore(t.TempDir())

	ref, err := store.Save("../../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Base(ref), ref)
	assert.True(t, strings.HasSuffix(ref, "_passwd"))
	assert.True(t, store.Exists(ref))
}

func TestDeleteRemovesFile(t *testing.T) {
	store := NewStore(t.TempDir())

	ref, err := store.Save("a.jpg", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ref))
	assert.False(t, store.Exists(ref))
}

func TestDeleteMissingFileIsNotAnError(t *testing.T) {
	store := NewStore(t.TempDir())

	assert.NoError(t, store.Delete("never-stored.jpg"))

	// Deleting twice succeeds too.
	ref, err := store.Save("a.jpg", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(ref))
	assert.NoError(t, store.Delete(ref))
}

func TestDeleteRejectsPathReferences(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "uploads"))

	outside := filepath.Join(dir, "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep me"), 0o644))

	for _, ref := range []string{"../outside.txt", "/etc/passwd", "a/b.jpg", "", "."} {
		err := store.Delete(ref)
		require.Error(t, err, "reference %q must be rejected", ref)

		var storeErr *Error
		assert.ErrorAs(t, err, &storeErr)
	}

	_, err := os.Stat(outside)
	assert.NoError(t, err, "file outside the store must survive")
}

func TestSaveUpload(t *testing.T) {
	store := NewStore(t.TempDir())

	fh := multipartFileHeader(t, "main_image", "front view.jpg", []byte("jpeg-bytes"))
	ref, err := store.SaveUpload(fh)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(ref, "_front_view.jpg"))
	data, err := os.ReadFile(filepath.Join(store.Dir(), ref))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}
