package upload

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/MaulRai/tiku/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(config.UploadConfig{
		Dir:             t.TempDir(),
		BaseURL:         "/uploads",
		MaxImageSize:    1 << 20,
		MaxDocumentSize: 2 << 20,
	})
	require.NoError(t, err)
	return store
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestStoreSaveImage(t *testing.T) {
	store := newTestStore(t)
	data := pngBytes(t)

	stored, err := store.Save(bytes.NewReader(data), KindImage)
	require.NoError(t, err)

	assert.Equal(t, "image/png", stored.Mime)
	assert.Equal(t, int64(len(data)), stored.Size)
	assert.Contains(t, stored.URL, stored.Name)

	f, err := store.Open(stored.Name)
	require.NoError(t, err)
	f.Close()
}

func TestStoreSaveIsContentAddressed(t *testing.T) {
	store := newTestStore(t)
	data := pngBytes(t)

	first, err := store.Save(bytes.NewReader(data), KindImage)
	require.NoError(t, err)

	second, err := store.Save(bytes.NewReader(data), KindImage)
	require.NoError(t, err)

	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.URL, second.URL)
}

func TestStoreRejectsDisallowedType(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(bytes.NewReader([]byte("#!/bin/sh\necho hi\n")), KindImage)
	assert.Error(t, err)
}

func TestStoreRejectsOversized(t *testing.T) {
	store, err := NewStore(config.UploadConfig{
		Dir:             t.TempDir(),
		BaseURL:         "/uploads",
		MaxImageSize:    16,
		MaxDocumentSize: 16,
	})
	require.NoError(t, err)

	_, err = store.Save(bytes.NewReader(pngBytes(t)), KindImage)
	assert.Error(t, err)
}

func TestStoreRejectsEmpty(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Save(bytes.NewReader(nil), KindImage)
	assert.Error(t, err)
}

func TestStoreOpenRejectsPathTraversal(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Open("../store.go")
	assert.Error(t, err)
}
