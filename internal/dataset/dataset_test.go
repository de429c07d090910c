package dataset_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Brownie44l1/dataset-api/internal/dataset"
	"github.com/Brownie44l1/dataset-api/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0700))
		require.NoError(t, os.WriteFile(p, []byte(content), 0600))
	}
	return dir
}

func newDataset(t *testing.T) (*dataset.Dataset, string) {
	dir := writeTree(t, map[string]string{
		"obj_names.txt":              "cat dog\nbird\n",
		"cat/images/1.jpg":           "\xff\xd8\xff\xe0 not really a jpeg",
		"cat/images/img.v2.jpg":      "v2",
		"cat/images/0.png":           "png",
		"cat/annotations/1.txt":      "3 0.5 0.5 0.2 0.3\n7 0.1 0.9 0.05 0.05\n",
		"cat/annotations/img.v2.txt": "1 0.25 0.25 0.5 0.5\n",
		"cat/annotations/bad.txt":    "1 0.25 0.25\n",
	})
	return dataset.New(storage.NewLocalStore(dir)), dir
}

func TestCategories(t *testing.T) {
	d, _ := newDataset(t)
	got, err := d.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog", "bird"}, got)
}

func TestCategoriesMissingManifest(t *testing.T) {
	d := dataset.New(storage.NewLocalStore(t.TempDir()))
	got, err := d.Categories(context.Background())
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, dataset.ErrCategoryListNotFound), "got %v", err)
	assert.True(t, errors.Is(err, dataset.ErrNotFound))
}

func TestCategoriesCustomManifest(t *testing.T) {
	s := storage.NewMemoryStore()
	s.Put("classes.names", []byte("a b\nc"))
	d := dataset.New(s, dataset.WithManifest("classes.names"))
	got, err := d.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestImages(t *testing.T) {
	d, _ := newDataset(t)
	got, err := d.Images(context.Background(), "cat")
	require.NoError(t, err)
	assert.Equal(t, []string{"0.png", "1.jpg", "img.v2.jpg"}, got)

	_, err = d.Images(context.Background(), "dog")
	assert.True(t, errors.Is(err, dataset.ErrCategoryNotFound), "got %v", err)
}

func TestImage(t *testing.T) {
	d, dir := newDataset(t)
	b, err := d.Image(context.Background(), "cat", "1.jpg")
	require.NoError(t, err)
	defer b.Close()
	got, err := io.ReadAll(b)
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(dir, "cat", "images", "1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = d.Image(context.Background(), "cat", "missing.jpg")
	assert.True(t, errors.Is(err, dataset.ErrImageNotFound), "got %v", err)
	_, err = d.Image(context.Background(), "bird", "1.jpg")
	assert.True(t, errors.Is(err, dataset.ErrImageNotFound), "got %v", err)
}

func TestAnnotations(t *testing.T) {
	d, _ := newDataset(t)
	got, err := d.Annotations(context.Background(), "cat", "1.jpg")
	require.NoError(t, err)
	assert.Equal(t, []dataset.Annotation{
		{Class: "3", XCenter: 0.5, YCenter: 0.5, Width: 0.2, Height: 0.3},
		{Class: "7", XCenter: 0.1, YCenter: 0.9, Width: 0.05, Height: 0.05},
	}, got)

	got, err = d.Annotations(context.Background(), "cat", "img.v2.jpg")
	require.NoError(t, err)
	assert.Equal(t, []dataset.Annotation{{Class: "1", XCenter: 0.25, YCenter: 0.25, Width: 0.5, Height: 0.5}}, got)

	// Lookup goes by name only; no image file is required.
	got, err = d.Annotations(context.Background(), "cat", "1.png")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAnnotationsErrors(t *testing.T) {
	d, _ := newDataset(t)
	_, err := d.Annotations(context.Background(), "cat", "0.png")
	assert.True(t, errors.Is(err, dataset.ErrAnnotationNotFound), "got %v", err)

	got, err := d.Annotations(context.Background(), "cat", "bad.jpg")
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, dataset.ErrMalformed), "got %v", err)
	assert.False(t, errors.Is(err, dataset.ErrNotFound))
}

func TestInvalidNames(t *testing.T) {
	d, _ := newDataset(t)
	ctx := context.Background()
	for _, name := range []string{"", ".", "..", "../cat", `cat\images`, "a/b"} {
		_, err := d.Images(ctx, name)
		assert.True(t, errors.Is(err, dataset.ErrInvalidName), "category %q: got %v", name, err)
		_, err = d.Image(ctx, "cat", name)
		assert.True(t, errors.Is(err, dataset.ErrInvalidName), "image %q: got %v", name, err)
		_, err = d.Annotations(ctx, name, "1.jpg")
		assert.True(t, errors.Is(err, dataset.ErrInvalidName), "category %q: got %v", name, err)
	}
}

func TestIdempotence(t *testing.T) {
	d, _ := newDataset(t)
	ctx := context.Background()
	for _, op := range []func() (interface{}, error){
		func() (interface{}, error) { return d.Categories(ctx) },
		func() (interface{}, error) { return d.Images(ctx, "cat") },
		func() (interface{}, error) { return d.Annotations(ctx, "cat", "1.jpg") },
	} {
		first, err := op()
		require.NoError(t, err)
		second, err := op()
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}
