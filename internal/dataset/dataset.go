// Package dataset reads an image dataset laid out as
//
//	obj_names.txt
//	<category>/images/<image>
//	<category>/annotations/<image without extension>.txt
//
// on top of a storage.Store. A Dataset keeps no mutable state and is safe for
// concurrent use.
package dataset

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/Brownie44l1/dataset-api/internal/storage"
	log "github.com/sirupsen/logrus"
)

// DefaultManifest is the name of the category list at the dataset root.
const DefaultManifest = "obj_names.txt"

type Dataset struct {
	store    storage.Store
	manifest string
	logger   *log.Entry
}

type Option func(*Dataset)

// WithManifest overrides the name of the category list file.
func WithManifest(name string) Option {
	return func(d *Dataset) {
		d.manifest = name
	}
}

func WithLogger(logger *log.Entry) Option {
	return func(d *Dataset) {
		d.logger = logger
	}
}

func New(store storage.Store, opts ...Option) *Dataset {
	d := &Dataset{
		store:    store,
		manifest: DefaultManifest,
		logger:   log.NewEntry(log.StandardLogger()),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Categories returns the tokens of the manifest in file order.
func (d *Dataset) Categories(ctx context.Context) ([]string, error) {
	f, err := d.store.Open(ctx, d.manifest)
	if err != nil {
		return nil, notFound(ErrCategoryListNotFound, err)
	}
	defer f.Close()
	categories, err := ParseCategories(f)
	if err != nil {
		return nil, err
	}
	d.logger.WithField("categories", categories).Debug("Read category list")
	return categories, nil
}

// Images returns the file names in the images directory of category, sorted.
func (d *Dataset) Images(ctx context.Context, category string) ([]string, error) {
	if err := validName(category); err != nil {
		return nil, err
	}
	names, err := d.store.List(ctx, path.Join(category, "images"))
	if err != nil {
		return nil, notFound(ErrCategoryNotFound, err)
	}
	sort.Strings(names)
	return names, nil
}

// Image opens an image of category. The caller must close the returned blob.
func (d *Dataset) Image(ctx context.Context, category, name string) (storage.Blob, error) {
	if err := validName(category, name); err != nil {
		return nil, err
	}
	f, err := d.store.Open(ctx, path.Join(category, "images", name))
	if err != nil {
		return nil, notFound(ErrImageNotFound, err)
	}
	return f, nil
}

// Annotations parses the annotation file belonging to an image of category.
// The image itself need not exist.
func (d *Dataset) Annotations(ctx context.Context, category, image string) ([]Annotation, error) {
	if err := validName(category, image); err != nil {
		return nil, err
	}
	f, err := d.store.Open(ctx, path.Join(category, "annotations", AnnotationName(image)))
	if err != nil {
		return nil, notFound(ErrAnnotationNotFound, err)
	}
	defer f.Close()
	return ParseAnnotations(f)
}

func validName(names ...string) error {
	for _, name := range names {
		if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("%q: %w", name, ErrInvalidName)
		}
	}
	return nil
}
