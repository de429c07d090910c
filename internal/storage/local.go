package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// LocalStore implements Store on the host filesystem.
type LocalStore struct {
	root string
}

// NewLocalStore creates a LocalStore rooted at dir.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{root: dir}
}

func (s *LocalStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := s.pathFor(name)
	f, err := os.Open(p)
	if err != nil {
		return nil, notExist(p, err)
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("could not stat %q: %w", p, err)
	}
	if !fi.Mode().IsRegular() {
		_ = f.Close()
		return nil, fmt.Errorf("%q: not a regular file: %w", p, ErrNotFound)
	}
	return &localBlob{File: f, info: Info{
		Name:    path.Base(name),
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
	}}, nil
}

func (s *LocalStore) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := s.pathFor(dir)
	entries, err := os.ReadDir(p)
	if err != nil {
		return nil, notExist(p, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

func (s *LocalStore) pathFor(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

func notExist(p string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%q: %w", p, ErrNotFound)
	}
	return err
}

type localBlob struct {
	*os.File
	info Info
}

func (b *localBlob) Stat() (Info, error) {
	return b.info, nil
}
