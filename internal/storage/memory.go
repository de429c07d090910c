package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore implements Store with a map from names to contents. It is
// used to build dataset fixtures without touching the disk.
type MemoryStore struct {
	mu      sync.RWMutex
	files   map[string][]byte
	modTime time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files:   make(map[string][]byte),
		modTime: time.Now(),
	}
}

// Put stores a copy of value at name, creating parent directories implicitly.
func (s *MemoryStore) Put(name string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path.Clean(name)] = append([]byte(nil), value...)
}

func (s *MemoryStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name = path.Clean(name)
	s.mu.RLock()
	value, ok := s.files[name]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return &memoryBlob{
		Reader: bytes.NewReader(value),
		info: Info{
			Name:    path.Base(name),
			Size:    int64(len(value)),
			ModTime: s.modTime,
		},
	}, nil
}

func (s *MemoryStore) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := path.Clean(dir) + "/"
	seen := make(map[string]bool)
	s.mu.RLock()
	for name := range s.files {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(name, prefix)
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i]
		}
		seen[rest] = true
	}
	s.mu.RUnlock()
	if len(seen) == 0 {
		return nil, fmt.Errorf("%q: %w", dir, ErrNotFound)
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

type memoryBlob struct {
	*bytes.Reader
	info Info
}

func (b *memoryBlob) Stat() (Info, error) {
	return b.info, nil
}

func (b *memoryBlob) Close() error {
	return nil
}
