// Package history persists completed retrievals.
package history

import (
	"cmp"
	"slices"
	"sync"

	"github.com/cinesrc/cinesrc/filesystem"
	"github.com/cinesrc/cinesrc/lifecycle"
	"github.com/cinesrc/cinesrc/log"
	"github.com/cinesrc/cinesrc/where"
	"github.com/metafates/gache"
	"github.com/samber/lo"
)

// Store is a JSON file of entries keyed by content and source.
// It implements lifecycle.Recorder.
type Store struct {
	mu     sync.Mutex
	cacher *gache.Cache[map[string]*Entry]
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{
		cacher: gache.New[map[string]*Entry](
			&gache.Options{
				Path:       path,
				FileSystem: &filesystem.GacheFs{},
			},
		),
	}
}

// Open returns the store at the default history location.
func Open() *Store {
	return NewStore(where.History())
}

var _ lifecycle.Recorder = (*Store)(nil)

func (s *Store) load() (map[string]*Entry, error) {
	cached, expired, err := s.cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// Get returns every entry keyed by content and source.
func (s *Store) Get() (map[string]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// List returns the entries, most recently completed first.
func (s *Store) List() ([]*Entry, error) {
	saved, err := s.Get()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	slices.SortFunc(entries, func(a, b *Entry) int {
		if c := b.CompletedAt.Compare(a.CompletedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.encode(), b.encode())
	})
	return entries, nil
}

// Record saves a completion. Repeated completions of the same source keep
// the highest progress seen and count up.
func (s *Store) Record(c lifecycle.Completion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return err
	}

	entry := newEntry(c)
	if existing, ok := saved[entry.encode()]; ok {
		entry.Progress = max(entry.Progress, existing.Progress)
		entry.Completions = existing.Completions + 1
	}
	saved[entry.encode()] = entry

	log.Infof("history: recorded %s", entry.encode())
	return s.cacher.Set(saved)
}

// Remove deletes one entry.
func (s *Store) Remove(entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saved, err := s.load()
	if err != nil {
		return err
	}

	delete(saved, entry.encode())
	return s.cacher.Set(saved)
}

// Clear deletes every entry.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cacher.Set(make(map[string]*Entry))
}
