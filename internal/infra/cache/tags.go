// Package cache groups cached reads under invalidation tags so mutations can
// mark dependent reads stale collectively.
package cache

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"campus/internal/errors"
)

// Tag labels a group of cached reads.
type Tag string

const (
	TagCourses   Tag = "Courses"
	TagMe        Tag = "Me"
	TagFeedbacks Tag = "Feedbacks"
	TagMaterials Tag = "Materials"
	TagUsers     Tag = "Users"
)

// Store is the process-wide read cache. Each entry remembers the fetch that
// produced it; invalidating a tag marks every entry providing it stale and
// refetches the watched ones so observers see fresh data before their next
// render.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	logger  *slog.Logger
}

type entry struct {
	tags     []Tag
	value    any
	valid    bool
	fetch    func(ctx context.Context) (any, error)
	watchers map[int]func(any)
	nextID   int
}

// NewStore is the constructor for Store.
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// Fetch returns the cached value for key when it is still valid, otherwise
// runs fetch, caches the result under the given tags and returns it.
func Fetch[T any](ctx context.Context, s *Store, key string, tags []Tag, fetch func(ctx context.Context) (T, error)) (T, error) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok && e.valid {
		value, ok := e.value.(T)
		s.mu.Unlock()
		if ok {
			return value, nil
		}
	} else {
		s.mu.Unlock()
	}

	value, err := fetch(ctx)
	if err != nil {
		var zero T

		return zero, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry{watchers: make(map[int]func(any))}
		s.entries[key] = e
	}
	e.tags = tags
	e.value = value
	e.valid = true
	e.fetch = func(ctx context.Context) (any, error) { return fetch(ctx) }

	return value, nil
}

// Watch registers an observer for key. The observer is invoked with the fresh
// value whenever an invalidation triggers a refetch of this entry. The
// returned function cancels the watch.
func (s *Store) Watch(key string, observer func(any)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &entry{watchers: make(map[int]func(any))}
		s.entries[key] = e
	}
	e.nextID++
	id := e.nextID
	e.watchers[id] = observer

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if e, ok := s.entries[key]; ok {
			delete(e.watchers, id)
		}
	}
}

// Invalidate marks every entry providing one of the tags stale. Entries with
// active watchers are refetched immediately and their watchers notified;
// unwatched entries refetch lazily on their next Fetch.
func (s *Store) Invalidate(ctx context.Context, tags ...Tag) {
	type refetch struct {
		key      string
		fetch    func(ctx context.Context) (any, error)
		watchers []func(any)
	}

	s.mu.Lock()
	var stale []refetch
	for key, e := range s.entries {
		if !matchesAny(e.tags, tags) {
			continue
		}
		e.valid = false
		if len(e.watchers) > 0 && e.fetch != nil {
			r := refetch{key: key, fetch: e.fetch}
			for _, w := range e.watchers {
				r.watchers = append(r.watchers, w)
			}
			stale = append(stale, r)
		}
	}
	s.mu.Unlock()

	for _, r := range stale {
		value, err := r.fetch(ctx)
		if err != nil {
			s.logger.Warn("refetch after invalidation failed",
				slog.String("key", r.key), slog.Any("error", err))

			continue
		}

		s.mu.Lock()
		if e, ok := s.entries[r.key]; ok {
			e.value = value
			e.valid = true
		}
		s.mu.Unlock()

		for _, w := range r.watchers {
			w(value)
		}
	}
}

// Value returns the cached value for key when present and valid. Mostly a
// test hook.
func Value[T any](s *Store, key string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	e, ok := s.entries[key]
	if !ok || !e.valid {
		return zero, errors.Errorf("no valid cache entry for %q", key)
	}
	value, ok := e.value.(T)
	if !ok {
		return zero, errors.Errorf("cache entry %q holds a different type", key)
	}

	return value, nil
}

func matchesAny(have, want []Tag) bool {
	for _, tag := range want {
		if slices.Contains(have, tag) {
			return true
		}
	}

	return false
}
