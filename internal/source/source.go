// Package source fetches raw entertainment news from external providers.
package source

import (
	"context"
	"fmt"
	"sort"

	"telanews/internal/store"
)

// Source produces a batch of raw news items, newest first.
type Source interface {
	Name() string
	Fetch(ctx context.Context, limit int) ([]store.Item, error)
}

// Registry maps source names to constructors so the active provider is a
// config choice rather than a compile-time one.
type Registry struct {
	sources map[string]Source
}

func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

func (r *Registry) Register(s Source) {
	r.sources[s.Name()] = s
}

func (r *Registry) Get(name string) (Source, error) {
	s, ok := r.sources[name]
	if !ok {
		return nil, fmt.Errorf("unknown news source %q", name)
	}
	return s, nil
}

func sortByDateDesc(items []store.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date > items[j].Date
	})
}
