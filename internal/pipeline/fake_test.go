package pipeline

import (
	"context"
	"io"
	"log/slog"

	"telanews/internal/store"
)

// stubStore implements store.Store with overridable behavior. Fields
// left nil fall back to empty results.
type stubStore struct {
	nextItem    *store.Item
	nextItemErr error

	nextArticle    *store.Article
	nextArticleErr error

	recentTitles []string
	recentErr    error

	existing    map[string]bool
	existingErr error

	insertItemsErr   error
	insertArticleErr error
	markUsedErr      error
	updateRewriteErr error

	inserted       []store.Item
	insertedArts   []*store.Article
	markedUsed     []string
	rewritten      map[int64]store.Rewrite
	existingCalled [][]string
}

func (s *stubStore) NextUnprocessed(ctx context.Context) (*store.Item, error) {
	if s.nextItemErr != nil {
		return nil, s.nextItemErr
	}
	if s.nextItem == nil {
		return nil, store.ErrNoWork
	}
	return s.nextItem, nil
}

func (s *stubStore) InsertItems(ctx context.Context, items []store.Item) error {
	if s.insertItemsErr != nil {
		return s.insertItemsErr
	}
	s.inserted = append(s.inserted, items...)
	return nil
}

func (s *stubStore) MarkUsed(ctx context.Context, newsID string) error {
	if s.markUsedErr != nil {
		return s.markUsedErr
	}
	s.markedUsed = append(s.markedUsed, newsID)
	return nil
}

func (s *stubStore) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	s.existingCalled = append(s.existingCalled, ids)
	if s.existingErr != nil {
		return nil, s.existingErr
	}
	if s.existing == nil {
		return map[string]bool{}, nil
	}
	return s.existing, nil
}

func (s *stubStore) InsertArticle(ctx context.Context, a *store.Article) error {
	if s.insertArticleErr != nil {
		return s.insertArticleErr
	}
	s.insertedArts = append(s.insertedArts, a)
	return nil
}

func (s *stubStore) NextForRewrite(ctx context.Context) (*store.Article, error) {
	if s.nextArticleErr != nil {
		return nil, s.nextArticleErr
	}
	if s.nextArticle == nil {
		return nil, store.ErrNoWork
	}
	return s.nextArticle, nil
}

func (s *stubStore) UpdateRewrite(ctx context.Context, id int64, rw store.Rewrite) error {
	if s.updateRewriteErr != nil {
		return s.updateRewriteErr
	}
	if s.rewritten == nil {
		s.rewritten = make(map[int64]store.Rewrite)
	}
	s.rewritten[id] = rw
	return nil
}

func (s *stubStore) RecentTitles(ctx context.Context, limit int) ([]string, error) {
	if s.recentErr != nil {
		return nil, s.recentErr
	}
	return s.recentTitles, nil
}

func (s *stubStore) Close() error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }
