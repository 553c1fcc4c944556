package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"telanews/internal/metrics"
	"telanews/internal/ratelimit"
	"telanews/internal/scratch"
	"telanews/internal/store"
)

// Classifier is the LLM verdict operation, satisfied by gemini.Client.
type Classifier interface {
	Classify(ctx context.Context, title, content string, recentTitles []string) (*store.Classification, error)
}

// Extractor recovers the full article text behind a headline URL.
type Extractor interface {
	Article(url string) (string, error)
}

// relevanceAccepted lists the relevance grades worth publishing.
var relevanceAccepted = map[string]bool{"medium": true, "high": true, "viral": true}

// Filter takes the oldest unprocessed item, extracts its article text,
// classifies it and either stores it as a publishable article or skips
// it. The selected item is marked used on every path, including
// failures, so one poisoned item can never wedge the queue.
type Filter struct {
	store      store.Store
	extractor  Extractor
	classifier Classifier
	limiter    *ratelimit.AILimiter
	scratch    *scratch.Store
	scratchTTL time.Duration
	recentMax  int
	log        *slog.Logger
}

var _ Stage = (*Filter)(nil)

type FilterOptions struct {
	Limiter    *ratelimit.AILimiter
	Scratch    *scratch.Store
	ScratchTTL time.Duration
	RecentMax  int
}

func NewFilter(st store.Store, ex Extractor, cl Classifier, opts FilterOptions, log *slog.Logger) *Filter {
	if opts.RecentMax <= 0 {
		opts.RecentMax = 25
	}
	if opts.ScratchTTL <= 0 {
		opts.ScratchTTL = 48 * time.Hour
	}
	return &Filter{
		store:      st,
		extractor:  ex,
		classifier: cl,
		limiter:    opts.Limiter,
		scratch:    opts.Scratch,
		scratchTTL: opts.ScratchTTL,
		recentMax:  opts.RecentMax,
		log:        log,
	}
}

func (f *Filter) Name() string { return "filter" }

func (f *Filter) Run(ctx context.Context) StageResult {
	item, err := f.store.NextUnprocessed(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoWork) {
			f.log.Debug("no unprocessed items")
			return skipped("no work", false)
		}
		return failed(err)
	}

	if strings.TrimSpace(item.Title) == "" || strings.TrimSpace(item.URL) == "" {
		f.markUsed(ctx, item.NewsID)
		metrics.Global.IncrementFilterFailures()
		return failed(fmt.Errorf("item %s has blank title or url", item.NewsID))
	}

	text, err := f.articleText(item)
	if err != nil {
		f.markUsed(ctx, item.NewsID)
		metrics.Global.IncrementFilterFailures()
		return failed(fmt.Errorf("item %s: %w", item.NewsID, err))
	}

	// A lookup failure here only degrades duplicate detection.
	recent, err := f.store.RecentTitles(ctx, 50)
	if err != nil {
		f.log.Warn("recent titles unavailable", "error", err)
		recent = nil
	}
	if len(recent) > f.recentMax {
		recent = recent[:f.recentMax]
	}

	if f.limiter != nil && !f.limiter.CanClassify() {
		return failed(fmt.Errorf("item %s: classify rate limited", item.NewsID))
	}

	verdict, err := f.classifier.Classify(ctx, item.Title, text, recent)
	if err != nil {
		f.markUsed(ctx, item.NewsID)
		metrics.Global.IncrementFilterFailures()
		return failed(fmt.Errorf("classify item %s: %w", item.NewsID, err))
	}
	if f.limiter != nil {
		_ = f.limiter.UseClassify()
	}

	if skip, reason := ShouldSkip(verdict); skip {
		f.markUsed(ctx, item.NewsID)
		metrics.Global.IncrementFilterSkipped(reason)
		f.log.Info("item skipped", "news_id", item.NewsID, "reason", reason)
		return skipped(reason, criteriaUnmet(verdict))
	}

	article := &store.Article{
		NewsID:         item.NewsID,
		TitleEN:        item.Title,
		TextEN:         text,
		URL:            item.URL,
		Image:          item.Image,
		Classification: *verdict,
	}
	if err := f.store.InsertArticle(ctx, article); err != nil {
		f.markUsed(ctx, item.NewsID)
		metrics.Global.IncrementFilterFailures()
		return failed(fmt.Errorf("insert article %s: %w", item.NewsID, err))
	}

	f.markUsed(ctx, item.NewsID)
	metrics.Global.IncrementFilterAccepted()
	f.log.Info("item accepted", "news_id", item.NewsID, "title", item.Title)
	return success()
}

// articleText serves the body from scratch when a prior iteration
// already extracted this item, otherwise extracts and stashes it.
func (f *Filter) articleText(item *store.Item) (string, error) {
	key := scratch.Key(item.NewsID, "fulltext")
	if f.scratch != nil {
		if cached, ok := f.scratch.Get(key); ok {
			if text, ok := cached.(string); ok && text != "" {
				if f.limiter != nil {
					f.limiter.RecordCacheHit()
				}
				return text, nil
			}
		}
	}

	text, err := f.extractor.Article(item.URL)
	if err != nil {
		return "", err
	}
	if f.scratch != nil {
		f.scratch.Set(key, text, f.scratchTTL)
	}
	return text, nil
}

func (f *Filter) markUsed(ctx context.Context, newsID string) {
	if err := f.store.MarkUsed(ctx, newsID); err != nil {
		f.log.Error("mark used failed", "news_id", newsID, "error", err)
	}
}

// ShouldSkip applies the editorial skip policy. Nil fields fall back to
// the permissive defaults, so an absent verdict never blocks an item on
// its own; only relevance must be affirmatively acceptable.
func ShouldSkip(c *store.Classification) (bool, string) {
	if c.Duplication != nil && *c.Duplication {
		return true, "duplicate detected"
	}
	if c.IsNewsContent != nil && !*c.IsNewsContent {
		return true, "not news content"
	}
	if c.BrazilInterest != nil && !*c.BrazilInterest {
		return true, "low interest for Brazil"
	}
	relevance := ""
	if c.Relevance != nil {
		relevance = *c.Relevance
	}
	if !relevanceAccepted[relevance] {
		return true, fmt.Sprintf("insufficient relevance (%s)", relevance)
	}
	return false, ""
}

// criteriaUnmet reports whether the skip came from the three editorial
// criteria that warrant trying the next item immediately. A pure
// duplicate skip does not; the queue head moved, but there is no reason
// to believe the next item fares better right away.
func criteriaUnmet(c *store.Classification) bool {
	if c.IsNewsContent != nil && !*c.IsNewsContent {
		return true
	}
	if c.BrazilInterest != nil && !*c.BrazilInterest {
		return true
	}
	relevance := ""
	if c.Relevance != nil {
		relevance = *c.Relevance
	}
	return !relevanceAccepted[relevance]
}
