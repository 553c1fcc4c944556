package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"telanews/internal/metrics"
	"telanews/internal/poster"
	"telanews/internal/ratelimit"
	"telanews/internal/rewrite"
	"telanews/internal/store"
	"telanews/internal/wiki"
)

// PersonLookup resolves a public figure's biography summary.
type PersonLookup interface {
	Lookup(ctx context.Context, name string) (*wiki.PersonInfo, error)
}

// Analyzer rewrites the oldest accepted article into Brazilian
// Portuguese and attaches a poster URL. The rewrite is the operation
// that matters; poster enrichment failures are logged and dropped.
type Analyzer struct {
	store    store.Store
	rewriter rewrite.Rewriter
	wiki     PersonLookup
	poster   *poster.Builder
	limiter  *ratelimit.AILimiter
	log      *slog.Logger
}

var _ Stage = (*Analyzer)(nil)

func NewAnalyzer(st store.Store, rw rewrite.Rewriter, lookup PersonLookup, pb *poster.Builder, limiter *ratelimit.AILimiter, log *slog.Logger) *Analyzer {
	return &Analyzer{
		store:    st,
		rewriter: rw,
		wiki:     lookup,
		poster:   pb,
		limiter:  limiter,
		log:      log,
	}
}

func (a *Analyzer) Name() string { return "analyze" }

func (a *Analyzer) Run(ctx context.Context) StageResult {
	article, err := a.store.NextForRewrite(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoWork) {
			a.log.Debug("no articles awaiting rewrite")
		}
		return failed(err)
	}

	if article.TitleEN == "" || article.TextEN == "" {
		return failed(fmt.Errorf("article %s missing source title or text", article.NewsID))
	}

	if a.limiter != nil && !a.limiter.CanRewrite() {
		return failed(fmt.Errorf("article %s: rewrite rate limited", article.NewsID))
	}

	source := fmt.Sprintf("Title: %s\n\n%s", article.TitleEN, article.TextEN)
	result, err := a.rewriter.Rewrite(ctx, source)
	if err != nil {
		metrics.Global.IncrementRewriteFailures()
		// The cover can still go out under the original headline.
		a.enrichPoster(ctx, article, article.TitleEN)
		return failed(fmt.Errorf("rewrite article %s: %w", article.NewsID, err))
	}
	if a.limiter != nil {
		_ = a.limiter.UseRewrite()
	}

	row := store.Rewrite{
		Title:   result.Title,
		Subhead: result.Subhead,
		Content: result.Content,
	}
	if err := a.store.UpdateRewrite(ctx, article.ID, row); err != nil {
		return failed(fmt.Errorf("store rewrite for article %s: %w", article.NewsID, err))
	}
	metrics.Global.IncrementRewritesCompleted()
	a.log.Info("article rewritten", "news_id", article.NewsID, "title", result.Title)

	a.enrichPoster(ctx, article, result.Title)
	return success()
}

// enrichPoster picks a memorial cover for confirmed obituaries with
// known life years, and a standard news cover otherwise. Any failure
// here leaves the article published without a poster.
func (a *Analyzer) enrichPoster(ctx context.Context, article *store.Article, headline string) {
	if a.poster == nil {
		return
	}

	if a.isMemorial(article) {
		name := *article.EntityName
		info, err := a.wiki.Lookup(ctx, name)
		if err != nil {
			a.log.Warn("person lookup failed", "name", name, "error", err)
		} else if info != nil && info.BirthYear > 0 && info.DeathYear > 0 {
			image := info.ImageURL
			if image == "" {
				image = article.Image
			}
			displayName := info.Title
			if displayName == "" {
				displayName = name
			}
			url := a.poster.Memorial(image, displayName, info.BirthYear, info.DeathYear)
			a.log.Info("memorial poster ready", "news_id", article.NewsID, "url", url)
			metrics.Global.IncrementPostersGenerated()
			return
		}
	}

	if article.Image == "" {
		return
	}
	url := a.poster.News(article.Image, headline)
	a.log.Info("news poster ready", "news_id", article.NewsID, "url", url)
	metrics.Global.IncrementPostersGenerated()
}

func (a *Analyzer) isMemorial(article *store.Article) bool {
	if a.wiki == nil {
		return false
	}
	if article.DeathRelated == nil || !*article.DeathRelated {
		return false
	}
	return article.EntityName != nil && *article.EntityName != ""
}
