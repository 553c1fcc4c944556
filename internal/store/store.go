// Package store persists raw extraction rows and classified articles.
// Two interchangeable backends exist: the Supabase REST backend used in
// production and a direct Postgres backend for self-hosted setups.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNoWork means the queue query matched no rows. Pollers treat it as
// an idle iteration, not a failure.
var ErrNoWork = errors.New("no work available")

// Item is one raw row in the news_extraction table. Used=false marks it
// as still waiting for the filter stage.
type Item struct {
	NewsID    string    `json:"news_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Date      string    `json:"date"`
	Text      string    `json:"text"`
	Image     string    `json:"image,omitempty"`
	Category  string    `json:"category"`
	Used      bool      `json:"used,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Classification carries the editorial filter verdict for one article.
// Pointer fields distinguish "model did not answer" from a false/empty
// answer; unknown keys from the model are dropped before this struct is
// ever populated.
type Classification struct {
	DeathRelated         *bool   `json:"death_related,omitempty"`
	PoliticalRelated     *bool   `json:"political_related,omitempty"`
	WokeRelated          *bool   `json:"woke_related,omitempty"`
	Spoilers             *bool   `json:"spoilers,omitempty"`
	SensitiveTheme       *bool   `json:"sensitive_theme,omitempty"`
	ContainsVideo        *bool   `json:"contains_video,omitempty"`
	IsNewsContent        *bool   `json:"is_news_content,omitempty"`
	Relevance            *string `json:"relevance,omitempty"`
	BrazilInterest       *bool   `json:"brazil_interest,omitempty"`
	BreakingNews         *bool   `json:"breaking_news,omitempty"`
	AudienceAgeRating    *string `json:"audience_age_rating,omitempty"`
	RegionalFocus        *string `json:"regional_focus,omitempty"`
	CountryFocus         *string `json:"country_focus,omitempty"`
	IdeologicalAlignment *string `json:"ideological_alignment,omitempty"`
	EntityType           *string `json:"entity_type,omitempty"`
	EntityName           *string `json:"entity_name,omitempty"`
	Duplication          *bool   `json:"duplication,omitempty"`
}

// Article is one classified row in the news table. The pt fields stay
// null until the analyze stage rewrites the article.
type Article struct {
	ID      int64  `json:"id,omitempty"`
	NewsID  string `json:"news_id"`
	TitleEN string `json:"title_en"`
	TextEN  string `json:"text_en"`
	URL     string `json:"url"`
	Image   string `json:"image,omitempty"`

	Classification

	TitlePT   *string   `json:"title_pt,omitempty"`
	SubheadPT *string   `json:"subhead_pt,omitempty"`
	TextPT    *string   `json:"text_pt,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Rewrite is the localized text written back by the analyze stage.
type Rewrite struct {
	Title   string
	Subhead string
	Content string
}

// Store is the datastore contract shared by both backends.
type Store interface {
	// NextUnprocessed returns the oldest extraction row with used=false,
	// or ErrNoWork when the queue is empty.
	NextUnprocessed(ctx context.Context) (*Item, error)

	// InsertItems appends new extraction rows.
	InsertItems(ctx context.Context, items []Item) error

	// MarkUsed flips used=true on one extraction row.
	MarkUsed(ctx context.Context, newsID string) error

	// ExistingIDs reports which of the given external ids already have an
	// extraction row. Lookups are chunked so arbitrarily large batches stay
	// within backend query limits.
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)

	// InsertArticle stores a classified article.
	InsertArticle(ctx context.Context, a *Article) error

	// NextForRewrite returns the oldest article with brazil_interest=true
	// and no localized title yet, or ErrNoWork.
	NextForRewrite(ctx context.Context) (*Article, error)

	// UpdateRewrite writes the localized fields of one article.
	UpdateRewrite(ctx context.Context, id int64, rw Rewrite) error

	// RecentTitles lists the most recently published localized titles,
	// newest first, up to limit.
	RecentTitles(ctx context.Context, limit int) ([]string, error)

	Close() error
}

// idChunkSize bounds how many external ids go into one membership query.
const idChunkSize = 1000

func chunkIDs(ids []string) [][]string {
	var chunks [][]string
	for i := 0; i < len(ids); i += idChunkSize {
		end := i + idChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[i:end])
	}
	return chunks
}
