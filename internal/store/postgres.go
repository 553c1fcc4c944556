package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// PostgresStore implements Store against a plain Postgres database for
// deployments that skip Supabase.
type PostgresStore struct {
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// initSchema creates the necessary tables if they don't exist.
func (s *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS news_extraction (
		id SERIAL PRIMARY KEY,
		news_id TEXT UNIQUE NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		date TEXT,
		text TEXT,
		image TEXT,
		category TEXT,
		used BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_news_extraction_used ON news_extraction(used, created_at);
	CREATE INDEX IF NOT EXISTS idx_news_extraction_news_id ON news_extraction(news_id);

	CREATE TABLE IF NOT EXISTS news (
		id SERIAL PRIMARY KEY,
		news_id TEXT NOT NULL,
		title_en TEXT NOT NULL,
		text_en TEXT NOT NULL,
		url TEXT NOT NULL,
		image TEXT,
		death_related BOOLEAN,
		political_related BOOLEAN,
		woke_related BOOLEAN,
		spoilers BOOLEAN,
		sensitive_theme BOOLEAN,
		contains_video BOOLEAN,
		is_news_content BOOLEAN,
		relevance TEXT,
		brazil_interest BOOLEAN,
		breaking_news BOOLEAN,
		audience_age_rating TEXT,
		regional_focus TEXT,
		country_focus TEXT,
		ideological_alignment TEXT,
		entity_type TEXT,
		entity_name TEXT,
		duplication BOOLEAN,
		title_pt TEXT,
		subhead_pt TEXT,
		text_pt TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_news_rewrite_queue ON news(brazil_interest, created_at) WHERE title_pt IS NULL;
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) NextUnprocessed(ctx context.Context) (*Item, error) {
	query := `
		SELECT news_id, title, url, COALESCE(date, ''), COALESCE(text, ''), COALESCE(image, ''), COALESCE(category, ''), used, created_at
		FROM news_extraction
		WHERE used = FALSE
		ORDER BY created_at ASC
		LIMIT 1
	`

	var item Item
	err := s.db.QueryRowContext(ctx, query).Scan(
		&item.NewsID, &item.Title, &item.URL, &item.Date,
		&item.Text, &item.Image, &item.Category, &item.Used, &item.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoWork
	}
	if err != nil {
		return nil, fmt.Errorf("fetch unprocessed item: %w", err)
	}
	return &item, nil
}

func (s *PostgresStore) InsertItems(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}

	// ON CONFLICT keeps concurrent fetch iterations from colliding on the
	// same external id.
	query := `
		INSERT INTO news_extraction (news_id, title, url, date, text, image, category)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (news_id) DO NOTHING
	`

	for _, item := range items {
		if _, err := s.db.ExecContext(ctx, query,
			item.NewsID, item.Title, item.URL, item.Date, item.Text, item.Image, item.Category,
		); err != nil {
			return fmt.Errorf("insert item %s: %w", item.NewsID, err)
		}
	}
	return nil
}

func (s *PostgresStore) MarkUsed(ctx context.Context, newsID string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE news_extraction SET used = TRUE WHERE news_id = $1`, newsID); err != nil {
		return fmt.Errorf("mark used %s: %w", newsID, err)
	}
	return nil
}

func (s *PostgresStore) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	for _, chunk := range chunkIDs(ids) {
		rows, err := s.db.QueryContext(ctx,
			`SELECT news_id FROM news_extraction WHERE news_id = ANY($1)`, pq.Array(chunk))
		if err != nil {
			return nil, fmt.Errorf("query existing ids: %w", err)
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan existing id: %w", err)
			}
			existing[id] = true
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterate existing ids: %w", err)
		}
		rows.Close()
	}
	return existing, nil
}

func (s *PostgresStore) InsertArticle(ctx context.Context, a *Article) error {
	query := `
		INSERT INTO news (
			news_id, title_en, text_en, url, image,
			death_related, political_related, woke_related, spoilers, sensitive_theme,
			contains_video, is_news_content, relevance, brazil_interest, breaking_news,
			audience_age_rating, regional_focus, country_focus, ideological_alignment,
			entity_type, entity_name, duplication
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15,
			$16, $17, $18, $19,
			$20, $21, $22
		)
	`

	_, err := s.db.ExecContext(ctx, query,
		a.NewsID, a.TitleEN, a.TextEN, a.URL, nullString(a.Image),
		a.DeathRelated, a.PoliticalRelated, a.WokeRelated, a.Spoilers, a.SensitiveTheme,
		a.ContainsVideo, a.IsNewsContent, a.Relevance, a.BrazilInterest, a.BreakingNews,
		a.AudienceAgeRating, a.RegionalFocus, a.CountryFocus, a.IdeologicalAlignment,
		a.EntityType, a.EntityName, a.Duplication,
	)
	if err != nil {
		return fmt.Errorf("insert article %s: %w", a.NewsID, err)
	}
	return nil
}

func (s *PostgresStore) NextForRewrite(ctx context.Context) (*Article, error) {
	query := `
		SELECT id, news_id, title_en, text_en, url, COALESCE(image, ''),
			death_related, entity_type, entity_name
		FROM news
		WHERE brazil_interest = TRUE AND title_pt IS NULL
		ORDER BY created_at ASC
		LIMIT 1
	`

	var a Article
	err := s.db.QueryRowContext(ctx, query).Scan(
		&a.ID, &a.NewsID, &a.TitleEN, &a.TextEN, &a.URL, &a.Image,
		&a.DeathRelated, &a.EntityType, &a.EntityName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoWork
	}
	if err != nil {
		return nil, fmt.Errorf("fetch article for rewrite: %w", err)
	}
	return &a, nil
}

func (s *PostgresStore) UpdateRewrite(ctx context.Context, id int64, rw Rewrite) error {
	query := `UPDATE news SET title_pt = $1, subhead_pt = $2, text_pt = $3 WHERE id = $4`
	if _, err := s.db.ExecContext(ctx, query, rw.Title, rw.Subhead, rw.Content, id); err != nil {
		return fmt.Errorf("update rewrite %d: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) RecentTitles(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title_pt FROM news WHERE title_pt IS NOT NULL ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		if strings.TrimSpace(title) != "" {
			titles = append(titles, title)
		}
	}
	return titles, rows.Err()
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
