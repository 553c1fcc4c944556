package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"telanews/internal/store"
)

// FeedsConfig is YAML config structure
// feeds:
//   - https://...
type FeedsConfig struct {
	Feeds []string `yaml:"feeds"`
}

// LoadFeeds reads the RSS feeds list from a YAML file.
func LoadFeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg FeedsConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg.Feeds, nil
}

// RSS aggregates generic entertainment feeds as an alternative to the
// IMDb API. Item ids are derived from the entry link so the dedup path
// works the same way for both providers.
type RSS struct {
	feeds  []string
	parser *gofeed.Parser
}

var _ Source = (*RSS)(nil)

func NewRSS(feeds []string) *RSS {
	return &RSS{feeds: feeds, parser: gofeed.NewParser()}
}

func (s *RSS) Name() string { return "rss" }

func (s *RSS) Fetch(ctx context.Context, limit int) ([]store.Item, error) {
	var items []store.Item
	successCount := 0

	for _, url := range s.feeds {
		feed, err := s.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			log.Printf("error parsing RSS %s: %v", url, err)
			continue // one broken feed should not block the rest
		}
		successCount++

		for _, entry := range feed.Items {
			if limit > 0 && len(items) >= limit {
				break
			}
			items = append(items, store.Item{
				NewsID:   feedItemID(entry),
				Title:    entry.Title,
				URL:      entry.Link,
				Date:     feedItemDate(entry),
				Text:     cleanHTML(entry.Description),
				Image:    feedItemImage(entry),
				Category: "RSS",
			})
		}
	}

	log.Printf("processed RSS feeds: %d/%d ok", successCount, len(s.feeds))
	sortByDateDesc(items)
	return items, nil
}

func feedItemID(entry *gofeed.Item) string {
	key := entry.GUID
	if key == "" {
		key = entry.Link
	}
	h := sha256.Sum256([]byte(key))
	return "rss-" + hex.EncodeToString(h[:8])
}

func feedItemDate(entry *gofeed.Item) string {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC().Format(time.RFC3339)
	}
	return entry.Published
}

func feedItemImage(entry *gofeed.Item) string {
	if entry.Image != nil {
		return entry.Image.URL
	}
	for _, enc := range entry.Enclosures {
		if enc.Type == "image/jpeg" || enc.Type == "image/png" {
			return enc.URL
		}
	}
	return ""
}
