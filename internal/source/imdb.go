package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"telanews/internal/adapter"
	"telanews/internal/store"
)

// imdbQuery pulls the latest movie and TV headlines in one request.
const imdbQuery = `
query GetNews($first: Int!) {
  movieNews: news(first: $first, category: MOVIE) {
    edges {
      node {
        id
        articleTitle { plainText }
        externalUrl
        date
        text { plaidHtml }
        image { url }
      }
    }
  }
  tvNews: news(first: $first, category: TV) {
    edges {
      node {
        id
        articleTitle { plainText }
        externalUrl
        date
        text { plaidHtml }
        image { url }
      }
    }
  }
}
`

// IMDb fetches headlines from the IMDb GraphQL API.
type IMDb struct {
	endpoint string
	client   *http.Client
}

var _ Source = (*IMDb)(nil)

func NewIMDb(endpoint string, timeout time.Duration) *IMDb {
	return &IMDb{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *IMDb) Name() string { return "imdb" }

type imdbNode struct {
	ID           string `json:"id"`
	ArticleTitle struct {
		PlainText string `json:"plainText"`
	} `json:"articleTitle"`
	ExternalURL string `json:"externalUrl"`
	Date        string `json:"date"`
	Text        struct {
		PlaidHTML string `json:"plaidHtml"`
	} `json:"text"`
	Image *struct {
		URL string `json:"url"`
	} `json:"image"`
}

type imdbCategory struct {
	Edges []struct {
		Node imdbNode `json:"node"`
	} `json:"edges"`
}

type imdbResponse struct {
	Data *struct {
		MovieNews imdbCategory `json:"movieNews"`
		TVNews    imdbCategory `json:"tvNews"`
	} `json:"data"`
}

func (s *IMDb) Fetch(ctx context.Context, limit int) ([]store.Item, error) {
	payload := map[string]interface{}{
		"query":     imdbQuery,
		"variables": map[string]int{"first": limit},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, adapter.FromTransport("imdb", "news", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, adapter.BadStatus("imdb", "news", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, adapter.FromTransport("imdb", "news", err)
	}

	var parsed imdbResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, adapter.Wrap(adapter.ErrMalformedPayload, "imdb", "news", err)
	}
	if parsed.Data == nil {
		return nil, adapter.Wrap(adapter.ErrMalformedPayload, "imdb", "news", fmt.Errorf("missing data envelope"))
	}

	var items []store.Item
	items = appendCategory(items, parsed.Data.MovieNews, "MOVIE")
	items = appendCategory(items, parsed.Data.TVNews, "TV")

	sortByDateDesc(items)
	return items, nil
}

func appendCategory(items []store.Item, cat imdbCategory, category string) []store.Item {
	for _, edge := range cat.Edges {
		node := edge.Node
		image := ""
		if node.Image != nil {
			image = node.Image.URL
		}
		items = append(items, store.Item{
			NewsID:   node.ID,
			Title:    node.ArticleTitle.PlainText,
			URL:      node.ExternalURL,
			Date:     node.Date,
			Text:     cleanHTML(node.Text.PlaidHTML),
			Image:    image,
			Category: category,
		})
	}
	return items
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// cleanHTML strips markup from the article teaser and collapses runs of
// whitespace into single spaces.
func cleanHTML(raw string) string {
	if raw == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(whitespaceRe.ReplaceAllString(raw, " "))
	}
	text := doc.Text()
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
