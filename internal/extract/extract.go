// Package extract pulls readable article text out of arbitrary news pages.
package extract

import (
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"telanews/internal/adapter"
)

// ErrFailed means no usable article body could be recovered from the page.
var ErrFailed = errors.New("extraction failed")

// minContentLength is the shortest body considered a real article.
const minContentLength = 100

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
}

// Extractor fetches a page and recovers its main article text.
type Extractor struct {
	client *http.Client
}

func New(timeout time.Duration) *Extractor {
	return &Extractor{client: &http.Client{Timeout: timeout}}
}

// Article returns the readable body text of the page at url. It fails
// with ErrFailed when the page yields less than minContentLength
// characters of body text.
func (e *Extractor) Article(url string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", adapter.FromTransport("extract", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", adapter.BadStatus("extract", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", adapter.Wrap(adapter.ErrMalformedPayload, "extract", url, err)
	}

	content := extractParagraphs(doc)
	if len(content) < minContentLength {
		return "", fmt.Errorf("%w: body too short (%d chars) for %s", ErrFailed, len(content), url)
	}
	return content, nil
}

// extractParagraphs walks common article selectors from most to least
// specific and returns the cleaned text of the first tier that yields
// both enough paragraphs and enough total length. A tier with three
// short paragraphs does not win; the walk keeps going down to the
// generic selectors. When no tier qualifies, the longest candidate is
// returned so the caller reports its actual length.
func extractParagraphs(doc *goquery.Document) string {
	selectors := []string{
		"article p",
		".article-body p",
		".article-content p",
		".post-content p",
		".entry-content p",
		".content p",
		"main p",
		"#content p",
		"p",
	}

	best := ""
	for _, selector := range selectors {
		var paragraphs []string
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text != "" && len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})

		candidate := cleanContent(strings.Join(paragraphs, "\n\n"))
		if len(paragraphs) >= 3 && len(candidate) >= minContentLength {
			return candidate
		}
		if len(candidate) > len(best) {
			best = candidate
		}
	}

	return best
}

// junkIndicators flag boilerplate lines that never belong to article copy.
var junkIndicators = []string{
	"cookie", "gdpr", "subscribe to our newsletter", "sign up for",
	"click here", "follow us", "share this article", "advertisement",
	"read more:", "related:", "watch:", "log in", "create account",
}

func cleanContent(content string) string {
	if content == "" {
		return ""
	}

	lines := strings.Split(content, "\n")
	var cleanLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) < 8 {
			continue
		}

		lower := strings.ToLower(line)
		isJunk := false
		for _, indicator := range junkIndicators {
			if strings.Contains(lower, indicator) {
				isJunk = true
				break
			}
		}
		if isJunk {
			continue
		}

		cleanLines = append(cleanLines, line)
	}

	result := strings.Join(cleanLines, "\n\n")

	for strings.Contains(result, "  ") {
		result = strings.ReplaceAll(result, "  ", " ")
	}
	for strings.Contains(result, "\n\n\n") {
		result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	}

	return strings.TrimSpace(result)
}
