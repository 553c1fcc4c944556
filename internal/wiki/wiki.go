// Package wiki looks people up in the Wikipedia REST search API to pull
// life dates and a portrait for memorial posters.
package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"telanews/internal/adapter"
)

// PersonInfo is what a successful lookup yields. BirthYear and DeathYear
// are zero when the page description carries no recognizable life dates.
type PersonInfo struct {
	Title     string
	BirthYear int
	DeathYear int
	ImageURL  string
}

type Client struct {
	baseURL string
	client  *http.Client
	now     func() time.Time
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		baseURL: "https://en.wikipedia.org/w/rest.php/v1",
		client:  &http.Client{Timeout: timeout},
		now:     time.Now,
	}
}

// NewClientWithBase is used by tests to point the client at a fake server.
func NewClientWithBase(baseURL string, timeout time.Duration) *Client {
	c := NewClient(timeout)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type searchResponse struct {
	Pages []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Thumbnail   *struct {
			URL string `json:"url"`
		} `json:"thumbnail"`
	} `json:"pages"`
}

// Lookup searches for a person by name and returns the best match, or
// nil when nothing was found.
func (c *Client) Lookup(ctx context.Context, name string) (*PersonInfo, error) {
	endpoint := fmt.Sprintf("%s/search/title?q=%s&limit=1", c.baseURL, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, adapter.FromTransport("wikipedia", "search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, adapter.BadStatus("wikipedia", "search", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, adapter.FromTransport("wikipedia", "search", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, adapter.Wrap(adapter.ErrMalformedPayload, "wikipedia", "search", err)
	}
	if len(parsed.Pages) == 0 {
		return nil, nil
	}

	page := parsed.Pages[0]
	birth, death := c.extractYears(page.Description)

	image := ""
	if page.Thumbnail != nil {
		image = FixImageURL(page.Thumbnail.URL)
	}

	return &PersonInfo{
		Title:     page.Title,
		BirthYear: birth,
		DeathYear: death,
		ImageURL:  image,
	}, nil
}

// yearsRe matches "(1944–2021)", "(1944-2021)" and "(born 1957)" in page
// descriptions.
var yearsRe = regexp.MustCompile(`\((?:born\s+)?(\d{4})(?:[–-](\d{4}))?\)`)

// extractYears parses life dates out of a description. When only a birth
// year is present the death year defaults to the current year, matching
// how obituary descriptions lag behind the news cycle.
func (c *Client) extractYears(description string) (birth, death int) {
	if description == "" {
		return 0, 0
	}
	match := yearsRe.FindStringSubmatch(description)
	if match == nil {
		return 0, 0
	}

	birth, _ = strconv.Atoi(match[1])
	if match[2] != "" {
		death, _ = strconv.Atoi(match[2])
	} else {
		death = c.now().Year()
	}
	return birth, death
}

// FixImageURL upgrades a Wikipedia thumbnail URL to the original upload:
// the /thumb/ path segment goes away and the sizing prefix is stripped
// from the filename.
func FixImageURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "//upload.wikimedia.org") {
		return raw
	}
	raw = "https:" + raw

	if !strings.Contains(raw, "/thumb/") {
		return raw
	}
	raw = strings.Replace(raw, "/thumb/", "/", 1)

	// Thumbnail paths end with <original>/<size>px-<original>; collapse
	// the pair back to the original filename.
	parts := strings.Split(raw, "/")
	if len(parts) < 2 {
		return raw
	}
	filename := parts[len(parts)-1]
	if idx := strings.Index(filename, "px-"); idx >= 0 {
		filename = filename[idx+len("px-"):]
	}
	return strings.Join(parts[:len(parts)-2], "/") + "/" + filename
}
