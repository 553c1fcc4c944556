package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"telanews/internal/adapter"
	"telanews/internal/retry"
)

// RESTStore talks to a Supabase PostgREST endpoint. Reads go out with the
// anon key, writes with the service role key.
type RESTStore struct {
	baseURL    string
	anonKey    string
	serviceKey string
	client     *http.Client
	retryCfg   retry.Config
}

var _ Store = (*RESTStore)(nil)

func NewRESTStore(baseURL, anonKey, serviceKey string, timeout time.Duration, retryCfg retry.Config) *RESTStore {
	if retryCfg.MaxAttempts <= 0 {
		retryCfg.MaxAttempts = 1
	}
	return &RESTStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: timeout},
		retryCfg:   retryCfg,
	}
}

func (s *RESTStore) NextUnprocessed(ctx context.Context) (*Item, error) {
	params := url.Values{}
	params.Set("used", "eq.false")
	params.Set("order", "created_at.asc")
	params.Set("limit", "1")

	var items []Item
	if err := s.getJSON(ctx, "/rest/v1/news_extraction", params, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoWork
	}
	return &items[0], nil
}

func (s *RESTStore) InsertItems(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	return s.writeJSON(ctx, http.MethodPost, "/rest/v1/news_extraction", nil, items)
}

func (s *RESTStore) MarkUsed(ctx context.Context, newsID string) error {
	params := url.Values{}
	params.Set("news_id", "eq."+newsID)
	return s.writeJSON(ctx, http.MethodPatch, "/rest/v1/news_extraction", params, map[string]bool{"used": true})
}

func (s *RESTStore) ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	for _, chunk := range chunkIDs(ids) {
		quoted := make([]string, len(chunk))
		for i, id := range chunk {
			quoted[i] = `"` + id + `"`
		}
		params := url.Values{}
		params.Set("select", "news_id")
		params.Set("news_id", "in.("+strings.Join(quoted, ",")+")")

		var rows []struct {
			NewsID string `json:"news_id"`
		}
		if err := s.getJSON(ctx, "/rest/v1/news_extraction", params, &rows); err != nil {
			return nil, err
		}
		for _, row := range rows {
			existing[row.NewsID] = true
		}
	}
	return existing, nil
}

func (s *RESTStore) InsertArticle(ctx context.Context, a *Article) error {
	return s.writeJSON(ctx, http.MethodPost, "/rest/v1/news", nil, a)
}

func (s *RESTStore) NextForRewrite(ctx context.Context) (*Article, error) {
	params := url.Values{}
	params.Set("brazil_interest", "eq.true")
	params.Set("title_pt", "is.null")
	params.Set("order", "created_at.asc")
	params.Set("limit", "1")

	var articles []Article
	if err := s.getJSON(ctx, "/rest/v1/news", params, &articles); err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, ErrNoWork
	}
	return &articles[0], nil
}

func (s *RESTStore) UpdateRewrite(ctx context.Context, id int64, rw Rewrite) error {
	params := url.Values{}
	params.Set("id", "eq."+strconv.FormatInt(id, 10))
	payload := map[string]string{
		"title_pt":   rw.Title,
		"subhead_pt": rw.Subhead,
		"text_pt":    rw.Content,
	}
	return s.writeJSON(ctx, http.MethodPatch, "/rest/v1/news", params, payload)
}

func (s *RESTStore) RecentTitles(ctx context.Context, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("select", "title_pt")
	params.Set("order", "created_at.desc")
	params.Set("limit", strconv.Itoa(limit))

	var rows []struct {
		TitlePT *string `json:"title_pt"`
	}
	if err := s.getJSON(ctx, "/rest/v1/news", params, &rows); err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.TitlePT != nil && *row.TitlePT != "" {
			titles = append(titles, *row.TitlePT)
		}
	}
	return titles, nil
}

func (s *RESTStore) Close() error { return nil }

// getJSON performs a retried anon-key GET and decodes the response body.
func (s *RESTStore) getJSON(ctx context.Context, path string, params url.Values, out interface{}) error {
	return retry.WithRetry(ctx, s.retryCfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint(path, params), nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		s.setHeaders(req, s.anonKey)

		resp, err := s.client.Do(req)
		if err != nil {
			return adapter.FromTransport("supabase", path, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return adapter.BadStatus("supabase", path, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return adapter.FromTransport("supabase", path, err)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return adapter.Wrap(adapter.ErrMalformedPayload, "supabase", path, err)
		}
		return nil
	})
}

// writeJSON performs a service-role POST or PATCH.
func (s *RESTStore) writeJSON(ctx context.Context, method, path string, params url.Values, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint(path, params), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	s.setHeaders(req, s.serviceKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return adapter.FromTransport("supabase", path, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		return adapter.BadStatus("supabase", path, resp.StatusCode)
	}
}

func (s *RESTStore) endpoint(path string, params url.Values) string {
	u := s.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

func (s *RESTStore) setHeaders(req *http.Request, key string) {
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)
	req.Header.Set("Content-Type", "application/json")
}
