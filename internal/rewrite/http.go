package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"telanews/internal/adapter"
)

// HTTPRewriter calls a remote rewrite service. The service accepts
// {"content": ...} and answers {"title", "subhead", "content"}.
type HTTPRewriter struct {
	endpoint string
	client   *http.Client
}

var _ Rewriter = (*HTTPRewriter)(nil)

func NewHTTPRewriter(endpoint string, timeout time.Duration) *HTTPRewriter {
	return &HTTPRewriter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (h *HTTPRewriter) Rewrite(ctx context.Context, content string) (*Result, error) {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, adapter.FromTransport("rewrite-api", "rewrite", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, adapter.BadStatus("rewrite-api", "rewrite", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, adapter.FromTransport("rewrite-api", "rewrite", err)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, adapter.Wrap(adapter.ErrMalformedPayload, "rewrite-api", "rewrite", err)
	}
	if err := Validate(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
