package rewrite

import (
	"context"

	"telanews/internal/gemini"
)

// GeminiRewriter is the in-process implementation backed by the Gemini
// client. It is the preferred path; the HTTP service is the fallback.
type GeminiRewriter struct {
	client *gemini.Client
}

var _ Rewriter = (*GeminiRewriter)(nil)

func NewGeminiRewriter(client *gemini.Client) *GeminiRewriter {
	return &GeminiRewriter{client: client}
}

func (g *GeminiRewriter) Rewrite(ctx context.Context, content string) (*Result, error) {
	title, subhead, body, err := g.client.Rewrite(ctx, content)
	if err != nil {
		return nil, err
	}

	result := &Result{Title: title, Subhead: subhead, Content: body}
	if err := Validate(result); err != nil {
		return nil, err
	}
	return result, nil
}
