// Package gemini wraps the generative-ai-go client for the two LLM
// operations the pipeline needs: editorial classification and article
// rewriting.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"telanews/internal/adapter"
	"telanews/internal/store"
)

type Client struct {
	client        *genai.Client
	classifyModel string
	rewriteModel  string
}

func NewClient(ctx context.Context, apiKey, classifyModel, rewriteModel string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client:        client,
		classifyModel: classifyModel,
		rewriteModel:  rewriteModel,
	}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Classify runs the editorial filter over one article and returns the
// parsed verdict. recentTitles feeds the duplicate check; only the most
// recent entries are shown to the model.
func (c *Client) Classify(ctx context.Context, title, content string, recentTitles []string) (*store.Classification, error) {
	model := c.client.GenerativeModel(c.classifyModel)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(classifySystemPrompt)},
	}
	model.SetTemperature(0.3)
	model.SetMaxOutputTokens(1024)

	prompt := buildClassifyPrompt(title, truncateContent(content), recentTitles)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, adapter.FromTransport("gemini", "classify", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return nil, adapter.Wrap(adapter.ErrMalformedPayload, "gemini", "classify", err)
	}

	verdict, err := ParseClassification(ExtractJSON(text))
	if err != nil {
		return nil, adapter.Wrap(adapter.ErrMalformedPayload, "gemini", "classify", err)
	}
	return verdict, nil
}

// Rewrite produces a Brazilian Portuguese version of the article body,
// returning title, subhead and rewritten text.
func (c *Client) Rewrite(ctx context.Context, content string) (title, subhead, body string, err error) {
	model := c.client.GenerativeModel(c.rewriteModel)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(rewriteSystemPrompt)},
	}
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(4096)

	resp, err := model.GenerateContent(ctx, genai.Text(truncateContent(content)))
	if err != nil {
		return "", "", "", adapter.FromTransport("gemini", "rewrite", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return "", "", "", adapter.Wrap(adapter.ErrMalformedPayload, "gemini", "rewrite", err)
	}

	title, subhead, body, err = ParseRewrite(ExtractJSON(text))
	if err != nil {
		return "", "", "", adapter.Wrap(adapter.ErrMalformedPayload, "gemini", "rewrite", err)
	}
	return title, subhead, body, nil
}

// truncateContent caps prompt size, cutting on a sentence boundary when
// one falls late enough in the text.
func truncateContent(content string) string {
	content = strings.ReplaceAll(content, "\r", "")
	content = strings.TrimSpace(content)
	content = strings.Join(strings.Fields(content), " ")

	maxChars := 6000
	if utf8.RuneCountInString(content) > maxChars {
		runes := []rune(content)
		trimmed := string(runes[:maxChars])
		if idx := strings.LastIndex(trimmed, ". "); idx > 1200 {
			trimmed = trimmed[:idx+1]
		}
		content = trimmed + "\n[TRUNCATED]"
	}
	return content
}

func buildClassifyPrompt(title, content string, recentTitles []string) string {
	formatted := "No previous titles available"
	if len(recentTitles) > 0 {
		formatted = strings.Join(recentTitles, "\n- ")
	}
	return fmt.Sprintf("Title: %s\nContent: %s\nLast titles:\n- %s", title, content, formatted)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 ||
		resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("response contains no text parts")
	}
	return sb.String(), nil
}
