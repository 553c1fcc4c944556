// Package rewrite turns an English article into a Brazilian Portuguese
// one. Two implementations of the same interface exist: a direct Gemini
// call and a remote HTTP service, combined by Fallback.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrIncomplete means the rewrite answered but one of the required
// fields came back blank.
var ErrIncomplete = errors.New("incomplete rewrite result")

// Result is a finished localized article. All three fields are non-blank
// on any Result returned without error.
type Result struct {
	Title   string `json:"title"`
	Subhead string `json:"subhead"`
	Content string `json:"content"`
}

// Rewriter produces a localized rewrite of the given article body.
type Rewriter interface {
	Rewrite(ctx context.Context, content string) (*Result, error)
}

// Validate enforces the completeness contract shared by all
// implementations: title, subhead and content must survive a trim.
func Validate(r *Result) error {
	var missing []string
	if strings.TrimSpace(r.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(r.Subhead) == "" {
		missing = append(missing, "subhead")
	}
	if strings.TrimSpace(r.Content) == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// Fallback tries primary first and falls back to secondary on any
// failure, including an incomplete result. A secondary failure reports
// both errors.
type Fallback struct {
	Primary   Rewriter
	Secondary Rewriter
}

var _ Rewriter = (*Fallback)(nil)

func (f *Fallback) Rewrite(ctx context.Context, content string) (*Result, error) {
	result, primaryErr := f.Primary.Rewrite(ctx, content)
	if primaryErr == nil {
		return result, nil
	}
	if f.Secondary == nil {
		return nil, primaryErr
	}

	result, secondaryErr := f.Secondary.Rewrite(ctx, content)
	if secondaryErr != nil {
		return nil, fmt.Errorf("rewrite fallback failed: %w (primary: %v)", secondaryErr, primaryErr)
	}
	return result, nil
}
