package rewrite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeRewriter struct {
	result *Result
	err    error
	calls  int
}

func (f *fakeRewriter) Rewrite(ctx context.Context, content string) (*Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func complete() *Result {
	return &Result{Title: "Título", Subhead: "Linha fina", Content: "Corpo"}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		result  Result
		missing string
	}{
		{"complete", *complete(), ""},
		{"blank title", Result{Subhead: "s", Content: "c"}, "title"},
		{"whitespace subhead", Result{Title: "t", Subhead: "  ", Content: "c"}, "subhead"},
		{"blank content", Result{Title: "t", Subhead: "s"}, "content"},
		{"all blank", Result{}, "title, subhead, content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.result)
			if tt.missing == "" {
				if err != nil {
					t.Fatalf("Validate = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrIncomplete) {
				t.Fatalf("Validate = %v, want ErrIncomplete", err)
			}
			if !strings.Contains(err.Error(), tt.missing) {
				t.Errorf("error %q does not name %q", err, tt.missing)
			}
		})
	}
}

func TestFallbackPrimaryWins(t *testing.T) {
	primary := &fakeRewriter{result: complete()}
	secondary := &fakeRewriter{result: complete()}
	f := &Fallback{Primary: primary, Secondary: secondary}

	if _, err := f.Rewrite(context.Background(), "text"); err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called despite primary success")
	}
}

func TestFallbackSecondaryUsed(t *testing.T) {
	primary := &fakeRewriter{err: fmt.Errorf("quota")}
	secondary := &fakeRewriter{result: complete()}
	f := &Fallback{Primary: primary, Secondary: secondary}

	result, err := f.Rewrite(context.Background(), "text")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if result.Title != "Título" {
		t.Errorf("unexpected result %+v", result)
	}
	if secondary.calls != 1 {
		t.Errorf("secondary calls = %d, want 1", secondary.calls)
	}
}

func TestFallbackBothFailReportsBoth(t *testing.T) {
	f := &Fallback{
		Primary:   &fakeRewriter{err: fmt.Errorf("primary broke")},
		Secondary: &fakeRewriter{err: fmt.Errorf("secondary broke")},
	}

	_, err := f.Rewrite(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "primary broke") || !strings.Contains(msg, "secondary broke") {
		t.Errorf("error %q does not report both failures", msg)
	}
}

func TestFallbackNoSecondary(t *testing.T) {
	primaryErr := fmt.Errorf("primary broke")
	f := &Fallback{Primary: &fakeRewriter{err: primaryErr}}

	if _, err := f.Rewrite(context.Background(), "text"); !errors.Is(err, primaryErr) {
		t.Errorf("err = %v, want primary error", err)
	}
}
