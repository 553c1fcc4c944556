package adapter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWrapKeepsMarkerAndCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrTimeout, "imdb", "news", cause)

	if !errors.Is(err, ErrTimeout) {
		t.Errorf("marker lost: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("cause lost: %v", err)
	}
	if !strings.Contains(err.Error(), "imdb: news") {
		t.Errorf("detail missing: %v", err)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(ErrMalformedPayload, "gemini", "", nil)
	if !errors.Is(err, ErrMalformedPayload) {
		t.Errorf("marker lost: %v", err)
	}
	if !strings.Contains(err.Error(), "gemini") {
		t.Errorf("name missing: %v", err)
	}
}

func TestBadStatus(t *testing.T) {
	err := BadStatus("supabase", "/rest/v1/news", 503)
	if !errors.Is(err, ErrBadStatus) {
		t.Errorf("marker lost: %v", err)
	}
	if !strings.Contains(err.Error(), "status 503") {
		t.Errorf("code missing: %v", err)
	}
}

func TestFromTransport(t *testing.T) {
	if FromTransport("x", "y", nil) != nil {
		t.Error("nil error must pass through as nil")
	}
	err := FromTransport("wikipedia", "search", fmt.Errorf("dial tcp: i/o timeout"))
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("transport failure not normalized: %v", err)
	}
}

func TestIsTimeout(t *testing.T) {
	if !IsTimeout(Wrap(ErrTimeout, "a", "b", nil)) {
		t.Error("ErrTimeout not recognized")
	}
	if !IsTimeout(context.DeadlineExceeded) {
		t.Error("deadline exceeded not recognized")
	}
	if IsTimeout(errors.New("something else")) {
		t.Error("unrelated error reported as timeout")
	}
}
