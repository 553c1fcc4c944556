package rewrite

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"telanews/internal/adapter"
)

func TestHTTPRewriterSuccess(t *testing.T) {
	var gotContent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		gotContent = payload["content"]

		json.NewEncoder(w).Encode(Result{
			Title:   "Título novo",
			Subhead: "Linha fina",
			Content: "Corpo traduzido",
		})
	}))
	defer srv.Close()

	rw := NewHTTPRewriter(srv.URL, 5*time.Second)
	result, err := rw.Rewrite(context.Background(), "original text")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if gotContent != "original text" {
		t.Errorf("service received %q", gotContent)
	}
	if result.Title != "Título novo" || result.Content != "Corpo traduzido" {
		t.Errorf("result = %+v", result)
	}
}

func TestHTTPRewriterBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	rw := NewHTTPRewriter(srv.URL, 5*time.Second)
	if _, err := rw.Rewrite(context.Background(), "text"); !errors.Is(err, adapter.ErrBadStatus) {
		t.Errorf("err = %v, want ErrBadStatus", err)
	}
}

func TestHTTPRewriterIncompleteResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Result{Title: "only a title"})
	}))
	defer srv.Close()

	rw := NewHTTPRewriter(srv.URL, 5*time.Second)
	if _, err := rw.Rewrite(context.Background(), "text"); !errors.Is(err, ErrIncomplete) {
		t.Errorf("err = %v, want ErrIncomplete", err)
	}
}

func TestHTTPRewriterMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	rw := NewHTTPRewriter(srv.URL, 5*time.Second)
	if _, err := rw.Rewrite(context.Background(), "text"); !errors.Is(err, adapter.ErrMalformedPayload) {
		t.Errorf("err = %v, want ErrMalformedPayload", err)
	}
}
