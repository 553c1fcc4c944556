package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"telanews/internal/metrics"
	"telanews/internal/poster"
	"telanews/internal/rewrite"
	"telanews/internal/store"
	"telanews/internal/wiki"
)

type stubRewriter struct {
	result *rewrite.Result
	err    error
	input  string
}

func (r *stubRewriter) Rewrite(ctx context.Context, content string) (*rewrite.Result, error) {
	r.input = content
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

type stubLookup struct {
	info   *wiki.PersonInfo
	err    error
	called bool
}

func (l *stubLookup) Lookup(ctx context.Context, name string) (*wiki.PersonInfo, error) {
	l.called = true
	return l.info, l.err
}

func testArticle() *store.Article {
	return &store.Article{
		ID:      7,
		NewsID:  "ni7",
		TitleEN: "Star retires",
		TextEN:  "Long body text",
		Image:   "https://example.com/still.jpg",
	}
}

func ptResult() *rewrite.Result {
	return &rewrite.Result{Title: "Astro se aposenta", Subhead: "Fim de uma era", Content: "Texto completo"}
}

func TestAnalyzerRewritesAndStores(t *testing.T) {
	st := &stubStore{nextArticle: testArticle()}
	rw := &stubRewriter{result: ptResult()}
	a := NewAnalyzer(st, rw, &stubLookup{}, poster.NewBuilder("http://covers"), nil, discardLogger())

	res := a.Run(context.Background())
	if res.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %v, err = %v", res.Outcome, res.Err)
	}
	got, ok := st.rewritten[7]
	if !ok {
		t.Fatalf("rewrite was not stored")
	}
	if got.Title != "Astro se aposenta" || got.Subhead != "Fim de uma era" || got.Content != "Texto completo" {
		t.Errorf("stored rewrite = %+v", got)
	}
	if rw.input == "" {
		t.Errorf("rewriter received no source text")
	}
}

func TestAnalyzerNoWork(t *testing.T) {
	a := NewAnalyzer(&stubStore{}, &stubRewriter{}, &stubLookup{}, nil, nil, discardLogger())
	res := a.Run(context.Background())
	if res.Outcome != OutcomeFailed || !errors.Is(res.Err, store.ErrNoWork) {
		t.Fatalf("got %+v, want failed with ErrNoWork", res)
	}
}

func TestAnalyzerRewriteFailureLeavesArticle(t *testing.T) {
	st := &stubStore{nextArticle: testArticle()}
	a := NewAnalyzer(st, &stubRewriter{err: fmt.Errorf("model error")}, &stubLookup{}, nil, nil, discardLogger())

	res := a.Run(context.Background())
	if res.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %v, want failed", res.Outcome)
	}
	if len(st.rewritten) != 0 {
		t.Errorf("failed rewrite was stored")
	}
}

func TestAnalyzerRewriteFailureStillEmitsPoster(t *testing.T) {
	st := &stubStore{nextArticle: testArticle()}
	a := NewAnalyzer(st, &stubRewriter{err: fmt.Errorf("model error")}, &stubLookup{}, poster.NewBuilder("http://covers"), nil, discardLogger())

	before := metrics.Global.GetStats()["posters_generated"].(int64)
	res := a.Run(context.Background())
	if res.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %v, want failed", res.Outcome)
	}
	after := metrics.Global.GetStats()["posters_generated"].(int64)
	// The cover goes out under the English headline when the rewrite
	// never produced a Portuguese one.
	if after != before+1 {
		t.Errorf("posters_generated delta = %d, want 1", after-before)
	}
}

func TestAnalyzerStoreFailure(t *testing.T) {
	st := &stubStore{nextArticle: testArticle(), updateRewriteErr: fmt.Errorf("write refused")}
	a := NewAnalyzer(st, &stubRewriter{result: ptResult()}, &stubLookup{}, nil, nil, discardLogger())

	if res := a.Run(context.Background()); res.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %v, want failed", res.Outcome)
	}
}

func TestAnalyzerPosterFailureSwallowed(t *testing.T) {
	art := testArticle()
	art.DeathRelated = boolPtr(true)
	art.EntityName = strPtr("Famous Person")

	st := &stubStore{nextArticle: art}
	lookup := &stubLookup{err: fmt.Errorf("wikipedia down")}
	a := NewAnalyzer(st, &stubRewriter{result: ptResult()}, lookup, poster.NewBuilder("http://covers"), nil, discardLogger())

	res := a.Run(context.Background())
	if res.Outcome != OutcomeSuccess {
		t.Fatalf("poster enrichment failure must not fail the stage, got %v", res.Outcome)
	}
	if !lookup.called {
		t.Errorf("obituary article did not trigger a person lookup")
	}
	if _, ok := st.rewritten[7]; !ok {
		t.Errorf("rewrite was lost")
	}
}

func TestAnalyzerMemorialNeedsBothYears(t *testing.T) {
	art := testArticle()
	art.DeathRelated = boolPtr(true)
	art.EntityName = strPtr("Famous Person")

	st := &stubStore{nextArticle: art}
	// Birth year only: the memorial cover is off the table, the news
	// cover still applies.
	lookup := &stubLookup{info: &wiki.PersonInfo{Title: "Famous Person", BirthYear: 1950}}
	a := NewAnalyzer(st, &stubRewriter{result: ptResult()}, lookup, poster.NewBuilder("http://covers"), nil, discardLogger())

	if res := a.Run(context.Background()); res.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %v", res.Outcome)
	}
}

func TestAnalyzerNoPosterWithoutImage(t *testing.T) {
	art := testArticle()
	art.Image = ""
	art.DeathRelated = boolPtr(true)
	art.EntityName = strPtr("Famous Person")

	st := &stubStore{nextArticle: art}
	lookup := &stubLookup{info: &wiki.PersonInfo{Title: "Famous Person", BirthYear: 1950}}
	a := NewAnalyzer(st, &stubRewriter{result: ptResult()}, lookup, poster.NewBuilder("http://covers"), nil, discardLogger())

	before := metrics.Global.GetStats()["posters_generated"].(int64)
	if res := a.Run(context.Background()); res.Outcome != OutcomeSuccess {
		t.Fatalf("outcome = %v", res.Outcome)
	}
	after := metrics.Global.GetStats()["posters_generated"].(int64)
	if after != before {
		t.Errorf("poster emitted with no image and no death year")
	}
}

func TestAnalyzerBlankSourceFails(t *testing.T) {
	st := &stubStore{nextArticle: &store.Article{ID: 1, NewsID: "ni1"}}
	a := NewAnalyzer(st, &stubRewriter{result: ptResult()}, &stubLookup{}, nil, nil, discardLogger())

	if res := a.Run(context.Background()); res.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %v, want failed", res.Outcome)
	}
}
