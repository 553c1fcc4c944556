package ratelimit

import "testing"

func TestUnlimitedByDefault(t *testing.T) {
	rl := NewAILimiter(0, 0, 0)
	for i := 0; i < 100; i++ {
		if !rl.CanClassify() || !rl.CanRewrite() {
			t.Fatal("zero caps must mean unlimited")
		}
		if err := rl.UseClassify(); err != nil {
			t.Fatalf("UseClassify: %v", err)
		}
	}
}

func TestClassifyCap(t *testing.T) {
	rl := NewAILimiter(2, 0, 0)
	for i := 0; i < 2; i++ {
		if !rl.CanClassify() {
			t.Fatalf("blocked at %d of 2", i)
		}
		if err := rl.UseClassify(); err != nil {
			t.Fatalf("UseClassify: %v", err)
		}
	}
	if rl.CanClassify() {
		t.Error("cap reached but CanClassify still true")
	}
	if err := rl.UseClassify(); err == nil {
		t.Error("UseClassify past the cap must fail")
	}
	// The rewrite path has its own budget.
	if !rl.CanRewrite() {
		t.Error("classify cap must not block rewrites")
	}
}

func TestTotalCapCoversBoth(t *testing.T) {
	rl := NewAILimiter(0, 0, 2)
	rl.UseClassify()
	rl.UseRewrite()
	if rl.CanClassify() || rl.CanRewrite() {
		t.Error("total cap reached but requests still allowed")
	}
}

func TestStats(t *testing.T) {
	rl := NewAILimiter(10, 5, 0)
	rl.UseClassify()
	rl.RecordCacheHit()

	stats := rl.GetStats()
	if stats["classify_used"].(int) != 1 {
		t.Errorf("classify_used = %v", stats["classify_used"])
	}
	if stats["cache_hits"].(int) != 1 {
		t.Errorf("cache_hits = %v", stats["cache_hits"])
	}
	if stats["rewrite_limit"].(int) != 5 {
		t.Errorf("rewrite_limit = %v", stats["rewrite_limit"])
	}
}
