package ratelimit

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// AILimiter caps daily Gemini usage across the classify and rewrite operations.
type AILimiter struct {
	mu            sync.Mutex
	classifyCount int
	rewriteCount  int
	totalCount    int
	maxClassify   int
	maxRewrite    int
	maxTotal      int
	resetTime     time.Time
	cacheHits     int
	cacheMisses   int
}

// NewAILimiter creates a limiter with per-operation and total daily caps.
// A cap of 0 means unlimited.
func NewAILimiter(maxClassify, maxRewrite, maxTotal int) *AILimiter {
	return &AILimiter{
		maxClassify: maxClassify,
		maxRewrite:  maxRewrite,
		maxTotal:    maxTotal,
		resetTime:   time.Now().Add(24 * time.Hour), // Reset daily
	}
}

// CanClassify checks if we can make a classification request.
func (rl *AILimiter) CanClassify() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxClassify > 0 && rl.classifyCount >= rl.maxClassify {
		log.Printf("classify rate limit reached (%d/%d)", rl.classifyCount, rl.maxClassify)
		return false
	}
	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		log.Printf("total AI rate limit reached (%d/%d)", rl.totalCount, rl.maxTotal)
		return false
	}
	return true
}

// CanRewrite checks if we can make a rewrite request.
func (rl *AILimiter) CanRewrite() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxRewrite > 0 && rl.rewriteCount >= rl.maxRewrite {
		log.Printf("rewrite rate limit reached (%d/%d)", rl.rewriteCount, rl.maxRewrite)
		return false
	}
	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		log.Printf("total AI rate limit reached (%d/%d)", rl.totalCount, rl.maxTotal)
		return false
	}
	return true
}

// UseClassify increments the classification counter.
func (rl *AILimiter) UseClassify() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxClassify > 0 && rl.classifyCount >= rl.maxClassify {
		return fmt.Errorf("classify rate limit exceeded")
	}
	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		return fmt.Errorf("total AI rate limit exceeded")
	}

	rl.classifyCount++
	rl.totalCount++
	rl.cacheMisses++
	return nil
}

// UseRewrite increments the rewrite counter.
func (rl *AILimiter) UseRewrite() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()

	if rl.maxRewrite > 0 && rl.rewriteCount >= rl.maxRewrite {
		return fmt.Errorf("rewrite rate limit exceeded")
	}
	if rl.maxTotal > 0 && rl.totalCount >= rl.maxTotal {
		return fmt.Errorf("total AI rate limit exceeded")
	}

	rl.rewriteCount++
	rl.totalCount++
	rl.cacheMisses++
	return nil
}

// RecordCacheHit records a request served from the scratch store.
func (rl *AILimiter) RecordCacheHit() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.cacheHits++
}

// GetStats returns current limiter statistics.
func (rl *AILimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]interface{}{
		"classify_used":  rl.classifyCount,
		"classify_limit": rl.maxClassify,
		"rewrite_used":   rl.rewriteCount,
		"rewrite_limit":  rl.maxRewrite,
		"total_used":     rl.totalCount,
		"total_limit":    rl.maxTotal,
		"cache_hits":     rl.cacheHits,
		"cache_misses":   rl.cacheMisses,
		"reset_time":     rl.resetTime,
	}
}

// checkReset resets counters if reset time has passed.
func (rl *AILimiter) checkReset() {
	if time.Now().After(rl.resetTime) {
		log.Printf("resetting AI rate limiter counters")
		rl.classifyCount = 0
		rl.rewriteCount = 0
		rl.totalCount = 0
		rl.cacheHits = 0
		rl.cacheMisses = 0
		rl.resetTime = time.Now().Add(24 * time.Hour)
	}
}
