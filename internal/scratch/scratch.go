// Package scratch is a small in-memory key-value store with per-entry TTL.
// Stages park intermediate payloads here (extracted article text, rewrite
// sources) instead of writing temp files.
package scratch

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	done    chan struct{}
}

func New() *Store {
	s := &Store{
		entries: make(map[string]entry),
		done:    make(chan struct{}),
	}

	// Cleanup expired entries every hour
	go s.cleanupLoop()

	return s
}

func (s *Store) Set(key string, value interface{}, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	e, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
}

// Key derives a stable scratch key from an item id and a payload kind.
func Key(itemID, kind string) string {
	h := sha256.New()
	h.Write([]byte(itemID + ":" + kind))
	return hex.EncodeToString(h.Sum(nil))
}

// Close stops the background cleanup goroutine.
func (s *Store) Close() {
	close(s.done)
}

func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.done:
			return
		}
	}
}

func (s *Store) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}
