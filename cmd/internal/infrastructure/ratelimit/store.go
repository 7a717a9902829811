package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Store hands out one token bucket per client key and forgets idle keys on Cleanup.
type Store struct {
	mu      sync.Mutex
	entries map[string]*storeEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
}

type storeEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewStore(rps float64, burst int, idleTTL time.Duration) *Store {
	return &Store{
		entries: make(map[string]*storeEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
	}
}

func (s *Store) RPS() float64 { return float64(s.rps) }
func (s *Store) Burst() int    { return s.burst }

func (s *Store) Allow(key string) bool {
	return s.get(key).Allow()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) get(key string) *rate.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[key] = &storeEntry{lim: lim, lastSeen: now}
	return lim
}

// Cleanup drops keys not seen for idleTTL and returns how many were removed.
func (s *Store) Cleanup() int {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}
