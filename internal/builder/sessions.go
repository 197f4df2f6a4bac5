package builder

import (
	"sync"
	"time"
)

type session struct {
	controller *Controller
	lastSeen   time.Time
}

// Sessions keeps one controller per page view or chat, in memory only.
type Sessions struct {
	backend Backend
	offense string
	defense string
	samples int
	now     func() time.Time

	mu    sync.RWMutex
	items map[string]*session
}

func NewSessions(backend Backend, offense, defense string, samples int) *Sessions {
	if samples <= 0 {
		samples = DefaultSamples
	}
	return &Sessions{
		backend: backend,
		offense: offense,
		defense: defense,
		samples: samples,
		now:     time.Now,
		items:   make(map[string]*session),
	}
}

// Get returns the controller for key, creating it on first use.
func (s *Sessions) Get(key string) *Controller {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.items[key]; ok {
		sess.lastSeen = now
		return sess.controller
	}

	c := NewController(s.backend, s.offense, s.defense)
	c.SetSampling(s.samples, nil)
	s.items[key] = &session{controller: c, lastSeen: now}
	return c
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Sweep drops sessions idle for longer than ttl and returns how many went.
func (s *Sessions) Sweep(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, sess := range s.items {
		if sess.lastSeen.Before(cutoff) {
			delete(s.items, key)
			removed++
		}
	}
	return removed
}
