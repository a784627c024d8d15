// Package session keeps named calculator engines for the network
// front-ends. Every engine is accessed under the store's lock.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tinytelemetry/tally/internal/calc"
)

var (
	// ErrNotFound is returned for unknown or expired session IDs.
	ErrNotFound = errors.New("session: not found")
	// ErrLimit is returned by Create when the store is full.
	ErrLimit = errors.New("session: limit reached")
)

// Config holds tunable parameters for the store.
type Config struct {
	TTL         time.Duration // idle time before a session expires, 0 = never
	MaxSessions int           // 0 = unlimited
}

// Session is the externally visible view of one keypad session.
type Session struct {
	ID       string        `json:"id"`
	State    calc.Snapshot `json:"state"`
	Created  time.Time     `json:"created"`
	LastUsed time.Time     `json:"last_used"`
}

type entry struct {
	engine   *calc.Engine
	created  time.Time
	lastUsed time.Time
}

// Store is a thread-safe registry of calculator engines.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	max      int
	now      func() time.Time
}

// NewStore creates an empty store.
func NewStore(conf Config) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      conf.TTL,
		max:      conf.MaxSessions,
		now:      time.Now,
	}
}

// Create starts a new session showing "0".
func (s *Store) Create() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.max > 0 && len(s.sessions) >= s.max {
		return Session{}, fmt.Errorf("%w (%d sessions)", ErrLimit, s.max)
	}

	id := uuid.NewString()
	now := s.now()
	e := &entry{engine: calc.New(), created: now, lastUsed: now}
	s.sessions[id] = e
	return e.view(id), nil
}

// Get returns the session without touching its idle timer.
func (s *Store) Get(id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e.view(id), nil
}

// Press applies keys in order and returns the display after each key.
func (s *Store) Press(id string, keys []calc.Key) ([]string, Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, Session{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	displays := e.engine.ApplyAll(keys...)
	e.lastUsed = s.now()
	return displays, e.view(id), nil
}

// Delete removes a session.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many
// were removed.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, e := range s.sessions {
		if e.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 || s.ttl <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("session: expired %d idle sessions", n)
			}
		}
	}
}

func (e *entry) view(id string) Session {
	return Session{
		ID:       id,
		State:    e.engine.Snapshot(),
		Created:  e.created,
		LastUsed: e.lastUsed,
	}
}
