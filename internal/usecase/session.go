package usecase

import (
	"sync"
	"time"

	"cbrbot/internal/entity"
	"cbrbot/internal/metrics"
)

type session struct {
	mu    sync.Mutex
	state entity.ConversationState

	// guarded by sessions.mu
	refs     int
	lastSeen time.Time
}

// sessions keeps one ConversationState per user. A session is locked for
// the whole handling of an event, so transitions of one user never
// interleave while other users proceed independently.
type sessions struct {
	mu      sync.Mutex
	entries map[int64]*session
}

func newSessions() *sessions {
	return &sessions{
		entries: make(map[int64]*session),
	}
}

func (s *sessions) acquire(userID int64, now time.Time) *session {
	s.mu.Lock()
	entry, ok := s.entries[userID]
	if !ok {
		entry = &session{}
		s.entries[userID] = entry
		metrics.ActiveSessions.Inc()
	}
	entry.refs++
	entry.lastSeen = now
	s.mu.Unlock()

	entry.mu.Lock()
	return entry
}

func (s *sessions) release(entry *session, now time.Time) {
	entry.mu.Unlock()

	s.mu.Lock()
	entry.refs--
	entry.lastSeen = now
	s.mu.Unlock()
}

// sweep drops sessions nobody holds that were last used before idleBefore.
func (s *sessions) sweep(idleBefore time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.entries {
		if entry.refs == 0 && entry.lastSeen.Before(idleBefore) {
			delete(s.entries, id)
			removed++
		}
	}
	metrics.ActiveSessions.Sub(float64(removed))

	return removed
}

func (s *sessions) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
