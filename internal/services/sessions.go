package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session is anything the store owns and must tear down on eviction.
type Session interface {
	Close()
}

type sessionEntry[T Session] struct {
	session   T
	createdAt time.Time
	lastSeen  time.Time
}

// SessionStore keeps live sessions keyed by a random ID. Sessions idle for
// longer than idleTimeout are closed by ReapIdle; when maxSize is reached
// the least recently used session is closed to make room.
type SessionStore[T Session] struct {
	mu          sync.RWMutex
	sessions    map[string]*sessionEntry[T]
	logger      *zap.Logger
	idleTimeout time.Duration
	maxSize     int
	evicted     int
	now         func() time.Time
}

func NewSessionStore[T Session](idleTimeout time.Duration, maxSize int, logger *zap.Logger) *SessionStore[T] {
	return &SessionStore[T]{
		sessions:    make(map[string]*sessionEntry[T]),
		logger:      logger,
		idleTimeout: idleTimeout,
		maxSize:     maxSize,
		now:         time.Now,
	}
}

// Create registers s and returns its new ID.
func (s *SessionStore[T]) Create(session T) string {
	id := uuid.NewString()
	now := s.now()

	s.mu.Lock()
	var victim *sessionEntry[T]
	if s.maxSize > 0 && len(s.sessions) >= s.maxSize {
		victim = s.evictOldest()
	}
	s.sessions[id] = &sessionEntry[T]{
		session:   session,
		createdAt: now,
		lastSeen:  now,
	}
	s.mu.Unlock()

	if victim != nil {
		victim.session.Close()
	}

	s.logger.Debug("Session created", zap.String("session_id", id))
	return id
}

// Get returns the session and marks it as recently used.
func (s *SessionStore[T]) Get(id string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.sessions[id]
	if !exists {
		var zero T
		return zero, false
	}
	entry.lastSeen = s.now()
	return entry.session, true
}

// Delete closes and removes the session. It reports whether it existed.
func (s *SessionStore[T]) Delete(id string) bool {
	s.mu.Lock()
	entry, exists := s.sessions[id]
	if exists {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if !exists {
		return false
	}
	entry.session.Close()
	s.logger.Debug("Session deleted", zap.String("session_id", id))
	return true
}

// ReapIdle closes every session not used within the idle timeout and
// returns how many were removed.
func (s *SessionStore[T]) ReapIdle() int {
	if s.idleTimeout <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.idleTimeout)
	var expired []*sessionEntry[T]

	s.mu.Lock()
	for id, entry := range s.sessions {
		if entry.lastSeen.Before(cutoff) {
			expired = append(expired, entry)
			delete(s.sessions, id)
		}
	}
	s.evicted += len(expired)
	s.mu.Unlock()

	for _, entry := range expired {
		entry.session.Close()
	}

	if len(expired) > 0 {
		s.logger.Info("Reaped idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

func (s *SessionStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CloseAll tears down every session; used on shutdown.
func (s *SessionStore[T]) CloseAll() {
	s.mu.Lock()
	entries := make([]*sessionEntry[T], 0, len(s.sessions))
	for id, entry := range s.sessions {
		entries = append(entries, entry)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, entry := range entries {
		entry.session.Close()
	}
}

func (s *SessionStore[T]) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"active_sessions": len(s.sessions),
		"evicted_total":   s.evicted,
		"max_size":        s.maxSize,
		"idle_timeout":    s.idleTimeout.String(),
	}
}

// evictOldest removes the least recently used entry. Caller holds mu and
// closes the returned session after unlocking.
func (s *SessionStore[T]) evictOldest() *sessionEntry[T] {
	var oldestID string
	var oldest *sessionEntry[T]

	for id, entry := range s.sessions {
		if oldest == nil || entry.lastSeen.Before(oldest.lastSeen) {
			oldestID = id
			oldest = entry
		}
	}

	if oldest != nil {
		delete(s.sessions, oldestID)
		s.evicted++
		s.logger.Debug("Evicted least recently used session",
			zap.String("session_id", oldestID))
	}
	return oldest
}
