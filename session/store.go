package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown or expired session ids
var ErrNotFound = errors.New("session not found")

type storeEntry struct {
	session    *Session
	lastAccess time.Time
}

// Store keeps sessions in memory, expiring idle ones and evicting the
// least recently used when it grows past maxSize.
type Store struct {
	auditor Auditor

	mu              sync.RWMutex
	sessions        map[string]*storeEntry
	ttl             time.Duration
	maxSize         int
	cleanupInterval time.Duration
	now             func() time.Time

	stop chan struct{}
	once sync.Once
}

// NewStore creates a store and starts its cleanup goroutine. Close stops it.
func NewStore(auditor Auditor, ttl time.Duration, maxSize int) *Store {
	s := &Store{
		auditor:         auditor,
		sessions:        make(map[string]*storeEntry),
		ttl:             ttl,
		maxSize:         maxSize,
		cleanupInterval: 5 * time.Minute,
		now:             time.Now,
		stop:            make(chan struct{}),
	}
	if ttl > 0 && ttl < s.cleanupInterval {
		s.cleanupInterval = ttl
	}

	go s.periodicCleanup()
	return s
}

// Create registers a new empty session
func (s *Store) Create() *Session {
	sess := New(uuid.NewString(), s.auditor)

	s.mu.Lock()
	s.sessions[sess.ID] = &storeEntry{session: sess, lastAccess: s.now()}
	s.mu.Unlock()

	s.cleanup()
	return sess
}

// Get returns a live session and refreshes its access time.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if s.ttl > 0 && now.Sub(entry.lastAccess) > s.ttl {
		entry.session.Cancel()
		delete(s.sessions, id)
		return nil, ErrNotFound
	}
	entry.lastAccess = now
	return entry.session, nil
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.sessions[id]; ok {
		entry.session.Cancel()
		delete(s.sessions, id)
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the cleanup goroutine and cancels in-flight audits
func (s *Store) Close() {
	s.once.Do(func() {
		close(s.stop)
		s.mu.Lock()
		for _, entry := range s.sessions {
			entry.session.Cancel()
		}
		s.mu.Unlock()
	})
}

func (s *Store) periodicCleanup() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stop:
			return
		}
	}
}

// cleanup removes expired sessions and enforces the size limit
func (s *Store) cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ttl > 0 {
		for id, entry := range s.sessions {
			if now.Sub(entry.lastAccess) > s.ttl {
				entry.session.Cancel()
				delete(s.sessions, id)
			}
		}
	}

	if s.maxSize <= 0 || len(s.sessions) <= s.maxSize {
		return
	}

	entries := make([]struct {
		id         string
		lastAccess time.Time
	}, 0, len(s.sessions))
	for id, entry := range s.sessions {
		entries = append(entries, struct {
			id         string
			lastAccess time.Time
		}{id, entry.lastAccess})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].lastAccess.Before(entries[j].lastAccess)
	})

	for i := 0; i < len(entries)-s.maxSize; i++ {
		s.sessions[entries[i].id].session.Cancel()
		delete(s.sessions, entries[i].id)
	}
}
