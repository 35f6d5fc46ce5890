// Package session holds the state of one report display: the current audit,
// its suggestion checklist and an optional competitor audit.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/seo-optimizer/auditor/audit"
)

var (
	// ErrSuperseded is returned to a submission that a newer one replaced
	ErrSuperseded = errors.New("audit superseded by a newer submission")
	// ErrNoResult is returned when an operation needs a completed audit
	ErrNoResult = errors.New("no audit result available")
)

// Auditor produces audit records. *audit.Generator implements it.
type Auditor interface {
	Generate(ctx context.Context, rawURL string) (*audit.AuditResult, error)
	GenerateCompetitor(ctx context.Context, rawURL string) (*audit.AuditResult, error)
}

// Session is one display session. A new submission cancels the one in
// flight, and only the latest submission may publish its result.
type Session struct {
	ID        string
	CreatedAt time.Time

	auditor Auditor

	mu         sync.Mutex
	seq        uint64
	cancel     context.CancelFunc
	pending    bool
	result     *audit.AuditResult
	tracker    *Tracker
	competitor *audit.AuditResult
}

func New(id string, auditor Auditor) *Session {
	return &Session{ID: id, CreatedAt: time.Now(), auditor: auditor}
}

// Submit validates raw input and runs an audit. Invalid input returns
// immediately and leaves the session untouched.
func (s *Session) Submit(ctx context.Context, raw string) (*audit.AuditResult, error) {
	normalized, err := audit.NormalizeURL(raw)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	s.cancel = cancel
	s.pending = true
	s.result = nil
	s.tracker = nil
	s.competitor = nil
	s.mu.Unlock()

	result, err := s.auditor.Generate(runCtx, normalized)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != seq {
		return nil, ErrSuperseded
	}
	s.cancel = nil
	s.pending = false
	if err != nil {
		return nil, err
	}
	s.result = result
	s.tracker = NewTracker(len(result.Suggestions))
	return result.Clone(), nil
}

// Compare audits a competitor against the current result.
func (s *Session) Compare(ctx context.Context, raw string) (*audit.AuditResult, error) {
	s.mu.Lock()
	if s.result == nil {
		s.mu.Unlock()
		return nil, ErrNoResult
	}
	seq := s.seq
	s.mu.Unlock()

	normalized, err := audit.NormalizeURL(raw)
	if err != nil {
		return nil, err
	}

	competitor, err := s.auditor.GenerateCompetitor(ctx, normalized)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != seq {
		return nil, ErrSuperseded
	}
	s.competitor = competitor
	return competitor.Clone(), nil
}

// ToggleSuggestion flips suggestion i of the current result and reports its
// new state together with the progress read under the same lock.
func (s *Session) ToggleSuggestion(i int) (bool, Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tracker == nil {
		return false, Progress{}, ErrNoResult
	}
	if err := s.tracker.Toggle(i); err != nil {
		return false, Progress{}, err
	}
	return s.tracker.IsCompleted(i), s.tracker.Progress(), nil
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	ID         string
	Pending    bool
	Result     *audit.AuditResult
	Completed  []int
	Progress   Progress
	Competitor *audit.AuditResult
}

// IsCompleted reports whether suggestion i was marked completed
func (s Snapshot) IsCompleted(i int) bool {
	for _, c := range s.Completed {
		if c == i {
			return true
		}
	}
	return false
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:         s.ID,
		Pending:    s.pending,
		Result:     s.result.Clone(),
		Competitor: s.competitor.Clone(),
	}
	if s.tracker != nil {
		t := s.tracker.clone()
		snap.Completed = t.Completed()
		snap.Progress = t.Progress()
	}
	return snap
}

// Cancel stops an in-flight submission, if any
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
