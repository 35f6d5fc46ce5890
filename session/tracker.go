package session

import (
	"errors"
	"sort"
)

// ErrSuggestionIndex is returned when toggling a suggestion that does not exist
var ErrSuggestionIndex = errors.New("suggestion index out of range")

// Tracker holds which suggestions of one result were marked completed.
type Tracker struct {
	total     int
	completed map[int]struct{}
}

func NewTracker(total int) *Tracker {
	return &Tracker{total: total, completed: make(map[int]struct{})}
}

// Toggle flips the completion state of suggestion i
func (t *Tracker) Toggle(i int) error {
	if i < 0 || i >= t.total {
		return ErrSuggestionIndex
	}
	if _, ok := t.completed[i]; ok {
		delete(t.completed, i)
	} else {
		t.completed[i] = struct{}{}
	}
	return nil
}

func (t *Tracker) IsCompleted(i int) bool {
	_, ok := t.completed[i]
	return ok
}

// Completed returns the completed indices in ascending order
func (t *Tracker) Completed() []int {
	out := make([]int, 0, len(t.completed))
	for i := range t.completed {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// Progress is the completion summary shown under the suggestion list.
type Progress struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

func (t *Tracker) Progress() Progress {
	p := Progress{Completed: len(t.completed), Total: t.total}
	if t.total > 0 {
		p.Percent = float64(p.Completed) / float64(t.total) * 100
	}
	return p
}

func (t *Tracker) clone() *Tracker {
	c := NewTracker(t.total)
	for i := range t.completed {
		c.completed[i] = struct{}{}
	}
	return c
}
