package board

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"agenda/internal/task"
)

var (
	ErrInvalidTask  = errors.New("invalid task")
	ErrInvalidEvent = errors.New("invalid event")
	ErrInvalidNote  = errors.New("invalid note")
	ErrInvalidHobby = errors.New("invalid hobby")
)

// Saver persists a snapshot after each mutation.
type Saver interface {
	SaveState(Snapshot) error
}

// Board owns the task, note, hobby and schedule collections. All writes go
// through its methods and are serialized; readers take a Snapshot.
type Board struct {
	mu     sync.Mutex
	state  Snapshot
	saver  Saver
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

type Option func(*Board)

func WithSaver(s Saver) Option {
	return func(b *Board) { b.saver = s }
}

func WithClock(now func() time.Time) Option {
	return func(b *Board) { b.now = now }
}

func WithIDs(next func() string) Option {
	return func(b *Board) { b.newID = next }
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Board) { b.logger = l }
}

// New returns a board seeded with initial.
func New(initial Snapshot, opts ...Option) *Board {
	b := &Board{
		state:  initial.clone(),
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Snapshot returns a copy of the current collections.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.clone()
}

// Tasks returns a copy of the task collection.
func (b *Board) Tasks() []task.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]task.Task(nil), b.state.Tasks...)
}

// mutate runs fn under the lock and persists the result when fn reports a
// change.
func (b *Board) mutate(op string, fn func(s *Snapshot) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !fn(&b.state) {
		return
	}
	if b.saver == nil {
		return
	}
	if err := b.saver.SaveState(b.state.clone()); err != nil {
		b.logger.Warn("save state failed", "op", op, "error", err)
	}
}

// TaskInput carries the user-supplied fields of a new task.
type TaskInput struct {
	Name             string
	RecommendedStart time.Time
	Deadline         time.Time
	Criticality      int
	Category         task.Category
}

func validateTask(in TaskInput) (TaskInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return in, fmt.Errorf("%w: name is empty", ErrInvalidTask)
	}
	if in.Deadline.IsZero() {
		return in, fmt.Errorf("%w: %q has no deadline", ErrInvalidTask, in.Name)
	}
	if in.Criticality < task.MinCriticality || in.Criticality > task.MaxCriticality {
		return in, fmt.Errorf("%w: %q criticality %d outside [%d,%d]",
			ErrInvalidTask, in.Name, in.Criticality, task.MinCriticality, task.MaxCriticality)
	}
	if in.Category == "" {
		in.Category = task.CategoryMedium
	}
	cat, err := task.ParseCategory(string(in.Category))
	if err != nil {
		return in, fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	in.Category = cat
	if in.RecommendedStart.IsZero() {
		in.RecommendedStart = in.Deadline
	}
	return in, nil
}

// Insert validates in and appends it as a pending task.
func (b *Board) Insert(in TaskInput) (task.Task, error) {
	added, err := b.BulkInsert([]TaskInput{in})
	if err != nil {
		return task.Task{}, err
	}
	return added[0], nil
}

// BulkInsert appends every input in order, or none of them if any fails
// validation.
func (b *Board) BulkInsert(inputs []TaskInput) ([]task.Task, error) {
	valid := make([]TaskInput, 0, len(inputs))
	for i, in := range inputs {
		v, err := validateTask(in)
		if err != nil {
			return nil, fmt.Errorf("bulk insert: record %d: %w", i, err)
		}
		valid = append(valid, v)
	}
	if len(valid) == 0 {
		return nil, nil
	}

	added := make([]task.Task, 0, len(valid))
	b.mutate("bulk insert", func(s *Snapshot) bool {
		now := b.now()
		for _, in := range valid {
			t := task.Task{
				ID:               b.newID(),
				Name:             in.Name,
				EnteredAt:        now,
				RecommendedStart: in.RecommendedStart,
				Deadline:         in.Deadline,
				Criticality:      in.Criticality,
				State:            task.StatePending,
				Category:         in.Category,
			}
			added = append(added, t)
		}
		s.Tasks = append(s.Tasks, added...)
		return true
	})
	return added, nil
}

// Patch lists the task fields to overwrite; nil fields are left alone.
type Patch struct {
	Name             *string
	RecommendedStart *time.Time
	Deadline         *time.Time
	Criticality      *int
	State            *task.State
	Category         *task.Category
}

func (p Patch) apply(t task.Task) (task.Task, error) {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return t, fmt.Errorf("%w: name is empty", ErrInvalidTask)
		}
		t.Name = name
	}
	if p.RecommendedStart != nil {
		t.RecommendedStart = *p.RecommendedStart
	}
	if p.Deadline != nil {
		if p.Deadline.IsZero() {
			return t, fmt.Errorf("%w: deadline is empty", ErrInvalidTask)
		}
		t.Deadline = *p.Deadline
	}
	if p.Criticality != nil {
		c := *p.Criticality
		if c < task.MinCriticality || c > task.MaxCriticality {
			return t, fmt.Errorf("%w: criticality %d outside [%d,%d]", ErrInvalidTask, c, task.MinCriticality, task.MaxCriticality)
		}
		t.Criticality = c
	}
	if p.State != nil {
		st, err := task.ParseState(string(*p.State))
		if err != nil {
			return t, fmt.Errorf("%w: %v", ErrInvalidTask, err)
		}
		// Overdue is derived from the deadline on read, never stored.
		if st == task.StateOverdue {
			return t, fmt.Errorf("%w: state %q cannot be set", ErrInvalidTask, st)
		}
		t.State = st
	}
	if p.Category != nil {
		cat, err := task.ParseCategory(string(*p.Category))
		if err != nil {
			return t, fmt.Errorf("%w: %v", ErrInvalidTask, err)
		}
		t.Category = cat
	}
	return t, nil
}

// Patch merges p into the task with id. It reports false when no such task
// exists; an invalid patch leaves the task untouched.
func (b *Board) Patch(id string, p Patch) (bool, error) {
	found := false
	var perr error
	b.mutate("patch", func(s *Snapshot) bool {
		for i, t := range s.Tasks {
			if t.ID != id {
				continue
			}
			found = true
			updated, err := p.apply(t)
			if err != nil {
				perr = err
				return false
			}
			s.Tasks[i] = updated
			return true
		}
		return false
	})
	return found, perr
}

// SetDone marks a task done or back to pending.
func (b *Board) SetDone(id string, done bool) bool {
	st := task.StatePending
	if done {
		st = task.StateDone
	}
	found, _ := b.Patch(id, Patch{State: &st})
	return found
}

// Remove deletes the task with id, reporting whether it existed.
func (b *Board) Remove(id string) bool {
	found := false
	b.mutate("remove", func(s *Snapshot) bool {
		for i, t := range s.Tasks {
			if t.ID == id {
				s.Tasks = append(s.Tasks[:i:i], s.Tasks[i+1:]...)
				found = true
				return true
			}
		}
		return false
	})
	return found
}

// RemoveMatching deletes every task whose name contains any fragment,
// ignoring case. Blank fragments match nothing.
func (b *Board) RemoveMatching(fragments []string) int {
	var n int
	b.mutate("remove matching", func(s *Snapshot) bool {
		s.Tasks, n = filterOut(s.Tasks, func(t task.Task) string { return t.Name }, fragments)
		return n > 0
	})
	return n
}
