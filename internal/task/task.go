package task

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the text form of calendar-date fields.
const DateLayout = "2006-01-02"

// State is the stored lifecycle state of a task.
type State string

const (
	StatePending State = "pending"
	StateOverdue State = "overdue"
	StateDone    State = "done"
)

// Category is the user-assigned tag of a task.
type Category string

const (
	CategoryHigh   Category = "high"
	CategoryMedium Category = "medium"
	CategoryLow    Category = "low"
	CategoryHobby  Category = "hobby"
)

// Band is the urgency label computed from a score. It shares its vocabulary
// with Category but is never stored.
type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
	BandHobby  Band = "hobby"
)

const (
	MinCriticality = 1
	MaxCriticality = 10
)

// Task is a trackable unit of work with a deadline.
type Task struct {
	ID               string
	Name             string
	EnteredAt        time.Time
	RecommendedStart time.Time
	Deadline         time.Time
	Criticality      int
	State            State
	Category         Category
}

// ParseCategory maps user or assistant text onto a Category.
func ParseCategory(v string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "high", "alta":
		return CategoryHigh, nil
	case "medium", "media":
		return CategoryMedium, nil
	case "low", "baja":
		return CategoryLow, nil
	case "hobby", "pasatiempo":
		return CategoryHobby, nil
	}
	return "", fmt.Errorf("unknown category %q", v)
}

// ParseState maps text onto a stored State.
func ParseState(v string) (State, error) {
	switch s := State(strings.ToLower(strings.TrimSpace(v))); s {
	case StatePending, StateOverdue, StateDone:
		return s, nil
	}
	return "", fmt.Errorf("unknown state %q", v)
}

// ParseDate reads a YYYY-MM-DD date as local midnight.
func ParseDate(v string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(v), time.Local)
}

// FormatDate renders the calendar date of t, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ClampCriticality forces c into [MinCriticality, MaxCriticality].
func ClampCriticality(c int) int {
	if c < MinCriticality {
		return MinCriticality
	}
	if c > MaxCriticality {
		return MaxCriticality
	}
	return c
}

// DeadlineInstant is the last millisecond of the deadline date in loc.
func DeadlineInstant(deadline time.Time, loc *time.Location) time.Time {
	y, m, d := deadline.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)
}

// secondsUntil is the whole seconds from now to the deadline instant,
// truncated toward zero.
func secondsUntil(deadline, now time.Time) int64 {
	return int64(DeadlineInstant(deadline, now.Location()).Sub(now) / time.Second)
}
