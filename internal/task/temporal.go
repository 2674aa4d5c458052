package task

import "time"

// EffectiveStatus reports the display state of t at now. A deadline date
// before today is Overdue whatever the stored state, Done included.
func EffectiveStatus(t Task, now time.Time) State {
	dy, dm, dd := t.Deadline.Date()
	ny, nm, nd := now.Date()
	deadline := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	if deadline.Before(today) {
		return StateOverdue
	}
	return t.State
}

// Countdown is the time left until a deadline instant.
type Countdown struct {
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
	Expired bool
}

// Remaining decomposes the time from now to the deadline instant.
func Remaining(deadline, now time.Time) Countdown {
	total := secondsUntil(deadline, now)
	if total <= 0 {
		return Countdown{Expired: true}
	}
	return Countdown{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}
