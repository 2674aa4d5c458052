package task

import (
	"cmp"
	"slices"
	"time"
)

// Ranked is a task annotated for display at a single instant.
type Ranked struct {
	Task      Task
	Score     float64
	Band      Band
	Status    State
	Remaining Countdown
}

// Rank scores every task at now and orders them by descending score.
// Equal scores keep their input order.
func Rank(tasks []Task, now time.Time) []Ranked {
	out := make([]Ranked, 0, len(tasks))
	for _, t := range tasks {
		score, band := Score(t, now)
		out = append(out, Ranked{
			Task:      t,
			Score:     score,
			Band:      band,
			Status:    EffectiveStatus(t, now),
			Remaining: Remaining(t.Deadline, now),
		})
	}
	slices.SortStableFunc(out, func(a, b Ranked) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}
