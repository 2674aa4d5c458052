package board

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"agenda/internal/task"
)

// Note is a quick reminder.
type Note struct {
	ID        string
	Content   string
	CreatedAt time.Time
}

// Hobby is a leisure activity that can be ticked off.
type Hobby struct {
	ID   string
	Name string
	Done bool
}

type EventKind string

const (
	KindClass EventKind = "class"
	KindStudy EventKind = "study"
	KindBreak EventKind = "break"
)

type Modality string

const (
	ModalityNone     Modality = ""
	ModalityVirtual  Modality = "virtual"
	ModalityHybrid   Modality = "hybrid"
	ModalityInPerson Modality = "in-person"
)

// Event is a recurring slot in the weekly schedule.
type Event struct {
	ID       string
	Day      time.Weekday
	Start    string
	End      string
	Activity string
	Kind     EventKind
	Modality Modality
}

// Snapshot is a deep copy of every collection on the board.
type Snapshot struct {
	Tasks    []task.Task
	Notes    []Note
	Hobbies  []Hobby
	Schedule []Event
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Tasks:    append([]task.Task(nil), s.Tasks...),
		Notes:    append([]Note(nil), s.Notes...),
		Hobbies:  append([]Hobby(nil), s.Hobbies...),
		Schedule: append([]Event(nil), s.Schedule...),
	}
}

var clockRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ParseWeekday accepts English or Spanish day names.
func ParseWeekday(v string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "sunday", "domingo":
		return time.Sunday, nil
	case "monday", "lunes":
		return time.Monday, nil
	case "tuesday", "martes":
		return time.Tuesday, nil
	case "wednesday", "miercoles", "miércoles":
		return time.Wednesday, nil
	case "thursday", "jueves":
		return time.Thursday, nil
	case "friday", "viernes":
		return time.Friday, nil
	case "saturday", "sabado", "sábado":
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", v)
}

func ParseEventKind(v string) (EventKind, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "class", "clase":
		return KindClass, nil
	case "study", "estudio":
		return KindStudy, nil
	case "break", "descanso":
		return KindBreak, nil
	}
	return "", fmt.Errorf("unknown event kind %q", v)
}

func ParseModality(v string) (Modality, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "":
		return ModalityNone, nil
	case "virtual":
		return ModalityVirtual, nil
	case "hybrid", "semipresencial":
		return ModalityHybrid, nil
	case "in-person", "presencial":
		return ModalityInPerson, nil
	}
	return "", fmt.Errorf("unknown modality %q", v)
}

// matchesAny reports whether text contains any non-blank fragment,
// ignoring case.
func matchesAny(text string, fragments []string) bool {
	text = strings.ToLower(text)
	for _, f := range fragments {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if strings.Contains(text, f) {
			return true
		}
	}
	return false
}

// filterOut drops every item whose text matches a fragment and returns the
// survivors with the number removed.
func filterOut[T any](items []T, text func(T) string, fragments []string) ([]T, int) {
	kept := make([]T, 0, len(items))
	for _, it := range items {
		if !matchesAny(text(it), fragments) {
			kept = append(kept, it)
		}
	}
	return kept, len(items) - len(kept)
}
