package board

import (
	"fmt"
	"strings"
)

// AddNotes appends one note per non-blank text. Blank entries reject the
// whole call.
func (b *Board) AddNotes(texts []string) ([]Note, error) {
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("add notes: entry %d: %w: empty content", i, ErrInvalidNote)
		}
	}
	if len(texts) == 0 {
		return nil, nil
	}
	added := make([]Note, 0, len(texts))
	b.mutate("add notes", func(s *Snapshot) bool {
		now := b.now()
		for _, t := range texts {
			added = append(added, Note{ID: b.newID(), Content: strings.TrimSpace(t), CreatedAt: now})
		}
		s.Notes = append(s.Notes, added...)
		return true
	})
	return added, nil
}

func (b *Board) RemoveNote(id string) bool {
	found := false
	b.mutate("remove note", func(s *Snapshot) bool {
		for i, n := range s.Notes {
			if n.ID == id {
				s.Notes = append(s.Notes[:i:i], s.Notes[i+1:]...)
				found = true
				return true
			}
		}
		return false
	})
	return found
}

func (b *Board) RemoveNotesMatching(fragments []string) int {
	var n int
	b.mutate("remove notes matching", func(s *Snapshot) bool {
		s.Notes, n = filterOut(s.Notes, func(x Note) string { return x.Content }, fragments)
		return n > 0
	})
	return n
}

// AddHobbies appends one unfinished hobby per name.
func (b *Board) AddHobbies(names []string) ([]Hobby, error) {
	for i, n := range names {
		if strings.TrimSpace(n) == "" {
			return nil, fmt.Errorf("add hobbies: entry %d: %w: empty name", i, ErrInvalidHobby)
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	added := make([]Hobby, 0, len(names))
	b.mutate("add hobbies", func(s *Snapshot) bool {
		for _, n := range names {
			added = append(added, Hobby{ID: b.newID(), Name: strings.TrimSpace(n)})
		}
		s.Hobbies = append(s.Hobbies, added...)
		return true
	})
	return added, nil
}

func (b *Board) ToggleHobby(id string) bool {
	found := false
	b.mutate("toggle hobby", func(s *Snapshot) bool {
		for i := range s.Hobbies {
			if s.Hobbies[i].ID == id {
				s.Hobbies[i].Done = !s.Hobbies[i].Done
				found = true
				return true
			}
		}
		return false
	})
	return found
}

func (b *Board) RemoveHobby(id string) bool {
	found := false
	b.mutate("remove hobby", func(s *Snapshot) bool {
		for i, h := range s.Hobbies {
			if h.ID == id {
				s.Hobbies = append(s.Hobbies[:i:i], s.Hobbies[i+1:]...)
				found = true
				return true
			}
		}
		return false
	})
	return found
}

func (b *Board) RemoveHobbiesMatching(fragments []string) int {
	var n int
	b.mutate("remove hobbies matching", func(s *Snapshot) bool {
		s.Hobbies, n = filterOut(s.Hobbies, func(x Hobby) string { return x.Name }, fragments)
		return n > 0
	})
	return n
}

func validateEvent(e Event) (Event, error) {
	e.Activity = strings.TrimSpace(e.Activity)
	if e.Activity == "" {
		return e, fmt.Errorf("%w: activity is empty", ErrInvalidEvent)
	}
	if e.Day < 0 || e.Day > 6 {
		return e, fmt.Errorf("%w: %q weekday %d", ErrInvalidEvent, e.Activity, e.Day)
	}
	if !clockRe.MatchString(e.Start) || !clockRe.MatchString(e.End) {
		return e, fmt.Errorf("%w: %q times %q-%q are not HH:MM", ErrInvalidEvent, e.Activity, e.Start, e.End)
	}
	if e.End <= e.Start {
		return e, fmt.Errorf("%w: %q ends at %s before it starts at %s", ErrInvalidEvent, e.Activity, e.End, e.Start)
	}
	kind, err := ParseEventKind(string(e.Kind))
	if err != nil {
		return e, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	modality, err := ParseModality(string(e.Modality))
	if err != nil {
		return e, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	e.Kind, e.Modality = kind, modality
	return e, nil
}

// AddEvents validates every event and appends them all, or none.
func (b *Board) AddEvents(events []Event) ([]Event, error) {
	valid := make([]Event, 0, len(events))
	for i, e := range events {
		v, err := validateEvent(e)
		if err != nil {
			return nil, fmt.Errorf("add events: entry %d: %w", i, err)
		}
		valid = append(valid, v)
	}
	if len(valid) == 0 {
		return nil, nil
	}
	b.mutate("add events", func(s *Snapshot) bool {
		for i := range valid {
			valid[i].ID = b.newID()
		}
		s.Schedule = append(s.Schedule, valid...)
		return true
	})
	return valid, nil
}

func (b *Board) RemoveEvent(id string) bool {
	found := false
	b.mutate("remove event", func(s *Snapshot) bool {
		for i, e := range s.Schedule {
			if e.ID == id {
				s.Schedule = append(s.Schedule[:i:i], s.Schedule[i+1:]...)
				found = true
				return true
			}
		}
		return false
	})
	return found
}

func (b *Board) ClearSchedule() int {
	var n int
	b.mutate("clear schedule", func(s *Snapshot) bool {
		n = len(s.Schedule)
		s.Schedule = nil
		return n > 0
	})
	return n
}

func (b *Board) RemoveEventsMatching(fragments []string) int {
	var n int
	b.mutate("remove events matching", func(s *Snapshot) bool {
		s.Schedule, n = filterOut(s.Schedule, func(x Event) string { return x.Activity }, fragments)
		return n > 0
	})
	return n
}
