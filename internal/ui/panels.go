package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"agenda/internal/board"
)

type panel int

const (
	panelTasks panel = iota
	panelSchedule
	panelNotes
	panelHobbies
	panelCount
)

func (p panel) String() string {
	switch p {
	case panelSchedule:
		return "schedule"
	case panelNotes:
		return "notes"
	case panelHobbies:
		return "hobbies"
	default:
		return "tasks"
	}
}

func (m Model) panelLen() int {
	switch m.focus {
	case panelSchedule:
		return len(m.snap.Schedule)
	case panelNotes:
		return len(m.snap.Notes)
	case panelHobbies:
		return len(m.snap.Hobbies)
	default:
		return len(m.rows)
	}
}

// updatePanelMode handles list keys while a side panel has focus. It reports
// false for keys that should fall through to the task list handler.
func (m Model) updatePanelMode(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit, m.cfg.Keys.Focus, m.cfg.Keys.Assistant:
		return m, nil, false
	case m.cfg.Keys.Down, "down":
		m.item = clampCursor(m.item+1, m.panelLen())
	case m.cfg.Keys.Up, "up":
		m.item = clampCursor(m.item-1, m.panelLen())
	case m.cfg.Keys.Add:
		return m.startEntry(), nil, true
	case m.cfg.Keys.Toggle:
		if m.focus != panelHobbies || m.item >= len(m.snap.Hobbies) {
			return m, nil, true
		}
		h := m.snap.Hobbies[m.item]
		if m.board.ToggleHobby(h.ID) {
			m.status = fmt.Sprintf("Toggled %q", h.Name)
		}
		m.reload()
	case m.cfg.Keys.Delete:
		m.removeItem()
	case m.cfg.Keys.Clear:
		if m.focus != panelSchedule || len(m.snap.Schedule) == 0 {
			return m, nil, true
		}
		m.confirmClear = true
		m.status = fmt.Sprintf("Clear all %d schedule entries? y/n", len(m.snap.Schedule))
	}
	return m, nil, true
}

func (m *Model) removeItem() {
	if m.item >= m.panelLen() {
		return
	}
	var ok bool
	switch m.focus {
	case panelSchedule:
		ok = m.board.RemoveEvent(m.snap.Schedule[m.item].ID)
	case panelNotes:
		ok = m.board.RemoveNote(m.snap.Notes[m.item].ID)
	case panelHobbies:
		ok = m.board.RemoveHobby(m.snap.Hobbies[m.item].ID)
	}
	if ok {
		m.status = "Removed from " + m.focus.String()
	} else {
		m.status = "Entry was already gone"
	}
	m.reload()
}

func (m Model) updateClearConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		n := m.board.ClearSchedule()
		m.status = fmt.Sprintf("Cleared %d schedule entries", n)
		m.confirmClear = false
		m.reload()
	case "n", "N":
		m.status = "Clear cancelled"
		m.confirmClear = false
	}
	return m, nil
}

func (m Model) startEntry() Model {
	switch m.focus {
	case panelSchedule:
		m.input.Placeholder = "monday 08:00 10:00 class Calculus @virtual"
	case panelNotes:
		m.input.Placeholder = "Note"
	case panelHobbies:
		m.input.Placeholder = "Hobby"
	}
	m.mode = modeEntry
	m.input.SetValue("")
	m.input.Focus()
	m.status = "New " + m.focus.String() + " entry: Enter to save, Esc to cancel"
	return m
}

func (m Model) updateEntryMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.mode = modeList
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		text := strings.TrimSpace(m.input.Value())
		var err error
		switch m.focus {
		case panelSchedule:
			var e board.Event
			if e, err = parseEventLine(text); err == nil {
				_, err = m.board.AddEvents([]board.Event{e})
			}
		case panelNotes:
			_, err = m.board.AddNotes([]string{text})
		case panelHobbies:
			_, err = m.board.AddHobbies([]string{text})
		}
		if err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
			return m, nil
		}
		m.mode = modeList
		m.input.Blur()
		m.input.SetValue("")
		m.status = "Added to " + m.focus.String()
		m.reload()
		m.item = clampCursor(m.panelLen()-1, m.panelLen())
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// parseEventLine reads "day start end kind activity... [@modality]".
func parseEventLine(s string) (board.Event, error) {
	f := strings.Fields(s)
	if len(f) < 5 {
		return board.Event{}, errors.New("expected: day HH:MM HH:MM kind activity [@modality]")
	}
	day, err := board.ParseWeekday(f[0])
	if err != nil {
		return board.Event{}, err
	}
	e := board.Event{Day: day, Start: f[1], End: f[2], Kind: board.EventKind(f[3])}
	rest := f[4:]
	if last := rest[len(rest)-1]; len(rest) > 1 && strings.HasPrefix(last, "@") {
		e.Modality = board.Modality(strings.TrimPrefix(last, "@"))
		rest = rest[:len(rest)-1]
	}
	e.Activity = strings.Join(rest, " ")
	return e, nil
}
