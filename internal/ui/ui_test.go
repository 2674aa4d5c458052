package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/internal/board"
	"agenda/internal/config"
	"agenda/internal/task"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func testConfig() config.Config {
	return config.Config{
		Tick: "1s",
		Keys: config.Keymap{
			Quit: "q", Add: "a", Up: "k", Down: "j", Toggle: " ", Delete: "d",
			Detail: "enter", Confirm: "enter", Cancel: "esc", Edit: "e", Assistant: "i",
			PriorityUp: "+", PriorityDown: "-", DueForward: "]", DueBack: "[",
			Focus: "tab", Clear: "C",
		},
	}
}

func newTestModel(t *testing.T, inputs ...board.TaskInput) (Model, *board.Board) {
	t.Helper()
	b := board.New(board.Snapshot{}, board.WithClock(func() time.Time { return testNow }))
	if len(inputs) > 0 {
		_, err := b.BulkInsert(inputs)
		require.NoError(t, err)
	}
	m := NewModel(b, nil, testConfig())
	m.clock = func() time.Time { return testNow }
	m.reload()
	return m, b
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func names(m Model) []string {
	out := make([]string, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r.Task.Name)
	}
	return out
}

func TestTick_RebuildsRankingAtNewInstant(t *testing.T) {
	m, _ := newTestModel(t,
		board.TaskInput{Name: "far", Deadline: date(2026, 3, 30), Criticality: 9},
		board.TaskInput{Name: "tomorrow", Deadline: date(2026, 3, 11), Criticality: 2},
	)
	assert.Equal(t, []string{"tomorrow", "far"}, names(m))
	assert.Equal(t, task.StatePending, m.rows[0].Status)

	next, cmd := m.Update(tickMsg(time.Date(2026, 3, 12, 8, 0, 0, 0, time.Local)))
	m = next.(Model)
	assert.NotNil(t, cmd)
	assert.Equal(t, []string{"tomorrow", "far"}, names(m))
	assert.Equal(t, task.StateOverdue, m.rows[0].Status)
	assert.True(t, m.rows[0].Remaining.Expired)
	assert.True(t, strings.Contains(m.View(), "EXPIRED"))
}

func TestCursorFollowsSelectedTaskAcrossReranks(t *testing.T) {
	m, _ := newTestModel(t,
		board.TaskInput{Name: "a", Deadline: date(2026, 3, 11), Criticality: 6},
		board.TaskInput{Name: "b", Deadline: date(2026, 3, 14), Criticality: 9},
	)
	require.Equal(t, []string{"a", "b"}, names(m))
	m = press(t, m, "j")
	require.Equal(t, "b", m.rows[m.cursor].Task.Name)

	// Once both are overdue the higher criticality wins.
	next, _ := m.Update(tickMsg(time.Date(2026, 3, 15, 9, 0, 0, 0, time.Local)))
	m = next.(Model)
	assert.Equal(t, []string{"b", "a"}, names(m))
	assert.Equal(t, "b", m.rows[m.cursor].Task.Name)
}

func TestAddTaskThroughForm(t *testing.T) {
	m, b := newTestModel(t)
	m = press(t, m, "a")
	require.NotNil(t, m.form)

	m.input.SetValue("Lab report")
	m = press(t, m, "enter")
	assert.Equal(t, "2026-03-10", m.input.Value())
	m = press(t, m, "enter")
	m.input.SetValue("2026-03-11")
	m = press(t, m, "enter")
	m.input.SetValue("8")
	m = press(t, m, "enter")
	m.input.SetValue("high")
	m = press(t, m, "enter")

	assert.Nil(t, m.form)
	tasks := b.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Lab report", tasks[0].Name)
	assert.Equal(t, 8, tasks[0].Criticality)
	assert.Equal(t, task.CategoryHigh, tasks[0].Category)
	assert.Equal(t, task.StatePending, tasks[0].State)
	assert.Equal(t, tasks[0].ID, m.selected)
	assert.Equal(t, "Added task", m.status)
}

func TestAddTaskRejectsBadCriticality(t *testing.T) {
	m, b := newTestModel(t)
	m = press(t, m, "a")
	m.input.SetValue("x")
	m = press(t, m, "enter", "enter", "enter")
	m.input.SetValue("11")
	m = press(t, m, "enter", "enter")

	assert.NotNil(t, m.form)
	assert.Contains(t, m.status, "save failed")
	assert.Empty(t, b.Tasks())

	m = press(t, m, "esc")
	assert.Nil(t, m.form)
}

func TestEditTaskThroughForm(t *testing.T) {
	m, b := newTestModel(t, board.TaskInput{Name: "draft", Deadline: date(2026, 3, 20), Criticality: 3})
	m = press(t, m, "e")
	require.NotNil(t, m.form)
	assert.Equal(t, "draft", m.input.Value())

	m.input.SetValue("final draft")
	m = press(t, m, "enter", "enter", "enter")
	m.input.SetValue("7")
	m = press(t, m, "enter", "enter")

	got := b.Tasks()[0]
	assert.Equal(t, "final draft", got.Name)
	assert.Equal(t, 7, got.Criticality)
}

func TestToggleAndDelete(t *testing.T) {
	m, b := newTestModel(t, board.TaskInput{Name: "chores", Deadline: date(2026, 3, 20), Criticality: 2})

	m = press(t, m, " ")
	assert.Equal(t, task.StateDone, b.Tasks()[0].State)
	m = press(t, m, " ")
	assert.Equal(t, task.StatePending, b.Tasks()[0].State)

	m = press(t, m, "d", "n")
	assert.Len(t, b.Tasks(), 1)
	m = press(t, m, "d", "y")
	assert.Empty(t, b.Tasks())
	assert.Empty(t, m.rows)
}

func TestNudgeCriticalityAndDeadline(t *testing.T) {
	m, b := newTestModel(t, board.TaskInput{Name: "essay", Deadline: date(2026, 3, 20), Criticality: 9})

	m = press(t, m, "+", "+", "-")
	assert.Equal(t, 9, b.Tasks()[0].Criticality)

	m = press(t, m, "]", "]", "[")
	assert.Equal(t, "2026-03-21", task.FormatDate(b.Tasks()[0].Deadline))
	assert.Equal(t, "Deadline 2026-03-21", m.status)
}

func TestNotesPanelAddAndRemove(t *testing.T) {
	m, b := newTestModel(t, board.TaskInput{Name: "essay", Deadline: date(2026, 3, 20), Criticality: 5})

	m = press(t, m, "tab", "tab")
	require.Equal(t, panelNotes, m.focus)

	m = press(t, m, "a")
	require.Equal(t, modeEntry, m.mode)
	m.input.SetValue("   ")
	m = press(t, m, "enter")
	assert.Equal(t, modeEntry, m.mode)
	assert.Contains(t, m.status, "save failed")

	m.input.SetValue("buy printer toner")
	m = press(t, m, "enter")
	assert.Equal(t, modeList, m.mode)
	notes := b.Snapshot().Notes
	require.Len(t, notes, 1)
	assert.Equal(t, "buy printer toner", notes[0].Content)
	assert.Equal(t, testNow, notes[0].CreatedAt)

	m = press(t, m, "d")
	assert.Empty(t, b.Snapshot().Notes)

	// Task keys do not leak into a focused side panel.
	m = press(t, m, "d", "y")
	assert.Len(t, b.Tasks(), 1)
	assert.False(t, m.confirmDel)
}

func TestHobbiesPanelAddToggleRemove(t *testing.T) {
	m, b := newTestModel(t)
	m = press(t, m, "tab", "tab", "tab")
	require.Equal(t, panelHobbies, m.focus)

	m = press(t, m, "a")
	m.input.SetValue("guitar")
	m = press(t, m, "enter", "a")
	m.input.SetValue("chess")
	m = press(t, m, "enter")
	require.Len(t, b.Snapshot().Hobbies, 2)
	assert.Equal(t, 1, m.item)

	m = press(t, m, "k", " ")
	hobbies := b.Snapshot().Hobbies
	assert.True(t, hobbies[0].Done)
	assert.False(t, hobbies[1].Done)
	m = press(t, m, " ")
	assert.False(t, b.Snapshot().Hobbies[0].Done)

	m = press(t, m, "j", "d")
	hobbies = b.Snapshot().Hobbies
	require.Len(t, hobbies, 1)
	assert.Equal(t, "guitar", hobbies[0].Name)
	assert.Equal(t, 0, m.item)

	m = press(t, m, "tab")
	assert.Equal(t, panelTasks, m.focus)
}

func TestSchedulePanelAddRemoveAndClear(t *testing.T) {
	m, b := newTestModel(t)
	m = press(t, m, "tab")
	require.Equal(t, panelSchedule, m.focus)

	m = press(t, m, "a")
	m.input.SetValue("lunes 08:00 10:00 clase Calculus I @virtual")
	m = press(t, m, "enter", "a")
	m.input.SetValue("tuesday 14:00 15:30 study Lab prep")
	m = press(t, m, "enter", "a")
	m.input.SetValue("friday 10:00 09:00 break Coffee")
	m = press(t, m, "enter")
	assert.Contains(t, m.status, "save failed")
	m = press(t, m, "esc")

	events := b.Snapshot().Schedule
	require.Len(t, events, 2)
	assert.Equal(t, time.Monday, events[0].Day)
	assert.Equal(t, "Calculus I", events[0].Activity)
	assert.Equal(t, board.KindClass, events[0].Kind)
	assert.Equal(t, board.ModalityVirtual, events[0].Modality)
	assert.Equal(t, board.ModalityNone, events[1].Modality)

	m = press(t, m, "k", "d")
	events = b.Snapshot().Schedule
	require.Len(t, events, 1)
	assert.Equal(t, "Lab prep", events[0].Activity)

	m = press(t, m, "a")
	m.input.SetValue("wednesday 09:00 10:00 class Physics")
	m = press(t, m, "enter")
	m = press(t, m, "C", "n")
	assert.Len(t, b.Snapshot().Schedule, 2)
	m = press(t, m, "C", "y")
	assert.Empty(t, b.Snapshot().Schedule)
	assert.Equal(t, "Cleared 2 schedule entries", m.status)
}

func TestParseEventLine(t *testing.T) {
	e, err := parseEventLine("Thursday 18:00 20:00 class Data Structures @hybrid")
	require.NoError(t, err)
	assert.Equal(t, time.Thursday, e.Day)
	assert.Equal(t, "18:00", e.Start)
	assert.Equal(t, "20:00", e.End)
	assert.Equal(t, "Data Structures", e.Activity)
	assert.Equal(t, board.Modality("hybrid"), e.Modality)

	_, err = parseEventLine("monday 08:00 class")
	assert.Error(t, err)
	_, err = parseEventLine("someday 08:00 09:00 class Gym")
	assert.Error(t, err)
}

func TestAssistantUnavailableWithoutClient(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "i")
	assert.Equal(t, modeList, m.mode)
	assert.Contains(t, m.status, "unavailable")
}

func TestFormatCountdown(t *testing.T) {
	assert.Equal(t, "1d 02h 03m 04s", formatCountdown(task.Countdown{Days: 1, Hours: 2, Minutes: 3, Seconds: 4}))
}
