package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"agenda/internal/assistant"
	"agenda/internal/board"
	"agenda/internal/config"
	"agenda/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeAssistant
	modeEntry
)

type tickMsg time.Time

type assistantMsg struct {
	reply assistant.Reply
	err   error
}

type formState struct {
	taskID      string
	name        string
	recommended string
	deadline    string
	criticality string
	category    string
	index       int
}

type Model struct {
	board      *board.Board
	assistant  *assistant.Assistant
	cfg        config.Config
	clock      func() time.Time
	now        time.Time
	snap       board.Snapshot
	rows       []task.Ranked
	cursor     int
	selected   string
	mode       mode
	input      textinput.Model
	status     string
	busy       bool
	confirmDel bool
	pendingDel *task.Task
	form       *formState

	focus        panel
	item         int
	confirmClear bool
}

// NewModel builds the board view. asst may be nil when no assistant is
// configured.
func NewModel(b *board.Board, asst *assistant.Assistant, cfg config.Config) Model {
	ti := textinput.New()
	ti.Placeholder = "Task name"
	ti.CharLimit = 256
	ti.Width = 40

	m := Model{
		board:     b,
		assistant: asst,
		cfg:       cfg,
		clock:     time.Now,
		input:     ti,
		mode:      modeList,
		status:    "Press 'a' to add, space to mark done, 'd' to delete.",
	}
	m.now = m.clock()
	m.refresh()
	return m
}

func Run(b *board.Board, asst *assistant.Assistant, cfg config.Config) error {
	program := tea.NewProgram(NewModel(b, asst, cfg), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.cfg.TickInterval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// refresh rebuilds the ranked view from a fresh snapshot at m.now.
func (m *Model) refresh() {
	m.snap = m.board.Snapshot()
	m.rows = task.Rank(m.snap.Tasks, m.now)
	if m.focus != panelTasks {
		m.item = clampCursor(m.item, m.panelLen())
	}
	for i, r := range m.rows {
		if r.Task.ID == m.selected {
			m.cursor = i
			return
		}
	}
	m.cursor = clampCursor(m.cursor, len(m.rows))
	m.selectCursor()
}

func (m *Model) selectCursor() {
	if len(m.rows) == 0 {
		m.selected = ""
		return
	}
	m.selected = m.rows[m.cursor].Task.ID
}

func (m *Model) reload() {
	m.now = m.clock()
	m.refresh()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.now = time.Time(msg)
		m.refresh()
		return m, m.tick()
	case assistantMsg:
		m.busy = false
		m.reload()
		if msg.err != nil {
			m.status = fmt.Sprintf("assistant: %v (%s)", msg.err, msg.reply.Summary)
			return m, nil
		}
		m.status = fmt.Sprintf("assistant: %s", msg.reply.Summary)
		if msg.reply.Text != "" {
			m.status += " • " + msg.reply.Text
		}
		return m, nil
	case tea.KeyMsg:
		if m.form != nil {
			return m.updateFormMode(msg.String(), msg)
		}
		if m.confirmDel {
			return m.updateDeleteConfirm(msg.String())
		}
		if m.confirmClear {
			return m.updateClearConfirm(msg.String())
		}
		switch m.mode {
		case modeAssistant:
			return m.updateAssistantMode(msg.String(), msg)
		case modeEntry:
			return m.updateEntryMode(msg.String(), msg)
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
	}
	return m, nil
}

func (m Model) current() (task.Ranked, bool) {
	if len(m.rows) == 0 {
		return task.Ranked{}, false
	}
	return m.rows[clampCursor(m.cursor, len(m.rows))], true
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	if m.focus != panelTasks {
		if next, cmd, handled := m.updatePanelMode(key); handled {
			return next, cmd
		}
	}
	switch key {
	case "ctrl+c", m.cfg.Keys.Quit:
		return m, tea.Quit
	case m.cfg.Keys.Focus:
		m.focus = (m.focus + 1) % panelCount
		m.item = 0
		m.status = "Focus: " + m.focus.String()
	case m.cfg.Keys.Down, "down":
		if len(m.rows) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.rows))
		m.selectCursor()
	case m.cfg.Keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.rows))
			m.selectCursor()
		}
	case m.cfg.Keys.Add:
		return m.startForm(nil)
	case m.cfg.Keys.Toggle:
		r, ok := m.current()
		if !ok {
			return m, nil
		}
		done := r.Task.State != task.StateDone
		if !m.board.SetDone(r.Task.ID, done) {
			m.status = "Task no longer exists"
		} else if done {
			m.status = "Marked done"
		} else {
			m.status = "Marked pending"
		}
		m.reload()
	case m.cfg.Keys.Delete:
		r, ok := m.current()
		if !ok {
			return m, nil
		}
		t := r.Task
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete \"%s\"? y/n", t.Name)
	case m.cfg.Keys.Detail:
		r, ok := m.current()
		if !ok {
			m.status = "No tasks"
			return m, nil
		}
		m.status = fmt.Sprintf("%s • entered %s • start %s • due %s • criticality %d • %s • score %.1f",
			r.Task.Name, r.Task.EnteredAt.Format("2006-01-02 15:04"), task.FormatDate(r.Task.RecommendedStart),
			task.FormatDate(r.Task.Deadline), r.Task.Criticality, r.Task.Category, r.Score)
	case m.cfg.Keys.Edit:
		r, ok := m.current()
		if !ok {
			m.status = "No tasks to edit"
			return m, nil
		}
		t := r.Task
		return m.startForm(&t)
	case m.cfg.Keys.PriorityUp, m.cfg.Keys.PriorityDown:
		r, ok := m.current()
		if !ok {
			return m, nil
		}
		step := 1
		if key == m.cfg.Keys.PriorityDown {
			step = -1
		}
		crit := task.ClampCriticality(r.Task.Criticality + step)
		if _, err := m.board.Patch(r.Task.ID, board.Patch{Criticality: &crit}); err != nil {
			m.status = fmt.Sprintf("update failed: %v", err)
			return m, nil
		}
		m.status = fmt.Sprintf("Criticality %d/10", crit)
		m.reload()
	case m.cfg.Keys.DueForward, m.cfg.Keys.DueBack:
		r, ok := m.current()
		if !ok {
			return m, nil
		}
		days := 1
		if key == m.cfg.Keys.DueBack {
			days = -1
		}
		due := r.Task.Deadline.AddDate(0, 0, days)
		if _, err := m.board.Patch(r.Task.ID, board.Patch{Deadline: &due}); err != nil {
			m.status = fmt.Sprintf("update failed: %v", err)
			return m, nil
		}
		m.status = "Deadline " + task.FormatDate(due)
		m.reload()
	case m.cfg.Keys.Assistant:
		if m.assistant == nil {
			m.status = "Assistant unavailable: set the API key named in config"
			return m, nil
		}
		if m.busy {
			m.status = "Assistant is still working"
			return m, nil
		}
		m.mode = modeAssistant
		m.input.SetValue("")
		m.input.Placeholder = "Ask the assistant"
		m.input.Focus()
		m.status = "Describe what to add or delete, Enter to send, Esc to cancel"
	}
	return m, nil
}

func (m Model) updateAssistantMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.mode = modeList
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			m.status = "Request cannot be empty"
			return m, nil
		}
		m.mode = modeList
		m.input.SetValue("")
		m.input.Blur()
		m.busy = true
		m.status = "Assistant is working..."
		asst := m.assistant
		return m, func() tea.Msg {
			reply, err := asst.Handle(context.Background(), text)
			return assistantMsg{reply: reply, err: err}
		}
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N":
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		if m.board.Remove(m.pendingDel.ID) {
			m.status = "Deleted task"
		} else {
			m.status = "Task was already gone"
		}
		m.confirmDel = false
		m.pendingDel = nil
		m.reload()
		return m, nil
	default:
		return m, nil
	}
}

func formFields() []string {
	return []string{"name", "recommended start (YYYY-MM-DD)", "deadline (YYYY-MM-DD)", "criticality (1-10)", "category (high/medium/low/hobby)"}
}

func (fs formState) currentLabel() string {
	return formFields()[fs.index]
}

func (fs formState) currentValue() string {
	switch fs.index {
	case 0:
		return fs.name
	case 1:
		return fs.recommended
	case 2:
		return fs.deadline
	case 3:
		return fs.criticality
	case 4:
		return fs.category
	default:
		return ""
	}
}

func (fs *formState) setCurrentValue(v string) {
	switch fs.index {
	case 0:
		fs.name = v
	case 1:
		fs.recommended = v
	case 2:
		fs.deadline = v
	case 3:
		fs.criticality = v
	case 4:
		fs.category = v
	}
}

func (m Model) startForm(t *task.Task) (tea.Model, tea.Cmd) {
	if t == nil {
		today := task.FormatDate(m.now)
		m.form = &formState{recommended: today, deadline: today, criticality: "5", category: string(task.CategoryMedium)}
		m.status = "New task: enter to advance, tab to move, esc to cancel"
	} else {
		m.form = &formState{
			taskID:      t.ID,
			name:        t.Name,
			recommended: task.FormatDate(t.RecommendedStart),
			deadline:    task.FormatDate(t.Deadline),
			criticality: strconv.Itoa(t.Criticality),
			category:    string(t.Category),
		}
		m.status = "Edit task: enter to advance, tab to move, esc to cancel"
	}
	m.input.SetValue(m.form.currentValue())
	m.input.Placeholder = m.form.currentLabel()
	m.input.Focus()
	m.mode = modeForm
	return m, nil
}

func (m Model) updateFormMode(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.cfg.Keys.Cancel, "esc":
		m.form = nil
		m.mode = modeList
		m.input.Blur()
		m.status = "Cancelled"
		return m, nil
	case "tab", "down", "shift+tab", "up":
		step := 1
		if key == "shift+tab" || key == "up" {
			step = -1
		}
		m.form.setCurrentValue(m.input.Value())
		m.form.index = wrapIndex(m.form.index+step, len(formFields()))
		m.input.SetValue(m.form.currentValue())
		m.input.Placeholder = m.form.currentLabel()
		return m, nil
	case m.cfg.Keys.Confirm, "enter":
		m.form.setCurrentValue(m.input.Value())
		if m.form.index >= len(formFields())-1 {
			return m.saveForm()
		}
		m.form.index++
		m.input.SetValue(m.form.currentValue())
		m.input.Placeholder = m.form.currentLabel()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) saveForm() (tea.Model, tea.Cmd) {
	fs := m.form
	deadline, err := task.ParseDate(fs.deadline)
	if err != nil {
		m.status = fmt.Sprintf("deadline invalid: %v", err)
		return m, nil
	}
	var recommended time.Time
	if strings.TrimSpace(fs.recommended) != "" {
		if recommended, err = task.ParseDate(fs.recommended); err != nil {
			m.status = fmt.Sprintf("recommended start invalid: %v", err)
			return m, nil
		}
	}
	crit, err := strconv.Atoi(strings.TrimSpace(fs.criticality))
	if err != nil {
		m.status = fmt.Sprintf("criticality invalid: %v", err)
		return m, nil
	}
	cat, err := task.ParseCategory(fs.category)
	if err != nil {
		m.status = fmt.Sprintf("category invalid: %v", err)
		return m, nil
	}

	if fs.taskID == "" {
		added, err := m.board.Insert(board.TaskInput{
			Name:             fs.name,
			RecommendedStart: recommended,
			Deadline:         deadline,
			Criticality:      crit,
			Category:         cat,
		})
		if err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
			return m, nil
		}
		m.selected = added.ID
		m.status = "Added task"
	} else {
		p := board.Patch{Name: &fs.name, Deadline: &deadline, Criticality: &crit, Category: &cat}
		if !recommended.IsZero() {
			p.RecommendedStart = &recommended
		}
		found, err := m.board.Patch(fs.taskID, p)
		if err != nil {
			m.status = fmt.Sprintf("save failed: %v", err)
			return m, nil
		}
		if found {
			m.selected = fs.taskID
			m.status = "Task saved"
		} else {
			m.status = "Task no longer exists"
		}
	}
	m.form = nil
	m.mode = modeList
	m.input.Blur()
	m.input.SetValue("")
	m.reload()
	return m, nil
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
