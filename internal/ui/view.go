package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"agenda/internal/config"
	"agenda/internal/task"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245"))
	cursorStyle  = lipgloss.NewStyle().Bold(true)
	expiredStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160"))
	urgentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	focusStyle   = panelStyle.BorderForeground(lipgloss.Color("33"))

	bandStyles = map[task.Band]lipgloss.Style{
		task.BandHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		task.BandMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		task.BandLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
		task.BandHobby:  lipgloss.NewStyle().Foreground(lipgloss.Color("135")),
	}
	statusStyles = map[task.State]lipgloss.Style{
		task.StatePending: lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
		task.StateOverdue: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160")),
		task.StateDone:    lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	}
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Agenda"))
	b.WriteString(mutedStyle.Render("  " + m.now.Format("Mon 2006-01-02 15:04:05")))
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString("No tasks yet. Press 'a' to add one.")
	} else {
		b.WriteString(m.renderTaskTable())
	}
	b.WriteString("\n")

	switch {
	case m.form != nil:
		b.WriteString(panelStyle.Render(m.renderForm()))
		b.WriteString("\n")
		b.WriteString("Field: " + m.form.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
	case m.mode == modeAssistant:
		b.WriteString("Assistant: ")
		b.WriteString(m.input.View())
	case m.mode == modeEntry:
		b.WriteString("New " + m.focus.String() + " entry: ")
		b.WriteString(m.input.View())
	default:
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			m.panelFrame(panelSchedule).Render(m.renderSchedule()),
			m.panelFrame(panelNotes).Render(m.renderNotes()),
			m.panelFrame(panelHobbies).Render(m.renderHobbies()),
		))
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(renderHelp(m.cfg.Keys, m.focus)))

	return b.String()
}

func (m Model) panelFrame(p panel) lipgloss.Style {
	if m.focus == p {
		return focusStyle
	}
	return panelStyle
}

// itemPrefix marks the selected row of the focused side panel.
func (m Model) itemPrefix(p panel, i int) string {
	if m.focus == p && m.item == i && m.mode == modeList {
		return cursorStyle.Render(">") + " "
	}
	return "  "
}

func renderHelp(k config.Keymap, focus panel) string {
	switch focus {
	case panelSchedule:
		return fmt.Sprintf("%s/%s move • %s add • %s remove • %s clear all • %s next panel • %s quit",
			k.Up, k.Down, k.Add, k.Delete, k.Clear, k.Focus, k.Quit)
	case panelNotes:
		return fmt.Sprintf("%s/%s move • %s add • %s remove • %s next panel • %s quit",
			k.Up, k.Down, k.Add, k.Delete, k.Focus, k.Quit)
	case panelHobbies:
		return fmt.Sprintf("%s/%s move • %s add • %s toggle • %s remove • %s next panel • %s quit",
			k.Up, k.Down, k.Add, keyName(k.Toggle), k.Delete, k.Focus, k.Quit)
	}
	return fmt.Sprintf("%s/%s move • %s add • %s detail • %s done • %s delete • %s edit • %s/%s criticality • %s/%s deadline • %s assistant • %s panels • %s quit",
		k.Up, k.Down, k.Add, k.Detail, keyName(k.Toggle), k.Delete, k.Edit,
		k.PriorityUp, k.PriorityDown, k.DueForward, k.DueBack, k.Assistant, k.Focus, k.Quit)
}

func keyName(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

func (m Model) renderTaskTable() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("  %-3s %-28s %-10s %-10s %-10s %-16s %-5s %-8s %s",
		"#", "TASK", "ENTERED", "START", "DEADLINE", "REMAINING", "CRIT", "STATUS", "PRIORITY")))
	b.WriteString("\n")
	for i, r := range m.rows {
		cursor := " "
		if i == m.cursor && m.mode == modeList && m.form == nil && m.focus == panelTasks {
			cursor = cursorStyle.Render(">")
		}
		line := fmt.Sprintf("%s %-3d %-28s %-10s %-10s %-10s %s %-5s %s %s",
			cursor,
			i+1,
			truncate(r.Task.Name, 28),
			task.FormatDate(r.Task.EnteredAt),
			task.FormatDate(r.Task.RecommendedStart),
			task.FormatDate(r.Task.Deadline),
			renderRemaining(r.Remaining),
			fmt.Sprintf("%d/10", r.Task.Criticality),
			statusStyles[r.Status].Render(fmt.Sprintf("%-8s", r.Status)),
			bandStyles[r.Band].Render(fmt.Sprintf("%-6s %4.0f", r.Band, r.Score)),
		)
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// renderRemaining pads to a fixed width before styling so columns line up.
func renderRemaining(c task.Countdown) string {
	if c.Expired {
		return expiredStyle.Render(fmt.Sprintf("%-16s", "EXPIRED"))
	}
	text := fmt.Sprintf("%-16s", formatCountdown(c))
	if c.Days == 0 {
		return urgentStyle.Render(text)
	}
	return text
}

func formatCountdown(c task.Countdown) string {
	return fmt.Sprintf("%dd %02dh %02dm %02ds", c.Days, c.Hours, c.Minutes, c.Seconds)
}

func (m Model) renderForm() string {
	fs := m.form
	values := []string{fs.name, fs.recommended, fs.deadline, fs.criticality, fs.category}
	var b strings.Builder
	for i, name := range formFields() {
		prefix := " "
		if i == fs.index {
			prefix = ">"
		}
		val := values[i]
		if strings.TrimSpace(val) == "" {
			val = "(empty)"
		}
		b.WriteString(fmt.Sprintf("%s %-34s : %s\n", prefix, name, val))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderSchedule() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Schedule"))
	if len(m.snap.Schedule) == 0 {
		b.WriteString("\n" + mutedStyle.Render("(empty)"))
	}
	for i, e := range m.snap.Schedule {
		line := fmt.Sprintf("%s %s-%s %s [%s]", e.Day.String()[:3], e.Start, e.End, truncate(e.Activity, 20), e.Kind)
		if e.Modality != "" {
			line += " " + string(e.Modality)
		}
		if e.Day == m.now.Weekday() {
			line = cursorStyle.Render(line)
		}
		b.WriteString("\n" + m.itemPrefix(panelSchedule, i) + line)
	}
	return b.String()
}

func (m Model) renderNotes() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Notes"))
	if len(m.snap.Notes) == 0 {
		b.WriteString("\n" + mutedStyle.Render("(empty)"))
	}
	for i, n := range m.snap.Notes {
		b.WriteString(fmt.Sprintf("\n%s• %s %s", m.itemPrefix(panelNotes, i), truncate(n.Content, 30), mutedStyle.Render(ago(m.now, n.CreatedAt))))
	}
	return b.String()
}

func (m Model) renderHobbies() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Hobbies"))
	if len(m.snap.Hobbies) == 0 {
		b.WriteString("\n" + mutedStyle.Render("(empty)"))
	}
	for i, h := range m.snap.Hobbies {
		box := "[ ]"
		if h.Done {
			box = "[x]"
		}
		b.WriteString(fmt.Sprintf("\n%s%s %s", m.itemPrefix(panelHobbies, i), box, truncate(h.Name, 24)))
	}
	return b.String()
}

func ago(now, then time.Time) string {
	d := now.Sub(then)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
