package assistant

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"agenda/internal/board"
	"agenda/internal/task"
)

// defaultCriticality matches the manual form's starting value.
const defaultCriticality = 5

// Gateway is the subset of the board the assistant may write through.
type Gateway interface {
	BulkInsert([]board.TaskInput) ([]task.Task, error)
	RemoveMatching([]string) int
	AddEvents([]board.Event) ([]board.Event, error)
	RemoveEventsMatching([]string) int
	AddNotes([]string) ([]board.Note, error)
	RemoveNotesMatching([]string) int
	AddHobbies([]string) ([]board.Hobby, error)
	RemoveHobbiesMatching([]string) int
}

// Summary counts what a batch of tool calls changed.
type Summary struct {
	TasksAdded   int
	EventsAdded  int
	NotesAdded   int
	HobbiesAdded int
	Removed      int
	Failed       int
}

func (s Summary) String() string {
	var parts []string
	add := func(n int, what string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, what))
		}
	}
	add(s.TasksAdded, "tasks added")
	add(s.EventsAdded, "events added")
	add(s.NotesAdded, "notes added")
	add(s.HobbiesAdded, "hobbies added")
	add(s.Removed, "removed")
	add(s.Failed, "failed")
	if len(parts) == 0 {
		return "no changes"
	}
	return strings.Join(parts, ", ")
}

type Dispatcher struct {
	gw Gateway
}

func NewDispatcher(gw Gateway) *Dispatcher {
	return &Dispatcher{gw: gw}
}

// Apply routes each tool call to the gateway. A call that fails is counted
// and reported; the remaining calls still run.
func (d *Dispatcher) Apply(calls []openai.ToolCall) (Summary, error) {
	var sum Summary
	var errs []error
	for _, c := range calls {
		if err := d.apply(c.Function, &sum); err != nil {
			sum.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", c.Function.Name, err))
		}
	}
	return sum, errors.Join(errs...)
}

func (d *Dispatcher) apply(fc openai.FunctionCall, sum *Summary) error {
	switch fc.Name {
	case ToolManageAgenda:
		var args taskArgs
		if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
			return fmt.Errorf("decode arguments: %w", err)
		}
		inputs, err := taskInputs(args)
		if err != nil {
			return err
		}
		added, err := d.gw.BulkInsert(inputs)
		sum.TasksAdded += len(added)
		return err
	case ToolManageSchedule:
		var args scheduleArgs
		if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
			return fmt.Errorf("decode arguments: %w", err)
		}
		events := make([]board.Event, 0, len(args.Events))
		for i, e := range args.Events {
			day, err := board.ParseWeekday(e.Day)
			if err != nil {
				return fmt.Errorf("event %d: %w", i, err)
			}
			events = append(events, board.Event{
				Day:      day,
				Start:    strings.TrimSpace(e.Start),
				End:      strings.TrimSpace(e.End),
				Activity: e.Activity,
				Kind:     board.EventKind(e.Kind),
				Modality: board.Modality(e.Modality),
			})
		}
		added, err := d.gw.AddEvents(events)
		sum.EventsAdded += len(added)
		return err
	case ToolManageNotes:
		var args notesArgs
		if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
			return fmt.Errorf("decode arguments: %w", err)
		}
		added, err := d.gw.AddNotes(args.Notes)
		sum.NotesAdded += len(added)
		return err
	case ToolManageHobbies:
		var args hobbiesArgs
		if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
			return fmt.Errorf("decode arguments: %w", err)
		}
		added, err := d.gw.AddHobbies(args.Hobbies)
		sum.HobbiesAdded += len(added)
		return err
	case ToolDeleteContent:
		var args deleteArgs
		if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
			return fmt.Errorf("decode arguments: %w", err)
		}
		switch strings.ToLower(strings.TrimSpace(args.Kind)) {
		case "task", "tarea":
			sum.Removed += d.gw.RemoveMatching(args.Criteria)
		case "schedule", "horario":
			sum.Removed += d.gw.RemoveEventsMatching(args.Criteria)
		case "note", "nota":
			sum.Removed += d.gw.RemoveNotesMatching(args.Criteria)
		case "hobby", "pasatiempo":
			sum.Removed += d.gw.RemoveHobbiesMatching(args.Criteria)
		default:
			return fmt.Errorf("unknown content kind %q", args.Kind)
		}
		return nil
	}
	return fmt.Errorf("unknown tool")
}

func taskInputs(args taskArgs) ([]board.TaskInput, error) {
	inputs := make([]board.TaskInput, 0, len(args.Tasks))
	for i, t := range args.Tasks {
		deadline, err := task.ParseDate(t.Deadline)
		if err != nil {
			return nil, fmt.Errorf("task %d: deadline: %w", i, err)
		}
		var recommended time.Time
		if strings.TrimSpace(t.Recommended) != "" {
			if recommended, err = task.ParseDate(t.Recommended); err != nil {
				return nil, fmt.Errorf("task %d: recommended: %w", i, err)
			}
		}
		crit := int(math.Round(t.Criticality))
		if crit == 0 {
			crit = defaultCriticality
		}
		in := board.TaskInput{
			Name:             t.Name,
			RecommendedStart: recommended,
			Deadline:         deadline,
			Criticality:      crit,
		}
		if strings.TrimSpace(t.Category) != "" {
			cat, err := task.ParseCategory(t.Category)
			if err != nil {
				return nil, fmt.Errorf("task %d: %w", i, err)
			}
			in.Category = cat
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}
