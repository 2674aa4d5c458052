package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agenda/internal/board"
	"agenda/internal/config"
	"agenda/internal/task"
)

type fakeCompleter struct {
	req  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.req = req
	return f.resp, f.err
}

func call(name, args string) openai.ToolCall {
	return openai.ToolCall{Type: openai.ToolTypeFunction, Function: openai.FunctionCall{Name: name, Arguments: args}}
}

func respond(content string, calls ...openai.ToolCall) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{
		Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content, ToolCalls: calls},
	}}}
}

func TestDispatcher_AddsAcrossCollections(t *testing.T) {
	b := board.New(board.Snapshot{})
	d := NewDispatcher(b)

	sum, err := d.Apply([]openai.ToolCall{
		call(ToolManageAgenda, `{"tasks":[{"name":"Physics exam","deadline":"2026-04-02","criticality":9,"category":"high"},{"name":"Read ch. 3","recommended":"2026-03-20","deadline":"2026-03-25"}]}`),
		call(ToolManageSchedule, `{"events":[{"day":"Lunes","start":"08:00","end":"10:00","activity":"Calculus","kind":"clase","modality":"Virtual"}]}`),
		call(ToolManageNotes, `{"notes":["owe Ana 20"]}`),
		call(ToolManageHobbies, `{"hobbies":["guitar","chess"]}`),
	})
	require.NoError(t, err)
	assert.Equal(t, Summary{TasksAdded: 2, EventsAdded: 1, NotesAdded: 1, HobbiesAdded: 2}, sum)

	snap := b.Snapshot()
	require.Len(t, snap.Tasks, 2)
	assert.Equal(t, task.StatePending, snap.Tasks[0].State)
	assert.Equal(t, 9, snap.Tasks[0].Criticality)
	assert.Equal(t, defaultCriticality, snap.Tasks[1].Criticality)
	assert.Equal(t, task.CategoryMedium, snap.Tasks[1].Category)
	assert.Equal(t, "2026-03-20", task.FormatDate(snap.Tasks[1].RecommendedStart))
	require.Len(t, snap.Schedule, 1)
	assert.Equal(t, time.Monday, snap.Schedule[0].Day)
	assert.Equal(t, board.ModalityVirtual, snap.Schedule[0].Modality)
}

func TestDispatcher_InvalidBatchIsRejectedWhole(t *testing.T) {
	b := board.New(board.Snapshot{})
	d := NewDispatcher(b)

	sum, err := d.Apply([]openai.ToolCall{
		call(ToolManageAgenda, `{"tasks":[{"name":"ok","deadline":"2026-04-02","criticality":3},{"name":"bad","deadline":"2026-04-02","criticality":14}]}`),
		call(ToolManageNotes, `{"notes":["still applied"]}`),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, board.ErrInvalidTask)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.NotesAdded)
	assert.Empty(t, b.Snapshot().Tasks)
}

func TestDispatcher_DeleteContent(t *testing.T) {
	b := board.New(board.Snapshot{})
	_, err := b.BulkInsert([]board.TaskInput{
		{Name: "History EXAM", Deadline: time.Now(), Criticality: 5},
		{Name: "groceries", Deadline: time.Now(), Criticality: 2},
	})
	require.NoError(t, err)
	_, err = b.AddHobbies([]string{"exam prep club"})
	require.NoError(t, err)

	sum, err := NewDispatcher(b).Apply([]openai.ToolCall{call(ToolDeleteContent, `{"kind":"task","criteria":["exam"]}`)})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Removed)

	snap := b.Snapshot()
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "groceries", snap.Tasks[0].Name)
	assert.Len(t, snap.Hobbies, 1)
}

func TestDispatcher_RejectsUnknownCalls(t *testing.T) {
	d := NewDispatcher(board.New(board.Snapshot{}))
	sum, err := d.Apply([]openai.ToolCall{
		call("launch_rockets", `{}`),
		call(ToolManageNotes, `not json`),
		call(ToolDeleteContent, `{"kind":"everything","criteria":["x"]}`),
		call(ToolManageAgenda, `{"tasks":[{"name":"x","deadline":"next week","criticality":3}]}`),
	})
	assert.Error(t, err)
	assert.Equal(t, 4, sum.Failed)
}

func TestAssistant_HandleAppliesToolCalls(t *testing.T) {
	b := board.New(board.Snapshot{})
	_, err := b.AddNotes([]string{"buy stamps"})
	require.NoError(t, err)

	fc := &fakeCompleter{resp: respond("Done, added your essay.",
		call(ToolManageAgenda, `{"tasks":[{"name":"Essay","deadline":"2026-05-01","criticality":6}]}`))}
	a := New(fc, b, "test-model", time.Second, nil)
	a.now = func() time.Time { return time.Date(2026, 4, 20, 10, 0, 0, 0, time.Local) }

	reply, err := a.Handle(context.Background(), "add an essay due May 1st")
	require.NoError(t, err)
	assert.Equal(t, "Done, added your essay.", reply.Text)
	assert.Equal(t, 1, reply.Summary.TasksAdded)
	assert.Len(t, b.Tasks(), 1)

	assert.Equal(t, "test-model", fc.req.Model)
	assert.Len(t, fc.req.Tools, 5)
	require.Len(t, fc.req.Messages, 2)
	assert.True(t, strings.Contains(fc.req.Messages[0].Content, "2026-04-20"))
	assert.True(t, strings.Contains(fc.req.Messages[0].Content, "buy stamps"))
	assert.Equal(t, "add an essay due May 1st", fc.req.Messages[1].Content)
}

func TestAssistant_HandleErrors(t *testing.T) {
	b := board.New(board.Snapshot{})

	_, err := New(&fakeCompleter{}, b, "m", 0, nil).Handle(context.Background(), "  ")
	assert.Error(t, err)

	_, err = New(&fakeCompleter{err: errors.New("boom")}, b, "m", 0, nil).Handle(context.Background(), "hi")
	assert.ErrorContains(t, err, "boom")

	_, err = New(&fakeCompleter{}, b, "m", 0, nil).Handle(context.Background(), "hi")
	assert.ErrorContains(t, err, "no choices")
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	t.Setenv("AGENDA_TEST_KEY", "")
	_, err := NewOpenAIClient(config.Assistant{APIKeyEnv: "AGENDA_TEST_KEY"})
	assert.Error(t, err)

	t.Setenv("AGENDA_TEST_KEY", "sk-test")
	c, err := NewOpenAIClient(config.Assistant{APIKeyEnv: "AGENDA_TEST_KEY"})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestSummaryString(t *testing.T) {
	assert.Equal(t, "no changes", Summary{}.String())
	assert.Equal(t, "2 tasks added, 1 removed", Summary{TasksAdded: 2, Removed: 1}.String())
}
