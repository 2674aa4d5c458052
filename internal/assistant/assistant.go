package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"agenda/internal/board"
	"agenda/internal/config"
	"agenda/internal/task"
)

// Completer is satisfied by *openai.Client.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Reply is the outcome of one user request.
type Reply struct {
	Text    string
	Summary Summary
}

type Assistant struct {
	client   Completer
	board    *board.Board
	dispatch *Dispatcher
	model    string
	timeout  time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func New(client Completer, b *board.Board, model string, timeout time.Duration, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		client:   client,
		board:    b,
		dispatch: NewDispatcher(b),
		model:    model,
		timeout:  timeout,
		now:      time.Now,
		logger:   logger,
	}
}

// NewOpenAIClient builds a client from the assistant config. The API key is
// read from the environment variable the config names.
func NewOpenAIClient(cfg config.Assistant) (*openai.Client, error) {
	env := cfg.APIKeyEnv
	if env == "" {
		env = "OPENAI_API_KEY"
	}
	key := strings.TrimSpace(os.Getenv(env))
	if key == "" {
		return nil, fmt.Errorf("%s is not set", env)
	}
	cc := openai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		cc.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(cc), nil
}

// Handle sends text to the model along with the current board and applies
// any tool calls it returns.
func (a *Assistant) Handle(ctx context.Context, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, errors.New("empty request")
	}
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(a.board.Snapshot(), a.now())},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Tools: Tools(),
	}
	a.logger.Debug("assistant request", "model", a.model, "chars", len(text))
	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		a.logger.Error("assistant call failed", "error", err)
		return Reply{}, fmt.Errorf("assistant call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Reply{}, errors.New("assistant returned no choices")
	}

	msg := resp.Choices[0].Message
	sum, err := a.dispatch.Apply(msg.ToolCalls)
	if err != nil {
		a.logger.Warn("assistant actions partly failed", "error", err, "summary", sum.String())
	}
	a.logger.Info("assistant applied actions", "calls", len(msg.ToolCalls), "summary", sum.String())
	return Reply{Text: strings.TrimSpace(msg.Content), Summary: sum}, err
}

func systemPrompt(snap board.Snapshot, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You manage a student's personal planning board. Today is %s (%s).\n",
		now.Format(task.DateLayout), now.Weekday())
	b.WriteString("Use the tools to add or delete entries. Dates are YYYY-MM-DD, times HH:MM (24h). ")
	b.WriteString("Criticality is 1-10. Reply briefly in the user's language.\n\nCurrent board:\n")

	b.WriteString("Tasks:\n")
	for _, t := range snap.Tasks {
		fmt.Fprintf(&b, "- %s (due %s, criticality %d, %s)\n", t.Name, task.FormatDate(t.Deadline), t.Criticality, t.State)
	}
	b.WriteString("Schedule:\n")
	for _, e := range snap.Schedule {
		fmt.Fprintf(&b, "- %s %s-%s %s (%s)\n", e.Day, e.Start, e.End, e.Activity, e.Kind)
	}
	b.WriteString("Notes:\n")
	for _, n := range snap.Notes {
		fmt.Fprintf(&b, "- %s\n", n.Content)
	}
	b.WriteString("Hobbies:\n")
	for _, h := range snap.Hobbies {
		fmt.Fprintf(&b, "- %s\n", h.Name)
	}
	return b.String()
}
