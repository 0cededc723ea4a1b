package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"tripmate/internal/ai"
	"tripmate/internal/modules/extraction"
	"tripmate/internal/modules/tools"
)

var fixedNow = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

// scriptStep is one canned reasoning step.
type scriptStep struct {
	chunks []string
	msg    ai.Message
	err    error
	block  bool
}

type scriptedReasoner struct {
	mu    sync.Mutex
	steps []scriptStep
	reqs  []ai.StepRequest
}

func (r *scriptedReasoner) Name() string { return "scripted" }

func (r *scriptedReasoner) Step(ctx context.Context, req ai.StepRequest, onChunk ai.ChunkFunc) (ai.Message, error) {
	r.mu.Lock()
	r.reqs = append(r.reqs, req)
	i := len(r.reqs) - 1
	r.mu.Unlock()

	if i >= len(r.steps) {
		return ai.Message{}, errors.New("script exhausted")
	}
	step := r.steps[i]
	if step.block {
		<-ctx.Done()
		return ai.Message{}, ctx.Err()
	}
	for _, c := range step.chunks {
		if err := onChunk(c); err != nil {
			return ai.Message{}, err
		}
	}
	return step.msg, step.err
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) emit(ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) ofType(t EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func echoTool(name string, inject bool, calls *[]map[string]any, mu *sync.Mutex) tools.Tool {
	props := map[string]*ai.Schema{"text": {Type: "string"}}
	if inject {
		props[tools.UserIDKey] = &ai.Schema{Type: "string"}
	}
	return tools.Tool{
		Name:          name,
		Description:   "echo",
		Schema:        &ai.Schema{Type: "object", Properties: props},
		InjectsUserID: inject,
		Handler: func(_ context.Context, args map[string]any) (string, error) {
			mu.Lock()
			*calls = append(*calls, args)
			mu.Unlock()
			s, _ := args["text"].(string)
			return "echo:" + s, nil
		},
	}
}

func newTestPlanner(t *testing.T, r ai.Reasoner, opts PlannerOptions, extra ...tools.Tool) *Planner {
	t.Helper()
	reg := tools.NewRegistry()
	for _, tool := range extra {
		if err := reg.Register(tool); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	engine := extraction.NewEngine(nil, extraction.WithClock(func() time.Time { return fixedNow }))
	disp := tools.NewDispatcher(reg, tools.DispatcherOptions{CallTimeout: time.Second})
	return NewPlanner(r, reg, disp, NewContextBuilder(engine), opts)
}

func TestRunTurnPlainAnswerEndsImmediately(t *testing.T) {
	r := &scriptedReasoner{steps: []scriptStep{
		{chunks: []string{"Hello", " there"}, msg: ai.AssistantMessage("Hello there")},
	}}
	p := newTestPlanner(t, r, PlannerOptions{})
	rec := &recorder{}

	res, err := p.RunTurn(context.Background(), NewConversationState("u1", nil, ""), "hi", rec.emit)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if res.Status != StatusAnswered || res.Answer != "Hello there" || res.Rounds != 1 {
		t.Fatalf("result = %+v", res)
	}
	if len(r.reqs) != 1 {
		t.Fatalf("reasoner called %d times, want 1", len(r.reqs))
	}
	tokens := rec.ofType(EventToken)
	if len(tokens) != 2 || tokens[0].Text != "Hello" || tokens[1].Text != " there" {
		t.Fatalf("tokens = %+v", tokens)
	}
	if len(rec.ofType(EventToolStart)) != 0 {
		t.Fatal("no tool may run when the model requests none")
	}
	if got := len(res.State.Messages); got != 2 {
		t.Fatalf("state has %d messages, want user + assistant", got)
	}
}

func TestRunTurnDispatchesToolsInRequestOrder(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []map[string]any
	)
	r := &scriptedReasoner{steps: []scriptStep{
		{msg: ai.AssistantMessage("", ai.ToolRequest{ID: "c1", Name: "echo", Arguments: map[string]any{"text": "a"}},
			ai.ToolRequest{ID: "c2", Name: "missing", Arguments: map[string]any{}},
			ai.ToolRequest{ID: "c3", Name: "whoami", Arguments: map[string]any{"text": "b", tools.UserIDKey: "mallory"}})},
		{chunks: []string{"done"}, msg: ai.AssistantMessage("done")},
	}}
	p := newTestPlanner(t, r, PlannerOptions{},
		echoTool("echo", false, &calls, &mu),
		echoTool("whoami", true, &calls, &mu),
	)
	rec := &recorder{}

	res, err := p.RunTurn(context.Background(), NewConversationState("alice", nil, ""), "go", rec.emit)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if res.Rounds != 2 || res.Answer != "done" {
		t.Fatalf("result = %+v", res)
	}

	// user, assistant(tool calls), 3 tool results, final assistant
	msgs := res.State.Messages
	if len(msgs) != 6 {
		t.Fatalf("got %d messages: %+v", len(msgs), msgs)
	}
	for i, id := range []string{"c1", "c2", "c3"} {
		m := msgs[2+i]
		if m.Role != ai.RoleTool || m.ToolCallID != id {
			t.Fatalf("message %d = %+v, want tool result for %s", 2+i, m, id)
		}
	}
	if !msgs[3].IsError || !strings.Contains(msgs[3].Content, "no such tool") {
		t.Errorf("unknown tool result = %+v", msgs[3])
	}
	if msgs[4].Content != "echo:b" {
		t.Errorf("whoami result = %+v", msgs[4])
	}
	for _, c := range calls {
		if v, ok := c[tools.UserIDKey]; ok && v != "alice" {
			t.Errorf("user_id not overridden: %v", v)
		}
	}

	// Second step sees the tool results.
	if got := len(r.reqs[1].Messages); got != 5 {
		t.Errorf("second step saw %d messages, want 5", got)
	}
	if len(rec.ofType(EventToolStart)) != 3 || len(rec.ofType(EventToolDone)) != 3 {
		t.Errorf("tool events = %+v", rec.events)
	}
	done := rec.ofType(EventDone)
	if len(done) != 1 || done[0].Rounds != 2 {
		t.Errorf("done events = %+v", done)
	}
}

func TestRunTurnHidesUserIDFromCatalog(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []map[string]any
	)
	r := &scriptedReasoner{steps: []scriptStep{{msg: ai.AssistantMessage("ok")}}}
	p := newTestPlanner(t, r, PlannerOptions{}, echoTool("whoami", true, &calls, &mu))

	if _, err := p.RunTurn(context.Background(), NewConversationState("u1", nil, ""), "hi", nil); err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	spec := r.reqs[0].Tools[0]
	if _, ok := spec.Parameters.Properties[tools.UserIDKey]; ok {
		t.Fatal("user_id must not be exposed to the model")
	}
}

func TestRunTurnReasoningFailure(t *testing.T) {
	r := &scriptedReasoner{steps: []scriptStep{{err: errors.New("503 from provider")}}}
	p := newTestPlanner(t, r, PlannerOptions{})
	rec := &recorder{}

	res, err := p.RunTurn(context.Background(), NewConversationState("u1", nil, ""), "hi", rec.emit)
	if !errors.Is(err, ErrReasoning) {
		t.Fatalf("expected ErrReasoning, got %v", err)
	}
	if res.Status != StatusError {
		t.Fatalf("status = %s", res.Status)
	}
	errs := rec.ofType(EventError)
	if len(errs) != 1 || !strings.HasPrefix(errs[0].Text, "Error:") {
		t.Fatalf("error events = %+v", errs)
	}
	if strings.Contains(errs[0].Text, "503") {
		t.Errorf("provider detail leaked to the user: %q", errs[0].Text)
	}
}

func TestRunTurnStepTimeoutIsFatal(t *testing.T) {
	r := &scriptedReasoner{steps: []scriptStep{{block: true}}}
	p := newTestPlanner(t, r, PlannerOptions{StepTimeout: 20 * time.Millisecond})
	rec := &recorder{}

	_, err := p.RunTurn(context.Background(), NewConversationState("u1", nil, ""), "hi", rec.emit)
	if !errors.Is(err, ErrReasoning) {
		t.Fatalf("expected ErrReasoning, got %v", err)
	}
	if errs := rec.ofType(EventError); len(errs) != 1 || !strings.Contains(errs[0].Text, "too long") {
		t.Fatalf("error events = %+v", errs)
	}
}

func TestRunTurnMaxRounds(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []map[string]any
	)
	loop := scriptStep{msg: ai.AssistantMessage("", ai.ToolRequest{ID: "x", Name: "echo", Arguments: map[string]any{"text": "again"}})}
	r := &scriptedReasoner{steps: []scriptStep{loop, loop, loop, loop}}
	p := newTestPlanner(t, r, PlannerOptions{MaxRounds: 2}, echoTool("echo", false, &calls, &mu))
	rec := &recorder{}

	res, err := p.RunTurn(context.Background(), NewConversationState("u1", nil, ""), "hi", rec.emit)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if res.Status != StatusMaxRounds || res.Rounds != 2 || res.Answer != maxRoundsAnswer {
		t.Fatalf("result = %+v", res)
	}
	if len(r.reqs) != 2 {
		t.Fatalf("reasoner called %d times, want 2", len(r.reqs))
	}
	last, _ := res.State.Last()
	if last.Content != maxRoundsAnswer {
		t.Errorf("last message = %+v", last)
	}
}

func TestRunTurnEmitFailureAborts(t *testing.T) {
	r := &scriptedReasoner{steps: []scriptStep{{chunks: []string{"a", "b"}, msg: ai.AssistantMessage("ab")}}}
	p := newTestPlanner(t, r, PlannerOptions{})

	gone := errors.New("client went away")
	res, err := p.RunTurn(context.Background(), NewConversationState("u1", nil, ""), "hi", func(Event) error { return gone })
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if res.Status != StatusAborted {
		t.Fatalf("status = %s", res.Status)
	}
}

func TestRunTurnCanceledContext(t *testing.T) {
	r := &scriptedReasoner{steps: []scriptStep{{msg: ai.AssistantMessage("never")}}}
	p := newTestPlanner(t, r, PlannerOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.RunTurn(ctx, NewConversationState("u1", nil, ""), "hi", nil)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if len(r.reqs) != 0 {
		t.Fatal("no reasoning step should run on a canceled context")
	}
}

func TestRunTurnDoesNotMutateCallerState(t *testing.T) {
	history := make([]ai.Message, 1, 8)
	history[0] = ai.UserMessage("earlier")
	state := ConversationState{UserID: "u1", Messages: history}

	r := &scriptedReasoner{steps: []scriptStep{{msg: ai.AssistantMessage("ok")}}}
	res, err := newTestPlanner(t, r, PlannerOptions{}).RunTurn(context.Background(), state, "now", nil)
	if err != nil {
		t.Fatalf("RunTurn: %v", err)
	}
	if len(state.Messages) != 1 || history[:2][1].Content != "" {
		t.Fatal("caller state was mutated")
	}
	if len(res.State.Messages) != 3 {
		t.Fatalf("result state has %d messages", len(res.State.Messages))
	}
}
