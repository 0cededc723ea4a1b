// README: Turn orchestration. DECIDE runs one reasoning step, ACT dispatches its tool requests, END returns the answer.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tripmate/internal/ai"
	"tripmate/internal/logger"
	"tripmate/internal/metrics"
	"tripmate/internal/modules/tools"
)

const (
	DefaultStepTimeout = 60 * time.Second
	DefaultMaxRounds   = 8

	maxRoundsAnswer = "I wasn't able to finish that request after several attempts. Could you rephrase it or break it into smaller steps?"
)

var (
	// ErrReasoning wraps any failure of the reasoning step. It ends the turn.
	ErrReasoning = errors.New("reasoning step failed")
	// ErrAborted is returned when the caller stopped consuming events or canceled the context.
	ErrAborted = errors.New("turn aborted")
)

type phase int

const (
	phaseDecide phase = iota
	phaseAct
	phaseEnd
)

func (p phase) String() string {
	switch p {
	case phaseDecide:
		return "DECIDE"
	case phaseAct:
		return "ACT"
	default:
		return "END"
	}
}

// EventType labels a streamed turn event.
type EventType string

const (
	EventToken     EventType = "token"
	EventToolStart EventType = "tool_start"
	EventToolDone  EventType = "tool_done"
	EventError     EventType = "error"
	EventDone      EventType = "done"
)

// Event is one item of the turn's progress stream. Only EventToken carries answer content.
type Event struct {
	Type    EventType `json:"type"`
	Text    string    `json:"text,omitempty"`
	Tool    string    `json:"tool,omitempty"`
	CallID  string    `json:"call_id,omitempty"`
	Success bool      `json:"success,omitempty"`
	Rounds  int       `json:"rounds,omitempty"`
}

// Emitter delivers events to the caller. Returning an error aborts the turn.
type Emitter func(Event) error

// TurnStatus is the terminal outcome of a turn.
type TurnStatus string

const (
	StatusAnswered  TurnStatus = "answered"
	StatusMaxRounds TurnStatus = "max_rounds"
	StatusError     TurnStatus = "error"
	StatusAborted   TurnStatus = "aborted"
)

// TurnResult is what a finished turn hands back to the caller.
type TurnResult struct {
	State  ConversationState
	Answer string
	Rounds int
	Status TurnStatus
}

type PlannerOptions struct {
	StepTimeout time.Duration
	MaxRounds   int
	Logger      *logger.Logger
	Metrics     *metrics.Metrics
}

// Planner runs the DECIDE / ACT / END loop for one turn at a time. It holds no per-turn state.
type Planner struct {
	reasoner    ai.Reasoner
	registry    *tools.Registry
	dispatcher  *tools.Dispatcher
	builder     *ContextBuilder
	stepTimeout time.Duration
	maxRounds   int
	log         *logger.Logger
	metrics     *metrics.Metrics
}

func NewPlanner(reasoner ai.Reasoner, registry *tools.Registry, dispatcher *tools.Dispatcher, builder *ContextBuilder, opts PlannerOptions) *Planner {
	p := &Planner{
		reasoner:    reasoner,
		registry:    registry,
		dispatcher:  dispatcher,
		builder:     builder,
		stepTimeout: opts.StepTimeout,
		maxRounds:   opts.MaxRounds,
		log:         opts.Logger,
		metrics:     opts.Metrics,
	}
	if p.stepTimeout <= 0 {
		p.stepTimeout = DefaultStepTimeout
	}
	if p.maxRounds <= 0 {
		p.maxRounds = DefaultMaxRounds
	}
	if p.log == nil {
		p.log = logger.Nop()
	}
	p.log = p.log.With("planner")
	return p
}

// RunTurn appends userInput to state and loops until the model answers without tool requests.
// A reasoning failure is reported once through emit as EventError and returned wrapped in ErrReasoning.
func (p *Planner) RunTurn(ctx context.Context, state ConversationState, userInput string, emit Emitter) (TurnResult, error) {
	out := newSerialEmitter(emit)
	st := state.With(ai.UserMessage(userInput))
	log := p.log.WithFields(map[string]any{"user_id": st.UserID})

	res := TurnResult{}
	var pending []ai.ToolRequest
	var turnErr error

	for ph := phaseDecide; ph != phaseEnd; {
		if err := ctx.Err(); err != nil {
			res.Status, turnErr = StatusAborted, fmt.Errorf("%w: %v", ErrAborted, err)
			break
		}
		log.Debug().Str("phase", ph.String()).Int("round", res.Rounds).Msg("turn step")

		switch ph {
		case phaseDecide:
			if res.Rounds == p.maxRounds {
				log.Warn().Int("rounds", res.Rounds).Msg("round limit reached, ending turn with fallback answer")
				st = st.With(ai.AssistantMessage(maxRoundsAnswer))
				res.Answer, res.Status = maxRoundsAnswer, StatusMaxRounds
				if err := out.send(Event{Type: EventToken, Text: maxRoundsAnswer}); err != nil {
					res.Status, turnErr = StatusAborted, err
				}
				ph = phaseEnd
				continue
			}
			res.Rounds++

			msg, err := p.decide(ctx, st, out)
			switch {
			case out.Err() != nil:
				res.Status, turnErr = StatusAborted, out.Err()
				ph = phaseEnd
			case err != nil && ctx.Err() != nil:
				res.Status, turnErr = StatusAborted, fmt.Errorf("%w: %v", ErrAborted, ctx.Err())
				ph = phaseEnd
			case err != nil:
				log.Error().Err(err).Int("round", res.Rounds).Str("provider", p.reasoner.Name()).Msg("reasoning step failed")
				_ = out.send(Event{Type: EventError, Text: reasoningFailureText(err)})
				res.Status, turnErr = StatusError, fmt.Errorf("%w: %v", ErrReasoning, err)
				ph = phaseEnd
			case !msg.HasToolCalls():
				st = st.With(msg)
				res.Answer, res.Status = msg.Content, StatusAnswered
				ph = phaseEnd
			default:
				st = st.With(msg)
				pending = msg.ToolCalls
				ph = phaseAct
			}

		case phaseAct:
			results := p.dispatcher.Dispatch(ctx, st.UserID, pending, out.observer())
			for _, r := range results {
				st = st.With(r.Message())
			}
			pending = nil
			if err := out.Err(); err != nil {
				res.Status, turnErr = StatusAborted, err
				ph = phaseEnd
				continue
			}
			ph = phaseDecide
		}
	}

	res.State = st
	p.metrics.RecordTurn(string(res.Status), res.Rounds)
	if res.Status != StatusAborted {
		_ = out.send(Event{Type: EventDone, Rounds: res.Rounds})
	}
	log.Info().Str("status", string(res.Status)).Int("rounds", res.Rounds).Msg("turn finished")
	return res, turnErr
}

// decide runs one reasoning step with a fresh instruction payload.
func (p *Planner) decide(ctx context.Context, st ConversationState, out *serialEmitter) (ai.Message, error) {
	stepCtx, cancel := context.WithTimeout(ctx, p.stepTimeout)
	defer cancel()

	req := ai.StepRequest{
		System:   p.builder.Build(st),
		Messages: st.Messages,
		Tools:    p.registry.Specs(),
	}
	return p.reasoner.Step(stepCtx, req, func(text string) error {
		if text == "" {
			return nil
		}
		return out.send(Event{Type: EventToken, Text: text})
	})
}

func reasoningFailureText(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Error: the assistant took too long to respond. Please try again."
	}
	return "Error: the assistant could not complete this request. Please try again in a moment."
}

// serialEmitter makes emit safe for concurrent tool observers and remembers the first delivery failure.
type serialEmitter struct {
	mu   sync.Mutex
	emit Emitter
	err  error
}

func newSerialEmitter(emit Emitter) *serialEmitter {
	if emit == nil {
		emit = func(Event) error { return nil }
	}
	return &serialEmitter{emit: emit}
}

func (s *serialEmitter) send(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if err := s.emit(ev); err != nil {
		s.err = fmt.Errorf("%w: %v", ErrAborted, err)
	}
	return s.err
}

func (s *serialEmitter) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *serialEmitter) observer() tools.Observer {
	return func(ev tools.Event) {
		switch ev.Phase {
		case tools.PhaseStart:
			_ = s.send(Event{Type: EventToolStart, Tool: ev.Request.Name, CallID: ev.Request.ID})
		case tools.PhaseDone:
			_ = s.send(Event{Type: EventToolDone, Tool: ev.Request.Name, CallID: ev.Request.ID, Success: ev.Result.Success})
		}
	}
}
