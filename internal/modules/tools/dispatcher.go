// README: Tool dispatcher; per-call isolation, identity injection, bounded timeouts, ordered results.
package tools

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"golang.org/x/sync/errgroup"

	"tripmate/internal/ai"
	"tripmate/internal/logger"
	"tripmate/internal/metrics"
)

const (
	DefaultCallTimeout = 20 * time.Second
	DefaultParallelism = 4
)

// Phase marks where a dispatch Event was emitted.
type Phase string

const (
	PhaseStart Phase = "start"
	PhaseDone  Phase = "done"
)

// Event reports tool progress. Result is nil for PhaseStart.
type Event struct {
	Phase   Phase
	Request ai.ToolRequest
	Result  *Result
}

// Observer receives progress events. It may be called from several goroutines at once.
type Observer func(Event)

type DispatcherOptions struct {
	CallTimeout time.Duration
	Parallelism int
	Validator   Validator
	Logger      *logger.Logger
	Metrics     *metrics.Metrics
}

// Dispatcher executes tool requests against a Registry.
type Dispatcher struct {
	registry    *Registry
	validator   Validator
	timeout     time.Duration
	parallelism int
	log         *logger.Logger
	metrics     *metrics.Metrics
}

func NewDispatcher(registry *Registry, opts DispatcherOptions) *Dispatcher {
	d := &Dispatcher{
		registry:    registry,
		validator:   opts.Validator,
		timeout:     opts.CallTimeout,
		parallelism: opts.Parallelism,
		log:         opts.Logger,
		metrics:     opts.Metrics,
	}
	if d.validator == nil {
		d.validator = SchemaValidator{}
	}
	if d.timeout <= 0 {
		d.timeout = DefaultCallTimeout
	}
	if d.parallelism <= 0 {
		d.parallelism = DefaultParallelism
	}
	if d.log == nil {
		d.log = logger.Nop()
	}
	d.log = d.log.With("dispatcher")
	return d
}

// Dispatch runs every request and returns exactly one Result per request, in request order.
// Failures never abort the batch. Requests may run concurrently; order of the returned slice
// is independent of completion order.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, reqs []ai.ToolRequest, observe Observer) []Result {
	results := make([]Result, len(reqs))
	g := new(errgroup.Group)
	g.SetLimit(d.parallelism)
	for i, req := range reqs {
		g.Go(func() error {
			if observe != nil {
				observe(Event{Phase: PhaseStart, Request: req})
			}
			res := d.execute(ctx, userID, req)
			results[i] = res
			if observe != nil {
				observe(Event{Phase: PhaseDone, Request: req, Result: &res})
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (d *Dispatcher) execute(ctx context.Context, userID string, req ai.ToolRequest) Result {
	start := time.Now()
	res := d.run(ctx, userID, req)
	res.Duration = time.Since(start)

	status := "success"
	var err error
	if !res.Success {
		status = string(res.Error.Code)
		err = errors.New(res.Error.Message)
	}
	d.log.LogToolCall(req.Name, req.ID, res.Duration, err)
	d.metrics.RecordToolCall(req.Name, status, res.Duration)
	return res
}

func (d *Dispatcher) run(ctx context.Context, userID string, req ai.ToolRequest) Result {
	tool, ok := d.registry.Lookup(req.Name)
	if !ok {
		return failed(req, CodeUnknownTool, fmt.Sprintf("no such tool: %s", req.Name))
	}

	args := maps.Clone(req.Arguments)
	if args == nil {
		args = map[string]any{}
	}
	if tool.InjectsUserID {
		if supplied, ok := args[UserIDKey]; ok && supplied != userID {
			d.log.Warn().Str("tool", req.Name).Msg("model-supplied user_id overridden by session identity")
		}
		args[UserIDKey] = userID
	}

	if err := d.validator.Validate(args, tool.Schema); err != nil {
		return failed(req, CodeInvalidArgs, err.Error())
	}

	if err := ctx.Err(); err != nil {
		return failed(req, CodeCanceled, "turn canceled before the tool ran")
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	out, err := invoke(callCtx, tool.Handler, args)
	if err != nil {
		switch {
		case errors.Is(err, errPanic):
			return failed(req, CodePanic, err.Error())
		case ctx.Err() != nil:
			return failed(req, CodeCanceled, "turn canceled while the tool was running")
		case errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded):
			return failed(req, CodeTimeout, fmt.Sprintf("%s timed out after %s", req.Name, d.timeout))
		default:
			return failed(req, CodeExecutionFailed, err.Error())
		}
	}
	return Result{CallID: req.ID, Name: req.Name, Success: true, Output: out}
}

var errPanic = errors.New("tool panicked")

// invoke enforces the deadline even when a handler ignores its context.
func invoke(ctx context.Context, h Handler, args map[string]any) (string, error) {
	type outcome struct {
		out string
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%w: %v", errPanic, r)}
			}
		}()
		out, err := h(ctx, args)
		done <- outcome{out: out, err: err}
	}()

	select {
	case o := <-done:
		return o.out, o.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
