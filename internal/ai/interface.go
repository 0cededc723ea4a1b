package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the model produced neither text nor tool calls.
var ErrEmptyResponse = errors.New("empty response from model")

// StepRequest is the full input of one reasoning step.
type StepRequest struct {
	// System holds the instruction payload built for this turn.
	System   string
	Messages []Message
	Tools    []ToolSpec
}

// ChunkFunc receives text fragments in generation order. Returning an error aborts the step.
type ChunkFunc func(text string) error

// Reasoner runs one reasoning step against a language model.
// This interface allows for swapping providers (Gemini, OpenAI, test fakes).
type Reasoner interface {
	// Step streams fragments to onChunk as they arrive and returns the complete assistant
	// message once generation for this step has finished. Tool-call ids in the returned
	// message are unique.
	Step(ctx context.Context, req StepRequest, onChunk ChunkFunc) (Message, error)

	// Name identifies the provider in logs.
	Name() string
}
