package tools

import (
	"context"
	"errors"
	"time"

	"tripmate/internal/ai"
)

// UserIDKey is the argument overwritten with the session identity for injecting tools.
const UserIDKey = "user_id"

var (
	ErrInvalidTool   = errors.New("invalid tool definition")
	ErrDuplicateTool = errors.New("tool already registered")
	ErrUnknownTool   = errors.New("no such tool")
	ErrInvalidArgs   = errors.New("invalid arguments")
)

// Handler executes a tool with a flat argument mapping and returns a text payload.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Tool is a named capability the reasoning step may request.
type Tool struct {
	Name        string
	Description string
	Schema      *ai.Schema

	// InjectsUserID makes the dispatcher overwrite args[UserIDKey] with the session user.
	InjectsUserID bool

	Handler Handler
}

// ErrorCode classifies a failed invocation.
type ErrorCode string

const (
	CodeUnknownTool     ErrorCode = "unknown_tool"
	CodeInvalidArgs     ErrorCode = "invalid_arguments"
	CodeTimeout         ErrorCode = "timeout"
	CodeCanceled        ErrorCode = "canceled"
	CodeExecutionFailed ErrorCode = "execution_failed"
	CodePanic           ErrorCode = "panic"
)

// ErrorPayload is the structured error attached to a failed Result.
type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Result is the outcome of one ToolRequest. Output always holds user-presentable text.
type Result struct {
	CallID   string        `json:"call_id"`
	Name     string        `json:"name"`
	Success  bool          `json:"success"`
	Output   string        `json:"output"`
	Error    *ErrorPayload `json:"error,omitempty"`
	Duration time.Duration `json:"-"`
}

// Message converts the result into the tool-result message appended to the conversation.
func (r Result) Message() ai.Message {
	return ai.ToolResultMessage(r.CallID, r.Name, r.Output, !r.Success)
}

func failed(req ai.ToolRequest, code ErrorCode, msg string) Result {
	return Result{
		CallID:  req.ID,
		Name:    req.Name,
		Success: false,
		Output:  "Error: " + msg,
		Error:   &ErrorPayload{Code: code, Message: msg},
	}
}
