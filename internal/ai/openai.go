package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	oaioption "github.com/openai/openai-go/option"
)

const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIReasoner implements Reasoner on the Chat Completions streaming API.
type OpenAIReasoner struct {
	client      openai.Client
	model       string
	temperature float64
}

// NewOpenAIReasoner builds a reasoner. Extra request options (base URL, HTTP client) are
// passed through to the SDK.
func NewOpenAIReasoner(apiKey, model string, temperature float64, opts ...oaioption.RequestOption) *OpenAIReasoner {
	if model == "" {
		model = DefaultOpenAIModel
	}
	opts = append([]oaioption.RequestOption{oaioption.WithAPIKey(apiKey)}, opts...)
	return &OpenAIReasoner{
		client:      openai.NewClient(opts...),
		model:       model,
		temperature: temperature,
	}
}

func (o *OpenAIReasoner) Name() string { return "openai" }

func (o *OpenAIReasoner) Step(ctx context.Context, req StepRequest, onChunk ChunkFunc) (Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:       o.model,
		Messages:    toOpenAIMessages(req.System, req.Messages),
		Temperature: openai.Float(o.temperature),
	}
	if len(req.Tools) > 0 {
		params.Tools = toOpenAITools(req.Tools)
	}

	stream := o.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var text strings.Builder
	acc := openai.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			text.WriteString(delta)
			if onChunk != nil {
				if err := onChunk(delta); err != nil {
					return Message{}, err
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return Message{}, fmt.Errorf("openai generation error: %w", err)
	}
	if len(acc.Choices) == 0 {
		return Message{}, ErrEmptyResponse
	}

	var calls []ToolRequest
	for _, tc := range acc.Choices[0].Message.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			// Malformed arguments surface later as a validation failure for that call.
			_ = json.Unmarshal([]byte(tc.Function.Arguments), &args)
		}
		calls = append(calls, ToolRequest{ID: tc.ID, Name: tc.Function.Name, Arguments: args})
	}
	if text.Len() == 0 && len(calls) == 0 {
		return Message{}, ErrEmptyResponse
	}
	return AssistantMessage(text.String(), ensureCallIDs(calls)...), nil
}

func toOpenAIMessages(system string, msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}
	for _, m := range msgs {
		switch m.Role {
		case RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case RoleAssistant:
			if !m.HasToolCalls() {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			asst := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				asst.Content.OfString = openai.String(m.Content)
			}
			for _, c := range m.ToolCalls {
				raw, err := json.Marshal(c.Arguments)
				if err != nil {
					raw = []byte("{}")
				}
				asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: c.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      c.Name,
						Arguments: string(raw),
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &asst})
		case RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		}
	}
	return out
}

func toOpenAITools(specs []ToolSpec) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(specs))
	for _, s := range specs {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        s.Name,
				Description: openai.String(s.Description),
				Parameters:  toFunctionParameters(s.Parameters),
			},
		})
	}
	return out
}

// toFunctionParameters renders a Schema as the plain JSON object the API expects.
func toFunctionParameters(s *Schema) openai.FunctionParameters {
	if s == nil {
		return openai.FunctionParameters{"type": "object", "properties": map[string]any{}}
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return openai.FunctionParameters{"type": "object", "properties": map[string]any{}}
	}
	params := openai.FunctionParameters{}
	if err := json.Unmarshal(raw, &params); err != nil {
		return openai.FunctionParameters{"type": "object", "properties": map[string]any{}}
	}
	if _, ok := params["properties"]; !ok {
		params["properties"] = map[string]any{}
	}
	return params
}
