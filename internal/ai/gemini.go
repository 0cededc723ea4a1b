package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiReasoner implements Reasoner using Google's Gemini models with function calling.
type GeminiReasoner struct {
	client      *genai.Client
	modelName   string
	temperature float32
}

// NewGeminiReasoner initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiReasoner(ctx context.Context, apiKey, modelName string, temperature float64) (*GeminiReasoner, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiReasoner{client: client, modelName: modelName, temperature: float32(temperature)}, nil
}

// Close cleans up the Gemini client resources.
func (g *GeminiReasoner) Close() error {
	return g.client.Close()
}

func (g *GeminiReasoner) Name() string { return "gemini" }

// Step streams one generation. A fresh GenerativeModel is configured per step so concurrent
// turns never share tool or instruction settings.
func (g *GeminiReasoner) Step(ctx context.Context, req StepRequest, onChunk ChunkFunc) (Message, error) {
	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(g.temperature)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if decls := toGeminiFunctions(req.Tools); len(decls) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	history, last, err := toGeminiContents(req.Messages)
	if err != nil {
		return Message{}, err
	}
	session := model.StartChat()
	session.History = history

	var text strings.Builder
	var calls []ToolRequest
	iter := session.SendMessageStream(ctx, last.Parts...)
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return Message{}, fmt.Errorf("gemini generation error: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		for _, part := range resp.Candidates[0].Content.Parts {
			switch p := part.(type) {
			case genai.Text:
				if p == "" {
					continue
				}
				text.WriteString(string(p))
				if onChunk != nil {
					if err := onChunk(string(p)); err != nil {
						return Message{}, err
					}
				}
			case genai.FunctionCall:
				calls = append(calls, ToolRequest{Name: p.Name, Arguments: p.Args})
			}
		}
	}

	if text.Len() == 0 && len(calls) == 0 {
		return Message{}, ErrEmptyResponse
	}
	// Gemini function calls carry no ids; correlation ids are assigned here.
	return AssistantMessage(text.String(), ensureCallIDs(calls)...), nil
}

// toGeminiContents maps the conversation onto Gemini roles. Tool results travel as
// FunctionResponse parts in a user turn; adjacent same-role entries are merged.
func toGeminiContents(msgs []Message) ([]*genai.Content, *genai.Content, error) {
	var contents []*genai.Content
	appendParts := func(role string, parts ...genai.Part) {
		if len(parts) == 0 {
			return
		}
		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts = append(contents[n-1].Parts, parts...)
			return
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}

	for _, m := range msgs {
		switch m.Role {
		case RoleUser:
			if m.Content != "" {
				appendParts("user", genai.Text(m.Content))
			}
		case RoleAssistant:
			var parts []genai.Part
			if m.Content != "" {
				parts = append(parts, genai.Text(m.Content))
			}
			for _, c := range m.ToolCalls {
				parts = append(parts, genai.FunctionCall{Name: c.Name, Args: c.Arguments})
			}
			appendParts("model", parts...)
		case RoleTool:
			appendParts("user", genai.FunctionResponse{
				Name:     m.ToolName,
				Response: map[string]any{"content": m.Content, "is_error": m.IsError},
			})
		}
	}

	if len(contents) == 0 {
		return nil, nil, errors.New("gemini: no messages to send")
	}
	last := contents[len(contents)-1]
	if last.Role != "user" {
		return nil, nil, errors.New("gemini: conversation must end with a user or tool message")
	}
	return contents[:len(contents)-1], last, nil
}

func toGeminiFunctions(specs []ToolSpec) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, s := range specs {
		decl := &genai.FunctionDeclaration{Name: s.Name, Description: s.Description}
		if s.Parameters != nil && len(s.Parameters.Properties) > 0 {
			decl.Parameters = toGeminiSchema(s.Parameters)
		}
		decls = append(decls, decl)
	}
	return decls
}

func toGeminiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        geminiType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Enum:        s.Enum,
		Items:       toGeminiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGeminiSchema(prop)
		}
	}
	return out
}

func geminiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	}
	return genai.TypeUnspecified
}
