package ai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
	oaioption "github.com/openai/openai-go/option"
)

func sampleConversation() []Message {
	return []Message{
		UserMessage("weather in Rome and Paris?"),
		AssistantMessage("", ToolRequest{ID: "c1", Name: "get_weather", Arguments: map[string]any{"locations": []any{"Rome"}}},
			ToolRequest{ID: "c2", Name: "get_weather", Arguments: map[string]any{"locations": []any{"Paris"}}}),
		ToolResultMessage("c1", "get_weather", "Rome: sunny", false),
		ToolResultMessage("c2", "get_weather", "Error: timeout", true),
	}
}

func TestToGeminiContentsMergesToolResults(t *testing.T) {
	history, last, err := toGeminiContents(sampleConversation())
	if err != nil {
		t.Fatalf("toGeminiContents: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected user + model history, got %d entries", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "model" {
		t.Fatalf("roles = %s, %s", history[0].Role, history[1].Role)
	}
	if len(history[1].Parts) != 2 {
		t.Fatalf("model turn should carry both function calls, got %d parts", len(history[1].Parts))
	}
	if last.Role != "user" || len(last.Parts) != 2 {
		t.Fatalf("last = role %s with %d parts", last.Role, len(last.Parts))
	}
	resp, ok := last.Parts[1].(genai.FunctionResponse)
	if !ok || resp.Name != "get_weather" || resp.Response["is_error"] != true {
		t.Fatalf("unexpected function response %#v", last.Parts[1])
	}
}

func TestToGeminiContentsRejectsTrailingAssistant(t *testing.T) {
	_, _, err := toGeminiContents([]Message{UserMessage("hi"), AssistantMessage("hello")})
	if err == nil {
		t.Fatal("expected error for conversation ending with the model")
	}
	if _, _, err := toGeminiContents(nil); err == nil {
		t.Fatal("expected error for empty conversation")
	}
}

func TestToGeminiSchema(t *testing.T) {
	s := toGeminiSchema(&Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"locations": {Type: "array", Items: &Schema{Type: "string"}},
			"days":      {Type: "integer"},
		},
		Required: []string{"locations"},
	})
	if s.Type != genai.TypeObject || s.Properties["locations"].Type != genai.TypeArray {
		t.Fatalf("unexpected schema %#v", s)
	}
	if s.Properties["locations"].Items.Type != genai.TypeString || s.Properties["days"].Type != genai.TypeInteger {
		t.Fatal("nested types not converted")
	}
	if decls := toGeminiFunctions([]ToolSpec{{Name: "noop", Description: "d", Parameters: &Schema{Type: "object"}}}); decls[0].Parameters != nil {
		t.Fatal("argument-less tools should not declare parameters")
	}
}

func TestToOpenAIMessages(t *testing.T) {
	msgs := toOpenAIMessages("system prompt", sampleConversation())
	if len(msgs) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(msgs))
	}
	if msgs[0].OfSystem == nil || msgs[1].OfUser == nil || msgs[3].OfTool == nil {
		t.Fatal("unexpected message variants")
	}
	asst := msgs[2].OfAssistant
	if asst == nil || len(asst.ToolCalls) != 2 || asst.ToolCalls[1].ID != "c2" {
		t.Fatalf("assistant tool calls not preserved: %#v", asst)
	}
	if !strings.Contains(asst.ToolCalls[0].Function.Arguments, "Rome") {
		t.Fatalf("arguments = %s", asst.ToolCalls[0].Function.Arguments)
	}
}

func TestToFunctionParameters(t *testing.T) {
	p := toFunctionParameters(&Schema{Type: "object"})
	if p["type"] != "object" {
		t.Fatalf("type = %v", p["type"])
	}
	if _, ok := p["properties"]; !ok {
		t.Fatal("properties must always be present")
	}
}

func sseChunk(w http.ResponseWriter, body string) {
	fmt.Fprintf(w, "data: %s\n\n", body)
	w.(http.Flusher).Flush()
}

func TestOpenAIReasonerStreamsTextAndToolCalls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		sseChunk(w, `{"id":"c","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"role":"assistant","content":"Let me "},"finish_reason":null}]}`)
		sseChunk(w, `{"id":"c","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"content":"check."},"finish_reason":null}]}`)
		sseChunk(w, `{"id":"c","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"get_weather","arguments":"{\"locations\":"}}]},"finish_reason":null}]}`)
		sseChunk(w, `{"id":"c","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"[\"Rome\"]}"}}]},"finish_reason":null}]}`)
		sseChunk(w, `{"id":"c","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`)
		sseChunk(w, `[DONE]`)
	}))
	defer srv.Close()

	r := NewOpenAIReasoner("test", "m", 0.2, oaioption.WithBaseURL(srv.URL+"/"), oaioption.WithMaxRetries(0))
	var chunks []string
	msg, err := r.Step(context.Background(), StepRequest{System: "sys", Messages: []Message{UserMessage("weather?")}}, func(s string) error {
		chunks = append(chunks, s)
		return nil
	})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if strings.Join(chunks, "") != "Let me check." || msg.Content != "Let me check." {
		t.Fatalf("chunks = %q, content = %q", chunks, msg.Content)
	}
	if len(msg.ToolCalls) != 1 || msg.ToolCalls[0].ID != "call_1" || msg.ToolCalls[0].Name != "get_weather" {
		t.Fatalf("tool calls = %+v", msg.ToolCalls)
	}
	locs, _ := msg.ToolCalls[0].Arguments["locations"].([]any)
	if len(locs) != 1 || locs[0] != "Rome" {
		t.Fatalf("arguments = %+v", msg.ToolCalls[0].Arguments)
	}
}
