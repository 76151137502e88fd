package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"google.golang.org/genai"
)

const questionJSON = `{"options":["Ctrl+S","Ctrl+P"],"correct":0}`

func serve(t *testing.T, path string, status int, body any, seen *map[string]any) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, path) {
			t.Errorf("path = %s, want suffix %s", r.URL.Path, path)
		}
		if seen != nil {
			b, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(b, seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func openAIReply(content, finish string) map[string]any {
	return map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAI_Generate(t *testing.T) {
	var sent map[string]any
	url := serve(t, "/chat/completions", http.StatusOK, openAIReply(questionJSON, "stop"), &sent)
	c := newOpenAI(OpenAI, "k", "gpt-4o-mini", url+"/v1")

	resp, err := c.Generate(context.Background(), Request{System: "sys", Prompt: "Gere", Schema: answerSchema, MaxTokens: 256})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != questionJSON || resp.InputTokens != 40 || resp.OutputTokens != 25 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Model != "gpt-4o-mini-2024-07-18" {
		t.Errorf("model = %q", resp.Model)
	}
	if msgs, _ := sent["messages"].([]any); len(msgs) != 2 {
		t.Errorf("sent %d messages, want system and user", len(msgs))
	}
	format, _ := sent["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Errorf("response_format = %v", format)
	}
}

func TestOpenAI_Errors(t *testing.T) {
	url := serve(t, "/chat/completions", http.StatusTooManyRequests,
		map[string]any{"error": map[string]any{"message": "slow down", "type": "rate_limit"}}, nil)
	_, err := newOpenAI(OpenRouter, "k", "m", url).Generate(context.Background(), Request{Prompt: "x"})
	if kind, _ := KindOf(err); kind != KindRateLimited {
		t.Fatalf("err = %v, want rate limited", err)
	}
	if !strings.HasPrefix(err.Error(), "openrouter:") {
		t.Errorf("error should name the vendor: %v", err)
	}

	url = serve(t, "/chat/completions", http.StatusOK, openAIReply(`{"options":["a","b"],"corr`, "length"), nil)
	_, err = newOpenAI(OpenAI, "k", "m", url).Generate(context.Background(), Request{Prompt: "x", Schema: answerSchema})
	if kind, _ := KindOf(err); kind != KindTruncated {
		t.Fatalf("err = %v, want truncated", err)
	}
}

func anthropicReply(text, stop string) map[string]any {
	return map[string]any{
		"id":            "msg_1",
		"type":          "message",
		"role":          "assistant",
		"model":         "claude-haiku-4-5-20251001",
		"content":       []map[string]any{{"type": "text", "text": text}},
		"stop_reason":   stop,
		"stop_sequence": nil,
		"usage":         map[string]any{"input_tokens": 30, "output_tokens": 20},
	}
}

func TestAnthropic_Generate(t *testing.T) {
	var sent map[string]any
	url := serve(t, "/v1/messages", http.StatusOK, anthropicReply("```json\n"+questionJSON+"\n```", "end_turn"), &sent)
	c := newAnthropic("k", "claude-haiku-4-5-20251001", url, option.WithMaxRetries(0))

	resp, err := c.Generate(context.Background(), Request{System: "sys", Prompt: "Gere", Schema: answerSchema, MaxTokens: 512})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != questionJSON || resp.InputTokens != 30 || resp.OutputTokens != 20 {
		t.Errorf("resp = %+v", resp)
	}
	if sent["max_tokens"] != float64(512) {
		t.Errorf("max_tokens = %v", sent["max_tokens"])
	}
	if _, ok := sent["output_config"]; !ok {
		t.Error("schema should be sent as output_config")
	}
}

func TestAnthropic_Errors(t *testing.T) {
	url := serve(t, "/v1/messages", http.StatusServiceUnavailable,
		map[string]any{"type": "error", "error": map[string]any{"type": "overloaded_error", "message": "busy"}}, nil)
	_, err := newAnthropic("k", "m", url, option.WithMaxRetries(0)).Generate(context.Background(), Request{Prompt: "x", MaxTokens: 10})
	if kind, _ := KindOf(err); kind != KindUnavailable {
		t.Fatalf("err = %v, want unavailable", err)
	}

	url = serve(t, "/v1/messages", http.StatusOK, anthropicReply("Não sei", "end_turn"), nil)
	_, err = newAnthropic("k", "m", url, option.WithMaxRetries(0)).Generate(context.Background(), Request{Prompt: "x", MaxTokens: 10, Schema: answerSchema})
	if kind, _ := KindOf(err); kind != KindInvalidOutput {
		t.Fatalf("err = %v, want invalid output", err)
	}
}

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 10,
				"maxItems": 10,
				"items": map[string]any{
					"type":        "object",
					"description": "one question",
					"properties": map[string]any{
						"level": map[string]any{"type": "string", "enum": []any{"basic", "advanced"}},
					},
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	})
	if s.Type != genai.TypeObject || len(s.Required) != 1 {
		t.Fatalf("root = %+v", s)
	}
	qs := s.Properties["questions"]
	if qs == nil || qs.Type != genai.TypeArray {
		t.Fatalf("questions = %+v", qs)
	}
	if qs.MinItems == nil || *qs.MinItems != 10 || qs.MaxItems == nil || *qs.MaxItems != 10 {
		t.Errorf("item bounds = %v %v", qs.MinItems, qs.MaxItems)
	}
	if qs.Items.Description != "one question" {
		t.Errorf("items description = %q", qs.Items.Description)
	}
	if lvl := qs.Items.Properties["level"]; len(lvl.Enum) != 2 {
		t.Errorf("enum = %v", lvl.Enum)
	}
}
