package refiner

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
)

func TestAnthropicRefiner_Refine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("expected api key header, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("invalid request body: %v", err)
		}
		if req["model"] != "claude-test" {
			t.Errorf("expected model claude-test, got %v", req["model"])
		}
		if system, _ := json.Marshal(req["system"]); !strings.Contains(string(system), "plain-language editor") {
			t.Errorf("expected editing instructions in the system prompt, got %s", system)
		}
		if req["temperature"] != Temperature {
			t.Errorf("expected temperature %v, got %v", Temperature, req["temperature"])
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "\"El equipo revisó el informe.\""}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 8}
		}`))
	}))
	defer server.Close()

	r := NewAnthropicRefiner("test-key", "claude-test", option.WithBaseURL(server.URL), option.WithMaxRetries(0))

	got, err := r.Refine(context.Background(), Request{Lang: "es", Text: "El informe fue revisado por el equipo."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "El equipo revisó el informe." {
		t.Errorf("unexpected result %q", got)
	}
}

func TestAnthropicRefiner_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`))
	}))
	defer server.Close()

	r := NewAnthropicRefiner("test-key", "", option.WithBaseURL(server.URL), option.WithMaxRetries(0))
	if r.model != DefaultAnthropicModel {
		t.Errorf("expected default model, got %q", r.model)
	}
	if _, err := r.Refine(context.Background(), Request{Text: "Texto"}); err == nil {
		t.Error("expected error for status 400")
	}
}
