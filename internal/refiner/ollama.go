package refiner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultOllamaModel = "llama3.2"

// OllamaRefiner edits text with a model served by a local Ollama instance.
type OllamaRefiner struct {
	model   string
	baseURL string
	client  *http.Client
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Error   string        `json:"error,omitempty"`
}

// StatusError is a non-200 answer from an HTTP backend.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("refiner returned status %d", e.Code)
	}
	return fmt.Sprintf("refiner returned status %d: %s", e.Code, e.Body)
}

func NewOllamaRefiner(model, baseURL string) *OllamaRefiner {
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaRefiner{
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Refine asks the model for a plain-language edit of req.Text through the
// chat endpoint: the editing instructions go in the system turn, the text in
// the user turn.
func (r *OllamaRefiner) Refine(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(ollamaChatRequest{
		Model: r.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: instructions(req.Lang)},
			{Role: "user", Content: message(req)},
		},
		Options: ollamaOptions{Temperature: Temperature},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal refinement request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create refinement request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("refinement request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var chat ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("failed to decode refinement response: %w", err)
	}
	if chat.Error != "" {
		return "", fmt.Errorf("ollama: %s", chat.Error)
	}
	return finish(chat.Message.Content, req), nil
}
