package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ChatCompleter is the one operation the adapters need from the LLM provider:
// prompt in, free text out. The provider may error or return malformed JSON;
// each adapter decides what that means.
type ChatCompleter interface {
	Complete(ctx context.Context, systemMessage, userMessage string, temperature float64) (string, error)
}

// GroqClient calls Groq's OpenAI-compatible chat completions API.
type GroqClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const chatMaxTokens = 1024

// NewGroqClient creates a chat completions client. baseURL is the API root,
// e.g. "https://api.groq.com/openai/v1".
func NewGroqClient(apiKey, model, baseURL string) *GroqClient {
	return &GroqClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Complete sends one system+user message pair and returns the assistant's
// reply text. No retries: a failed call fails the whole request.
func (c *GroqClient) Complete(ctx context.Context, systemMessage, userMessage string, temperature float64) (string, error) {
	reqBody := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: userMessage},
		},
		Temperature: temperature,
		MaxTokens:   chatMaxTokens,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm api error: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", fmt.Errorf("parse completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("llm api returned no choices: body=%s", string(respBody))
	}

	return completion.Choices[0].Message.Content, nil
}
