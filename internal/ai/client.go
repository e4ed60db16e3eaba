// Package ai calls an OpenAI-compatible chat completion endpoint for the
// assist tasks the chat service uses. Every task has a deterministic fallback
// so the chat flow keeps working when the endpoint is disabled or down.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sisustusbot/internal/common/config"
	"sisustusbot/internal/common/errors"
	"sisustusbot/internal/common/metrics"
)

// Client produces a completion for a system/user prompt pair.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Enabled() bool
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// OpenAIClient talks to an OpenAI-compatible /v1/chat/completions endpoint.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	httpClient *http.Client
	enabled    bool
}

// NewOpenAIClient builds a client from config. A missing API key yields a
// disabled client whose Complete always errors.
func NewOpenAIClient(cfg config.AssistConfig) *OpenAIClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &OpenAIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: config.GetDuration(cfg.Timeout)},
		enabled:    cfg.Enabled && cfg.APIKey != "",
	}
}

func (c *OpenAIClient) Enabled() bool {
	return c.enabled
}

func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.enabled {
		return "", errors.NewAssistFailedError("complete", fmt.Errorf("assist client disabled"))
	}

	body, _ := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Apply exponential backoff
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", errors.NewAssistTimeoutError("complete")
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/chat/completions", bytes.NewBuffer(body))
		if err != nil {
			return "", errors.NewAssistFailedError("complete", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, lastErr = c.httpClient.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return "", errors.NewAssistTimeoutError("complete")
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.NewAssistTimeoutError("complete")
		}
		return "", errors.NewAssistFailedError("complete", lastErr)
	}
	if resp == nil {
		return "", errors.NewAssistFailedError("complete", fmt.Errorf("no successful response after retries"))
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", errors.NewAssistFailedError("complete", fmt.Errorf("decode error: %v", err))
	}
	if len(parsed.Choices) == 0 {
		return "", errors.NewAssistFailedError("complete", fmt.Errorf("empty choices"))
	}

	metrics.AssistRequestsTotal.WithLabelValues("complete", "ok").Inc()
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
