package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"letter-backend/internal/llm"
)

const (
	// DefaultModel is the model used when none is configured.
	DefaultModel = "gpt-4o-mini"

	providerName = "openai"
)

var apiURL = "https://api.openai.com/v1/chat/completions"

// Config carries everything the client needs; nothing is read from the environment.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(cfg Config) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		apiKey: strings.TrimSpace(cfg.APIKey),
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_completion_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// Complete sends the prompt as a single user message.
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	if c.apiKey == "" {
		return llm.Completion{}, &llm.GenerationError{Provider: providerName, Kind: llm.KindMissingCredential}
	}

	reqBody := chatRequest{
		Model:     c.model,
		Messages:  []chatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens: req.MaxTokens,
	}
	// gpt-5 models only accept the default temperature.
	if !isGPT5(c.model) {
		temp := req.Temperature
		reqBody.Temperature = &temp
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return llm.Completion{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return llm.Completion{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return llm.Completion{}, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Completion{}, transportError(err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return llm.Completion{}, statusError(resp.StatusCode, nil)
		}
		return llm.Completion{}, &llm.GenerationError{Provider: providerName, Kind: llm.KindUpstream, Err: fmt.Errorf("decode response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK || parsed.Error != nil {
		return llm.Completion{}, statusError(resp.StatusCode, parsed.Error)
	}
	if len(parsed.Choices) == 0 {
		return llm.Completion{}, &llm.GenerationError{Provider: providerName, Kind: llm.KindUpstream, Err: errors.New("response missing choices")}
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return llm.Completion{}, &llm.GenerationError{Provider: providerName, Kind: llm.KindUpstream, Err: errors.New("response empty content")}
	}

	out := llm.Completion{Text: content, Model: parsed.Model}
	if out.Model == "" {
		out.Model = c.model
	}
	if parsed.Usage != nil {
		out.InputTokens = parsed.Usage.PromptTokens
		out.OutputTokens = parsed.Usage.CompletionTokens
	}
	return out, nil
}

func statusError(status int, apiErr *apiError) error {
	var cause error
	if apiErr != nil {
		cause = fmt.Errorf("status %d: %s (%s)", status, apiErr.Message, apiErr.Type)
	} else {
		cause = fmt.Errorf("status %d", status)
	}

	kind := llm.KindUpstream
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = llm.KindAuthentication
	case apiErr != nil && apiErr.Code == "insufficient_quota":
		kind = llm.KindQuotaExceeded
	case status == http.StatusTooManyRequests:
		kind = llm.KindRateLimited
	case status == http.StatusServiceUnavailable:
		kind = llm.KindOverloaded
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		kind = llm.KindTimeout
	}
	return &llm.GenerationError{Provider: providerName, Kind: kind, Err: cause}
}

func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &llm.GenerationError{Provider: providerName, Kind: llm.KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &llm.GenerationError{Provider: providerName, Kind: llm.KindTimeout, Err: err}
	}
	return &llm.GenerationError{Provider: providerName, Kind: llm.KindNetwork, Err: err}
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Client = (*Client)(nil)
