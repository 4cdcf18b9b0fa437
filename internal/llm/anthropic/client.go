package anthropic

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"letter-backend/internal/llm"
)

const (
	// DefaultModel is the model used when none is configured.
	DefaultModel = "claude-3-haiku-20240307"

	providerName = "anthropic"
)

// Config carries everything the client needs; nothing is read from the environment.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client implements llm.Client on the Anthropic Messages API.
type Client struct {
	api   anthropic.Client
	model string
	ready bool
}

// NewClient constructs a client. A missing API key is not a construction
// error; Complete reports it so the failure reaches the user as a configuration problem.
func NewClient(cfg Config) *Client {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		api:   anthropic.NewClient(opts...),
		model: model,
		ready: strings.TrimSpace(cfg.APIKey) != "",
	}
}

// Complete sends the prompt as a single user message.
func (c *Client) Complete(ctx context.Context, req llm.Request) (llm.Completion, error) {
	if !c.ready {
		return llm.Completion{}, &llm.GenerationError{Provider: providerName, Kind: llm.KindMissingCredential}
	}

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
	})
	if err != nil {
		return llm.Completion{}, classify(err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return llm.Completion{}, &llm.GenerationError{Provider: providerName, Kind: llm.KindUpstream, Err: errors.New("response has no text content")}
	}

	return llm.Completion{
		Text:         text.String(),
		Model:        string(msg.Model),
		InputTokens:  int(msg.Usage.InputTokens),
		OutputTokens: int(msg.Usage.OutputTokens),
	}, nil
}

func classify(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &llm.GenerationError{Provider: providerName, Kind: llm.KindAuthentication, Err: err}
		case http.StatusTooManyRequests:
			return &llm.GenerationError{Provider: providerName, Kind: llm.KindRateLimited, Err: err}
		case 529, http.StatusServiceUnavailable:
			return &llm.GenerationError{Provider: providerName, Kind: llm.KindOverloaded, Err: err}
		case http.StatusGatewayTimeout, http.StatusRequestTimeout:
			return &llm.GenerationError{Provider: providerName, Kind: llm.KindTimeout, Err: err}
		}
		return &llm.GenerationError{Provider: providerName, Kind: llm.KindUpstream, Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &llm.GenerationError{Provider: providerName, Kind: llm.KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &llm.GenerationError{Provider: providerName, Kind: llm.KindTimeout, Err: err}
		}
		return &llm.GenerationError{Provider: providerName, Kind: llm.KindNetwork, Err: err}
	}
	return &llm.GenerationError{Provider: providerName, Kind: llm.KindNetwork, Err: err}
}

var _ llm.Client = (*Client)(nil)
