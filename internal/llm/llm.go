package llm

import (
	"context"
	"fmt"
)

// Client abstracts text-completion providers.
type Client interface {
	Complete(ctx context.Context, req Request) (Completion, error)
}

// Request is a single-prompt completion call.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Completion is the raw provider output plus usage accounting.
type Completion struct {
	Text         string
	Model        string
	InputTokens  int
	OutputTokens int
}

// TotalTokens returns input plus output tokens.
func (c Completion) TotalTokens() int {
	return c.InputTokens + c.OutputTokens
}

// ErrorKind classifies generation failures.
type ErrorKind string

const (
	KindMissingCredential ErrorKind = "missing_credential"
	KindAuthentication    ErrorKind = "authentication"
	KindRateLimited       ErrorKind = "rate_limited"
	KindQuotaExceeded     ErrorKind = "quota_exceeded"
	KindOverloaded        ErrorKind = "overloaded"
	KindTimeout           ErrorKind = "timeout"
	KindNetwork           ErrorKind = "network"
	KindUpstream          ErrorKind = "upstream"
)

var kindText = map[ErrorKind]string{
	KindMissingCredential: "API key is not configured",
	KindAuthentication:    "authentication failed, check the API key",
	KindRateLimited:       "rate limit exceeded",
	KindQuotaExceeded:     "quota exceeded",
	KindOverloaded:        "service overloaded",
	KindTimeout:           "request timeout",
	KindNetwork:           "network error",
	KindUpstream:          "upstream error",
}

// GenerationError is returned by Client implementations. Its message always
// starts with the provider name and a fixed phrase for the kind, so callers
// can classify it by text.
type GenerationError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *GenerationError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, kindText[e.Kind])
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Err }
