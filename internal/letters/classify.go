package letters

import (
	"net/http"
	"strings"
)

// Category is the coarse failure class surfaced to clients.
type Category string

const (
	CategoryInput               Category = "input_error"
	CategoryConfiguration       Category = "configuration_error"
	CategoryUpstreamUnavailable Category = "upstream_unavailable"
	CategoryUpstreamProtocol    Category = "upstream_protocol_error"
	CategoryInternal            Category = "internal_error"
)

const (
	messageConfiguration = "There is a configuration issue with our service. Please contact support."
	messageCapacity      = "Our service is currently at capacity. Please try again in a few moments."
	messageTimeout       = "The request took too long to process. Please try again with shorter inputs."
	messageProtocol      = "We received an unexpected response from our AI service. Please try again."
	messageInternal      = "We encountered an issue while generating your motivation letter. Please try again."
)

// Status returns the HTTP status used for the category.
func (c Category) Status() int {
	switch c {
	case CategoryInput:
		return http.StatusBadRequest
	case CategoryUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case CategoryUpstreamProtocol:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Failure is the client-facing view of an error.
type Failure struct {
	Category Category
	Message  string
}

// Status is a shorthand for f.Category.Status().
func (f Failure) Status() int { return f.Category.Status() }

type rule struct {
	patterns []string
	category Category
	// message replaces the error text; empty passes the error text through.
	message string
}

// rules is evaluated top to bottom and the first rule with any matching
// (case-sensitive) pattern wins. Order matters: "storage:" errors can mention
// files, and upstream errors can mention timeouts.
var rules = []rule{
	{patterns: []string{"storage:"}, category: CategoryInternal, message: messageInternal},
	{patterns: []string{"API key", "authentication"}, category: CategoryConfiguration, message: messageConfiguration},
	{patterns: []string{"rate limit", "quota", "overloaded", "network error"}, category: CategoryUpstreamUnavailable, message: messageCapacity},
	{patterns: []string{"timeout"}, category: CategoryUpstreamUnavailable, message: messageTimeout},
	{patterns: []string{"AI response"}, category: CategoryUpstreamProtocol, message: messageProtocol},
	{patterns: []string{"upstream error"}, category: CategoryInternal, message: messageInternal},
	{
		patterns: []string{"Please upload", "file", "resume", "Word document", "PDF", "required fields", "job description"},
		category: CategoryInput,
	},
}

// Classify maps an error to a category and a user-safe message. Unmatched
// errors become internal errors with a generic message.
func Classify(err error) Failure {
	if err == nil {
		return Failure{Category: CategoryInternal, Message: messageInternal}
	}
	text := err.Error()
	for _, r := range rules {
		for _, p := range r.patterns {
			if !strings.Contains(text, p) {
				continue
			}
			msg := r.message
			if msg == "" {
				msg = text
			}
			return Failure{Category: r.category, Message: msg}
		}
	}
	return Failure{Category: CategoryInternal, Message: messageInternal}
}
