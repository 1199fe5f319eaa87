// Package provider contains clients for external services: the
// taste-graph API and the text generation backends.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Provider errors.
var (
	// ErrUnsupportedOperation indicates the provider does not support the
	// requested operation.
	ErrUnsupportedOperation = errors.New("provider does not support this operation")

	// ErrRateLimited indicates the provider rate limited the request.
	ErrRateLimited = errors.New("provider rate limited the request")

	// ErrProviderError indicates a general provider error.
	ErrProviderError = errors.New("provider error")
)

// Message represents a chat message with a role and content.
type Message struct {
	role    string
	content string
}

// NewMessage creates a message with the given role and content.
func NewMessage(role, content string) Message {
	return Message{role: role, content: content}
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message {
	return Message{role: "system", content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) Message {
	return Message{role: "user", content: content}
}

// Role returns the message role.
func (m Message) Role() string { return m.role }

// Content returns the message content.
func (m Message) Content() string { return m.content }

// ChatCompletionRequest represents a request for text generation.
type ChatCompletionRequest struct {
	messages    []Message
	maxTokens   int
	temperature float64
}

// NewChatCompletionRequest creates a request from a set of messages.
func NewChatCompletionRequest(messages []Message) ChatCompletionRequest {
	msgs := make([]Message, len(messages))
	copy(msgs, messages)
	return ChatCompletionRequest{messages: msgs}
}

// WithMaxTokens returns a copy of the request with a token limit.
func (r ChatCompletionRequest) WithMaxTokens(n int) ChatCompletionRequest {
	r.maxTokens = n
	return r
}

// WithTemperature returns a copy of the request with a sampling
// temperature.
func (r ChatCompletionRequest) WithTemperature(t float64) ChatCompletionRequest {
	r.temperature = t
	return r
}

// Messages returns a copy of the request messages.
func (r ChatCompletionRequest) Messages() []Message {
	msgs := make([]Message, len(r.messages))
	copy(msgs, r.messages)
	return msgs
}

// MaxTokens returns the token limit (0 means provider default).
func (r ChatCompletionRequest) MaxTokens() int { return r.maxTokens }

// Temperature returns the sampling temperature (0 means provider default).
func (r ChatCompletionRequest) Temperature() float64 { return r.temperature }

// ChatCompletionResponse represents a text generation result.
type ChatCompletionResponse struct {
	content      string
	finishReason string
	usage        Usage
}

// NewChatCompletionResponse creates a response.
func NewChatCompletionResponse(content, finishReason string, usage Usage) ChatCompletionResponse {
	return ChatCompletionResponse{content: content, finishReason: finishReason, usage: usage}
}

// Content returns the generated text.
func (r ChatCompletionResponse) Content() string { return r.content }

// FinishReason returns why generation stopped.
func (r ChatCompletionResponse) FinishReason() string { return r.finishReason }

// Usage returns token accounting for the call.
func (r ChatCompletionResponse) Usage() Usage { return r.usage }

// Usage tracks token consumption for a provider call.
type Usage struct {
	promptTokens     int
	completionTokens int
	totalTokens      int
}

// NewUsage creates a usage record.
func NewUsage(prompt, completion, total int) Usage {
	return Usage{promptTokens: prompt, completionTokens: completion, totalTokens: total}
}

// PromptTokens returns tokens consumed by the prompt.
func (u Usage) PromptTokens() int { return u.promptTokens }

// CompletionTokens returns tokens in the completion.
func (u Usage) CompletionTokens() int { return u.completionTokens }

// TotalTokens returns total tokens for the call.
func (u Usage) TotalTokens() int { return u.totalTokens }

// TextGenerator generates text from chat-style prompts.
type TextGenerator interface {
	// ChatCompletion generates a completion for the given request.
	ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error)

	// SupportsTextGeneration reports whether the provider can generate text.
	SupportsTextGeneration() bool

	// Close releases provider resources.
	Close() error
}

// ProviderError wraps errors from provider operations with context.
type ProviderError struct {
	operation  string
	statusCode int
	message    string
	cause      error
}

// NewProviderError creates a provider error.
func NewProviderError(operation string, statusCode int, message string, cause error) *ProviderError {
	return &ProviderError{
		operation:  operation,
		statusCode: statusCode,
		message:    message,
		cause:      cause,
	}
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.statusCode > 0 {
		return fmt.Sprintf("provider %s failed with status %d: %s", e.operation, e.statusCode, e.message)
	}
	return fmt.Sprintf("provider %s failed: %s", e.operation, e.message)
}

// Unwrap returns the underlying cause.
func (e *ProviderError) Unwrap() error { return e.cause }

// Operation returns the operation that failed.
func (e *ProviderError) Operation() string { return e.operation }

// StatusCode returns the HTTP status code, 0 when not applicable.
func (e *ProviderError) StatusCode() int { return e.statusCode }

// Message returns the provider's error message.
func (e *ProviderError) Message() string { return e.message }

// IsRateLimited reports whether the error was a rate limit response.
func (e *ProviderError) IsRateLimited() bool {
	return e.statusCode == 429
}

// isRetryableStatus reports whether an error carries an HTTP status
// worth retrying: rate limits and transient server failures.
func isRetryableStatus(err error) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.StatusCode() {
	case 429, 500, 502, 503, 504:
		return true
	}
	return false
}
