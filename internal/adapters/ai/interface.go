package ai

import "context"

// CompletionRequest is one system+user exchange sent to the model
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
}

// Completion is the outcome of a successful model call.
// Envelope holds the raw response body exactly as received; TotalTokens is
// nil when the provider did not report usage.
type Completion struct {
	Content     string
	TotalTokens *int64
	Envelope    []byte
}

// Provider represents a chat-completions backend
type Provider interface {
	// Complete performs one synchronous structured-output call
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)

	// IsEnabled returns whether a credential is configured
	IsEnabled() bool
}
