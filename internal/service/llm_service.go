package service

import "context"

// CompletionRequest is a single system + user exchange with a chat model.
type CompletionRequest struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
	// JSON asks the provider to constrain the reply to a JSON object.
	JSON bool
}

type LLMServiceInterface interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
