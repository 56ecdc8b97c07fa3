package ports

import "context"

// LLMClient is a chat-completion provider used by the AI answer relay
type LLMClient interface {
	ChatCompletion(ctx context.Context, model string, prompt string, maxTokens int) (string, error)
}
