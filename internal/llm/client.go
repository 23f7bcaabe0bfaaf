// Package llm abstracts the chat-completion backend used by the pipeline
// stages. Stages depend on the Client interface only, so tests can script
// responses without network access.
package llm

import "context"

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn sent to the model.
type Message struct {
	Role    string
	Content string
}

// Client produces one completion for a conversation.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
