package contract

import "context"

// ChatModel is the reasoning capability: message history + tool schemas in,
// one assistant turn out. The turn either carries plain content or requests
// tool calls.
type ChatModel interface {
	Complete(ctx context.Context, messages []Message, tools []ToolSchema) (Message, error)
}

// FaqResolver supplies ranked snippets for the FAQ tool.
type FaqResolver interface {
	Resolve(ctx context.Context, question string, k int) ([]string, error)
}

// IdentityResolver maps a caller identifier to an identity record.
type IdentityResolver interface {
	Resolve(ctx context.Context, email string) (Identity, error)
}
