package llm

import "context"

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Completer is the single LLM capability the matcher, the title extractor
// and the CV pipeline depend on.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
