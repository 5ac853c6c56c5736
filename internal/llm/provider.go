package llm

import (
	"context"
	"encoding/json"
)

// Provider is a chat-completion backend. Implementations translate Request
// into the vendor API and normalize what comes back.
type Provider interface {
	// Generate runs one completion. With req.Schema set the reply is
	// JSON that has passed Schema.Check; without it the reply is the
	// model's text, unquoted.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the vendor model id requests are sent to.
	ModelID() string
}

// Request is one completion call.
type Request struct {
	// System is the tutor persona and house rules.
	System string

	// Messages holds either a single user prompt (lessons, hints, grading)
	// or the replayed chat transcript.
	Messages []Message

	// Schema, when set, asks the provider for structured output.
	Schema *Schema

	MaxTokens int

	// Temperature in [0,1]. Zero leaves the vendor default in place for
	// providers that treat an explicit zero differently.
	Temperature float64
}

// Message is one transcript turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role is who authored a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a role a transcript may contain.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Schema names and describes a JSON Schema for structured replies. Name is
// kebab-case and doubles as the tool or response-format name on vendors
// that need one.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a normalized completion.
type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is what the vendor reports having served, which may be a
	// dated id rather than the alias that was requested.
	Model string

	// StopReason is "end" or "max_tokens".
	StopReason string
}

// Usage is token accounting for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
