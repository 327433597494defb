// Package llm talks to the hosted language models behind the local
// Q-Mentor advisor. Every vendor is reached through Provider, and the
// retry and logging decorators wrap any Provider.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one completion.
type Provider interface {
	// Generate sends req and returns the model's reply. With a Schema the
	// reply is JSON validated against it; without one Content holds the
	// raw text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the vendor model identifier in use.
	ModelID() string
}

// Request is a single completion request.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks for JSON matching it.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // 0 leaves the vendor default
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the message author.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema definition.
type Schema struct {
	Name        string // kebab-case
	Description string
	Definition  map[string]any
}

// Response is a completion.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string // "end" or "max_tokens"
}

// Text returns Content as a string.
func (r *Response) Text() string {
	return string(r.Content)
}

// Usage is the token count of one completion.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// UserPrompt builds a single-turn request.
func UserPrompt(system, prompt string, maxTokens int) Request {
	return Request{
		System:    system,
		Messages:  []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens: maxTokens,
	}
}

// resolveModel maps a short model alias to a vendor model ID. Unknown
// names pass through.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
