package llm

import (
	"context"
	"testing"

	"github.com/qpath/qpath/internal/config"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.5-flash", "gemini-2.5-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, geminiModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic":      map[string]any{"type": "string", "description": "Tema"},
			"priority":   map[string]any{"type": "integer"},
			"difficulty": map[string]any{"type": "string", "enum": []any{"beginner", "intermediate", "advanced"}},
			"steps": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"topic", "steps"},
	}

	s := geminiSchema(def)

	if s.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", s.Type)
	}
	if len(s.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(s.Properties))
	}
	if s.Properties["topic"].Description != "Tema" {
		t.Fatalf("description lost: %q", s.Properties["topic"].Description)
	}
	if s.Properties["priority"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for priority, got %s", s.Properties["priority"].Type)
	}
	if len(s.Properties["difficulty"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(s.Properties["difficulty"].Enum))
	}
	if s.Properties["steps"].Items.Type != "STRING" {
		t.Fatalf("expected STRING items, got %s", s.Properties["steps"].Items.Type)
	}
	if len(s.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(s.Required))
	}
}

func TestGeminiContentsRoles(t *testing.T) {
	contents := geminiContents([]Message{
		{Role: RoleUser, Content: "oi"},
		{Role: RoleAssistant, Content: "olá"},
	})
	if contents[0].Role != "user" || contents[1].Role != "model" {
		t.Fatalf("unexpected roles %q %q", contents[0].Role, contents[1].Role)
	}
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider(context.Background(), config.ProviderConfig{Model: "gemini-flash"}); err == nil {
		t.Fatal("expected error for empty API key")
	}
}
