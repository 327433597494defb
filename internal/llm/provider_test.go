package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/qpath/qpath/internal/config"
)

func TestMockProvider_ReplaysInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockText("segunda"),
	)

	resp1, err := mock.Generate(context.Background(), UserPrompt("", "first", 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"a":1}` || resp1.Usage.InputTokens != 10 {
		t.Fatalf("unexpected first reply %+v", resp1)
	}

	resp2, err := mock.Generate(context.Background(), UserPrompt("", "second", 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text() != "segunda" {
		t.Fatalf("unexpected second reply %q", resp2.Text())
	}

	calls := mock.Calls()
	if len(calls) != 2 || calls[1].Messages[0].Content != "second" {
		t.Fatalf("calls not recorded: %+v", calls)
	}
}

func TestMockProvider_EmptyQueue(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_AddResponse(t *testing.T) {
	mock := NewMockProvider()
	mock.AddResponse(MockResponse{Err: &ErrRateLimit{}})
	_, err := mock.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	ctx = WithPurpose(ctx, "guidance")
	if p := PurposeFrom(ctx); p != "guidance" {
		t.Fatalf("expected 'guidance', got %q", p)
	}
}

func TestTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"unavailable", &ErrProviderUnavailable{}, true},
		{"rate limit", &ErrRateLimit{}, true},
		{"invalid", &ErrInvalidResponse{Err: errors.New("x")}, true},
		{"truncated", &ErrMaxTokensExceeded{}, false},
		{"canceled", context.Canceled, false},
		{"wrapped deadline", &ErrProviderUnavailable{Err: context.DeadlineExceeded}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Transient(tt.err); got != tt.want {
				t.Fatalf("Transient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.MentorConfig
		wantErr bool
		model   string
	}{
		{"none", config.MentorConfig{}, true, ""},
		{"unknown", config.MentorConfig{Provider: "bard"}, true, ""},
		{"anthropic without key", config.MentorConfig{Provider: "anthropic"}, true, ""},
		{
			name:  "anthropic default model",
			cfg:   config.MentorConfig{Provider: "anthropic", Anthropic: config.ProviderConfig{APIKey: "k"}},
			model: "claude-haiku-4-5-20251001",
		},
		{
			name:  "openai explicit model",
			cfg:   config.MentorConfig{Provider: "openai", OpenAI: config.ProviderConfig{APIKey: "k", Model: "gpt-4o"}},
			model: "gpt-4o",
		},
		{
			name:  "openrouter default slug",
			cfg:   config.MentorConfig{Provider: "openrouter", OpenRouter: config.ProviderConfig{APIKey: "k"}},
			model: DefaultOpenRouterModel,
		},
		{"mock", config.MentorConfig{Provider: "mock"}, false, "mock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(context.Background(), tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && p.ModelID() != tt.model {
				t.Fatalf("ModelID() = %q, want %q", p.ModelID(), tt.model)
			}
		})
	}
}

func TestLoggingProvider(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`"ok"`), Usage: Usage{InputTokens: 12, OutputTokens: 3}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithLogging(mock, logger)
	ctx := WithPurpose(context.Background(), "quick-tips")

	if _, err := p.Generate(ctx, Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}

	out := buf.String()
	for _, want := range []string{"purpose=quick-tips", "input_tokens=12", "model call failed", "component=llm"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLookupCost(t *testing.T) {
	c := LookupCost("gpt-4o-mini")
	if c == nil {
		t.Fatal("expected a price for gpt-4o-mini")
	}
	if got := c.Cost(1_000_000, 1_000_000); got != 0.75 {
		t.Fatalf("Cost = %v, want 0.75", got)
	}
	if LookupCost("unknown-model") != nil {
		t.Fatal("expected nil for unknown model")
	}
}
