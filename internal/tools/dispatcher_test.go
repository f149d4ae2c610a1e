package tools

import (
	"context"
	"errors"
	"testing"
)

func newTestDispatcher() *Dispatcher {
	echo := &fakeTool{
		name: "echo",
		schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text":  map[string]any{"type": "string"},
				"times": map[string]any{"type": "integer"},
			},
			"required": []string{"text"},
		},
		run: func(_ context.Context, input map[string]any) (string, error) {
			return input["text"].(string), nil
		},
	}
	failing := &fakeTool{
		name: "fail",
		run: func(context.Context, map[string]any) (string, error) {
			return "", errors.New("disk full")
		},
	}
	panicking := &fakeTool{
		name: "explode",
		run: func(context.Context, map[string]any) (string, error) {
			panic("boom")
		},
	}
	noArgs := &fakeTool{name: "noargs"}
	return NewDispatcher(NewRegistry(echo, failing, panicking, noArgs))
}

func TestDispatcherExecute(t *testing.T) {
	d := newTestDispatcher()

	tests := []struct {
		name      string
		tool      string
		arguments string
		expected  string
		isError   bool
	}{
		{"success", "echo", `{"text":"hello"}`, "hello", false},
		{"unknown tool", "search_web", `{}`, "Tool search_web is not available.", true},
		{"malformed json", "echo", `{"text":`, "Invalid arguments for tool echo.", true},
		{"not an object", "echo", `["text"]`, "Invalid arguments for tool echo.", true},
		{"missing required", "echo", `{}`, "Invalid arguments for tool echo: missing required field: text", true},
		{"wrong type", "echo", `{"text":"x","times":"two"}`, "Invalid arguments for tool echo: field times: expected integer but got string", true},
		{"tool error", "fail", `{}`, "Error: disk full", true},
		{"panic", "explode", `{}`, "Error: panic: boom", true},
		{"empty arguments", "noargs", ``, "noargs ran", false},
		{"null arguments", "noargs", `null`, "noargs ran", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, isError := d.ExecuteDetailed(context.Background(), tt.tool, tt.arguments)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
			if isError != tt.isError {
				t.Errorf("expected isError=%v, got %v", tt.isError, isError)
			}
			if plain := d.Execute(context.Background(), tt.tool, tt.arguments); plain != result {
				t.Errorf("Execute and ExecuteDetailed disagree: %q vs %q", plain, result)
			}
		})
	}
}

func TestDispatcherPassesContext(t *testing.T) {
	type key struct{}
	var seen any
	r := NewRegistry(&fakeTool{
		name: "ctx",
		run: func(ctx context.Context, _ map[string]any) (string, error) {
			seen = ctx.Value(key{})
			return "ok", nil
		},
	})
	d := NewDispatcher(r)
	ctx := context.WithValue(context.Background(), key{}, "marker")

	d.Execute(ctx, "ctx", "{}")
	if seen != "marker" {
		t.Errorf("tool did not receive caller context, got %v", seen)
	}
	if d.Registry() != r {
		t.Error("Registry() should return the wrapped registry")
	}
}

func TestDecodeArguments(t *testing.T) {
	input, err := DecodeArguments(`{"path":"/tmp/x","view_range":[1,2]}`)
	if err != nil {
		t.Fatal(err)
	}
	if input["path"] != "/tmp/x" {
		t.Errorf("unexpected path %v", input["path"])
	}
	if _, err := DecodeArguments(`"just a string"`); err == nil {
		t.Error("expected error for non-object payload")
	}
}
