package tools

import (
	"context"
	"testing"
)

type fakeTool struct {
	name   string
	desc   string
	schema map[string]any
	run    func(ctx context.Context, input map[string]any) (string, error)
}

func (f *fakeTool) Name() string                { return f.name }
func (f *fakeTool) Description() string         { return f.desc }
func (f *fakeTool) InputSchema() map[string]any { return f.schema }
func (f *fakeTool) Execute(ctx context.Context, input map[string]any) (string, error) {
	if f.run == nil {
		return f.name + " ran", nil
	}
	return f.run(ctx, input)
}

func TestRegistryOrder(t *testing.T) {
	r := NewRegistry(&fakeTool{name: "b"}, &fakeTool{name: "a"}, &fakeTool{name: "c"})

	names := r.Names()
	expected := []string{"b", "a", "c"}
	if len(names) != len(expected) {
		t.Fatalf("expected %d names, got %v", len(expected), names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("position %d: expected %s, got %s", i, expected[i], names[i])
		}
	}
	if r.Len() != 3 {
		t.Errorf("expected 3 tools, got %d", r.Len())
	}
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	r := NewRegistry(
		&fakeTool{name: "search", desc: "old"},
		&fakeTool{name: "bash"},
	)
	r.Register(&fakeTool{name: "search", desc: "new"})

	if r.Len() != 2 {
		t.Fatalf("duplicate should not add an entry, got %d", r.Len())
	}
	tool, ok := r.Get("search")
	if !ok || tool.Description() != "new" {
		t.Errorf("expected latest registration, got %+v", tool)
	}
	if r.Names()[0] != "search" {
		t.Errorf("replacement should keep its slot, got %v", r.Names())
	}
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry(&fakeTool{name: "bash"})
	if _, ok := r.Get("bash"); !ok {
		t.Error("expected bash to be registered")
	}
	if _, ok := r.Get("Bash"); ok {
		t.Error("lookup should be exact")
	}
}

func TestRegistryGetDefinitions(t *testing.T) {
	if defs := NewRegistry().GetDefinitions(); defs != nil {
		t.Errorf("empty registry should yield nil definitions, got %v", defs)
	}

	schema := map[string]any{"type": "object", "properties": map[string]any{}}
	r := NewRegistry(&fakeTool{name: "think", desc: "thinks", schema: schema}, &fakeTool{name: "bash", desc: "runs"})
	defs := r.GetDefinitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Name != "think" || defs[0].Description != "thinks" || defs[0].Parameters == nil {
		t.Errorf("unexpected first definition %+v", defs[0])
	}
	if defs[1].Name != "bash" {
		t.Errorf("definitions should follow registration order, got %s", defs[1].Name)
	}
}
