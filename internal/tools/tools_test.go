package tools

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBashTool(t *testing.T) {
	tool := &BashTool{}

	if tool.Name() != "bash" {
		t.Errorf("expected name 'bash', got %s", tool.Name())
	}

	tests := []struct {
		name     string
		command  string
		expected string
		contains bool
	}{
		{"echo", "echo hello", "hello", false},
		{"trimmed", "printf '  spaced  \\n\\n'", "spaced", false},
		{"empty command", "   ", "No command provided.", false},
		{"no output", "true", "Command executed successfully with no output.", false},
		{"failure", "echo boom >&2; exit 3", "Error executing command: boom", false},
		{"failure without stderr", "exit 1", "Error executing command: ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tool.Execute(context.Background(), map[string]any{"command": tt.command})
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if tt.contains {
				if !strings.HasPrefix(result, tt.expected) {
					t.Errorf("expected prefix %q, got %q", tt.expected, result)
				}
				return
			}
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestBashToolWorkDirAndLimit(t *testing.T) {
	dir := t.TempDir()
	tool := &BashTool{WorkDir: dir, OutputLimit: 5}

	result, err := tool.Execute(context.Background(), map[string]any{"command": "echo 0123456789"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.HasPrefix(result, "01234") || !strings.Contains(result, "truncated") {
		t.Errorf("expected truncated output, got %q", result)
	}

	tool.OutputLimit = 0
	result, _ = tool.Execute(context.Background(), map[string]any{"command": "pwd"})
	resolved, _ := filepath.EvalSymlinks(dir)
	if result != dir && result != resolved {
		t.Errorf("expected command to run in %s, got %q", dir, result)
	}
}

func TestBashToolCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&BashTool{}).Execute(ctx, map[string]any{"command": "sleep 5"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestEditorView(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	lines := "one\ntwo\nthree\nfour\nfive\nsix\nseven\neight\nnine\nten\n"
	if err := os.WriteFile(path, []byte(lines), 0644); err != nil {
		t.Fatal(err)
	}
	tool := &EditorTool{}

	tests := []struct {
		name     string
		input    map[string]any
		expected string
	}{
		{"whole file", map[string]any{}, strings.TrimSuffix(lines, "\n")},
		{"range", map[string]any{"view_range": []any{2.0, 3.0}}, "two\nthree"},
		{"range to end", map[string]any{"view_range": []any{9.0, -1.0}}, "nine\nten"},
		{"range past end", map[string]any{"view_range": []any{10.0, 40.0}}, "ten"},
		{"numbered", map[string]any{"view_range": []any{9.0, 10.0}, "line_number": true}, " 9 nine\n10 ten"},
		{"start zero", map[string]any{"view_range": []any{0.0, 2.0}}, "text_file_editor: Invalid `view_range`: [0, 2]."},
		{"reversed", map[string]any{"view_range": []any{3.0, 2.0}}, "text_file_editor: Invalid `view_range`: [3, 2]."},
		{"wrong arity", map[string]any{"view_range": []any{1.0}}, "text_file_editor: Invalid `view_range`: [1]."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input["operation"] = "view"
			tt.input["path"] = path
			result, err := tool.Execute(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestEditorViewMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.txt")
	result, _ := (&EditorTool{}).Execute(context.Background(), map[string]any{"operation": "view", "path": path})
	if result != "text_file_editor: File not found: "+path {
		t.Errorf("unexpected result %q", result)
	}
}

func TestEditorCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "hello.go")
	tool := &EditorTool{}

	result, err := tool.Execute(context.Background(), map[string]any{
		"operation": "create",
		"path":      path,
		"content":   "package hello\n",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result != "created: "+path {
		t.Errorf("unexpected result %q", result)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "package hello\n" {
		t.Errorf("unexpected content %q", data)
	}

	result, _ = tool.Execute(context.Background(), map[string]any{
		"operation": "create",
		"path":      path,
		"content":   "overwrite",
	})
	if result != "text_file_editor: File already exists: "+path {
		t.Errorf("create should refuse existing files, got %q", result)
	}

	result, _ = tool.Execute(context.Background(), map[string]any{"operation": "create", "path": path + ".x"})
	if !strings.Contains(result, "`content` is need") {
		t.Errorf("expected missing content message, got %q", result)
	}
}

func TestEditorEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.go")
	original := "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n"
	if err := os.WriteFile(path, []byte(original), 0644); err != nil {
		t.Fatal(err)
	}

	diff := "<<<<<<< SEARCH\n\tprintln(\"hi\")\n=======\n\tprintln(\"bye\")\n>>>>>>> REPLACE"
	result, err := (&EditorTool{}).Execute(context.Background(), map[string]any{
		"operation": "edit",
		"path":      path,
		"diff":      diff,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.HasPrefix(result, "edited the file.") {
		t.Errorf("unexpected result %q", result)
	}
	if !strings.Contains(result, "1 insertion(s), 1 deletion(s)") {
		t.Errorf("expected diff summary, got %q", result)
	}

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "println(\"bye\")") {
		t.Errorf("edit not applied: %q", data)
	}

	result, _ = (&EditorTool{}).Execute(context.Background(), map[string]any{
		"operation": "edit",
		"path":      path,
		"diff":      "no blocks here",
	})
	if result != "edited the file." {
		t.Errorf("diff without blocks should leave file unchanged, got %q", result)
	}
}

func TestEditorUnsupportedOperation(t *testing.T) {
	result, err := (&EditorTool{}).Execute(context.Background(), map[string]any{"operation": "delete", "path": "x"})
	if err != nil {
		t.Fatal(err)
	}
	if result != "text_file_editor: delete is unsupported." {
		t.Errorf("unexpected result %q", result)
	}
}

func TestPlanningTool(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".rmk", "plan.md")
	tool := &PlanningTool{DefaultPath: path}
	ctx := context.Background()

	result, _ := tool.Execute(ctx, map[string]any{"operation": "view"})
	if result != "planning: File not found: "+path {
		t.Errorf("expected not found before create, got %q", result)
	}

	result, _ = tool.Execute(ctx, map[string]any{"operation": "create", "content": "# Plan\n- ship it"})
	if result != "created plan." {
		t.Fatalf("unexpected create result %q", result)
	}

	result, _ = tool.Execute(ctx, map[string]any{
		"operation":    "update",
		"diff_content": "<<<<<<< SEARCH\n- ship it\n=======\n- test it\n- ship it\n>>>>>>> REPLACE",
	})
	if result != "updated plan." {
		t.Fatalf("unexpected update result %q", result)
	}

	result, _ = tool.Execute(ctx, map[string]any{
		"operation": "decompose",
		"subtasks":  []any{"write tests", "fix bugs"},
	})
	if result != "subtasks is added to the plan." {
		t.Fatalf("unexpected decompose result %q", result)
	}

	plan, _ := tool.Execute(ctx, map[string]any{"operation": "view"})
	expected := "# Plan\n- test it\n- ship it\n[ ] Task-1\nwrite tests\n[ ] Task-2\nfix bugs"
	if plan != expected {
		t.Errorf("expected plan %q, got %q", expected, plan)
	}
}

func TestPlanningToolMissingParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.md")
	if err := os.WriteFile(path, []byte("# Plan"), 0644); err != nil {
		t.Fatal(err)
	}
	tool := &PlanningTool{}

	tests := []struct {
		input    map[string]any
		expected string
	}{
		{map[string]any{"operation": "view"}, "planning: `path` is required."},
		{map[string]any{"operation": "create", "path": path}, "planning: `content` is need for the `create`."},
		{map[string]any{"operation": "update", "path": path}, "planning: `diff_content` is need for the `update`."},
		{map[string]any{"operation": "decompose", "path": path}, "planning: `subtasks` is need for the `decompose`."},
		{map[string]any{"operation": "archive", "path": path}, "planning: archive is unsupported."},
	}

	for _, tt := range tests {
		result, err := tool.Execute(context.Background(), tt.input)
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if result != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, result)
		}
	}
}

func TestThinkTool(t *testing.T) {
	result, err := (&ThinkTool{}).Execute(context.Background(), map[string]any{"thought": "the bug is in the parser"})
	if err != nil {
		t.Fatal(err)
	}
	if result != "Thinking completed." {
		t.Errorf("unexpected result %q", result)
	}
}

type scriptedInput struct {
	answer  string
	err     error
	prompts []string
}

func (s *scriptedInput) ReadLine(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.answer, s.err
}

func TestAskHumanTool(t *testing.T) {
	in := &scriptedInput{answer: "  use postgres \n"}
	tool := &AskHumanTool{Input: in}

	result, err := tool.Execute(context.Background(), map[string]any{"question": "Which database?"})
	if err != nil {
		t.Fatal(err)
	}
	if result != "use postgres" {
		t.Errorf("unexpected answer %q", result)
	}
	if len(in.prompts) != 1 || in.prompts[0] != "rMonkey: Which database?\nYou: " {
		t.Errorf("unexpected prompts %q", in.prompts)
	}

	in.answer = "   "
	result, _ = tool.Execute(context.Background(), map[string]any{"question": "Anything else?"})
	if result != "No response provided by human." {
		t.Errorf("unexpected empty answer result %q", result)
	}

	in.err = errors.New("eof")
	if _, err := tool.Execute(context.Background(), map[string]any{"question": "?"}); err == nil {
		t.Error("expected read error to surface")
	}
	if _, err := (&AskHumanTool{}).Execute(context.Background(), map[string]any{"question": "?"}); err == nil {
		t.Error("expected error without input")
	}
}

func TestCodeInterpreterTool(t *testing.T) {
	tool := &CodeInterpreterTool{}

	tests := []struct {
		name     string
		code     string
		expected string
		prefix   bool
	}{
		{"expression", "1 + 2", "3", false},
		{"printed", "import \"fmt\"\nfmt.Println(\"hi\")", "hi", true},
		{"program", "package main\n\nimport \"fmt\"\n\nfunc main() { fmt.Print(\"from main\") }", "from main", true},
		{"empty", "  ", "No code provided.", false},
		{"compile error", "undefinedThing()", "Error executing code: ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tool.Execute(context.Background(), map[string]any{"code": tt.code})
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if tt.prefix {
				if !strings.HasPrefix(result, tt.expected) {
					t.Errorf("expected prefix %q, got %q", tt.expected, result)
				}
				return
			}
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestToolInputSchemas(t *testing.T) {
	r := NewRegistry(
		&PlanningTool{}, &EditorTool{}, &BashTool{}, &CodeInterpreterTool{}, &ThinkTool{}, &AskHumanTool{},
	)

	for _, tool := range r.List() {
		schema := tool.InputSchema()

		if schemaType, ok := schema["type"].(string); !ok || schemaType != "object" {
			t.Errorf("tool %s schema should have type 'object'", tool.Name())
		}
		props, ok := schema["properties"].(map[string]any)
		if !ok {
			t.Errorf("tool %s schema should have properties", tool.Name())
			continue
		}
		for _, req := range requiredFields(schema["required"]) {
			if _, ok := props[req]; !ok {
				t.Errorf("tool %s requires undeclared property %s", tool.Name(), req)
			}
		}
		if tool.Description() == "" {
			t.Errorf("tool %s missing description", tool.Name())
		}
	}
}
