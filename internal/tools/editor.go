package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EditorTool views, creates and edits text files.
type EditorTool struct{}

func (t *EditorTool) Name() string {
	return "text_file_editor"
}

func (t *EditorTool) Description() string {
	return `Text file tool for viewing, creating and editing.

* view will return the content of a file, optionally within a specified line range.
* create will create a new file with the specified content.
* edit will apply diff edits to an existing file.

Note: ` + SearchReplaceFormat
}

func (t *EditorTool) InputSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"operation": map[string]any{
				"type":        "string",
				"description": "File operation to perform.",
				"enum":        []string{"view", "create", "edit"},
			},
			"path": map[string]any{
				"type":        "string",
				"description": "Absolute file path.",
			},
			"content": map[string]any{
				"type":        "string",
				"description": "Plain text content. Required for `create`.",
			},
			"diff": map[string]any{
				"type":        "string",
				"description": "Diff content (a series of SEARCH/REPLACE blocks). Required for `edit`.",
			},
			"view_range": map[string]any{
				"type":        "array",
				"description": "Line range to view (start and end line numbers, end -1 reads to the end). Optional for `view`.",
				"items":       map[string]any{"type": "integer"},
			},
			"line_number": map[string]any{
				"type":        "boolean",
				"description": "If true, line numbers are displayed for each line. Optional for `view`.",
			},
		},
		"required": []string{"operation", "path"},
	}
}

func (t *EditorTool) Execute(_ context.Context, input map[string]any) (string, error) {
	path := stringArg(input, "path")
	switch op := stringArg(input, "operation"); op {
	case "view":
		return t.view(path, input), nil
	case "create":
		content, ok := input["content"].(string)
		if !ok {
			return t.fail("`content` is need for the `create`."), nil
		}
		return t.create(path, content), nil
	case "edit":
		diff, ok := input["diff"].(string)
		if !ok {
			return t.fail("`diff` is need for the `edit`."), nil
		}
		return t.edit(path, diff), nil
	default:
		return fmt.Sprintf("%s: %s is unsupported.", t.Name(), op), nil
	}
}

func (t *EditorTool) fail(msg string) string {
	return t.Name() + ": " + msg
}

func (t *EditorTool) view(path string, input map[string]any) string {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return t.fail("File not found: " + path)
	}
	if err != nil {
		return t.fail(fmt.Sprintf("Error reading file: %v", err))
	}

	rng, hasRange, rangeErr := intPairArg(input, "view_range")
	if rangeErr != nil {
		return t.fail(fmt.Sprintf("Invalid `view_range`: %s.", rangeErr))
	}

	lines := splitLines(string(data))
	if len(lines) == 0 {
		return ""
	}
	if boolArg(input, "line_number") {
		width := len(strconv.Itoa(len(lines)))
		for i, line := range lines {
			lines[i] = fmt.Sprintf("%*d %s", width, i+1, line)
		}
	}
	if !hasRange {
		return strings.Join(lines, "\n")
	}

	start, end := rng[0], rng[1]
	if end == -1 {
		end = len(lines)
	}
	if start < 1 || start > end {
		return t.fail(fmt.Sprintf("Invalid `view_range`: [%d, %d].", rng[0], rng[1]))
	}
	if start > len(lines) {
		return ""
	}
	end = min(end, len(lines))
	return strings.Join(lines[start-1:end], "\n")
}

func (t *EditorTool) create(path, content string) string {
	if _, err := os.Stat(path); err == nil {
		return t.fail("File already exists: " + path)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return t.fail(fmt.Sprintf("Error creating file: %v", err))
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return t.fail(fmt.Sprintf("Error creating file: %v", err))
	}
	return "created: " + path
}

func (t *EditorTool) edit(path, diff string) string {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return t.fail("File not found: " + path)
	}
	if err != nil {
		return t.fail(fmt.Sprintf("Error editing file: %v", err))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t.fail(fmt.Sprintf("Error editing file: %v", err))
	}

	before := string(data)
	after, _, _ := ApplyDiff(before, diff)
	if err := os.WriteFile(path, []byte(after), info.Mode().Perm()); err != nil {
		return t.fail(fmt.Sprintf("Error editing file: %v", err))
	}

	summary := SummarizeEdit(filepath.Base(path), before, after)
	if !summary.Changed() {
		return "edited the file."
	}
	return "edited the file.\n" + summary.String()
}

// splitLines splits on newlines without a trailing empty element.
func splitLines(s string) []string {
	s = strings.TrimSuffix(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
