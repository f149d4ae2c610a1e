package highlight

import (
	"strings"
	"testing"
)

func TestDisabledIsPassThrough(t *testing.T) {
	h := New(false)
	inputs := []string{
		"plain",
		"```go\nfunc main() {}\n```",
		"edited the file.\n--- a/x\n+++ b/x\n@@ -1 +1 @@\n-a\n+b",
	}
	for _, in := range inputs {
		if got := h.HighlightMarkdownCodeBlocks(in); got != in {
			t.Errorf("HighlightMarkdownCodeBlocks changed %q", in)
		}
		if got := h.HighlightDiff(in); got != in {
			t.Errorf("HighlightDiff changed %q", in)
		}
	}
}

func TestEnabledAddsEscapes(t *testing.T) {
	h := New(true)

	got := h.Highlight("package main\n\nfunc main() {}\n", "go")
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("expected ANSI escapes, got %q", got)
	}
	if !strings.Contains(got, "main") {
		t.Errorf("highlighted code lost its text: %q", got)
	}

	md := h.HighlightMarkdownCodeBlocks("before\n```go\nx := 1\n```\nafter")
	if strings.Contains(md, "```") {
		t.Errorf("fences should be removed, got %q", md)
	}
	if !strings.HasPrefix(md, "before\n") || !strings.HasSuffix(md, "\nafter") {
		t.Errorf("surrounding text should be kept, got %q", md)
	}
}

func TestHighlightDiffKeepsPreamble(t *testing.T) {
	h := New(true)
	got := h.HighlightDiff("edited the file.\n--- a/x\n+++ b/x\n-a\n+b")
	if !strings.HasPrefix(got, "edited the file.\n") {
		t.Errorf("preamble should stay plain, got %q", got)
	}
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("diff body should be colored, got %q", got)
	}
	if plain := h.HighlightDiff("no diff here"); plain != "no diff here" {
		t.Errorf("text without a diff should be unchanged, got %q", plain)
	}
}
