// Package highlight colors code for terminal output with chroma.
package highlight

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlighter applies syntax colors when enabled and is a pass-through
// otherwise.
type Highlighter struct {
	enabled   bool
	formatter chroma.Formatter
	style     *chroma.Style
}

// New creates a new Highlighter
func New(enabled bool) *Highlighter {
	return &Highlighter{
		enabled:   enabled,
		formatter: formatters.Get("terminal256"),
		style:     styles.Get("monokai"),
	}
}

// Highlight colors code using the lexer for language, falling back to a
// content-based guess and then to plain text.
func (h *Highlighter) Highlight(code, language string) string {
	if !h.enabled {
		return code
	}
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	return h.format(lexer, code)
}

func (h *Highlighter) format(lexer chroma.Lexer, code string) string {
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// codeBlockRegex matches markdown code blocks with optional language
var codeBlockRegex = regexp.MustCompile("(?s)```(\\w*)\\n(.*?)```")

// HighlightMarkdownCodeBlocks replaces fenced blocks in text with their
// highlighted bodies.
func (h *Highlighter) HighlightMarkdownCodeBlocks(text string) string {
	if !h.enabled {
		return text
	}
	return codeBlockRegex.ReplaceAllStringFunc(text, func(match string) string {
		parts := codeBlockRegex.FindStringSubmatch(match)
		if len(parts) != 3 {
			return match
		}
		return h.Highlight(strings.TrimSuffix(parts[2], "\n"), parts[1])
	})
}

// HighlightDiff colors the unified diff that follows the first line starting
// with "--- ", leaving any preceding text untouched.
func (h *Highlighter) HighlightDiff(text string) string {
	if !h.enabled {
		return text
	}
	idx := strings.Index(text, "\n--- ")
	if idx < 0 {
		if !strings.HasPrefix(text, "--- ") {
			return text
		}
		return h.Highlight(text, "diff")
	}
	return text[:idx+1] + h.Highlight(text[idx+1:], "diff")
}
