package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/rootagent/rmk/internal/ui/highlight"
)

// ANSI cursor control codes
const (
	CursorStart = "\r"      // Move cursor to start of line
	ClearLine   = "\033[2K" // Clear entire line
)

// Colors
var (
	primaryColor = lipgloss.Color("39")  // Cyan
	successColor = lipgloss.Color("82")  // Green
	warningColor = lipgloss.Color("214") // Orange/Yellow
	errorColor   = lipgloss.Color("196") // Red
	dimColor     = lipgloss.Color("240") // Gray
)

type styles struct {
	prompt    lipgloss.Style
	user      lipgloss.Style
	toolCall  lipgloss.Style
	toolName  lipgloss.Style
	toolArgs  lipgloss.Style
	success   lipgloss.Style
	failure   lipgloss.Style
	warning   lipgloss.Style
	info      lipgloss.Style
	dim       lipgloss.Style
	header    lipgloss.Style
	spinner   lipgloss.Style
	highlight lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		prompt:    r.NewStyle().Foreground(successColor).Bold(true),
		user:      r.NewStyle().Bold(true),
		toolCall:  r.NewStyle().Foreground(primaryColor).Bold(true),
		toolName:  r.NewStyle().Foreground(primaryColor),
		toolArgs:  r.NewStyle().Foreground(dimColor),
		success:   r.NewStyle().Foreground(successColor),
		failure:   r.NewStyle().Foreground(errorColor).Bold(true),
		warning:   r.NewStyle().Foreground(warningColor).Bold(true),
		info:      r.NewStyle().Foreground(primaryColor),
		dim:       r.NewStyle().Foreground(dimColor),
		header:    r.NewStyle().Bold(true).Underline(true),
		spinner:   r.NewStyle().Foreground(primaryColor),
		highlight: r.NewStyle().Foreground(warningColor),
	}
}

// OutputHandler handles console output with colors
type OutputHandler struct {
	out         io.Writer
	err         io.Writer
	useColors   bool
	tty         bool
	styles      styles
	highlighter *highlight.Highlighter
	markdown    *glamour.TermRenderer
}

// NewOutputHandler creates a handler for stdout/stderr. Colors and Markdown
// rendering are enabled only on a terminal without NO_COLOR.
func NewOutputHandler() *OutputHandler {
	fd := os.Stdout.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	o := NewOutputHandlerTo(os.Stdout, os.Stderr, tty && os.Getenv("NO_COLOR") == "")
	o.tty = tty
	return o
}

// NewOutputHandlerTo creates a handler writing to the given streams.
func NewOutputHandlerTo(out, errOut io.Writer, useColors bool) *OutputHandler {
	o := &OutputHandler{
		out:         out,
		err:         errOut,
		useColors:   useColors,
		tty:         useColors,
		styles:      newStyles(lipgloss.NewRenderer(out)),
		highlighter: highlight.New(useColors),
	}
	if useColors {
		if r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(0),
		); err == nil {
			o.markdown = r
		}
	}
	return o
}

func (o *OutputHandler) render(style lipgloss.Style, text string) string {
	if !o.useColors {
		return text
	}
	return style.Render(text)
}

// IsTTY returns true if the output is a terminal (not piped/redirected)
func (o *OutputHandler) IsTTY() bool {
	return o.tty
}

// Writer returns the primary output stream.
func (o *OutputHandler) Writer() io.Writer {
	return o.out
}

// Text outputs regular text
func (o *OutputHandler) Text(text string) {
	fmt.Fprint(o.out, text)
}

// TextLn outputs regular text with newline
func (o *OutputHandler) TextLn(text string) {
	fmt.Fprintln(o.out, text)
}

// Markdown renders model text. Without a terminal it is printed verbatim.
func (o *OutputHandler) Markdown(text string) {
	if o.markdown != nil {
		if rendered, err := o.markdown.Render(text); err == nil {
			fmt.Fprint(o.out, strings.TrimRight(rendered, "\n")+"\n")
			return
		}
	}
	fmt.Fprintln(o.out, text)
}

// User echoes a user prompt.
func (o *OutputHandler) User(text string) {
	fmt.Fprintln(o.out, o.render(o.styles.prompt, "> ")+o.render(o.styles.user, text))
}

// ToolCall outputs a tool call notification
func (o *OutputHandler) ToolCall(name, arguments string) {
	prefix := o.render(o.styles.toolCall, "⚡ ")
	line := prefix + o.render(o.styles.toolName, name)
	if args := strings.TrimSpace(arguments); args != "" && args != "{}" {
		const maxArgs = 200
		if len(args) > maxArgs {
			args = args[:maxArgs] + "..."
		}
		line += o.render(o.styles.toolArgs, " "+args)
	}
	fmt.Fprintln(o.out, line)
}

// ToolResult outputs a tool result
func (o *OutputHandler) ToolResult(name, result string, isError bool) {
	if isError {
		prefix := o.render(o.styles.failure, "✗ ")
		fmt.Fprintln(o.out, prefix+o.render(o.styles.failure, name+": ")+result)
		return
	}

	const maxLen = 500
	display := result
	if len(result) > maxLen {
		display = result[:maxLen] + "..."
	}
	display = o.highlighter.HighlightDiff(o.highlighter.HighlightMarkdownCodeBlocks(display))

	fmt.Fprintln(o.out, o.render(o.styles.success, "✓ "+name))
	if display == "" {
		return
	}
	lines := strings.Split(display, "\n")
	if len(lines) > 10 {
		lines = append(lines[:10], "... (truncated)")
	}
	for _, line := range lines {
		fmt.Fprintln(o.out, o.render(o.styles.dim, "  │ ")+line)
	}
}

// Error outputs an error message
func (o *OutputHandler) Error(err error) {
	o.ErrorStr(err.Error())
}

// ErrorStr outputs an error string
func (o *OutputHandler) ErrorStr(msg string) {
	fmt.Fprintln(o.err, o.render(o.styles.failure, "Error: ")+msg)
}

// Warning outputs a warning message
func (o *OutputHandler) Warning(msg string) {
	fmt.Fprintln(o.err, o.render(o.styles.warning, "Warning: ")+msg)
}

// Success outputs a success message
func (o *OutputHandler) Success(msg string) {
	fmt.Fprintln(o.out, o.render(o.styles.success, "✓ ")+msg)
}

// Info outputs an info message
func (o *OutputHandler) Info(msg string) {
	fmt.Fprintln(o.out, o.render(o.styles.info, "ℹ ")+msg)
}

// Prompt renders a prompt string for the input handler.
func (o *OutputHandler) Prompt(prompt string) string {
	return o.render(o.styles.prompt, prompt)
}

// Header outputs a header
func (o *OutputHandler) Header(text string) {
	fmt.Fprintln(o.out)
	fmt.Fprintln(o.out, o.render(o.styles.header, text))
	fmt.Fprintln(o.out)
}

// Separator outputs a horizontal line
func (o *OutputHandler) Separator() {
	fmt.Fprintln(o.out, o.render(o.styles.dim, strings.Repeat("─", 40)))
}

// ModelInfo outputs the current model info
func (o *OutputHandler) ModelInfo(model string) {
	fmt.Fprintln(o.out, o.render(o.styles.dim, "Using model: ")+o.render(o.styles.toolName, model))
}

// KeyValue prints an aligned label and value, used by listings.
func (o *OutputHandler) KeyValue(key, value string) {
	fmt.Fprintf(o.out, "%s %s\n", o.render(o.styles.highlight, fmt.Sprintf("%-16s", key)), value)
}

// Dim prints secondary text.
func (o *OutputHandler) Dim(text string) {
	fmt.Fprintln(o.out, o.render(o.styles.dim, text))
}
