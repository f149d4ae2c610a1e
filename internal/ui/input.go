package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// InputHandler handles user input
type InputHandler struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewInputHandler creates an input handler on stdin/stdout.
func NewInputHandler() *InputHandler {
	return NewInputHandlerFrom(os.Stdin, os.Stdout)
}

// NewInputHandlerFrom reads lines from r and writes prompts to w.
func NewInputHandlerFrom(r io.Reader, w io.Writer) *InputHandler {
	return &InputHandler{
		reader: bufio.NewReader(r),
		out:    w,
	}
}

// ReadLine reads a single line of input. A final line without a newline is
// returned before io.EOF is reported.
func (h *InputHandler) ReadLine(prompt string) (string, error) {
	fmt.Fprint(h.out, prompt)
	line, err := h.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadInput reads input, handling both single and multi-line cases
// Multi-line mode is triggered when pasting (multiple lines detected quickly)
func (h *InputHandler) ReadInput(prompt string) (string, error) {
	fmt.Fprint(h.out, prompt)

	firstLine, err := h.reader.ReadString('\n')
	if err != nil && (err != io.EOF || firstLine == "") {
		return "", err
	}
	firstLine = strings.TrimRight(firstLine, "\r\n")

	// Buffered data right after the first line means a paste.
	if h.reader.Buffered() > 0 {
		lines := []string{firstLine}
		for h.reader.Buffered() > 0 {
			line, err := h.reader.ReadString('\n')
			lines = append(lines, strings.TrimRight(line, "\r\n"))
			if err != nil {
				break
			}
		}
		return strings.Join(lines, "\n"), nil
	}

	return firstLine, nil
}

// WaitForEnter blocks until the user presses Enter.
func (h *InputHandler) WaitForEnter(prompt string) error {
	_, err := h.ReadLine(prompt)
	return err
}
