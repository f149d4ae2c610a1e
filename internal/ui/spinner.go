package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/rootagent/rmk/internal/llm"
)

// Braille spinner animation frames
var spinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

// SpinnerConfig holds configuration for a spinner display
type SpinnerConfig struct {
	Message  string        // Main message (e.g., "Rate limited")
	Reason   string        // Reason for waiting (e.g., "token bucket cooldown")
	Duration time.Duration // Total wait duration
}

// Spinner provides animated terminal feedback
type Spinner struct {
	output *OutputHandler
}

// NewSpinner creates a new spinner attached to an output handler
func NewSpinner(output *OutputHandler) *Spinner {
	return &Spinner{
		output: output,
	}
}

// WaitCallback adapts the spinner to the rate limiter's pause hook.
func (s *Spinner) WaitCallback() llm.WaitCallback {
	return func(ctx context.Context, info llm.WaitInfo) error {
		return s.Start(ctx, SpinnerConfig{
			Message:  "Rate limited",
			Reason:   info.Reason,
			Duration: info.Duration,
		})
	}
}

// Start displays a spinner with countdown until duration elapses or context is cancelled.
// It blocks until complete.
func (s *Spinner) Start(ctx context.Context, cfg SpinnerConfig) error {
	// Skip spinner for very short waits to avoid flicker
	if cfg.Duration < 500*time.Millisecond {
		select {
		case <-time.After(cfg.Duration):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if !s.output.IsTTY() {
		return s.staticWait(ctx, cfg)
	}

	return s.animatedWait(ctx, cfg)
}

// staticWait displays a single line and waits (for non-TTY/piped output)
func (s *Spinner) staticWait(ctx context.Context, cfg SpinnerConfig) error {
	// Format: ℹ Rate limited: waiting 45s (token bucket cooldown)
	msg := fmt.Sprintf("ℹ %s: waiting %s", cfg.Message, formatDuration(cfg.Duration))
	if cfg.Reason != "" {
		msg += fmt.Sprintf(" (%s)", cfg.Reason)
	}
	fmt.Fprintln(s.output.err, msg)

	select {
	case <-time.After(cfg.Duration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// animatedWait displays an animated spinner with countdown (for TTY mode)
func (s *Spinner) animatedWait(ctx context.Context, cfg SpinnerConfig) error {
	startTime := time.Now()
	frameIndex := 0
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	defer s.cleanup()

	for {
		remaining := max(cfg.Duration-time.Since(startTime), 0)

		frame := string(spinnerFrames[frameIndex])
		line := s.buildStatusLine(frame, cfg.Message, cfg.Reason, remaining)
		fmt.Fprint(s.output.err, ClearLine+CursorStart+line)

		if remaining == 0 {
			return nil
		}

		select {
		case <-ticker.C:
			frameIndex = (frameIndex + 1) % len(spinnerFrames)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// buildStatusLine constructs the animated status line
func (s *Spinner) buildStatusLine(frame, message, reason string, remaining time.Duration) string {
	// Format: ⠹ Rate limited | token bucket cooldown | 45s remaining
	o := s.output
	sep := o.render(o.styles.dim, " | ")

	line := o.render(o.styles.spinner, frame) + " " + o.render(o.styles.warning, message)
	if reason != "" {
		line += sep + reason
	}
	line += sep + o.render(o.styles.user, formatDuration(remaining)+" remaining")
	return line
}

// cleanup clears the spinner line completely
func (s *Spinner) cleanup() {
	if s.output.IsTTY() {
		fmt.Fprint(s.output.err, ClearLine+CursorStart)
	}
}

// formatDuration formats a duration for display (45s, 1m30s, 5m00s)
func formatDuration(d time.Duration) string {
	d = max(d.Round(time.Second), 0)

	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60

	if minutes == 0 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm%02ds", minutes, seconds)
}
