package errors

import (
	"errors"
	"fmt"
)

// Category groups errors by the subsystem that raised them.
type Category string

const (
	CategoryLLM     Category = "llm"
	CategoryTool    Category = "tool"
	CategoryAgent   Category = "agent"
	CategoryConfig  Category = "config"
	CategorySession Category = "session"
)

// RmkError is the structured error type shared by every rmk package.
type RmkError struct {
	Category  Category
	Code      string
	Message   string
	Retryable bool
	Cause     error
}

func (e *RmkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Category, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Category, e.Code, e.Message)
}

func (e *RmkError) Unwrap() error {
	return e.Cause
}

// Is matches on Category and Code so sentinel-style comparisons work with
// errors.Is(err, errors.MaxTurnsReached(0)).
func (e *RmkError) Is(target error) bool {
	t, ok := target.(*RmkError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Category == t.Category
}

// IsRetryable reports whether err carries the Retryable flag.
// The agent loop itself never retries; callers wrapping a gateway may.
func IsRetryable(err error) bool {
	var re *RmkError
	if errors.As(err, &re) {
		return re.Retryable
	}
	return false
}

// GetCategory extracts the category, or "" for foreign errors.
func GetCategory(err error) Category {
	var re *RmkError
	if errors.As(err, &re) {
		return re.Category
	}
	return ""
}

// HasCode reports whether any RmkError in the chain has the given code.
func HasCode(err error, code string) bool {
	var re *RmkError
	for err != nil {
		if errors.As(err, &re) {
			if re.Code == code {
				return true
			}
			err = re.Cause
			continue
		}
		return false
	}
	return false
}

// GetUserMessage returns the message meant for a human: Message for RmkError,
// Error() otherwise.
func GetUserMessage(err error) string {
	if err == nil {
		return ""
	}
	var re *RmkError
	if errors.As(err, &re) {
		return re.Message
	}
	return err.Error()
}
