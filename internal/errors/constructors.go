package errors

import "fmt"

// Error codes. Exported so callers can use HasCode without building a value.
const (
	CodeGatewayFailed       = "gateway_failed"
	CodeInvalidResponse     = "invalid_response"
	CodeRateLimited         = "rate_limited"
	CodeMaxTurnsReached     = "max_turns_reached"
	CodeToolNotFound        = "tool_not_found"
	CodeInvalidArguments    = "invalid_arguments"
	CodeToolExecutionFailed = "tool_execution_failed"
	CodeConfigLoadFailed    = "config_load_failed"
	CodeConfigInvalid       = "config_invalid"
	CodeSessionSaveFailed   = "session_save_failed"
	CodeSessionLoadFailed   = "session_load_failed"
	CodeSessionNotFound     = "session_not_found"
)

// GatewayFailed wraps a transport or protocol failure from a model backend.
func GatewayFailed(provider string, cause error) *RmkError {
	return &RmkError{
		Category:  CategoryLLM,
		Code:      CodeGatewayFailed,
		Message:   fmt.Sprintf("%s request failed", provider),
		Retryable: true,
		Cause:     cause,
	}
}

// InvalidResponse is returned when a backend answers without a usable choice.
func InvalidResponse(model string) *RmkError {
	return &RmkError{
		Category: CategoryLLM,
		Code:     CodeInvalidResponse,
		Message:  fmt.Sprintf("Invalid response from LLM %s", model),
	}
}

// RateLimited is returned when the local limiter refuses to wait.
func RateLimited(cause error) *RmkError {
	return &RmkError{
		Category:  CategoryLLM,
		Code:      CodeRateLimited,
		Message:   "rate limit wait aborted",
		Retryable: true,
		Cause:     cause,
	}
}

// MaxTurnsReached is the terminal error of a loop that exhausted its turn budget.
func MaxTurnsReached(turns int) *RmkError {
	return &RmkError{
		Category: CategoryAgent,
		Code:     CodeMaxTurnsReached,
		Message:  fmt.Sprintf("agent loop exceeded %d turns", turns),
	}
}

// ToolNotFound creates an error for a name missing from the registry.
func ToolNotFound(name string) *RmkError {
	return &RmkError{
		Category: CategoryTool,
		Code:     CodeToolNotFound,
		Message:  fmt.Sprintf("Tool %s is not available.", name),
	}
}

// InvalidArguments creates an error for an argument payload that does not decode
// or does not match the tool's parameter schema.
func InvalidArguments(name string, cause error) *RmkError {
	return &RmkError{
		Category: CategoryTool,
		Code:     CodeInvalidArguments,
		Message:  fmt.Sprintf("Invalid arguments for tool %s.", name),
		Cause:    cause,
	}
}

// ToolExecutionFailed creates an error for a failing tool.
// Retryability follows the cause.
func ToolExecutionFailed(name string, cause error) *RmkError {
	return &RmkError{
		Category:  CategoryTool,
		Code:      CodeToolExecutionFailed,
		Message:   fmt.Sprintf("tool %q execution failed", name),
		Retryable: IsRetryable(cause),
		Cause:     cause,
	}
}

// ConfigLoadFailed creates an error for an unreadable or unparsable config file.
func ConfigLoadFailed(path string, cause error) *RmkError {
	return &RmkError{
		Category: CategoryConfig,
		Code:     CodeConfigLoadFailed,
		Message:  fmt.Sprintf("failed to load config from %s", path),
		Cause:    cause,
	}
}

// ConfigInvalid creates an error for a config value that fails validation.
func ConfigInvalid(field, reason string) *RmkError {
	return &RmkError{
		Category: CategoryConfig,
		Code:     CodeConfigInvalid,
		Message:  fmt.Sprintf("invalid %s: %s", field, reason),
	}
}

// SessionSaveFailed creates an error for a trajectory that could not be written.
func SessionSaveFailed(id string, cause error) *RmkError {
	return &RmkError{
		Category:  CategorySession,
		Code:      CodeSessionSaveFailed,
		Message:   fmt.Sprintf("failed to save session %s", id),
		Retryable: true,
		Cause:     cause,
	}
}

// SessionLoadFailed creates an error for a trajectory that could not be read back.
func SessionLoadFailed(id string, cause error) *RmkError {
	return &RmkError{
		Category: CategorySession,
		Code:     CodeSessionLoadFailed,
		Message:  fmt.Sprintf("failed to load session %s", id),
		Cause:    cause,
	}
}

// SessionNotFound creates an error for an unknown session id.
func SessionNotFound(id string) *RmkError {
	return &RmkError{
		Category: CategorySession,
		Code:     CodeSessionNotFound,
		Message:  fmt.Sprintf("session %s not found", id),
	}
}
