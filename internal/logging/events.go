package logging

// Event names written under the "event" key.
const (
	EventSessionStart = "session.start"
	EventSessionEnd   = "session.end"
	EventSessionSave  = "session.save"
	EventSessionLoad  = "session.load"

	EventAgentRun        = "agent.run"
	EventAgentState      = "agent.state"
	EventAgentDone       = "agent.done"
	EventMemoryTruncate  = "memory.truncate"
	EventLLMRequest      = "llm.request"
	EventLLMResponse     = "llm.response"
	EventLLMError        = "llm.error"
	EventRateLimitWait   = "llm.ratelimit.wait"
	EventToolStart       = "tool.start"
	EventToolComplete    = "tool.complete"
	EventToolError       = "tool.error"
	EventToolUnavailable = "tool.unavailable"

	EventError = "error"
)
