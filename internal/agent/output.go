package agent

// AgentOutput receives progress while a run is in flight. The final answer
// is returned by Run, not written here.
type AgentOutput interface {
	User(text string)
	Assistant(text string)
	ToolCall(name, arguments string)
	ToolResult(name, result string, isError bool)
	Warning(msg string)
}

// AgentInput is the unified interface for user input.
type AgentInput interface {
	ReadLine(prompt string) (string, error)
}

// discardOutput drops everything.
type discardOutput struct{}

func (discardOutput) User(string)                     {}
func (discardOutput) Assistant(string)                {}
func (discardOutput) ToolCall(string, string)         {}
func (discardOutput) ToolResult(string, string, bool) {}
func (discardOutput) Warning(string)                  {}
