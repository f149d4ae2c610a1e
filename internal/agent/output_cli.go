package agent

import (
	"github.com/rootagent/rmk/internal/ui"
)

// CLIOutput wraps ui.OutputHandler and ui.InputHandler to satisfy AgentOutput and AgentInput.
type CLIOutput struct {
	Out *ui.OutputHandler
	In  *ui.InputHandler
}

// Verify interface compliance at compile time.
var _ AgentOutput = (*CLIOutput)(nil)
var _ AgentInput = (*CLIOutput)(nil)

func (c *CLIOutput) User(text string)                { c.Out.User(text) }
func (c *CLIOutput) Assistant(text string)           { c.Out.Markdown(text) }
func (c *CLIOutput) ToolCall(name, arguments string) { c.Out.ToolCall(name, arguments) }
func (c *CLIOutput) Warning(msg string)              { c.Out.Warning(msg) }

func (c *CLIOutput) ReadLine(prompt string) (string, error) {
	return c.In.ReadLine(c.Out.Prompt(prompt))
}

func (c *CLIOutput) ToolResult(name, result string, isError bool) {
	c.Out.ToolResult(name, result, isError)
}
