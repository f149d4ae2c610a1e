package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rootagent/rmk/internal/agent"
	"github.com/rootagent/rmk/internal/llm"
	"github.com/rootagent/rmk/internal/logging"
	"github.com/rootagent/rmk/internal/platform"
	"github.com/rootagent/rmk/internal/session"
	"github.com/rootagent/rmk/internal/ui"
)

var (
	taskFlag    string
	verboseFlag bool
	jsonFlag    bool
	resumeFlag  string
)

func runAgent(cmd *cobra.Command, args []string) error {
	mode := string(agent.ModeDev)
	if len(args) == 1 {
		mode = args[0]
	}
	profile, err := agent.ProfileFor(mode)
	if err != nil {
		return err
	}
	if jsonFlag && taskFlag == "" {
		return errors.New("--json requires --task")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := ui.NewOutputHandler()
	in := ui.NewInputHandler()
	cli := &agent.CLIOutput{Out: out, In: in}

	client, err := llm.NewClient(cfg)
	if err != nil {
		return err
	}
	backend := client
	if rl, ok := client.(*llm.RateLimitedClient); ok {
		rl.SetWaitCallback(ui.NewSpinner(out).WaitCallback())
		backend = rl.Inner()
	}
	if oc, ok := backend.(*llm.OllamaClient); ok {
		if err := oc.CheckHealth(ctx); err != nil {
			out.Warning(err.Error())
		}
	}

	sink, err := session.NewSink(cfg)
	if err != nil {
		return err
	}
	defer sink.Close()

	registry, err := profile.Registry(agent.ToolDeps{Config: cfg, Input: cli})
	if err != nil {
		return err
	}

	var rules string
	if profile.SystemRules {
		if rules, err = platform.SystemRules(cfg.RulesFile); err != nil {
			out.Warning(fmt.Sprintf("could not read %s: %v", cfg.RulesFile, err))
		}
	}

	var output agent.AgentOutput = cli
	var jsonOut *agent.JSONOutput
	switch {
	case jsonFlag:
		jsonOut = &agent.JSONOutput{}
		output = jsonOut
	case taskFlag != "" && !out.IsTTY():
		output = &agent.HeadlessOutput{}
	}

	a := agent.New(agent.Config{
		LLM:         client,
		Tools:       registry,
		System:      profile.System,
		SystemRules: rules,
		MaxTurns:    cfg.MaxTurns,
		MaxMessages: cfg.MaxMessages,
		Output:      output,
		Input:       cli,
		Verbose:     verboseFlag,
		Sink:        sink,
	})

	if resumeFlag != "" {
		if err := resume(ctx, a, sink, resumeFlag); err != nil {
			return err
		}
	}

	log := logging.Global().WithPrefix("cli").With(logging.SessionID(a.SessionID()), logging.Mode(mode))
	defer func() {
		if err := a.Save(context.WithoutCancel(ctx)); err != nil {
			out.Warning(fmt.Sprintf("could not save session: %v", err))
			log.Error("final save failed", logging.Error(err))
		}
	}()

	if taskFlag != "" {
		prompt, err := readTask(taskFlag)
		if err != nil {
			return err
		}
		text, runErr := a.Run(ctx, prompt)
		if jsonOut != nil {
			if err := jsonOut.Flush(cmd.OutOrStdout(), a.SessionID(), text, runErr); err != nil {
				return err
			}
			return runErr
		}
		if runErr != nil {
			return runErr
		}
		if output == cli {
			out.Markdown(text)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), text)
		}
		return nil
	}

	if !out.IsTTY() {
		log.Debug("interactive mode without a terminal")
	}
	out.Header(fmt.Sprintf("%s (%s)", profile.Name, mode))
	out.ModelInfo(client.GetModel())
	out.Dim("session " + a.SessionID())
	return repl(ctx, a, out, in, mode)
}

// repl reads prompts until EOF, /exit, /quit or an interrupt. The session is
// saved after every answered prompt.
func repl(ctx context.Context, a *agent.Agent, out *ui.OutputHandler, in *ui.InputHandler, mode string) error {
	prompt := out.Prompt(fmt.Sprintf("RMK[%s] > ", mode))
	for {
		line, err := readPrompt(ctx, in, prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				out.TextLn("")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		}

		text, err := a.Run(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			out.Error(err)
			continue
		}
		out.Markdown(text)

		if err := a.Save(ctx); err != nil {
			out.Warning(fmt.Sprintf("could not save session: %v", err))
		}
	}
}

// readPrompt reads one input line, giving up when ctx is cancelled.
func readPrompt(ctx context.Context, in *ui.InputHandler, prompt string) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := in.ReadInput(prompt)
		ch <- result{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}

// readTask returns the file's contents when task names a readable file, and
// task itself otherwise.
func readTask(task string) (string, error) {
	info, err := os.Stat(task)
	if err != nil || info.IsDir() {
		return task, nil
	}
	data, err := os.ReadFile(task)
	if err != nil {
		return "", fmt.Errorf("read task file: %w", err)
	}
	return string(data), nil
}

// resume loads a stored trajectory into a. "last" picks the newest session.
func resume(ctx context.Context, a *agent.Agent, sink session.Sink, id string) error {
	if id == "last" || id == "current" {
		ids, err := sink.List(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return errors.New("no stored sessions to resume")
		}
		id = ids[0]
	}
	msgs, err := sink.Load(ctx, id)
	if err != nil {
		return err
	}
	a.Restore(id, msgs)
	return nil
}
