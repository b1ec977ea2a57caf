package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session",
	Long: `shell reads commands line by line and runs them against one long-lived
client, so login cookies and the open workspace carry over between commands.
Type "help" for the command list and "exit" to leave.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := app.bench(); err != nil {
			return err
		}
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          prompt(),
			HistoryFile:     app.cfg.History,
			AutoComplete:    completer(),
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return fmt.Errorf("init readline: %w", err)
		}
		defer rl.Close()
		return repl(rl)
	},
}

func repl(rl *readline.Instance) error {
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				fmt.Fprintln(rl.Stderr(), `Use "exit" to leave the shell.`)
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		args := parseArgs(strings.TrimSpace(line))
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "exit", "quit":
			return nil
		case "shell":
			fmt.Fprintln(rl.Stderr(), "already in the shell")
			continue
		}

		if err := runLine(args); err != nil {
			fmt.Fprintln(rl.Stderr(), "Error:", err)
		}
		rl.SetPrompt(prompt())
	}
}

// runLine executes one command. Each line gets its own interruptible
// context so Ctrl-C stops a long "doc watch" without leaving the shell.
func runLine(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// resetFlags restores every flag to its default; cobra keeps parsed values
// between executions of the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// parseArgs splits a line on spaces, keeping double-quoted runs together.
func parseArgs(input string) []string {
	var (
		args     []string
		current  strings.Builder
		inQuotes bool
		started  bool
	)
	for _, r := range input {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			started = true
		case r == ' ' && !inQuotes:
			if started {
				args = append(args, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}
	if started {
		args = append(args, current.String())
	}
	return args
}

func prompt() string {
	if app.wb == nil {
		return "mdwiki> "
	}
	snap := app.wb.Store.Snapshot()
	if snap.Nav.WorkspaceID == 0 || snap.Header.Name == "" {
		return "mdwiki> "
	}
	if snap.PageName != "" {
		return fmt.Sprintf("mdwiki:%s/%s> ", snap.Header.Name, snap.PageName)
	}
	return fmt.Sprintf("mdwiki:%s> ", snap.Header.Name)
}

// completer offers the command tree, two levels deep.
func completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, c := range rootCmd.Commands() {
		if c.Hidden || c.Name() == "shell" {
			continue
		}
		var subs []readline.PrefixCompleterInterface
		for _, sub := range c.Commands() {
			subs = append(subs, readline.PcItem(sub.Name()))
		}
		items = append(items, readline.PcItem(c.Name(), subs...))
	}
	items = append(items, readline.PcItem("help"), readline.PcItem("exit"))
	return readline.NewPrefixCompleter(items...)
}

func init() {
	rootCmd.AddCommand(shellCmd)
}
