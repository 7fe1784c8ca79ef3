// Package cli implements the mbebench command line.
package cli

import (
	"fmt"
	"io"
	"strings"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

// Run dispatches to a command. With no arguments, or when the first
// argument is a flag, it behaves like "mbebench run".
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return findCommand("run").Run(nil, stdout, stderr)
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}
	if strings.HasPrefix(args[0], "-") {
		return findCommand("run").Run(args, stdout, stderr)
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  mbebench [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nWithout a command, mbebench runs the evaluation with defaults.")
	fmt.Fprintln(w, "Use \"mbebench <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands []*Command

func init() {
	commands = []*Command{
		command("run", "Ask every provider every question and report accuracy", []string{
			"mbebench run [--config <path>] [--questions <path>] [--providers a,b] [--only 7,11,18]",
			"             [--workers N] [--timeout 60s] [--output-dir <dir>] [--duckdb <path>]",
			"             [--metrics-file <path>] [--ui auto|live|plain] [--log-level info] [--no-color]",
		}, runRun),
		command("validate", "Validate mbebench.yml and the question file", []string{
			"mbebench validate [--config <path>] [--questions <path>]",
		}, runValidate),
		command("report", "Re-render a stored run", []string{
			"mbebench report [--output-dir <dir>] [--html <path>] [--duckdb <path>] <run-id|latest|results.json>",
		}, runReport),
		command("init", "Write a starter mbebench.yml", []string{
			"mbebench init [--path mbebench.yml]",
		}, runInit),
	}
}
