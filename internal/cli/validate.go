package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"mbebench/internal/config"
)

// runValidate builds the handler for the validate command.
func runValidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		flags.SetOutput(stderr)
		configPath := flags.String("config", "", "Path to mbebench.yml (default: search upward, then built-in defaults)")
		questionsPath := flags.String("questions", "", "Question file to check (default: config or built-in sample)")
		if err := flags.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if flags.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(flags.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		loaded, err := config.Discover(*configPath, "")
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%s\n", err.Error())
			return ExitError
		}
		source := loaded.Path
		if source == "" {
			source = "built-in defaults"
		}
		fmt.Fprintf(stdout, "Config OK (%s)\n", source)

		path := loaded.Config.QuestionsFile
		if *questionsPath != "" {
			path = *questionsPath
		}
		bank, err := loadQuestions(path, nil)
		if err != nil {
			fmt.Fprintf(stderr, "Validation failed:\n%s\n", err.Error())
			return ExitError
		}
		fmt.Fprintf(stdout, "Questions OK: %d from %s\n", len(bank.Questions), bank.Source)
		return ExitOK
	}
}
