package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"mbebench/internal/config"
	"mbebench/internal/report"
)

func runReport(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		outputDir := fs.String("output-dir", "", "Directory containing runs (default: config output_dir)")
		htmlPath := fs.String("html", "", "Write the HTML report to this path")
		duckdbPath := fs.String("duckdb", "", "Ingest the run into this DuckDB file")
		noColor := fs.Bool("no-color", false, "Disable colored output")
		if err := fs.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(stderr, "Expected exactly one run reference")
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		dir := *outputDir
		if dir == "" {
			loaded, err := config.Discover("", "")
			if err != nil {
				fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
				return ExitError
			}
			dir = loaded.Config.OutputDir
		}
		results, _, err := report.ResolveRun(dir, fs.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load run: %v\n", err)
			return ExitError
		}

		if err := report.RenderText(stdout, results.Questions, results.Attempts, results.Summary, report.TextOptions{
			Styled: shouldUseStyling(stdout, *noColor),
		}); err != nil {
			fmt.Fprintf(stderr, "Failed to render report: %v\n", err)
			return ExitError
		}

		ctx := context.Background()
		if *htmlPath != "" {
			html, err := report.RenderHTML(ctx, results)
			if err != nil {
				fmt.Fprintf(stderr, "Failed to render HTML: %v\n", err)
				return ExitError
			}
			if err := os.WriteFile(*htmlPath, []byte(html), 0o644); err != nil {
				fmt.Fprintf(stderr, "Failed to write report: %v\n", err)
				return ExitError
			}
			fmt.Fprintf(stdout, "Report written to %s\n", *htmlPath)
		}
		if *duckdbPath != "" {
			if err := ingestDuckDB(ctx, *duckdbPath, results); err != nil {
				fmt.Fprintf(stderr, "Failed to ingest run: %v\n", err)
				return ExitError
			}
			fmt.Fprintf(stdout, "Ingested %s into %s\n", results.RunID, *duckdbPath)
		}
		return ExitOK
	}
}
