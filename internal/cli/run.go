package cli

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mbebench/internal/config"
	"mbebench/internal/duckdb"
	"mbebench/internal/evaluation"
	"mbebench/internal/metrics"
	"mbebench/internal/provider"
	"mbebench/internal/question"
	"mbebench/internal/report"
	"mbebench/internal/ui/live"
)

// Hooks replaced in tests.
var (
	lookupEnv                    = os.LookupEnv
	httpClient provider.HTTPDoer = &http.Client{}
	startLive                    = func(stdout io.Writer, opts live.Options) liveController { return live.Start(stdout, opts) }
	newRunID                     = evaluation.NewRunID
	now                          = time.Now
)

type liveController interface {
	evaluation.Observer
	Close()
	Wait()
}

type runOptions struct {
	configPath    string
	questionsPath string
	providers     string
	only          string
	workers       int
	timeout       time.Duration
	outputDir     string
	duckdbPath    string
	metricsFile   string
	uiMode        string
	logLevel      string
	noColor       bool
}

func runRun(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		opts := runOptions{}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		fs.StringVar(&opts.configPath, "config", "", "Path to mbebench.yml (default: search upward, then built-in defaults)")
		fs.StringVar(&opts.questionsPath, "questions", "", "Question file, JSON or YAML (default: config or built-in sample)")
		fs.StringVar(&opts.providers, "providers", "", "Comma-separated provider ids to run")
		fs.StringVar(&opts.only, "only", "", "Comma-separated question ids to ask")
		fs.IntVar(&opts.workers, "workers", 0, "Concurrent provider calls (default: config)")
		fs.DurationVar(&opts.timeout, "timeout", 0, "Per-call timeout (default: config)")
		fs.StringVar(&opts.outputDir, "output-dir", "", "Override output directory")
		fs.StringVar(&opts.duckdbPath, "duckdb", "", "Also ingest the run into this DuckDB file")
		fs.StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile")
		fs.StringVar(&opts.uiMode, "ui", "auto", "Progress display: auto, live, or plain")
		fs.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
		fs.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
		if err := fs.Parse(args); err != nil {
			if err == flag.ErrHelp {
				printCommandUsage(cmd, stdout)
				return ExitOK
			}
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if fs.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}
		if opts.workers < 0 || opts.timeout < 0 {
			fmt.Fprintln(stderr, "--workers and --timeout must not be negative")
			return ExitUsage
		}
		onlyIDs, err := parseIDs(opts.only)
		if err != nil {
			fmt.Fprintf(stderr, "invalid --only: %v\n", err)
			return ExitUsage
		}
		decision, err := resolveUIMode(opts.uiMode, isVerbose(opts.logLevel), stdout)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}

		// The live UI owns the terminal; logs are held until it exits.
		var held bytes.Buffer
		logOut := stderr
		if decision.useLive {
			logOut = zerolog.SyncWriter(&held)
		}
		logger, err := newLogger(logOut, opts.logLevel, opts.noColor)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}
		if decision.warning != "" {
			logger.Warn().Msg(decision.warning)
		}

		code := execute(opts, onlyIDs, decision, logger, stdout)
		if held.Len() > 0 {
			_, _ = stderr.Write(held.Bytes())
		}
		return code
	}
}

func execute(opts runOptions, onlyIDs []int, decision uiModeDecision, logger zerolog.Logger, stdout io.Writer) int {
	if err := config.LoadDotEnv("."); err != nil {
		logger.Warn().Err(err).Msg("ignoring .env")
	}
	loaded, err := config.Discover(opts.configPath, "")
	if err != nil {
		logger.Error().Err(err).Msg("failed to load config")
		return ExitError
	}
	cfg := applyRunOverrides(loaded.Config, opts)
	if loaded.Path != "" {
		logger.Debug().Str("path", loaded.Path).Msg("loaded config")
	}

	bank, err := loadQuestions(cfg.QuestionsFile, onlyIDs)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load questions")
		return ExitError
	}
	logger.Debug().Str("source", bank.Source).Ints("ids", bank.IDs()).Msg("loaded questions")

	settings, skipped, err := cfg.ProviderSettings(splitList(opts.providers), lookupEnv)
	if err != nil {
		logger.Error().Err(err).Msg("invalid --providers")
		return ExitUsage
	}
	for _, skip := range skipped {
		logger.Warn().Str("provider", skip.ID).Msg("skipping provider: " + skip.Reason)
	}
	if len(settings) == 0 {
		logger.Error().Msg("no providers available; set an API key or configure a stub provider")
		return ExitError
	}
	adapters, err := provider.Build(settings, httpClient)
	if err != nil {
		logger.Error().Err(err).Msg("failed to build providers")
		return ExitError
	}

	runID, err := newRunID()
	if err != nil {
		logger.Error().Err(err).Msg("failed to create run id")
		return ExitError
	}

	var recorder *metrics.Recorder
	if cfg.MetricsFile != "" {
		recorder = metrics.NewRecorder()
	}
	var controller liveController
	if decision.useLive {
		controller = startLive(stdout, live.Options{NoColor: opts.noColor})
	}
	observers := []evaluation.Observer{progressObserver{logger: logger}}
	if recorder != nil {
		observers = append(observers, recorder)
	}
	if controller != nil {
		observers = append(observers, controller)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info().
		Str("run_id", runID).
		Int("questions", len(bank.Questions)).
		Int("providers", len(adapters)).
		Int("workers", cfg.Workers).
		Msg("starting evaluation")
	startedAt := now()
	attempts := evaluation.Run(ctx, bank.Questions, adapters, evaluation.Options{
		RunID:    runID,
		Workers:  cfg.Workers,
		Timeout:  cfg.CallTimeout(),
		Observer: evaluation.Observers(observers...),
		Logger:   logger,
	})
	if controller != nil {
		controller.Close()
		controller.Wait()
	}

	results := report.BuildResults(report.RunMeta{
		RunID:         runID,
		StartedAt:     startedAt,
		FinishedAt:    now(),
		Title:         bank.Title,
		QuestionsFile: bank.Source,
		Providers:     evaluation.Providers(adapters),
	}, bank.Questions, attempts)

	if err := report.RenderText(stdout, results.Questions, results.Attempts, results.Summary, report.TextOptions{
		Styled: shouldUseStyling(stdout, opts.noColor),
	}); err != nil {
		logger.Error().Err(err).Msg("failed to render report")
	}
	writeArtifacts(ctx, results, cfg, recorder, logger, stdout)
	return ExitOK
}

// writeArtifacts stores the optional run artifacts. The pass is complete
// once the report is printed, so failures here are logged, not fatal.
func writeArtifacts(ctx context.Context, results report.Results, cfg config.Config, recorder *metrics.Recorder, logger zerolog.Logger, stdout io.Writer) {
	fmt.Fprintf(stdout, "\nRun %s completed\n", results.RunID)
	paths, err := report.WriteOutputs(ctx, results, cfg.OutputDir)
	if err != nil {
		logger.Error().Err(err).Str("output_dir", cfg.OutputDir).Msg("failed to write results")
	} else {
		fmt.Fprintf(stdout, "Results: %s\n", paths.ResultsPath())
		fmt.Fprintf(stdout, "Report: %s\n", paths.ReportPath())
	}

	if cfg.DuckDB != "" {
		if err := ingestDuckDB(ctx, cfg.DuckDB, results); err != nil {
			logger.Error().Err(err).Str("path", cfg.DuckDB).Msg("failed to ingest run")
		} else {
			fmt.Fprintf(stdout, "DuckDB: %s\n", cfg.DuckDB)
		}
	}
	if recorder != nil {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error().Err(err).Str("path", cfg.MetricsFile).Msg("failed to write metrics")
		} else {
			fmt.Fprintf(stdout, "Metrics: %s\n", cfg.MetricsFile)
		}
	}
}

func ingestDuckDB(ctx context.Context, path string, results report.Results) error {
	db, err := duckdb.Open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()
	return duckdb.Ingest(ctx, db, results)
}

// applyRunOverrides layers command-line flags over the loaded config.
func applyRunOverrides(cfg config.Config, opts runOptions) config.Config {
	if opts.questionsPath != "" {
		cfg.QuestionsFile = opts.questionsPath
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if opts.timeout > 0 {
		cfg.Timeout = opts.timeout.String()
	}
	if opts.outputDir != "" {
		cfg.OutputDir = opts.outputDir
	}
	if opts.duckdbPath != "" {
		cfg.DuckDB = opts.duckdbPath
	}
	if opts.metricsFile != "" {
		cfg.MetricsFile = opts.metricsFile
	}
	return cfg
}

// loadQuestions reads the question file, or the built-in sample when path
// is empty, and narrows it to ids when given.
func loadQuestions(path string, ids []int) (question.Bank, error) {
	var (
		bank question.Bank
		err  error
	)
	if path == "" {
		bank, err = question.Sample()
	} else {
		bank, err = question.Load(path)
	}
	if err != nil {
		return question.Bank{}, err
	}
	return bank.Select(ids)
}

func parseIDs(value string) ([]int, error) {
	parts := splitList(value)
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(part)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("question id %q is not a positive integer", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// progressObserver logs each finished pair at info level for plain output.
type progressObserver struct {
	logger zerolog.Logger
}

func (p progressObserver) OnRunStart(string, []question.Question, []evaluation.ProviderInfo) {}

func (p progressObserver) OnPairEvent(event evaluation.PairEvent) {
	if event.Type != evaluation.PairAnswered {
		return
	}
	p.logger.Info().
		Int("question", event.QuestionID).
		Str("provider", event.ProviderID).
		Str("letter", string(event.Letter)).
		Bool("correct", event.Correct).
		Dur("duration", event.Duration).
		Msg("answered")
}

func (p progressObserver) OnRunEnd(attempts []evaluation.Attempt) {
	failed := 0
	for _, attempt := range attempts {
		if attempt.Failed() {
			failed++
		}
	}
	event := p.logger.Info()
	if failed > 0 {
		event = p.logger.Warn()
	}
	event.Int("attempts", len(attempts)).Int("failed", failed).Msg("evaluation finished")
}
