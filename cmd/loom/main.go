package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/odvcencio/loom/pkg/config"
	"github.com/odvcencio/loom/pkg/engine"
	"github.com/odvcencio/loom/pkg/logging"
	"github.com/odvcencio/loom/pkg/model"
	"github.com/odvcencio/loom/pkg/notify"
	"github.com/odvcencio/loom/pkg/paths"
	"github.com/odvcencio/loom/pkg/scheduler"
	"github.com/odvcencio/loom/pkg/search"
	"github.com/odvcencio/loom/pkg/status"
	"github.com/odvcencio/loom/pkg/vault"
)

// Version information - set via ldflags during build
var (
	version   = "0.1.0-dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printHelp()
		return 0
	}
	switch args[0] {
	case "--version", "-v", "version":
		printVersion()
		return 0
	case "--help", "-h", "help":
		printHelp()
		return 0
	case "daemon":
		return runCommand(runDaemonCommand, args[1:])
	case "append":
		return runCommand(runAppendCommand, args[1:])
	case "summarize":
		return runCommand(runSummarizeCommand, args[1:])
	case "weave":
		return runCommand(runWeaveCommand, args[1:])
	case "ask":
		return runCommand(runAskCommand, args[1:])
	case "search":
		return runCommand(runSearchCommand, args[1:])
	case "status":
		return runCommand(runStatusCommand, args[1:])
	case "models":
		return runCommand(runModelsCommand, args[1:])
	case "config":
		return runCommand(runConfigCommand, args[1:])
	default:
		if strings.HasPrefix(args[0], "-") {
			fmt.Fprintf(os.Stderr, "Error: unknown flag: %s\n", args[0])
		} else {
			fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n", args[0])
		}
		fmt.Fprintln(os.Stderr, "Run 'loom --help' for usage.")
		return 1
	}
}

func runCommand(handler func([]string) error, args []string) int {
	if err := handler(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printVersion() {
	fmt.Printf("loom %s (%s, built %s)\n", version, commit, buildDate)
}

func printHelp() {
	fmt.Print(`loom - local voice-note ingestion and daily distillation

Usage:
  loom daemon                  Run the inbox watcher and daily scheduler
  loom append <text>           Append text to today's spool and daily note
  loom summarize [--date D]    Generate the summary for a date (default today)
  loom weave [--date D]        Extract entities and link today's note
  loom ask <question>          Answer a question against the vault
  loom search <query>          Show the raw vault context for a query
  loom status                  Show the engine status register
  loom models                  List models known to the local Ollama
  loom config show|check|path  Inspect the configuration
  loom version                 Print version information

Dates use the YYYY-MM-DD form. LOOM_HOME overrides the base directory
(default ~/.loom).
`)
}

// buildEngine assembles the full engine stack from configuration
func buildEngine() (*engine.Engine, *logging.Logger, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, nil, err
	}

	store := vault.NewStore(cfg.BaseDir)
	if err := store.EnsureDirectories(); err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewLogger(paths.LogsDir(cfg.BaseDir), uuid.NewString())
	if err != nil {
		return nil, nil, err
	}
	logger.SetMinLevel(logging.ParseLevel(cfg.Logging.Level))

	register := status.NewRegister(paths.StatusFile(cfg.BaseDir))
	llm := model.NewClient(cfg.Ollama.Host, cfg.Ollama.Model)

	adapters := []notify.Adapter{notify.NewLogAdapter(logger)}
	if cfg.Notify.Enabled {
		adapters = append(adapters, notify.NewDesktopAdapter(cfg.Notify.Command))
	}
	notifier := notify.NewManager(adapters...)

	return engine.New(cfg, store, register, llm, notifier, logger), logger, nil
}

func runDaemonCommand(args []string) error {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	eng, logger, err := buildEngine()
	if err != nil {
		return err
	}
	defer logger.Close()

	cfg := eng.Config()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sched *scheduler.Scheduler
	if cfg.Summary.Enabled {
		notifier := notify.NewManager(notify.NewLogAdapter(logger), notify.NewDesktopAdapter(cfg.Notify.Command))
		sched = scheduler.New(cfg.Summary.Hour, cfg.Summary.Minute, eng.SummaryJob, notifier, logger)
		sched.Start()
		fmt.Printf("Scheduler started - Daily summary at %02d:%02d\n", cfg.Summary.Hour, cfg.Summary.Minute)
	} else {
		fmt.Println("Daily summaries disabled - no scheduling configured")
	}

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- eng.WatchInbox(ctx)
	}()
	fmt.Println("Watching inbox for transcripts. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		fmt.Println("\nShutting down...")
	case err := <-watchErr:
		if err != nil && ctx.Err() == nil {
			if sched != nil {
				sched.Stop()
			}
			return err
		}
	}

	cancel()
	if sched != nil {
		sched.Stop()
	}
	return nil
}

func runAppendCommand(args []string) error {
	fs := flag.NewFlagSet("append", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	text := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if text == "" {
		return fmt.Errorf("append requires text")
	}

	eng, logger, err := buildEngine()
	if err != nil {
		return err
	}
	defer logger.Close()

	path, err := eng.IngestTranscript(context.Background(), text)
	if err != nil {
		return err
	}
	fmt.Printf("Appended to: %s\n", path)
	return nil
}

func parseDateFlag(fs *flag.FlagSet, args []string) (time.Time, error) {
	dateFlag := fs.String("date", "", "date to process (YYYY-MM-DD, default today)")
	if err := fs.Parse(args); err != nil {
		return time.Time{}, err
	}
	if *dateFlag == "" {
		return time.Now(), nil
	}
	return vault.ParseDateKey(*dateFlag)
}

func runSummarizeCommand(args []string) error {
	fs := flag.NewFlagSet("summarize", flag.ContinueOnError)
	date, err := parseDateFlag(fs, args)
	if err != nil {
		return err
	}

	eng, logger, err := buildEngine()
	if err != nil {
		return err
	}
	defer logger.Close()

	path, err := eng.Summarize(context.Background(), date)
	if err != nil {
		return err
	}
	fmt.Printf("Summary saved to: %s\n", path)
	return nil
}

func runWeaveCommand(args []string) error {
	fs := flag.NewFlagSet("weave", flag.ContinueOnError)
	date, err := parseDateFlag(fs, args)
	if err != nil {
		return err
	}

	eng, logger, err := buildEngine()
	if err != nil {
		return err
	}
	defer logger.Close()

	eng.Weave(context.Background(), date)
	return nil
}

func runAskCommand(args []string) error {
	fs := flag.NewFlagSet("ask", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		return fmt.Errorf("ask requires a question")
	}

	eng, logger, err := buildEngine()
	if err != nil {
		return err
	}
	defer logger.Close()

	fmt.Printf("Processing query: %s\n", question)
	answer, err := eng.Ask(context.Background(), question)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}

func runSearchCommand(args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	query := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if query == "" {
		return fmt.Errorf("search requires a query")
	}

	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	results := search.Search(query, paths.VaultDir(cfg.BaseDir))
	if results == "" {
		fmt.Println("No matches in vault.")
		return nil
	}
	fmt.Println(results)
	return nil
}

func runStatusCommand(args []string) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	register := status.NewRegister(paths.StatusFile(cfg.BaseDir))
	st := register.Read()

	fmt.Printf("status: %s\n", st.Status)
	if st.Task != nil {
		fmt.Printf("task: %s\n", *st.Task)
	}
	if st.PID != nil {
		fmt.Printf("pid: %d\n", *st.PID)
	}
	if st.StartedAt != nil {
		fmt.Printf("started: %s\n", *st.StartedAt)
	}
	return nil
}

func runModelsCommand(args []string) error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	llm := model.NewClient(cfg.Ollama.Host, cfg.Ollama.Model)
	ctx := context.Background()

	if !llm.IsAvailable(ctx) {
		return fmt.Errorf("ollama not reachable at %s", cfg.Ollama.Host)
	}

	names, err := llm.ListModels(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		marker := " "
		if name == cfg.Ollama.Model {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, name)
	}
	return nil
}

func runConfigCommand(args []string) error {
	sub := "show"
	if len(args) > 0 {
		sub = args[0]
	}

	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	switch sub {
	case "show":
		fmt.Printf("base_dir: %s\n", cfg.BaseDir)
		fmt.Printf("ollama: %s (model %s)\n", cfg.Ollama.Host, cfg.Ollama.Model)
		fmt.Printf("summary: enabled=%t at %02d:%02d\n", cfg.Summary.Enabled, cfg.Summary.Hour, cfg.Summary.Minute)
		fmt.Printf("notify: enabled=%t\n", cfg.Notify.Enabled)
		return nil
	case "check":
		if err := cfg.Validate(); err != nil {
			return err
		}
		llm := model.NewClient(cfg.Ollama.Host, cfg.Ollama.Model)
		if llm.IsAvailable(context.Background()) {
			fmt.Println("ok: configuration valid, ollama reachable")
		} else {
			fmt.Println("ok: configuration valid, ollama NOT reachable")
		}
		return nil
	case "path":
		fmt.Println(cfg.Path())
		return nil
	default:
		return fmt.Errorf("unknown config subcommand: %s", sub)
	}
}
