package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"

	"mealwheel/config"
	"mealwheel/conversation"
	"mealwheel/functions"
	"mealwheel/mcp"
	"mealwheel/mealwheel"
	"mealwheel/provider"
	"mealwheel/storage"
	"mealwheel/ui"
)

const (
	Version = "v0.01.00"
	License = "Apache-2.0"

	defaultHistoryLimit = 20

	exitFailure   = 1
	exitCancelled = 130
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "-h", "--help", "help":
			fmt.Print(ui.Usage(Version, License))
			return 0
		case "-v", "--version", "version":
			fmt.Printf("mealwheel %s (%s)\n", Version, License)
			return 0
		}
	}

	command := ""
	if len(args) > 0 {
		command = args[0]
	}

	load := config.Load
	if command == "history" || command == "mcp" {
		load = config.LoadOffline
	}

	cfg, err := load()
	if err != nil && command == "mcp" {
		// stdout belongs to the MCP transport
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}
	if err != nil {
		showError("Configuration Error", fmt.Sprintf("%v\n\nSettings: %s", err, config.GetSettingsFilePath()))
		return 1
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	switch command {
	case "history":
		return runHistory(cfg, args[1:])
	case "mcp":
		return runMCPServer(cfg)
	}

	userName := cfg.UserName
	if len(args) > 0 {
		userName = args[0]
	}

	p, err := provider.FromConfig(cfg)
	if err != nil {
		showError("Provider Error", err.Error())
		return 1
	}

	client, err := mealwheel.NewClient(cfg.MealWheelBaseURL, nil)
	if err != nil {
		showError("Configuration Error", err.Error())
		return 1
	}

	dispatcher, err := functions.NewMealWheelDispatcher(client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build function catalog: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runFn := func(ctx context.Context, observer conversation.Observer) (*conversation.Outcome, error) {
		runner := conversation.NewRunner(p, dispatcher, conversation.RunnerConfig{
			MaxRounds:      cfg.MaxRounds,
			RequestTimeout: cfg.RequestTimeout,
			SystemPrompt:   cfg.SystemPrompt,
			Observer:       observer,
		})
		return runner.Run(ctx, userName)
	}

	var outcome *conversation.Outcome
	var runErr error

	if plainMode() {
		outcome, runErr = runFn(ctx, ui.PlainObserver(os.Stderr))
	} else {
		final, err := tea.NewProgram(ui.NewRunView(ctx, userName, p.GetModel(), runFn), tea.WithContext(ctx)).Run()
		if err != nil {
			code := exitCode(err)
			if code != exitCancelled {
				fmt.Fprintf(os.Stderr, "Error running mealwheel: %v\n", err)
			}
			return code
		}
		view, ok := final.(ui.RunView)
		if !ok || !view.Done() {
			// Quit before the run finished
			return exitCancelled
		}
		outcome, runErr = view.Outcome()
	}

	if cfg.HistoryEnabled && outcome != nil {
		recordRun(cfg, outcome, p.GetModel(), runErr)
	}

	if runErr != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Main] Run failed: %v", runErr)
		}
		if plainMode() {
			fmt.Fprintln(os.Stderr, ui.DescribeError(runErr))
		}
		return exitCode(runErr)
	}

	if plainMode() {
		fmt.Println(outcome.Selected.Name)
	}
	return 0
}

// exitCode maps a run or program error to the process exit status. A run
// stopped by a signal or by the user exits with 130. A recovered panic is a
// failure even though bubbletea also reports it as killed.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, tea.ErrProgramPanic):
		return exitFailure
	case errors.Is(err, context.Canceled),
		errors.Is(err, tea.ErrProgramKilled),
		errors.Is(err, tea.ErrInterrupted):
		return exitCancelled
	default:
		return exitFailure
	}
}

func runMCPServer(cfg *config.Config) int {
	client, err := mealwheel.NewClient(cfg.MealWheelBaseURL, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		return 1
	}

	dispatcher, err := functions.NewMealWheelDispatcher(client)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build function catalog: %v\n", err)
		return 1
	}

	if err := mcp.ServeStdio(dispatcher, Version); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server stopped: %v\n", err)
		return 1
	}
	return 0
}

func runHistory(cfg *config.Config, args []string) int {
	store, err := storage.NewRunStore(cfg.DataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open run history: %v\n", err)
		return 1
	}
	defer store.Close()

	if len(args) > 0 && args[0] == "export" {
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: mealwheel history export <run-id> [path]")
			return 2
		}
		rec, err := store.Load(args[1])
		if err != nil || rec == nil {
			fmt.Fprintf(os.Stderr, "Run %s not found\n", args[1])
			return 1
		}
		path := storage.GenerateExportPath(*rec)
		if len(args) > 2 {
			path = config.ExpandPath(args[2])
		}
		if err := store.ExportToJSON(rec.ID, path); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			return 1
		}
		fmt.Println(path)
		return 0
	}

	limit := defaultHistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			fmt.Fprintf(os.Stderr, "invalid history limit %q\n", args[0])
			return 2
		}
		limit = n
	}

	runs, err := store.List(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read run history: %v\n", err)
		return 1
	}

	fmt.Print(ui.RenderHistory(runs, terminalWidth()))
	return 0
}

func recordRun(cfg *config.Config, outcome *conversation.Outcome, modelName string, runErr error) {
	store, err := storage.NewRunStore(cfg.DataDir())
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Main] Warning: run history unavailable: %v", err)
		}
		return
	}
	defer store.Close()

	if err := store.Record(storage.NewRunRecord(outcome, cfg.Provider, modelName, runErr)); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("[Main] Warning: failed to record run: %v", err)
	}
}

func showError(title, message string) {
	if plainMode() {
		fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
		return
	}

	p := tea.NewProgram(ui.NewErrorModal(title, message), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
	}
}

func plainMode() bool {
	v := os.Getenv("MEALWHEEL_PLAIN")
	return v == "1" || v == "true"
}

func terminalWidth() int {
	if width, _, err := term.GetSize(os.Stdout.Fd()); err == nil && width > 0 {
		return width
	}
	return 100
}
