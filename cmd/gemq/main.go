package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jask/gemq/internal/config"
	"github.com/jask/gemq/internal/history"
	"github.com/jask/gemq/internal/secrets"
	"github.com/jask/gemq/internal/tui"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// the TUI owns the terminal, so a dead history db downgrades to a
	// warning instead of aborting
	var store *history.Store
	if s, err := history.Open(cfg.History.Path); err != nil {
		log.Warn().Err(err).Str("path", cfg.History.Path).Msg("history disabled")
	} else {
		store = s
		defer store.Close()
	}

	seed, err := seedPrompt()
	if err != nil {
		fmt.Fprintf(os.Stderr, "read prompt: %v\n", err)
		os.Exit(1)
	}

	app := tui.New(ctx, cfg, store, secrets.Resolver(cfg), seed)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging sends zerolog to a file; stdout and stderr belong to the TUI.
func setupLogging() (func(), error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home, ".local", "state", "gemq")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, "gemq.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	level := zerolog.InfoLevel
	if os.Getenv("DEBUG") == "1" {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(f).Level(level).With().Timestamp().Logger()
	return func() { f.Close() }, nil
}

// seedPrompt pre-fills the editor from a file argument, or from piped stdin
// when no argument is given.
func seedPrompt() (string, error) {
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	stat, err := os.Stdin.Stat()
	if err == nil && stat.Mode()&os.ModeCharDevice == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", nil
}
