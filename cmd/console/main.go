package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/turn-engine/internal/config"
	"github.com/jwebster45206/turn-engine/internal/logger"
	"github.com/jwebster45206/turn-engine/internal/services"
	"github.com/jwebster45206/turn-engine/internal/storage"
)

// ConsoleConfig carries what the UI needs to start games.
type ConsoleConfig struct {
	*config.Config
	Catalog *storage.ScenarioCatalog
	Backend services.Backend
	Logger  *slog.Logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\nTry: LLM_PROVIDER=mock %s\n", err, os.Args[0])
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if path := os.Getenv("CONSOLE_LOG"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = f.Close()
		}()
		logOut = f
	}
	log := logger.SetupWriter(cfg, logOut)

	backend, err := services.NewBackend(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create generation backend: %v\n", err)
		os.Exit(1)
	}

	ccfg := &ConsoleConfig{
		Config:  cfg,
		Catalog: storage.NewScenarioCatalog(cfg.ScenarioDir, log),
		Backend: backend,
		Logger:  log,
	}

	ui := NewConsoleUI(ccfg)
	p := tea.NewProgram(ui,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	final, err := p.Run()
	if m, ok := final.(ConsoleUI); ok && m.game != nil {
		m.game.Stop()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
