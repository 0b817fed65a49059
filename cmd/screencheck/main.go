package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/screencheck/screencheck/internal/app"
	"github.com/screencheck/screencheck/internal/config"
	"github.com/screencheck/screencheck/internal/logging"
	"github.com/screencheck/screencheck/internal/media"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (default: user config dir, optional)")
	provider := flag.String("provider", "", "Capture provider: desktop or simulated")
	outcome := flag.String("outcome", "", "Simulated picker outcome: grant, cancel, deny, error or unsupported")
	logPath := flag.String("log", "", "Log file path")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn or error")
	flag.Parse()

	if err := run(*configPath, *provider, *outcome, *logPath, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, provider, outcome, logPath, logLevel string) error {
	explicit := configPath != ""
	if !explicit {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath, !explicit)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if provider != "" {
		cfg.Provider = provider
	}
	if outcome != "" {
		// An outcome only makes sense for the scripted picker.
		cfg.Simulated.Outcome = outcome
		if provider == "" {
			cfg.Provider = config.ProviderSimulated
		}
	}
	if logPath != "" {
		cfg.Log.Path = logPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, closer, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closer.Close()

	devices := newDevices(cfg, logger.WithPrefix("media"))
	logger.Info("starting", "provider", devices.Name(), "config", configPath, "frame_rate", cfg.Capture.FrameRate)

	m := app.New(devices,
		app.WithLogger(logger),
		app.WithFrameRate(cfg.Capture.FrameRate),
		app.WithMaxPreviewFPS(cfg.Preview.MaxFPS),
	)
	p := tea.NewProgram(m, tea.WithAltScreen())

	final, err := p.Run()
	if fm, ok := final.(app.Model); ok {
		fm.Close()
	} else {
		m.Close()
	}
	if err != nil {
		logger.Error("program exited", "err", err)
		return err
	}
	logger.Info("bye")
	return nil
}

func newDevices(cfg *config.Config, logger *log.Logger) media.MediaDevices {
	if cfg.Provider == config.ProviderSimulated {
		return media.NewSimulated(cfg.SimulatedMedia(), logger)
	}
	return media.NewDesktop(cfg.Capture.Display, logger)
}
