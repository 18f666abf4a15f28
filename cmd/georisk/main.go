// Command georisk scores geopolitical risk for a set of countries and, optionally,
// their potential to escalate into a global war.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/georisk/internal/config"
	"github.com/rewired-gh/georisk/internal/logger"
	"github.com/rewired-gh/georisk/internal/metrics"
	"github.com/rewired-gh/georisk/internal/storage"
	"github.com/rewired-gh/georisk/internal/telegram"
)

// app carries what every subcommand needs once the root command has loaded config.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *metrics.Metrics
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.Fatal("%v", err)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	a := &app{}

	cmd := &cobra.Command{
		Use:           "georisk",
		Short:         "Geopolitical risk synthesis",
		Long:          "Combine five risk pillars into an overall country-set risk assessment and model escalation toward global war",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load configuration
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			// Validate configuration
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger.Init(cfg.Logging.Level, cfg.Logging.Format)
			if configPath != "" {
				logger.Debug("Configuration loaded from %s", configPath)
			}

			m, err := metrics.New()
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.log = logger.Default()
			a.metrics = m
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			defer func() { _ = a.log.Sync() }()
			if a.cfg.Metrics.TextfilePath == "" {
				return nil
			}
			return a.metrics.WriteTextfile(a.cfg.Metrics.TextfilePath)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")

	cmd.AddCommand(newAssessCmd(a))
	cmd.AddCommand(newWorldWarCmd(a))
	cmd.AddCommand(newHistoryCmd(a))

	return cmd
}

func (a *app) openStorage() (*storage.Storage, error) {
	store, err := storage.New(a.cfg.Storage.MaxAssessments, a.cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return store, nil
}

func (a *app) closeStorage(store *storage.Storage) {
	if err := store.Close(); err != nil {
		a.log.Error("Failed to close storage: %v", err)
	}
}

// telegramClient returns nil when notifications are disabled.
func (a *app) telegramClient() (*telegram.Client, error) {
	if !a.cfg.Telegram.Enabled {
		a.log.Debug("Telegram notifications disabled")
		return nil, nil
	}
	client, err := telegram.NewClient(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Telegram.MaxRetries, a.cfg.Telegram.RetryDelayBase)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram client: %w", err)
	}
	return client, nil
}

// rotate trims stored history after a save. Failures are logged only.
func (a *app) rotate(ctx context.Context, store *storage.Storage) {
	removed, err := store.RotateAssessments(ctx)
	if err != nil {
		a.log.Warn("Failed to rotate assessments: %v", err)
		return
	}
	if removed == 0 {
		return
	}
	remaining, err := store.CountAssessments(ctx)
	if err != nil {
		a.log.Warn("Failed to count assessments: %v", err)
		return
	}
	a.log.Debug("Rotated %d stored assessments, %d risk assessments remain", removed, remaining)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
