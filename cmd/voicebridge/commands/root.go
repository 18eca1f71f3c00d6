package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/voicebridge/cmd/voicebridge/internal/config"
	"github.com/haivivi/voicebridge/pkg/session"
)

var (
	// Global flags
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "voicebridge",
	Short: "Telephony to realtime AI voice bridge",
	Long: `voicebridge - connect phone calls to realtime AI voice services.

Commands:
  serve      Run the media bridge server
  dial       Place an outbound call into an AI meeting
  sessions   List live call sessions
  version    Show version information

Examples:
  # Run the media server
  voicebridge serve -f voicebridge.yaml

  # Call a number and drop it into an AI meeting when answered
  voicebridge dial -f voicebridge.yaml --to +15550199

  # Inspect in-flight calls
  voicebridge sessions -f voicebridge.yaml`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", "voicebridge.yaml", "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig reads the configured file, honoring --verbose as a level
// override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the process logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// openStore opens the configured session store backend.
func openStore(cfg *config.Config) (session.Store, error) {
	if cfg.Store.InMemory {
		return session.NewMemory(session.DefaultTTL), nil
	}
	if cfg.Store.Dir == "" {
		return nil, fmt.Errorf("config: store.dir is required (or set store.in_memory)")
	}
	return session.NewBadger(session.BadgerOptions{Dir: cfg.Store.Dir})
}
