// Package app contains the Cobra command tree for combatlens.
package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/blackwell-systems/combatlens/internal/config"
	"github.com/blackwell-systems/combatlens/internal/logging"
	"github.com/blackwell-systems/combatlens/internal/output"
	"github.com/blackwell-systems/combatlens/internal/profile"
	"github.com/spf13/cobra"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagVerbose bool
	flagConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "combatlens",
	Short: "Performance signals and suggestions from combat logs",
	Long: `combatlens reads a combat log for one encounter, reconstructs buff
windows and resource pools, measures cast efficiency against the abilities'
cooldowns, and produces severity-ranked suggestions with supporting
statistics.

Profiles describe what to measure for a specialization. Built-in profiles
can be listed with 'combatlens profiles'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, "combatlens", appVersion)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Use a subcommand:")
		fmt.Fprintln(w, "  analyze   Analyze one or more JSONL combat logs")
		fmt.Fprintln(w, "  profiles  List or show analysis profiles")
		fmt.Fprintln(w, "  history   Show archived reports")
		fmt.Fprintln(w, "  listen    Analyze an encounter streamed over NATS")
		return nil
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/combatlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
}

// env is what every command needs after flags are parsed.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	loader profile.Loader
}

// setup loads the config, builds the logger and applies color settings.
func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Log.Level
	if flagVerbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("configuring logging: %w", err)
	}

	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		output.AutoColor(f, cfg.Output.Color && !flagNoColor)
	} else {
		output.SetNoColor(true)
	}

	offsets := cfg.Thresholds.Offsets()
	return &env{
		cfg:    cfg,
		logger: logger,
		loader: profile.Loader{Dirs: cfg.ProfileDirs, Offsets: &offsets},
	}, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
