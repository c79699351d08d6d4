package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/blackwell-systems/combatlens/internal/combatlog"
	"github.com/spf13/cobra"
)

var (
	listenURL     string
	listenSubject string
	listenPlayer  string
	listenProfile string
	listenTimeout time.Duration
	listenSave    bool
)

// eventSource delivers one encounter from a live stream.
type eventSource interface {
	Collect(ctx context.Context, player string) (*combatlog.Log, error)
	Close()
}

var newEventSource = func(url, subject string, logger *slog.Logger) (eventSource, error) {
	return combatlog.NewNATSSource(url, subject, logger)
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Analyze an encounter streamed over NATS",
	Long: `Subscribe to a NATS subject carrying JSONL combat events, one line per
message, and analyze the encounter once its encounter_end line arrives.
Interrupting or timing out analyzes what was received so far.`,
	Args: cobra.NoArgs,
	RunE: runListen,
}

func init() {
	listenCmd.Flags().StringVar(&listenURL, "url", "", "NATS server URL (default from config)")
	listenCmd.Flags().StringVar(&listenSubject, "subject", "", "Subject to subscribe to (default from config)")
	listenCmd.Flags().StringVar(&listenPlayer, "player", "", "Only keep events whose source is this player")
	listenCmd.Flags().StringVar(&listenProfile, "profile", "", "Profile name or path to a .toml profile")
	listenCmd.Flags().DurationVar(&listenTimeout, "timeout", 0, "Stop waiting after this long (default from config)")
	listenCmd.Flags().BoolVar(&listenSave, "save", false, "Archive the report in the local database")
	rootCmd.AddCommand(listenCmd)
}

func runListen(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	url := firstNonEmpty(listenURL, e.cfg.NATS.URL)
	subject := firstNonEmpty(listenSubject, e.cfg.NATS.Subject)
	timeout := listenTimeout
	if timeout <= 0 {
		timeout = e.cfg.NATS.Timeout
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	src, err := newEventSource(url, subject, e.logger)
	if err != nil {
		return err
	}
	defer src.Close()

	e.logger.Info("waiting for encounter", "url", url, "subject", subject)
	log, err := src.Collect(ctx, listenPlayer)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("collecting events: %w", err)
	}
	if err != nil {
		e.logger.Warn("encounter incomplete, analyzing received events", "events", len(log.Events), "err", err)
	}

	reports, analyzeErr := analyzeLogs(context.Background(), e, []*combatlog.Log{log}, listenProfile)
	if listenSave {
		if err := saveReports(cmd.OutOrStdout(), reports); err != nil {
			return err
		}
	}

	if flagJSON {
		if err := writeJSON(cmd.OutOrStdout(), nonNil(reports)); err != nil {
			return err
		}
		return analyzeErr
	}
	for _, r := range nonNil(reports) {
		renderReport(cmd.OutOrStdout(), r, false)
	}
	return analyzeErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
