package combatlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NATSSource reads one encounter from a NATS subject. Every message carries
// exactly one JSONL line in the same format ParseFile accepts.
type NATSSource struct {
	nc      *nats.Conn
	subject string
	logger  *slog.Logger
}

// NewNATSSource connects to the given server URL.
func NewNATSSource(url, subject string, logger *slog.Logger) (*NATSSource, error) {
	nc, err := nats.Connect(url, nats.Name("combatlens"))
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NATSSource{nc: nc, subject: subject, logger: logger}, nil
}

// Close drains the underlying connection.
func (s *NATSSource) Close() {
	_ = s.nc.Drain()
}

// Collect subscribes to the subject and decodes messages until an
// encounter_end line arrives or ctx is done. Cancelling before the end line
// returns the partial log together with the context error.
func (s *NATSSource) Collect(ctx context.Context, player string) (*Log, error) {
	sub, err := s.nc.SubscribeSync(s.subject)
	if err != nil {
		return nil, fmt.Errorf("subscribe %q: %w", s.subject, err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	dec := NewDecoder("nats://"+s.subject, player)
	return collect(ctx, dec, sub.NextMsgWithContext, s.logger)
}

// collect pumps messages from next into dec. It is split out from Collect so
// the loop can be driven without a server.
func collect(ctx context.Context, dec *Decoder, next func(context.Context) (*nats.Msg, error), logger *slog.Logger) (*Log, error) {
	received := 0
	for {
		msg, err := next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				logger.Warn("nats source stopped before encounter end", "messages", received)
				return dec.Log(), err
			}
			return nil, fmt.Errorf("next message: %w", err)
		}
		received++
		if dec.Feed(msg.Data) {
			logger.Debug("nats source received encounter end", "messages", received)
			return dec.Log(), nil
		}
	}
}
