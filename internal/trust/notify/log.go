package notify

import (
	"context"
	"log/slog"

	"trustplane/internal/trust/ports"
)

// LogSink writes notifications to the structured log instead of a broker.
// Used when no Kafka brokers are configured (local runs, tests).
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(ctx context.Context, n ports.Notification) error {
	s.logger.InfoContext(ctx, "notification",
		"kind", n.Kind,
		"user_id", n.UserID,
		"message", n.Message,
	)
	return nil
}
