package notify

import (
	"context"
	"log/slog"
)

// =============================================================================
// LogNotifier
// =============================================================================

// LogNotifier logs notifications using slog.
type LogNotifier struct {
	Logger *slog.Logger
	// Level, if set, is used for every event instead of the level derived
	// from its severity.
	Level *slog.Level
}

// LogOption configures a LogNotifier.
type LogOption func(*LogNotifier)

// WithLogLevel logs every event at level.
func WithLogLevel(level slog.Level) LogOption {
	return func(n *LogNotifier) {
		n.Level = &level
	}
}

// NewLogNotifier creates a notifier that logs to the given logger.
// If logger is nil, uses the default slog logger.
func NewLogNotifier(logger *slog.Logger, opts ...LogOption) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	n := &LogNotifier{Logger: logger}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(ctx context.Context, event Event) error {
	level := slog.LevelInfo
	switch event.Severity {
	case SeverityWarning:
		level = slog.LevelWarn
	case SeverityError:
		level = slog.LevelError
	}
	if n.Level != nil {
		level = *n.Level
	}

	n.Logger.Log(ctx, level, event.Message,
		"type", event.Type,
		"run_id", event.RunID,
		"package", event.Package,
		"version", event.Version,
		"metadata", event.Metadata,
	)
	return nil
}
