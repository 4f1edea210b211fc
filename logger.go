package superpix

import (
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with segmentation-specific helpers. The core
// numeric passes never log; the pipeline and server report through this.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. A nil handler falls
// back to a text handler on stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger writing human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, nil))
}

// WithImage tags the logger with image dimensions.
func (l *Logger) WithImage(width, height int) *Logger {
	return &Logger{Logger: l.Logger.With("width", width, "height", height)}
}

// WithK tags the logger with the requested superpixel count.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{Logger: l.Logger.With("k", k)}
}

// LogStage reports a completed pipeline stage and its duration.
func (l *Logger) LogStage(stage string, d time.Duration) {
	l.Debug("stage completed", "stage", stage, "duration", d)
}

// LogSegmentation reports a finished segmentation run.
func (l *Logger) LogSegmentation(numLabels int, d time.Duration) {
	l.Info("segmentation completed", "labels", numLabels, "duration", d)
}
