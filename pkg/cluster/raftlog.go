package cluster

import (
	"context"
	"io"
	"log/slog"

	"github.com/hashicorp/go-hclog"
)

// newRaftLogger returns the hclog.Logger handed to raft, its transport and
// its snapshot store. Every line is forwarded to logger, so raft output
// shares the node's handler, writer and format.
func newRaftLogger(logger *slog.Logger, level string) hclog.Logger {
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.Info
	}
	l := hclog.NewInterceptLogger(&hclog.LoggerOptions{
		Name:   "raft",
		Level:  lvl,
		Output: io.Discard,
	})
	l.RegisterSink(&slogSink{logger: logger.With("component", "raft"), level: lvl})
	return l
}

// slogSink receives every intercepted hclog line regardless of level, so
// it filters on its own.
type slogSink struct {
	logger *slog.Logger
	level  hclog.Level
}

func (s *slogSink) Accept(name string, level hclog.Level, msg string, args ...interface{}) {
	if level < s.level || level == hclog.Off {
		return
	}
	lvl := slogLevel(level)
	ctx := context.Background()
	if !s.logger.Enabled(ctx, lvl) {
		return
	}
	attrs := make([]any, 0, len(args)+2)
	attrs = append(attrs, "logger", name)
	attrs = append(attrs, args...)
	s.logger.Log(ctx, lvl, msg, attrs...)
}

func slogLevel(l hclog.Level) slog.Level {
	switch l {
	case hclog.Trace, hclog.Debug:
		return slog.LevelDebug
	case hclog.Warn:
		return slog.LevelWarn
	case hclog.Error:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
