package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

type Options struct {
	Level        string
	Format       string
	Service      string
	LogstashAddr string
}

// New builds the process logger. When a Logstash address is configured the
// returned closer must be closed on shutdown to flush the sink.
func New(opts Options) (*slog.Logger, io.Closer) {
	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}

	if opts.LogstashAddr != "" {
		sink, err := NewLogstashSink(opts.LogstashAddr)
		if err != nil {
			log.Printf("logstash disabled: %v", err)
		} else {
			out = io.MultiWriter(os.Stdout, sink)
			closer = sink
		}
	}

	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	var handler slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		handler = slog.NewTextHandler(out, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(out, handlerOpts)
	}

	logger := slog.New(handler)
	if opts.Service != "" {
		logger = logger.With("service", opts.Service)
	}
	log.SetFlags(0)
	log.SetOutput(out)
	return logger, closer
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard is a logger for tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
