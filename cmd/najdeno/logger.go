package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/erazemk/najdeno/internal/config"
)

// levelRouter is a zerolog.LevelWriter that routes debug through warn to
// stdout and error and above to stderr.
type levelRouter struct {
	stdout io.Writer
	stderr io.Writer
}

func (lr *levelRouter) Write(p []byte) (int, error) {
	return lr.stdout.Write(p)
}

func (lr *levelRouter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel {
		return lr.stderr.Write(p)
	}
	return lr.stdout.Write(p)
}

// setupLogger configures the process logger. If logPath is non-empty, all
// levels are also written to that file as JSON. Returns a cleanup function
// that closes the log file (if opened).
func setupLogger(cfg config.LoggingConfig, logPath string) (zerolog.Logger, func(), error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("parsing log level: %w", err)
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var stdoutW, stderrW io.Writer = os.Stdout, os.Stderr
	if cfg.Format == "text" {
		stdoutW = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		stderrW = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	var out io.Writer = &levelRouter{stdout: stdoutW, stderr: stderrW}
	var cleanup func()

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		out = zerolog.MultiLevelWriter(out, f)
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	return logger, cleanup, nil
}
