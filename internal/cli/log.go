// Package cli implements the minbump command-line interface.
//
// # Commands
//
//   - update: minimal updates of dependents for a required dependency version
//   - closure: the dependency closure of a release (text, json, dot, svg)
//   - versions: published versions of a package
//   - dependents: top-level packages in a yarn.lock that pull in a package
//   - serve: the resolver as a JSON API
//   - cache, config: local cache and configuration
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// traces registry fetches and search probes, and --log-format for json or
// logfmt output when minbump runs under a log collector. Loggers are passed
// through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/minbump/pkg/errors"
)

const (
	logFormatText   = "text"
	logFormatJSON   = "json"
	logFormatLogfmt = "logfmt"
)

// newLogger creates a logger writing to w at level, with "HH:MM:SS.ms" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func parseLogFormat(name string) (log.Formatter, error) {
	switch name {
	case "", logFormatText:
		return log.TextFormatter, nil
	case logFormatJSON:
		return log.JSONFormatter, nil
	case logFormatLogfmt:
		return log.LogfmtFormatter, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown log format %q (want text, json or logfmt)", name)
}

// progress logs how long an operation took. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time as a field, e.g.
// "Resolved 12 dependents elapsed=1.234s".
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a copy of ctx carrying l.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
