package tivity

import (
	"os"

	"github.com/inconshreveable/log15"
)

// Logger records store and persistence events. Context is passed as
// alternating key/value pairs. A log15.Logger satisfies it directly.
type Logger interface {
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
}

// DefaultLogger returns a log15 logger tagged with module=tivity that writes
// warnings and errors to stderr in logfmt.
func DefaultLogger() Logger {
	logger := log15.New("module", "tivity")
	logger.SetHandler(log15.LvlFilterHandler(log15.LvlWarn, log15.StreamHandler(os.Stderr, log15.LogfmtFormat())))
	return logger
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
