package testhelpers

import (
	"github.com/myrjola/interviewdash/internal/logging"
	"io"
	"log/slog"
	"strings"
	"testing"
)

// NewLogger creates a new logger with the given log sink such as io.Discard.
func NewLogger(logSink io.Writer) *slog.Logger {
	handler := logging.NewContextHandler(slog.NewTextHandler(logSink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	return slog.New(handler)
}

// testWriter forwards each log line to [testing.TB.Log] so that it is only printed for failing or verbose tests.
type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// NewTestLogger creates a logger that writes through t.
//
// Do not log through it after the test has finished, goroutines outliving the test have to use NewLogger.
func NewTestLogger(t testing.TB) *slog.Logger {
	return NewLogger(testWriter{t: t})
}
