// 指示: miu200521358
package mlogging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/miu200521358/mu_motion_optimizer/pkg/shared/base/logging"
)

func TestLoggerWritesLeveledMessages(t *testing.T) {
	out := bytes.NewBuffer(nil)
	logger := NewLogger(out)

	logger.Info("keys reduced: %d -> %d", 10, 4)
	logger.Warn("unknown joint: %s", "左腕")

	text := out.String()
	if !strings.Contains(text, "keys reduced: 10 -> 4") {
		t.Fatalf("info message missing: %s", text)
	}
	if !strings.Contains(text, "unknown joint: 左腕") {
		t.Fatalf("warn message missing: %s", text)
	}
}

func TestLoggerSuppressesDebugBelowLevel(t *testing.T) {
	out := bytes.NewBuffer(nil)
	logger := NewLogger(out)
	logger.SetLevel(logging.LOG_LEVEL_INFO)

	logger.Debug("hidden message")

	if strings.Contains(out.String(), "hidden message") {
		t.Fatalf("debug message should be suppressed: %s", out.String())
	}

	logger.SetLevel(logging.LOG_LEVEL_DEBUG)
	logger.Debug("visible message")
	if !strings.Contains(out.String(), "visible message") {
		t.Fatalf("debug message should be written: %s", out.String())
	}
}

func TestLoggerVerboseRequiresEnabledChannel(t *testing.T) {
	out := bytes.NewBuffer(nil)
	logger := NewLogger(out)

	logger.Verbose(logging.VERBOSE_INDEX_DECIMATION, "candidate rejected")
	if strings.Contains(out.String(), "candidate rejected") {
		t.Fatalf("verbose message should be suppressed: %s", out.String())
	}

	logger.EnableVerbose(logging.VERBOSE_INDEX_DECIMATION)
	if !logger.IsVerboseEnabled(logging.VERBOSE_INDEX_DECIMATION) {
		t.Fatalf("verbose channel should be enabled")
	}
	logger.Verbose(logging.VERBOSE_INDEX_DECIMATION, "candidate accepted")
	if !strings.Contains(out.String(), "candidate accepted") {
		t.Fatalf("verbose message should be written: %s", out.String())
	}
	if logger.IsVerboseEnabled(logging.VERBOSE_INDEX_IO) {
		t.Fatalf("other channels should stay disabled")
	}
}

func TestMessageBufferKeepsFormattedLines(t *testing.T) {
	logger := NewLogger(bytes.NewBuffer(nil))

	logger.Info("first")
	logger.Error("second: %v", "詳細")

	lines := logger.MessageBuffer().Lines()
	if len(lines) != 2 {
		t.Fatalf("buffered line count mismatch: %d != 2", len(lines))
	}
	if lines[0] != "[INFO] first" {
		t.Fatalf("buffered line mismatch: %s", lines[0])
	}
	if lines[1] != "[ERROR] second: 詳細" {
		t.Fatalf("buffered line mismatch: %s", lines[1])
	}

	logger.MessageBuffer().Clear()
	if got := logger.MessageBuffer().Lines(); len(got) != 0 {
		t.Fatalf("buffer should be empty after clear: %v", got)
	}
}

func TestDefaultLoggerFallsBackToNop(t *testing.T) {
	prevLogger := logging.DefaultLogger()
	defer logging.SetDefaultLogger(prevLogger)

	logging.SetDefaultLogger(nil)
	nop := logging.DefaultLogger()
	if nop == nil {
		t.Fatalf("default logger should never be nil")
	}
	nop.Info("goes nowhere")

	logger := NewLogger(bytes.NewBuffer(nil))
	logging.SetDefaultLogger(logger)
	if logging.DefaultLogger() != logging.ILogger(logger) {
		t.Fatalf("default logger should be the registered one")
	}
}
