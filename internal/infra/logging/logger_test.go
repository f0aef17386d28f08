package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// setupTestLogger configures a logger with a custom writer for tests
func setupTestLogger(output *bytes.Buffer, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	SetLoggerForTest(zerolog.New(output).With().Timestamp().Logger().Level(lvl))
}

func TestInfoLogging(t *testing.T) {
	var buf bytes.Buffer
	setupTestLogger(&buf, "info")

	Info("render complete", "bytes", 1234, "cached", false)

	out := buf.String()
	if !strings.Contains(out, "render complete") {
		t.Error("Expected log message not found in output")
	}
	if !strings.Contains(out, `"bytes":1234`) || !strings.Contains(out, `"cached":false`) {
		t.Error("Expected key-value pairs not found in output")
	}
}

func TestWarnLogging(t *testing.T) {
	var buf bytes.Buffer
	setupTestLogger(&buf, "warn")

	Warn("browser restarted", "attempt", 2)

	if !strings.Contains(buf.String(), "browser restarted") || !strings.Contains(buf.String(), `"attempt":2`) {
		t.Error("Warn log output missing expected content")
	}
}

func TestErrorLogging(t *testing.T) {
	var buf bytes.Buffer
	setupTestLogger(&buf, "error")

	Error("launch failed", "fatal", false)

	if !strings.Contains(buf.String(), "launch failed") || !strings.Contains(buf.String(), `"fatal":false`) {
		t.Error("Error log output missing expected content")
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	setupTestLogger(&buf, "warn")

	SetLogLevel("info")
	Info("should be visible")

	if !strings.Contains(buf.String(), "should be visible") {
		t.Error("Expected info log after SetLogLevel not found")
	}
}

func TestOddKeyValuePairsIgnored(t *testing.T) {
	var buf bytes.Buffer
	setupTestLogger(&buf, "info")

	Info("dangling key", "path")

	out := buf.String()
	if !strings.Contains(out, "dangling key") {
		t.Error("Expected message despite dangling key")
	}
	if strings.Contains(out, `"path"`) {
		t.Error("Dangling key should not be emitted")
	}
}
