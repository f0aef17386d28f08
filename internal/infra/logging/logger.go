package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// InitLogger configures the global logger. When file is non-empty, output
// goes through a size-rotated file writer in addition to stderr.
func InitLogger(file string, maxSizeMB, maxBackups, maxAgeDays int, compress bool, level string) {
	var out io.Writer = os.Stderr
	if file != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   compress,
		})
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	mu.Lock()
	logger = zerolog.New(out).With().Timestamp().Logger().Level(lvl)
	mu.Unlock()
}

// SetLogLevel changes the level of the current logger at runtime.
func SetLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return
	}
	mu.Lock()
	logger = logger.Level(lvl)
	mu.Unlock()
}

// SetLoggerForTest replaces the global logger. Tests use this to capture
// output in a buffer.
func SetLoggerForTest(l zerolog.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

func emit(ev *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}

// Info logs at info level with alternating key/value pairs.
func Info(msg string, kv ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	emit(l.Info(), msg, kv)
}

// Warn logs at warn level with alternating key/value pairs.
func Warn(msg string, kv ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	emit(l.Warn(), msg, kv)
}

// Error logs at error level with alternating key/value pairs.
func Error(msg string, kv ...any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	emit(l.Error(), msg, kv)
}
