// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/overflowy/browserpilot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// -- Test Helper Functions --

// bufferSyncer adapts a bytes.Buffer into a zapcore.WriteSyncer so tests can
// capture console output without touching os.Stdout.
type bufferSyncer struct {
	bytes.Buffer
}

func (b *bufferSyncer) Sync() error { return nil }

// -- Test Cases --

func TestInitialize(t *testing.T) {

	t.Run("should write console output when display_stdout is set", func(t *testing.T) {
		ResetForTest()
		buf := &bufferSyncer{}

		cfg := config.LoggingConfig{
			Level:         "debug",
			DisplayStdout: true,
		}
		Initialize(cfg, buf)
		logger := GetLogger()
		logger.Info("This is a test message.")

		output := buf.String()
		assert.Contains(t, output, "INFO", "Output should contain the log level")
		assert.Contains(t, output, "This is a test message.", "Output should contain the message")
	})

	t.Run("should write JSON records to a log file if configured", func(t *testing.T) {
		ResetForTest()
		logFile := filepath.Join(t.TempDir(), "run.log")

		cfg := config.LoggingConfig{
			Level:         "debug",
			Path:          logFile,
			DisplayStdout: false,
			Mode:          "append",
		}
		Initialize(cfg, zapcore.AddSync(&bufferSyncer{}))
		logger := GetLogger()
		logger.Error("This should go to the file.", zap.String("key", "value"))
		Sync()

		content, err := os.ReadFile(logFile)
		require.NoError(t, err)

		// -- the output should be a valid JSON object --
		var logEntry map[string]interface{}
		err = json.Unmarshal(bytes.Split(bytes.TrimSpace(content), []byte("\n"))[0], &logEntry)
		require.NoError(t, err, "Log output should be valid JSON")

		assert.Equal(t, "ERROR", logEntry["level"])
		assert.Equal(t, "This should go to the file.", logEntry["msg"])
		assert.Equal(t, "value", logEntry["key"])
	})

	t.Run("write mode should truncate an existing log file", func(t *testing.T) {
		ResetForTest()
		logFile := filepath.Join(t.TempDir(), "run.log")
		require.NoError(t, os.WriteFile(logFile, []byte("stale content from a previous run\n"), 0o644))

		cfg := config.LoggingConfig{
			Level: "info",
			Path:  logFile,
			Mode:  "write",
		}
		Initialize(cfg, zapcore.AddSync(&bufferSyncer{}))
		GetLogger().Info("fresh run")
		Sync()

		content, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.NotContains(t, string(content), "stale content")
		assert.Contains(t, string(content), "fresh run")
	})

	t.Run("should respect the configured level", func(t *testing.T) {
		ResetForTest()
		buf := &bufferSyncer{}

		cfg := config.LoggingConfig{
			Level:         "warning",
			DisplayStdout: true,
		}
		Initialize(cfg, buf)
		logger := GetLogger()
		logger.Info("filtered out")
		logger.Warn("kept")

		output := buf.String()
		assert.NotContains(t, output, "filtered out")
		assert.Contains(t, output, "kept")
	})

	t.Run("should only initialize once", func(t *testing.T) {
		ResetForTest()
		buf := &bufferSyncer{}

		// -- first initialization --
		Initialize(config.LoggingConfig{Level: "info", DisplayStdout: true}, buf)
		logger1 := GetLogger()

		// -- second, should be ignored --
		Initialize(config.LoggingConfig{Level: "debug", DisplayStdout: true}, buf)
		logger2 := GetLogger()

		// -- check that the logger is the same instance with the first config --
		assert.Equal(t, logger1, logger2)
		logger2.Debug("debug record")
		assert.False(t, strings.Contains(buf.String(), "debug record"),
			"first config's info level should still apply")
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zap.InfoLevel, parseLevel("info"))
	assert.Equal(t, zap.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zap.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zap.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zap.FatalLevel, parseLevel("critical"))
	// Unknown names fall back to info rather than failing.
	assert.Equal(t, zap.InfoLevel, parseLevel("chatty"))
}

func TestGetLogger(t *testing.T) {
	t.Run("should return a fallback logger if not initialized", func(t *testing.T) {
		ResetForTest()
		// -- we do not call Initialize() here --
		logger := GetLogger()
		require.NotNil(t, logger)
	})

	t.Run("should return the global logger after initialization", func(t *testing.T) {
		ResetForTest()
		Initialize(config.LoggingConfig{Level: "info", DisplayStdout: true}, zapcore.AddSync(&bufferSyncer{}))

		logger := GetLogger()
		// The pointer to the logger instance should be the same as the one stored.
		assert.Equal(t, globalLogger.Load(), logger)
	})
}
