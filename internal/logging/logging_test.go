package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trading-journal/internal/config"
)

func TestNewLoggerWithConfig_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "journal.log")

	logger := NewLoggerWithConfig(LogConfig{Level: "info", File: true, FilePath: path, MaxSize: 1})
	logger.Info().Str("symbol", "NIFTY").Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"symbol":"NIFTY"`)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestFromConfig(t *testing.T) {
	lc := FromConfig(config.LoggingConfig{Level: "debug", Console: true, FilePath: "x.log", MaxSize: 3})
	assert.Equal(t, LogConfig{Level: "debug", Console: true, FilePath: "x.log", MaxSize: 3, MaxBackups: 5, MaxAge: 30}, lc)
}

func TestFromConfig_BlankFallsBackToDefaults(t *testing.T) {
	lc := FromConfig(config.LoggingConfig{File: true})
	def := DefaultLogConfig()
	assert.Equal(t, def.Level, lc.Level)
	assert.Equal(t, def.FilePath, lc.FilePath)
	assert.Equal(t, def.MaxSize, lc.MaxSize)
	assert.True(t, lc.File)
	assert.False(t, lc.Console)
}

func TestContextHelpers(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := zerolog.New(&buf)

	ctx := WithLogger(context.Background(), logger)
	l := WithOperation(FromContext(ctx), "update")
	LogTrade(l, "updated", 42, "TCS", true)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "update", entry["operation"])
	assert.Equal(t, float64(42), entry["trade_id"])
	assert.Equal(t, true, entry["flagged"])
}

func TestFromContext_Missing(t *testing.T) {
	l := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestConsoleLevel(t *testing.T) {
	assert.Equal(t, "???", consoleLevel(42))
	assert.Equal(t, "trace", consoleLevel("trace"))
	assert.Contains(t, consoleLevel("warn"), "WRN")
}

func TestConsoleLevel_HonoursNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	prev := color.NoColor
	t.Cleanup(func() { color.NoColor = prev })

	color.NoColor = true
	assert.Equal(t, "ERR", consoleLevel("error"))

	color.NoColor = false
	assert.Equal(t, "\x1b[31mERR\x1b[0m", consoleLevel("error"))
}
