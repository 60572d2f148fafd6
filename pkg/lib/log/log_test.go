package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseLevel 测试级别解析
func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        LevelInfo,
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		" error ": LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

// TestConfigure 测试重建默认 logger
func TestConfigure(t *testing.T) {
	prev := slog.Default()
	defer SetDefault(prev)

	var buf bytes.Buffer
	require.NoError(t, Configure("debug", FormatJSON, &buf))

	Logger("test/component").Debug("hello", "key", 42)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "test/component", line["component"])
	assert.Equal(t, float64(42), line["key"])
}

// TestConfigure_Invalid 测试非法配置
func TestConfigure_Invalid(t *testing.T) {
	prev := slog.Default()
	defer SetDefault(prev)

	assert.Error(t, Configure("loud", FormatText, nil))
	assert.Error(t, Configure("info", "xml", nil))
}

// TestLazyLogger_Level 测试级别过滤
func TestLazyLogger_Level(t *testing.T) {
	prev := slog.Default()
	defer SetDefault(prev)

	var buf bytes.Buffer
	require.NoError(t, Configure("warn", FormatText, &buf))

	l := Logger("test")
	l.Info("dropped")
	assert.False(t, l.Enabled(LevelInfo))
	assert.Zero(t, buf.Len())

	l.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
	assert.Contains(t, buf.String(), "component=test")
}

// TestLazyLogger_Context 测试带 context 的日志
func TestLazyLogger_Context(t *testing.T) {
	prev := slog.Default()
	defer SetDefault(prev)

	var buf bytes.Buffer
	require.NoError(t, Configure("info", FormatText, &buf))

	l := Logger("test/ctx")
	l.DebugContext(context.Background(), "dropped")
	assert.Zero(t, buf.Len())

	l.InfoContext(context.Background(), "started", "version", "v1")
	assert.Contains(t, buf.String(), "msg=started")
	assert.Contains(t, buf.String(), "component=test/ctx")
	assert.Contains(t, buf.String(), "version=v1")
}
