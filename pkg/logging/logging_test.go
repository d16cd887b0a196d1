package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		// Lowercase
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},

		// Uppercase
		{"DEBUG", LevelDebug},
		{"WARNING", LevelWarn},
		{"ERROR", LevelError},

		// Mixed case and padding
		{"Debug", LevelDebug},
		{"dEbUg", LevelDebug},
		{" warn ", LevelWarn},

		// Empty and unknown default to Info
		{"", LevelInfo},
		{"trace", LevelInfo},
		{"fatal", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"Json", FormatJSON},
		{"text", FormatText},
		{"", FormatText},
		{"yaml", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseFormat(tt.input))
		})
	}
}

func TestValidLevelAndFormat(t *testing.T) {
	assert.True(t, ValidLevel("Warning"))
	assert.True(t, ValidLevel(""))
	assert.False(t, ValidLevel("trace"))

	assert.True(t, ValidFormat("JSON"))
	assert.False(t, ValidFormat("yaml"))
}

func TestNew_Formats(t *testing.T) {
	var text bytes.Buffer
	New(Config{Level: LevelInfo, Format: FormatText, Output: &text}).Info("server started", "port", 3000)
	assert.Contains(t, text.String(), "msg=\"server started\"")
	assert.Contains(t, text.String(), "port=3000")

	var js bytes.Buffer
	New(Config{Level: LevelInfo, Format: FormatJSON, Output: &js}).Info("server started", "port", 3000)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &entry))
	assert.Equal(t, "server started", entry["msg"])
	assert.EqualValues(t, 3000, entry["port"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: LevelWarn, Output: &buf})
	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_FileTee(t *testing.T) {
	var out, file bytes.Buffer
	log := New(Config{Level: LevelInfo, Format: FormatText, Output: &out, File: &file})
	log.With("request_id", "abc").Info("request completed", "status", 200)

	assert.Contains(t, out.String(), "request_id=abc")

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "abc", entry["request_id"])
	assert.EqualValues(t, 200, entry["status"])
}

func TestNop(t *testing.T) {
	log := Nop()
	require.NotNil(t, log)
	log.Error("discarded")
}
