package log

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T, l Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	prev := GetLevel()
	SetLevel(l)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		SetLevel(prev)
	})
	return &buf
}

func TestLogging(t *testing.T) {
	buf := captureOutput(t, LevelDebug)

	tests := []struct {
		name     string
		fn       func()
		expected string
	}{
		{
			name: "Print",
			fn: func() {
				Print("test print")
			},
			expected: "test print",
		},
		{
			name: "Printf",
			fn: func() {
				Printf("test printf %d", 123)
			},
			expected: "test printf 123",
		},
		{
			name: "Println",
			fn: func() {
				Println("test println")
			},
			expected: "test println",
		},
		{
			name: "Debug",
			fn: func() {
				Debug("test debug")
			},
			expected: "[DEBUG] test debug",
		},
		{
			name: "Debugf",
			fn: func() {
				Debugf("test debugf %s", "foo")
			},
			expected: "[DEBUG] test debugf foo",
		},
		{
			name: "Errorf",
			fn: func() {
				Errorf("bad %s", "market")
			},
			expected: "[ERROR] bad market",
		},
		{
			name: "Criticalf",
			fn: func() {
				Criticalf("no dir %s", "/x")
			},
			expected: "[CRITICAL] no dir /x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.fn()
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("Expected log to contain %q, but got %q", tt.expected, buf.String())
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t, LevelInfo)

	Dumpf("raw payload %s", "{}")
	Debugf("hidden")
	assert.Empty(t, buf.String(), "dump and debug must be filtered at info level")

	Warnf("shown")
	assert.Contains(t, buf.String(), "[WARN] shown")

	buf.Reset()
	SetLevel(LevelDump)
	Dumpf("raw payload %s", "{}")
	assert.Contains(t, buf.String(), "[DUMP] raw payload {}")

	buf.Reset()
	SetLevel(LevelCritical)
	Errorf("hidden")
	Printf("hidden")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		hasError bool
	}{
		{"", LevelInfo, false},
		{"dump", LevelDump, false},
		{"DEBUG", LevelDebug, false},
		{" info ", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"critical", LevelCritical, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			l, err := ParseLevel(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, l)
		})
	}
}

func TestSetOutputFile(t *testing.T) {
	captureOutput(t, LevelInfo)
	path := filepath.Join(t.TempDir(), "bingwall.log")

	SetOutputFile(path)
	Printf("to file")
	log.SetOutput(os.Stderr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

// NOTE: Testing Fatal* functions requires a subprocess, which is often overkill for simple wrappers.
