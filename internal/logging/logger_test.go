package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info")
	require.NotNil(t, log)

	log.Info().Msg("test message")
	assert.Contains(t, buf.String(), "test message")
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf, "info")
	log.Info().Str("k", "v").Msg("json message")

	out := buf.String()
	assert.Contains(t, out, `"k":"v"`)
	assert.Contains(t, out, "json message")
}

func TestSub(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf, "debug")
	sub := log.Sub("advisor")

	sub.Info().Msg("sub message")
	out := buf.String()
	assert.Contains(t, out, "sub message")
	assert.Contains(t, out, "advisor")
}

func TestSubChain(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf, "debug")
	sub := log.Sub("llm").Sub("fallback")

	sub.Info().Msg("deep message")
	out := buf.String()
	assert.Contains(t, out, "deep message")
	assert.Contains(t, out, "fallback")
}

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf, "warn")

	log.Debug().Msg("debug msg")
	log.Info().Msg("info msg")
	assert.Empty(t, buf.String(), "debug and info should be filtered at warn level")

	log.Warn().Msg("warn msg")
	assert.Contains(t, buf.String(), "warn msg")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"silent", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestSilent(t *testing.T) {
	log := Silent()
	require.NotNil(t, log)
	log.Error().Msg("should go nowhere")
}
