package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		level   zapcore.Level
		wantErr bool
	}{
		{"default", Config{}, zapcore.InfoLevel, false},
		{"debug", Config{Level: "DEBUG"}, zapcore.DebugLevel, false},
		{"development", Config{Level: "warn", Development: true}, zapcore.WarnLevel, false},
		{"bogus", Config{Level: "loud"}, zapcore.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.level))
			if tt.level > zapcore.DebugLevel {
				assert.False(t, l.Core().Enabled(tt.level-1))
			}
		})
	}
}

func TestInitTracerDisabled(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracer(false, &buf)
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "noop")
	EndSpan(span, nil)
	require.NoError(t, shutdown(context.Background()))
	assert.Zero(t, buf.Len())
}

func TestInitTracerExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitTracer(true, &buf)
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "quote.fetch", attribute.String("symbol", "AAPL"))
	EndSpan(span, errors.New("provider down"))
	require.NoError(t, shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "quote.fetch")
	assert.Contains(t, out, "AAPL")
	assert.Contains(t, out, "provider down")
}
