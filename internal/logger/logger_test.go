package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("info", "json", &buf)
	l.Info().Str("dialect", "absa").Msg("imported")
	l.Debug().Msg("hidden")

	out := buf.String()
	assert.Contains(t, out, `"dialect":"absa"`)
	assert.Contains(t, out, `"message":"imported"`)
	assert.NotContains(t, out, "hidden")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l := New("debug", "console", &buf)
	l.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), New("info", "json", &buf))
	l := FromContext(ctx)
	l.Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")
}

func TestFromContext_Default(t *testing.T) {
	l := FromContext(context.Background())
	assert.Equal(t, zerolog.Disabled, l.GetLevel())
}

func TestFromContext_Chained(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), New("info", "json", &buf))
	FromContext(ctx).Info().Str("payout", "PAY-1").Msg("persisted")
	FromContext(context.Background()).Error().Msg("dropped")

	assert.Contains(t, buf.String(), `"payout":"PAY-1"`)
	assert.NotContains(t, buf.String(), "dropped")
}

func TestFromContext_ZerologContext(t *testing.T) {
	var buf bytes.Buffer
	ctx := New("info", "json", &buf).WithContext(context.Background())
	FromContext(ctx).Warn().Msg("shared")
	assert.Contains(t, buf.String(), "shared")
}
