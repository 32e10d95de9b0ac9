package log

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextWithLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	ctx, flush := NewContextWithLogger(context.Background(), Options{JSON: true, Debug: true, Out: &buf})

	FromCtx(WithComponent(ctx, "retriever")).Debug().Str("session", "s1").Msg("context gathered")
	flush()

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"component":"retriever"`)
	assert.Contains(t, out, `"session":"s1"`)
	assert.Contains(t, out, `"message":"context gathered"`)
}

func TestNewContextWithLogger_InfoLevelDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	ctx, flush := NewContextWithLogger(context.Background(), Options{JSON: true, Out: &buf})

	FromCtx(ctx).Debug().Msg("hidden")
	FromCtx(ctx).Info().Msg("shown")
	flush()

	assert.False(t, strings.Contains(buf.String(), "hidden"))
	assert.Contains(t, buf.String(), "shown")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
