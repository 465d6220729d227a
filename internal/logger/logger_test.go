package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DebugLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	t.Setenv("DEBUG", "")
	os.Unsetenv("DEBUG")

	Init(false)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())

	Init(true)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	t.Setenv("DEBUG", "1")
	Init(false)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestSetOutput(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	SetOutput(&buf)

	Info().Str("source", "fetcher:plaid:bank_a").Msg("source aggregated")
	Debug().Msg("hidden")

	out := buf.String()
	assert.Contains(t, out, `"level":"info"`)
	assert.Contains(t, out, `"source":"fetcher:plaid:bank_a"`)
	assert.NotContains(t, out, "hidden")
}

func TestFormatter(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	SetOutput(&buf)

	f := Component("resty")
	f.Warnf("Using sensitive credentials in %s mode\n", "HTTP")
	f.Errorf("attempt %d failed", 2)
	f.Debugf("done")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)

	assert.Contains(t, lines[0], `"level":"warn"`)
	assert.Contains(t, lines[0], `"component":"resty"`)
	assert.Contains(t, lines[0], `"message":"Using sensitive credentials in HTTP mode"`)
	assert.Contains(t, lines[1], `"level":"error"`)
	assert.Contains(t, lines[1], `"message":"attempt 2 failed"`)
	assert.Contains(t, lines[2], `"level":"debug"`)
	assert.Contains(t, lines[2], `"message":"done"`)
}
