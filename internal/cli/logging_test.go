package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_PipedOutputIsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, false, false)
	logger.Info().Str("name", "research").Msg("workbench started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "workbench started", entry["message"])
	assert.Equal(t, "research", entry["name"])
}

func TestNewLogger_TerminalOutputIsConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, true, false)
	logger.Info().Msg("workbench started")

	out := buf.String()
	assert.False(t, strings.HasPrefix(out, "{"), "console output should not be JSON: %q", out)
	assert.Contains(t, out, "workbench started")
}

func TestNewLogger_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer

	quiet := newLogger(&buf, false, false)
	quiet.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	verbose := newLogger(&buf, false, true)
	verbose.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")

	assert.Equal(t, zerolog.DebugLevel, newLogger(&buf, false, true).GetLevel())
}
