package util

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	l, closer, err := NewLogger("info", "", &buf)
	require.NoError(t, err)
	defer closer.Close()

	l.Debug().Msg("hidden")
	l.Info().Str("file", "/etc/hosts").Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "/etc/hosts")
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selector.log")
	var buf bytes.Buffer
	l, closer, err := NewLogger("debug", path, &buf)
	require.NoError(t, err)

	l.Debug().Msg("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"to file"`)
}

func TestNewLogger_BadLevel(t *testing.T) {
	_, _, err := NewLogger("loud", "", &bytes.Buffer{})
	assert.Error(t, err)
}
