package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk/internal/config"
)

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	var out bytes.Buffer
	root := Root()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	t.Cleanup(func() { root.SetArgs(nil); root.SetOut(nil) })

	require.NoError(t, root.Execute())
	assert.Equal(t, "helpdesk 1.2.3\n", out.String())
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.LoggingConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", "key", "value")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "value", line["key"])
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := newLogger(config.LoggingConfig{Level: "chatty", Format: "text"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range Root().Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "seed", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
