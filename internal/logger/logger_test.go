package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestDebugSilentByDefault(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Debug("should not appear")
	assert.Empty(t, buf.String())
}

func TestDebugVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("classified %s", "map.js")
	assert.Equal(t, "[DEBUG] classified map.js\n", buf.String())
}

func TestInfoAndWarnVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Info("pushing %d documents", 3)
	Warn("slow response")

	assert.Contains(t, buf.String(), "[INFO] pushing 3 documents\n")
	assert.Contains(t, buf.String(), "[WARN] slow response\n")
}

func TestIsVerbose(t *testing.T) {
	defer reset()

	assert.False(t, IsVerbose())
	SetVerbose(true)
	assert.True(t, IsVerbose())
}
