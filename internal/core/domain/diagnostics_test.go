package domain

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporterErrorSetsFailed(t *testing.T) {
	r := NewReporter(nil)
	assert.False(t, r.HasFailed())

	r.Errorf(KindParse, "/src/bad.json", "unexpected end of input")

	assert.True(t, r.HasFailed())
	assert.Equal(t, 1, r.ErrorCount())
}

func TestReporterWarningDoesNotFail(t *testing.T) {
	r := NewReporter(nil)
	r.Warnf(KindValidation, "/src/map.js", "unknown global %q", "windoe")

	assert.False(t, r.HasFailed())
	assert.Equal(t, 0, r.ErrorCount())
	require.Len(t, r.Diagnostics(), 1)
	assert.Equal(t, SeverityWarning, r.Diagnostics()[0].Severity)
}

func TestReporterPrintsWithOrigin(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.ErrorAt(KindParse, "/src/bad.json", 3, 14, "invalid character '}'")

	assert.Equal(t, "/src/bad.json:3:14: error: invalid character '}'\n", buf.String())
}

func TestReporterPrintsWithoutLocation(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf)

	r.Errorf(KindIO, "/src/_attachments", "permission denied")

	assert.Equal(t, "/src/_attachments: error: permission denied\n", buf.String())
}

func TestReporterConcurrentWriters(t *testing.T) {
	r := NewReporter(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Errorf(KindRemote, "doc", "write failed")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, r.ErrorCount())
	assert.True(t, r.HasFailed())
}
