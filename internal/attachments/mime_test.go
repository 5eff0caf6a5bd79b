package attachments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTypeFixedTable(t *testing.T) {
	tests := []struct {
		path     string
		data     []byte
		expected string
	}{
		{path: "readme.txt", data: []byte("hi"), expected: "text/plain; charset=utf-8"},
		{path: "cal.ics", data: []byte("BEGIN"), expected: "text/calendar; charset=utf-8"},
		{path: "app.js", data: []byte("var x"), expected: "application/javascript; charset=utf-8"},
		{path: "data.json", data: []byte("{}"), expected: "application/json; charset=utf-8"},
		{path: "logo.svg", data: []byte("<svg/>"), expected: "image/svg+xml; charset=utf-8"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, contentType(tc.path, tc.data))
		})
	}
}

func TestContentTypeRegistryFallback(t *testing.T) {
	// .png is not in the fixed table; the platform registry knows it
	// and binary types never get a charset suffix.
	assert.Equal(t, "image/png", contentType("logo.png", []byte{0x89, 0x50}))
}

func TestContentTypeUnknownExtension(t *testing.T) {
	assert.Equal(t, "application/octet-stream", contentType("file.zzz", []byte("x")))
}

func TestContentTypeCaseInsensitiveExtension(t *testing.T) {
	assert.Equal(t, "text/html; charset=utf-8", contentType("INDEX.HTML", []byte("<p/>")))
}
