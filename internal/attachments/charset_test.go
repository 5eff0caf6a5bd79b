package attachments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectCharset(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
		ok       bool
	}{
		{name: "utf-32be bom", data: []byte{0x00, 0x00, 0xFE, 0xFF, 0x00}, expected: "utf-32be", ok: true},
		{name: "utf-32le bom", data: []byte{0xFF, 0xFE, 0x00, 0x00, 0x41}, expected: "utf-32le", ok: true},
		{name: "gb18030 bom", data: []byte{0x84, 0x31, 0x95, 0x33}, expected: "gb18030", ok: true},
		{name: "utf-8 bom", data: []byte{0xEF, 0xBB, 0xBF, 'h', 'i'}, expected: "utf-8", ok: true},
		{name: "utf-16be bom", data: []byte{0xFE, 0xFF, 0x00, 0x41}, expected: "utf-16be", ok: true},
		{name: "utf-16le bom", data: []byte{0xFF, 0xFE, 0x41, 0x00}, expected: "utf-16le", ok: true},
		{name: "plain utf-8", data: []byte("héllo"), expected: "utf-8", ok: true},
		{name: "empty is inconclusive", data: nil, ok: false},
		{name: "invalid utf-8 is inconclusive", data: []byte{0xC3, 0x28}, ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			charset, ok := DetectCharset(tc.data)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.expected, charset)
		})
	}
}

// A UTF-32 LE BOM starts with the UTF-16 LE BOM bytes; order matters.
func TestDetectCharsetUTF32BeforeUTF16(t *testing.T) {
	charset, ok := DetectCharset([]byte{0xFF, 0xFE, 0x00, 0x00})
	assert.True(t, ok)
	assert.Equal(t, "utf-32le", charset)
}
