package attachments

import (
	"bytes"
	"unicode/utf8"
)

// Byte-order marks checked longest-first; UTF-32 LE would otherwise
// match the UTF-16 LE prefix.
var (
	bomUTF32BE = []byte{0x00, 0x00, 0xFE, 0xFF}
	bomUTF32LE = []byte{0xFF, 0xFE, 0x00, 0x00}
	bomGB18030 = []byte{0x84, 0x31, 0x95, 0x33}
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// DetectCharset sniffs the character encoding of data from its
// byte-order mark, falling back to strict UTF-8 validation. Returns
// false when the detection is inconclusive (empty input or invalid
// UTF-8 without a BOM); callers then omit the charset suffix.
func DetectCharset(data []byte) (string, bool) {
	switch {
	case bytes.HasPrefix(data, bomUTF32BE):
		return "utf-32be", true
	case bytes.HasPrefix(data, bomUTF32LE):
		return "utf-32le", true
	case bytes.HasPrefix(data, bomGB18030):
		return "gb18030", true
	case bytes.HasPrefix(data, bomUTF8):
		return "utf-8", true
	case bytes.HasPrefix(data, bomUTF16BE):
		return "utf-16be", true
	case bytes.HasPrefix(data, bomUTF16LE):
		return "utf-16le", true
	}

	if len(data) == 0 {
		return "", false
	}
	if utf8.Valid(data) {
		return "utf-8", true
	}
	return "", false
}
