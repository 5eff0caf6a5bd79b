package attachments

import (
	"mime"
	"path/filepath"
	"strings"
)

// fixedTypes is consulted before the platform MIME registry so the
// common text, calendar, markup and data types are stable across
// hosts.
var fixedTypes = map[string]string{
	".css":  "text/css",
	".csv":  "text/csv",
	".htm":  "text/html",
	".html": "text/html",
	".ics":  "text/calendar",
	".js":   "application/javascript",
	".json": "application/json",
	".md":   "text/markdown",
	".svg":  "image/svg+xml",
	".txt":  "text/plain",
	".xml":  "application/xml",
	".yaml": "text/yaml",
	".yml":  "text/yaml",
}

// textualTypes are non-text/* MIME types that still carry character
// data and deserve a charset suffix.
var textualTypes = map[string]struct{}{
	"application/javascript": {},
	"application/json":       {},
	"application/xml":        {},
	"image/svg+xml":          {},
}

// contentType infers the attachment content type from the file
// extension, appending a detected charset for textual types.
func contentType(path string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(path))

	mt, ok := fixedTypes[ext]
	if !ok {
		mt = mime.TypeByExtension(ext)
		// The registry may already carry parameters; ours are
		// decided by sniffing the content instead.
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = strings.TrimSpace(mt[:i])
		}
		if mt == "" {
			mt = "application/octet-stream"
		}
	}

	if isTextual(mt) {
		if charset, ok := DetectCharset(data); ok {
			mt += "; charset=" + charset
		}
	}
	return mt
}

func isTextual(mt string) bool {
	if strings.HasPrefix(mt, "text/") {
		return true
	}
	_, ok := textualTypes[mt]
	return ok
}
