package assembler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LinkExt marks a link file: its content is a single line naming the
// path the entry should be read from instead.
const LinkExt = ".lnk"

// maxLinkDepth bounds link chains so a cycle cannot loop forever.
const maxLinkDepth = 16

// IsLink reports whether the file name carries the link extension.
func IsLink(name string) bool {
	return strings.EqualFold(filepath.Ext(name), LinkExt)
}

// ResolveLink follows link-file indirection until a regular path is
// reached. Non-link paths are returned unchanged. The target path is
// interpreted relative to the link file's directory unless absolute.
// A dangling or malformed link is an error for this entry only.
func ResolveLink(path string) (string, error) {
	for depth := 0; IsLink(path); depth++ {
		if depth >= maxLinkDepth {
			return "", fmt.Errorf("link chain too deep at %s", path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read link: %w", err)
		}

		target := strings.TrimSpace(string(data))
		if target == "" || strings.ContainsAny(target, "\r\n") {
			return "", fmt.Errorf("link file %s must contain a single path", path)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}

		if _, err := os.Stat(target); err != nil {
			return "", fmt.Errorf("dangling link %s -> %s", path, target)
		}
		path = target
	}
	return path, nil
}
