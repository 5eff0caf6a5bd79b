package assembler

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/couchpush-cli/internal/core/domain"
	"github.com/custodia-labs/couchpush-cli/internal/core/ports/driven"
	"github.com/custodia-labs/couchpush-cli/internal/logger"
)

// ScriptGlobals is the fixed allow-list of host-provided identifiers a
// document script may reference: module-system bindings, common
// built-ins, and the store's view/show/list callback names.
var ScriptGlobals = []string{
	"require", "module", "exports",
	"emit", "sum", "log", "getRow", "send", "start", "provides",
	"registerType",
	"JSON", "isArray", "toJSON",
}

// builtinReducers are reserved reduce bodies the store evaluates
// natively. They pass through unvalidated.
var builtinReducers = map[string]struct{}{
	"_sum":   {},
	"_count": {},
	"_stats": {},
}

// Classifier decides the treatment of a single file and produces the
// matching document value. Every failure is recorded on the reporter
// and yields a safe placeholder so sibling files keep assembling.
type Classifier struct {
	validator driven.ScriptValidator
	reporter  *domain.Reporter
}

// NewClassifier creates a classifier reporting into reporter.
func NewClassifier(validator driven.ScriptValidator, reporter *domain.Reporter) *Classifier {
	return &Classifier{validator: validator, reporter: reporter}
}

// Classify reads and classifies one file by extension.
func (c *Classifier) Classify(ctx context.Context, path string) domain.Value {
	resolved, err := ResolveLink(path)
	if err != nil {
		c.reporter.Errorf(domain.KindLink, path, "%v", err)
		return domain.Null()
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		c.reporter.Errorf(domain.KindIO, resolved, "read file: %v", err)
		return domain.Null()
	}

	logger.Debug("classifying %s", resolved)

	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".json":
		return c.classifyJSON(resolved, data)
	case ".js":
		return c.classifyScript(ctx, resolved, data)
	default:
		return c.classifyText(resolved, data)
	}
}

// classifyJSON parses structured data. A parse failure is recorded
// with line/column derived from the decoder's byte offset and the
// placeholder keeps the rest of the tree building.
func (c *Classifier) classifyJSON(path string, data []byte) domain.Value {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		line, col := positionOf(data, offsetOf(err))
		c.reporter.ErrorAt(domain.KindParse, path, line, col, "%v", err)
		return domain.Null()
	}
	return domain.Parsed(v)
}

// classifyScript validates script source through the validator port.
// The reserved reducer bodies skip validation entirely.
func (c *Classifier) classifyScript(ctx context.Context, path string, data []byte) domain.Value {
	source := string(data)
	if _, ok := builtinReducers[strings.TrimSpace(source)]; ok {
		return domain.Script(source)
	}

	text, diags, err := c.validator.Validate(ctx, source, ScriptGlobals)
	if err != nil {
		c.reporter.Errorf(domain.KindValidation, path, "validate script: %v", err)
		return domain.Script("")
	}

	failed := false
	for _, d := range diags {
		if d.IsError {
			failed = true
			c.reporter.ErrorAt(domain.KindValidation, path, d.Line, d.Column, "%s", d.Message)
		} else {
			c.reporter.WarnAt(domain.KindValidation, path, d.Line, d.Column, "%s", d.Message)
		}
	}
	if failed {
		return domain.Script("")
	}
	return domain.Script(normalizeNewlines(text))
}

// classifyText accepts text whose every character is TAB, LF, CR or
// lies in U+0020..U+FFFD. Anything else is a binary file.
func (c *Classifier) classifyText(path string, data []byte) domain.Value {
	if !utf8.Valid(data) {
		c.reporter.Errorf(domain.KindBinary, path, "binary file")
		return domain.Null()
	}
	for _, r := range string(data) {
		if r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		if r < 0x20 || r > 0xFFFD {
			c.reporter.Errorf(domain.KindBinary, path, "binary file")
			return domain.Null()
		}
	}
	return domain.Text(normalizeNewlines(string(data)))
}

// normalizeNewlines rewrites CRLF and bare CR to a single LF.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// offsetOf extracts the byte offset from a JSON decode error, or -1.
func offsetOf(err error) int64 {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return syn.Offset
	}
	var typ *json.UnmarshalTypeError
	if errors.As(err, &typ) {
		return typ.Offset
	}
	return -1
}

// positionOf converts a byte offset to a 1-based line/column pair.
// Returns zeros when the offset is unknown.
func positionOf(data []byte, offset int64) (line, col int) {
	if offset < 0 || offset > int64(len(data)) {
		return 0, 0
	}
	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}
