package driven

import "context"

// ScriptDiagnostic is one message from the script validator.
type ScriptDiagnostic struct {
	// IsError marks a hard syntax error; false means warning.
	IsError bool

	// Message describes the problem.
	Message string

	// Line and Column locate the problem, 1-based, 0 when unknown.
	Line   int
	Column int
}

// ScriptValidator syntax-checks script source before it is embedded in
// a document. Implementations may transform (e.g. minify) the source;
// the returned text is what gets stored on success.
type ScriptValidator interface {
	// Validate checks source, treating the given global identifiers
	// as known host-provided bindings. The returned diagnostics may
	// mix errors and warnings; text is only meaningful when no
	// diagnostic has IsError set.
	Validate(ctx context.Context, source string, globals []string) (string, []ScriptDiagnostic, error)
}
