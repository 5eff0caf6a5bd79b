package domain

import (
	"fmt"
	"io"
	"sync"
)

// Severity marks how a diagnostic affects the run.
type Severity int

const (
	// SeverityWarning is surfaced but does not fail the run.
	SeverityWarning Severity = iota

	// SeverityError fails the run and blocks the network write.
	SeverityError
)

// DiagnosticKind categorises what went wrong.
type DiagnosticKind string

const (
	KindParse      DiagnosticKind = "parse"
	KindValidation DiagnosticKind = "script"
	KindBinary     DiagnosticKind = "binary"
	KindMissingID  DiagnosticKind = "missing-id"
	KindShape      DiagnosticKind = "shape"
	KindLink       DiagnosticKind = "link"
	KindIO         DiagnosticKind = "io"
	KindRemote     DiagnosticKind = "remote"
)

// Diagnostic is one recorded problem with its origin.
type Diagnostic struct {
	Severity Severity
	Kind     DiagnosticKind
	Origin   string
	Line     int // 1-based, 0 when unknown
	Column   int // 1-based, 0 when unknown
	Message  string
}

// String renders the diagnostic as "origin:line:col: severity: message".
func (d Diagnostic) String() string {
	loc := d.Origin
	if d.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, d.Line)
		if d.Column > 0 {
			loc = fmt.Sprintf("%s:%d", loc, d.Column)
		}
	}
	sev := "warning"
	if d.Severity == SeverityError {
		sev = "error"
	}
	return fmt.Sprintf("%s: %s: %s", loc, sev, d.Message)
}

// Reporter collects diagnostics from every component of a run.
// It is append-only and safe for concurrent writers; no ordering is
// guaranteed between diagnostics from different goroutines. Each
// diagnostic is printed to the configured writer as it arrives.
type Reporter struct {
	mu     sync.Mutex
	out    io.Writer
	failed bool
	diags  []Diagnostic
}

// NewReporter creates a reporter printing diagnostics to out.
// A nil writer suppresses printing, which tests use.
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Report records a diagnostic, printing it immediately.
func (r *Reporter) Report(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.Severity == SeverityError {
		r.failed = true
	}
	r.diags = append(r.diags, d)
	if r.out != nil {
		fmt.Fprintln(r.out, d.String())
	}
}

// Errorf records an error diagnostic without location detail.
func (r *Reporter) Errorf(kind DiagnosticKind, origin, format string, args ...any) {
	r.Report(Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		Origin:   origin,
		Message:  fmt.Sprintf(format, args...),
	})
}

// ErrorAt records an error diagnostic with line/column detail.
func (r *Reporter) ErrorAt(kind DiagnosticKind, origin string, line, col int, format string, args ...any) {
	r.Report(Diagnostic{
		Severity: SeverityError,
		Kind:     kind,
		Origin:   origin,
		Line:     line,
		Column:   col,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Warnf records a warning diagnostic.
func (r *Reporter) Warnf(kind DiagnosticKind, origin, format string, args ...any) {
	r.Report(Diagnostic{
		Severity: SeverityWarning,
		Kind:     kind,
		Origin:   origin,
		Message:  fmt.Sprintf(format, args...),
	})
}

// WarnAt records a warning diagnostic with line/column detail.
func (r *Reporter) WarnAt(kind DiagnosticKind, origin string, line, col int, format string, args ...any) {
	r.Report(Diagnostic{
		Severity: SeverityWarning,
		Kind:     kind,
		Origin:   origin,
		Line:     line,
		Column:   col,
		Message:  fmt.Sprintf(format, args...),
	})
}

// HasFailed reports whether any error-severity diagnostic was recorded.
// This is the pre-flight gate the sync executor checks before writing.
func (r *Reporter) HasFailed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

// ErrorCount returns the number of error-severity diagnostics.
func (r *Reporter) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.diags {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Diagnostics returns a copy of everything recorded so far.
func (r *Reporter) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.diags))
	copy(out, r.diags)
	return out
}
