// Package jsvalidator syntax-checks JavaScript through tree-sitter.
// Syntax errors fail validation; references to identifiers outside the
// configured allow-list are surfaced as warnings only.
package jsvalidator

import (
	"context"
	"fmt"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/custodia-labs/couchpush-cli/internal/core/ports/driven"
)

// Ensure Validator implements the interface.
var _ driven.ScriptValidator = (*Validator)(nil)

// ecmaBuiltins are always-known language globals, on top of the
// caller-supplied allow-list.
var ecmaBuiltins = []string{
	"Array", "Boolean", "Date", "Error", "Infinity", "Math", "NaN",
	"Number", "Object", "RegExp", "String", "undefined",
	"decodeURIComponent", "encodeURIComponent", "isFinite", "isNaN",
	"parseFloat", "parseInt",
}

// Validator parses scripts with the tree-sitter JavaScript grammar.
type Validator struct{}

// New creates a validator.
func New() *Validator {
	return &Validator{}
}

// Validate parses source and reports syntax errors with line/column
// positions. On a clean parse it additionally warns about free
// identifiers that are neither declared in the script nor listed in
// globals. The source is returned unchanged; no minification is
// performed.
func (v *Validator) Validate(ctx context.Context, source string, globals []string) (string, []driven.ScriptDiagnostic, error) {
	src := []byte(source)
	tree, err := parseProgram(ctx, src)
	if err != nil {
		return "", nil, fmt.Errorf("parse script: %w", err)
	}

	var diags []driven.ScriptDiagnostic
	collectSyntaxErrors(tree.RootNode(), &diags)

	// Map and reduce sources are usually bare function expressions,
	// which are not valid programs on their own. Retry in expression
	// position before rejecting; wrapOffset shifts first-row columns
	// back past the added paren.
	wrapOffset := 0
	if len(diags) > 0 {
		wrapped := []byte("(" + source + "\n)")
		wtree, werr := parseProgram(ctx, wrapped)
		if werr != nil {
			tree.Close()
			return "", nil, fmt.Errorf("parse script: %w", werr)
		}
		var wdiags []driven.ScriptDiagnostic
		collectSyntaxErrors(wtree.RootNode(), &wdiags)
		if len(wdiags) == 0 {
			tree.Close()
			tree, src, diags, wrapOffset = wtree, wrapped, nil, 1
		} else {
			wtree.Close()
		}
	}
	defer tree.Close()

	if len(diags) > 0 {
		return "", diags, nil
	}

	known := make(map[string]struct{}, len(globals)+len(ecmaBuiltins))
	for _, g := range globals {
		known[g] = struct{}{}
	}
	for _, g := range ecmaBuiltins {
		known[g] = struct{}{}
	}
	collectDeclared(tree.RootNode(), src, known)

	unknown := make(map[string]sitter.Point)
	collectFreeIdentifiers(tree.RootNode(), src, known, unknown)

	names := make([]string, 0, len(unknown))
	for name := range unknown {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		pt := unknown[name]
		line, column := int(pt.Row)+1, int(pt.Column)+1
		if pt.Row == 0 {
			column -= wrapOffset
		}
		diags = append(diags, driven.ScriptDiagnostic{
			Message: fmt.Sprintf("unknown global %q", name),
			Line:    line,
			Column:  column,
		})
	}

	return source, diags, nil
}

// parseProgram runs a fresh parser over src. Parsers are not safe for
// concurrent use, so one is created per parse.
func parseProgram(ctx context.Context, src []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	return parser.ParseCtx(ctx, nil, src)
}

// collectSyntaxErrors walks the tree for ERROR and missing nodes.
func collectSyntaxErrors(n *sitter.Node, diags *[]driven.ScriptDiagnostic) {
	if n.IsError() {
		pt := n.StartPoint()
		*diags = append(*diags, driven.ScriptDiagnostic{
			IsError: true,
			Message: "syntax error",
			Line:    int(pt.Row) + 1,
			Column:  int(pt.Column) + 1,
		})
	} else if n.IsMissing() {
		pt := n.StartPoint()
		*diags = append(*diags, driven.ScriptDiagnostic{
			IsError: true,
			Message: fmt.Sprintf("missing %s", n.Type()),
			Line:    int(pt.Row) + 1,
			Column:  int(pt.Column) + 1,
		})
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		collectSyntaxErrors(n.Child(i), diags)
	}
}

// collectDeclared records every name the script itself declares:
// variables, functions, classes, and parameters.
func collectDeclared(n *sitter.Node, src []byte, declared map[string]struct{}) {
	switch n.Type() {
	case "variable_declarator", "function_declaration", "class_declaration",
		"generator_function_declaration", "function_expression":
		if name := n.ChildByFieldName("name"); name != nil && name.Type() == "identifier" {
			declared[name.Content(src)] = struct{}{}
		}
	case "formal_parameters":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if p := n.NamedChild(i); p.Type() == "identifier" {
				declared[p.Content(src)] = struct{}{}
			}
		}
	case "catch_clause":
		if p := n.ChildByFieldName("parameter"); p != nil && p.Type() == "identifier" {
			declared[p.Content(src)] = struct{}{}
		}
	case "arrow_function":
		if p := n.ChildByFieldName("parameter"); p != nil && p.Type() == "identifier" {
			declared[p.Content(src)] = struct{}{}
		}
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		collectDeclared(n.Child(i), src, declared)
	}
}

// collectFreeIdentifiers records the first occurrence of each
// referenced identifier that is neither declared nor known. Property
// accesses and object keys use distinct node types in the grammar and
// are skipped naturally.
func collectFreeIdentifiers(n *sitter.Node, src []byte, known map[string]struct{}, unknown map[string]sitter.Point) {
	if n.Type() == "identifier" {
		name := n.Content(src)
		if _, ok := known[name]; !ok {
			if _, seen := unknown[name]; !seen {
				unknown[name] = n.StartPoint()
			}
		}
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		collectFreeIdentifiers(n.Child(i), src, known, unknown)
	}
}
