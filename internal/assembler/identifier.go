package assembler

import (
	"strings"

	"github.com/custodia-labs/couchpush-cli/internal/core/domain"
)

// NormalizeDesignID prepends the design namespace prefix exactly once.
// Already-prefixed identifiers pass through unchanged, so the
// operation is idempotent.
func NormalizeDesignID(id string) string {
	if strings.HasPrefix(id, domain.DesignPrefix) {
		return id
	}
	return domain.DesignPrefix + id
}

// ResolveDesignID assigns the document's identifier from its _id field
// or, when absent, from the source subdirectory name. The _id field is
// removed from the body either way; it is re-injected at serialisation.
func ResolveDesignID(doc *domain.Document, subdir string) {
	if id, ok := popID(doc); ok {
		doc.ID = NormalizeDesignID(id)
		return
	}
	doc.ID = domain.DesignPrefix + subdir
}

// ResolveLooseID assigns the identifier of a loose document. File
// documents fall back to the base file name; array elements must carry
// their own _id and are excluded (with a diagnostic) when they do not.
// Returns false when the document must be dropped from the output set.
func ResolveLooseID(doc *domain.Document, base, origin string, fromArray bool, reporter *domain.Reporter) bool {
	if id, ok := popID(doc); ok {
		doc.ID = id
		return true
	}
	if fromArray {
		reporter.Errorf(domain.KindMissingID, origin, "array element has no _id")
		return false
	}
	doc.ID = base
	return true
}

// popID removes the _id field from the document body and returns its
// string value. Non-string or empty identifiers are treated as absent.
func popID(doc *domain.Document) (string, bool) {
	v, ok := doc.Fields["_id"]
	if !ok {
		return "", false
	}
	delete(doc.Fields, "_id")
	id, ok := v.StringField()
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
