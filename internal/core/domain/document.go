package domain

import "encoding/json"

// DesignPrefix is the reserved namespace prefix for design documents.
const DesignPrefix = "_design/"

// Attachment is a named binary resource embedded in a document.
// Data serialises as base64, matching the CouchDB inline format.
type Attachment struct {
	// ContentType is the MIME type, optionally carrying a
	// "; charset=<name>" suffix for textual types.
	ContentType string `json:"content_type"`

	// Data is the raw file content.
	Data []byte `json:"data"`
}

// AttachmentSet maps an attachment's slash-separated relative path to
// its content.
type AttachmentSet map[string]Attachment

// Document is an assembled document ready for reconciliation.
// ID must be set before hand-off to the reconciler; Rev is attached by
// the reconciler when an existing remote document is being updated.
type Document struct {
	// ID is the document identifier (the _id field).
	ID string

	// Rev is the remote revision token, empty for new documents.
	Rev string

	// Fields is the assembled document body, excluding _id and _rev.
	Fields map[string]Value
}

// MarshalJSON emits the document body with _id and _rev injected as
// reserved fields. Output is compact and key-sorted.
func (d Document) MarshalJSON() ([]byte, error) {
	m := make(map[string]Value, len(d.Fields)+2)
	for k, v := range d.Fields {
		m[k] = v
	}
	m["_id"] = Text(d.ID)
	if d.Rev != "" {
		m["_rev"] = Text(d.Rev)
	}
	return json.Marshal(m)
}

// RevisionInfo is one row of a remote revision listing.
type RevisionInfo struct {
	// ID is the document identifier.
	ID string

	// Rev is the current revision token.
	Rev string

	// Deleted reports whether the remote document is a tombstone.
	Deleted bool
}
