package domain

import "encoding/json"

// ValueKind discriminates the forms a field value can take.
type ValueKind int

const (
	// KindNull marks a field whose source failed to classify. It
	// serialises as null so the document keeps its shape.
	KindNull ValueKind = iota

	// KindParsed holds decoded JSON content.
	KindParsed

	// KindScript holds validated script source.
	KindScript

	// KindText holds checked plain text.
	KindText

	// KindAttachments holds an inline attachment set.
	KindAttachments

	// KindObject holds a nested folder of values.
	KindObject
)

// Value is one field of an assembled document: a tagged union over
// the forms the classifier produces. The zero value is the null form.
type Value struct {
	kind        ValueKind
	parsed      any
	text        string
	attachments AttachmentSet
	object      map[string]Value
}

// Null returns the placeholder value for unclassifiable content.
func Null() Value {
	return Value{kind: KindNull}
}

// Parsed wraps decoded JSON content.
func Parsed(v any) Value {
	return Value{kind: KindParsed, parsed: v}
}

// Script wraps validated script source.
func Script(source string) Value {
	return Value{kind: KindScript, text: source}
}

// Text wraps checked plain text.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Attachments wraps an inline attachment set.
func Attachments(set AttachmentSet) Value {
	return Value{kind: KindAttachments, attachments: set}
}

// Object wraps a nested map of values.
func Object(m map[string]Value) Value {
	return Value{kind: KindObject, object: m}
}

// Kind returns the value's form.
func (v Value) Kind() ValueKind {
	return v.kind
}

// AsParsed returns the decoded JSON content of a parsed value.
func (v Value) AsParsed() (any, bool) {
	if v.kind != KindParsed {
		return nil, false
	}
	return v.parsed, true
}

// AsString returns the textual content of a script or text value.
func (v Value) AsString() (string, bool) {
	if v.kind != KindScript && v.kind != KindText {
		return "", false
	}
	return v.text, true
}

// AsObject returns the nested map of an object value.
func (v Value) AsObject() (map[string]Value, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.object, true
}

// AsAttachments returns the attachment set of an attachments value.
func (v Value) AsAttachments() (AttachmentSet, bool) {
	if v.kind != KindAttachments {
		return nil, false
	}
	return v.attachments, true
}

// StringField extracts a string regardless of whether the source was a
// JSON string or a text file. Identifier fields accept both.
func (v Value) StringField() (string, bool) {
	switch v.kind {
	case KindParsed:
		s, ok := v.parsed.(string)
		return s, ok
	case KindScript, KindText:
		return v.text, true
	default:
		return "", false
	}
}

// MarshalJSON serialises the wrapped form. Map keys sort, so equal
// trees always produce byte-identical output.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindParsed:
		return json.Marshal(v.parsed)
	case KindScript, KindText:
		return json.Marshal(v.text)
	case KindAttachments:
		return json.Marshal(v.attachments)
	case KindObject:
		if v.object == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.object)
	default:
		return []byte("null"), nil
	}
}
