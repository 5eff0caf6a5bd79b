// Package attachments walks a document's _attachments folder and
// produces the inline attachment map: slash-separated percent-decoded
// keys, raw content, and an inferred content type with a detected
// charset suffix for textual types.
package attachments
