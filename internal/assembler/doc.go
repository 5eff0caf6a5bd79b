// Package assembler turns a directory tree into in-memory documents.
// The classifier decides per-file treatment (parsed JSON, validated
// script, plain text), the tree builder composes files and folders
// into design and loose documents, and the identifier helpers
// normalise the _id of every assembled document.
package assembler
