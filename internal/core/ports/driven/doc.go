// Package driven defines the interfaces the core calls outward
// through: the remote document store and the script validator.
// Adapters under internal/adapters/driven implement them.
package driven
