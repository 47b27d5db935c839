// Package errors provides the classified error primitives used across fwpublish.
//
// A ClassifiedError carries a category, a severity and free-form context so
// that the publisher can report failures uniformly and the CLI can map them to
// exit codes when a caller opts into strict mode.
//
// Example usage:
//
//	err := errors.FileSystemError("copy failed").
//		WithContext("source", src).
//		WithCause(ioErr).
//		Build()
package errors
