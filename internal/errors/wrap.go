// Package errors wraps the cockroachdb/errors primitives used across the
// codebase so call sites stay decoupled from the underlying library.
package errors

import "github.com/cockroachdb/errors"

// New creates a new error with the given message.
func New(msg string) error {
	return errors.New(msg)
}

// Wrap annotates err with msg. Returns nil if err is nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}

// Wrapf annotates err with a formatted message. Returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}
