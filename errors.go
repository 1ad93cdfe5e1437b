package kvlite

import (
	"errors"
	"fmt"
)

// KeyNotFoundError reports a single-key lookup or pop on an absent key.
//
// It is the only error the store manufactures as part of normal control
// flow: callers for whom absence is a valid outcome should use
// GetDefault or PopDefault instead of matching on it. Set-predicate
// reads never produce it; they return an empty result.
type KeyNotFoundError struct {
	// Key is the missing key.
	Key string
}

// Error implements the error interface.
func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found: %q", e.Key)
}

// IsKeyNotFound reports whether err is a KeyNotFoundError.
// Uses errors.As to handle wrapped errors.
func IsKeyNotFound(err error) bool {
	var kerr *KeyNotFoundError
	return errors.As(err, &kerr)
}

// CorruptValueError reports stored bytes that the codec could not
// decode. This indicates a local defect (a foreign writer, a codec
// mismatch, or on-disk corruption) and is never retried.
type CorruptValueError struct {
	// Key is the row whose value failed to decode.
	Key string

	// Err is the underlying codec error.
	Err error
}

// Error implements the error interface.
func (e *CorruptValueError) Error() string {
	return fmt.Sprintf("corrupt value for key %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying codec error.
func (e *CorruptValueError) Unwrap() error {
	return e.Err
}

// IsCorruptValue reports whether err is a CorruptValueError.
// Uses errors.As to handle wrapped errors.
func IsCorruptValue(err error) bool {
	var cerr *CorruptValueError
	return errors.As(err, &cerr)
}
