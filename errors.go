package nodeedit

import (
	"errors"
	"fmt"
)

// Commit errors
var (
	// ErrParse indicates that the stored document text is not valid JSON.
	ErrParse = errors.New("document is not valid JSON")

	// ErrCoercion indicates that a field's raw input cannot be coerced to its row type.
	ErrCoercion = errors.New("field value cannot be coerced")
)

// Session errors
var (
	// ErrNoSelection indicates that no node has been selected.
	ErrNoSelection = errors.New("no node selected")

	// ErrNotEditing indicates a field edit outside the Editing state.
	ErrNotEditing = errors.New("session is not editing")

	// ErrUnknownField indicates a field key that the selected node does not expose.
	ErrUnknownField = errors.New("unknown field")
)

// ErrBadPath indicates a path that cannot be parsed.
var ErrBadPath = errors.New("invalid path")

// ParseError wraps a decode failure of the stored document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("nodeedit: failed to parse document: %v", e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// CoercionError reports the field whose raw input did not fit its declared type.
type CoercionError struct {
	Key    string  // field key, RootField for an unkeyed scalar
	Type   RowType // declared row type
	Raw    string  // raw input as entered
	Reason string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("nodeedit: field %q (%s): cannot use %q: %s", e.Key, e.Type, e.Raw, e.Reason)
}

func (e *CoercionError) Is(target error) bool { return target == ErrCoercion }

// userNotice is the single blocking message shown when a save is rejected.
const userNotice = "Invalid input. Please fix the values before saving."

// Notice returns the user-facing message for a failed save, or "" for a nil error.
func Notice(err error) string {
	if err == nil {
		return ""
	}
	return userNotice
}
