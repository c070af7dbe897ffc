// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jstream

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEnd is reported when the input ends while the value being
// parsed is still incomplete. Use errors.Is to check for it.
var ErrUnexpectedEnd = errors.New("unexpected end of content")

// ErrTrailingContent is reported when non-whitespace input remains after the
// top-level value is complete. Use errors.Is to check for it.
var ErrTrailingContent = errors.New("unexpected trailing content")

// A LexicalError reports an invalid character or malformed token in the
// input: a bad escape, an unescaped control character, a malformed Unicode
// escape, or a malformed number.
type LexicalError struct {
	Location LineCol
	Message  string
}

// Error satisfies the error interface.
func (e *LexicalError) Error() string {
	return fmt.Sprintf("at %s: %s", e.Location, e.Message)
}

// A StructuralError reports a token that is valid in isolation but not
// permitted at its position in the grammar: a mismatched close bracket, a
// missing colon or comma, or a misplaced value.
type StructuralError struct {
	Location LineCol
	Message  string
}

// Error satisfies the error interface.
func (e *StructuralError) Error() string {
	return fmt.Sprintf("at %s: %s", e.Location, e.Message)
}

// posError attaches a byte offset to another error.
type posError struct {
	pos int
	err error
}

func (p posError) Error() string {
	return fmt.Sprintf("%s (offset %d)", p.err.Error(), p.pos)
}

func (p posError) Unwrap() error { return p.err }
