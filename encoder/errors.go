package encoder

import (
	"fmt"

	"regvm/parser"
)

// EncodingError provides detailed context for an encoding failure: the
// instruction's source position plus the underlying message.
type EncodingError struct {
	Pos     parser.Position
	Message string
	Wrapped error
}

func (e *EncodingError) Error() string {
	location := fmt.Sprintf("%d:%d: ", e.Pos.Line, e.Pos.Column)
	if e.Wrapped != nil {
		return fmt.Sprintf("%s%s: %v", location, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s%s", location, e.Message)
}

func (e *EncodingError) Unwrap() error {
	return e.Wrapped
}

// NewEncodingError creates an EncodingError anchored at pos.
func NewEncodingError(pos parser.Position, message string) *EncodingError {
	return &EncodingError{Pos: pos, Message: message}
}

// WrapEncodingError wraps err with position context, unless it is already
// an EncodingError.
func WrapEncodingError(pos parser.Position, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*EncodingError); ok {
		return err
	}
	return &EncodingError{Pos: pos, Message: "failed to encode instruction", Wrapped: err}
}
