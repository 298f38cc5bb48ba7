package problem

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)

// User-facing messages.
const (
	MsgProblemNotFound  = "Problem is not found"
	MsgTopicNotFound    = "Topic is not found"
	MsgInvalidAnswer    = "Invalid answer format"
	MsgInvalidPlacement = "Invalid topicId or order"
	MsgUpdated          = "Problem has been updated successfully"
	MsgDeleted          = "Problem has been deleted successfully"
)

// Error is a domain failure with a fixed message safe to show callers.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func notFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func problemNotFound(id int64) error {
	return notFound(fmt.Sprintf("Problem with ID %d is not found", id))
}

func invalid(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}
