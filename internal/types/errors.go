package types

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks across package boundaries.
var (
	ErrMissingField  = errors.New("missing field")
	ErrInvalidFormat = errors.New("invalid format")
)

// MissingFieldError reports a required legacy tag or record that is absent.
// Parsing always stops on it.
type MissingFieldError struct {
	// Field names the tag or record, e.g. ":20:" or "record type 6".
	Field string

	// Message, when set, replaces the default wording.
	Message string
}

func (e *MissingFieldError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Missing required field %s", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// InvalidFormatError reports a present but malformed value.
type InvalidFormatError struct {
	Field    string
	Expected string
	Example  string
}

func (e *InvalidFormatError) Error() string {
	msg := fmt.Sprintf("Invalid %s format. Expected %s", e.Field, e.Expected)
	if e.Example != "" {
		msg += fmt.Sprintf(" (e.g., %s)", e.Example)
	}
	return msg
}

func (e *InvalidFormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}
