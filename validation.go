package cliargs

import (
	"fmt"
)

// Validatable is an interface that marks a struct as expecting to be
// populated by Instance.Bind and later have its fields validated by calling
// Validate().
type Validatable interface {
	// Validate checks the fields of the struct and returns an error if any
	// of the fields are invalid.
	//
	// It is called after every tagged field has been bound.
	Validate() error
}

// ValidationError is returned by Bind when the bound struct rejects its
// values.
type ValidationError struct {
	Command string
	Err     error
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("Failed to validate %s: %v", ve.Command, ve.Err)
}

func (ve *ValidationError) Unwrap() error {
	return ve.Err
}

func validate(command string, dest any) error {
	v, ok := dest.(Validatable)
	if !ok {
		return nil
	}
	if err := v.Validate(); err != nil {
		return &ValidationError{Command: command, Err: err}
	}
	return nil
}
