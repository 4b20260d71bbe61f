package cliargs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidName             = errors.New("invalid param name")
	ErrInvalidShortCode        = errors.New("invalid shortcode")
	ErrFlagRequired            = errors.New("flags can't be required")
	ErrInvalidPattern          = errors.New("invalid pattern")
	ErrDuplicateName           = errors.New("duplicated named param")
	ErrDuplicateShortCode      = errors.New("duplicated short code")
	ErrPositionalOrder         = errors.New("required positional argument after optional positional argument")
	ErrNoAction                = errors.New("no execution callback")
	ErrParserAlreadyRegistered = errors.New("a parser with this name is already registered")
	ErrParserNotFound          = errors.New("no parser registered with this name")
	ErrUnknownFormat           = errors.New("no decoder registered for this file format")
	ErrInvalidSection          = errors.New("section is not an object")
)

///////////////////////////////////////////////////////////////////////////////
// Declaration errors
///////////////////////////////////////////////////////////////////////////////

// DeclarationError is returned when an argument cannot be declared.
// Err is one of the declaration sentinels above.
type DeclarationError struct {
	Name   string
	Detail string
	Err    error
}

func (e *DeclarationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Detail)
	}
	if e.Name != "" {
		return fmt.Sprintf("%s %s", e.Err, e.Name)
	}
	return e.Err.Error()
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}

///////////////////////////////////////////////////////////////////////////////
// Lookup errors
///////////////////////////////////////////////////////////////////////////////

// LookupKind tells which index a failed lookup used.
type LookupKind int

const (
	LookupByName LookupKind = iota
	LookupByShortCode
	LookupByPosition
)

// LookupError is returned in strict mode when a named parameter, short code
// or position does not resolve to a declared argument.
type LookupError struct {
	Kind       LookupKind
	Key        string // name or short code, empty for positions
	Position   int    // only meaningful for LookupByPosition
	Suggestion string // closest declared name, if any
}

func (e *LookupError) Error() string {
	var msg string
	switch e.Kind {
	case LookupByShortCode:
		msg = fmt.Sprintf("Unknown short code '%s'", e.Key)
	case LookupByPosition:
		msg = fmt.Sprintf("Unknown positional parameter %d", e.Position)
	default:
		msg = fmt.Sprintf("Unknown named parameter '%s'", e.Key)
	}
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean '%s'?)", e.Suggestion)
	}
	return msg
}

// PositionalError wraps the lookup failure of a bare token that has no
// positional argument to go to.
type PositionalError struct {
	Position int
	Token    string
	Err      error
}

func (e *PositionalError) Error() string {
	return fmt.Sprintf("Can't resolve positional argument %d (%s)", e.Position, e.Token)
}

func (e *PositionalError) Unwrap() error {
	return e.Err
}

///////////////////////////////////////////////////////////////////////////////
// Validation errors
///////////////////////////////////////////////////////////////////////////////

// PatternError is returned when a raw value, or an array element, does not
// match the pattern of its argument.
type PatternError struct {
	Value    string
	Pattern  string
	Argument string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("Value '%s' does not match pattern /%s/ for property '%s'", e.Value, e.Pattern, e.Argument)
}

// ValueError is returned when a ValueParser rejects a raw value.
type ValueError struct {
	Argument string
	Value    string
	Parser   string
	Err      error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value '%s' for property '%s' (%s): %v", e.Value, e.Argument, e.Parser, e.Err)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// MissingRequiredError lists every required argument without a value, in
// declaration order.
type MissingRequiredError struct {
	Names []string
}

func (e *MissingRequiredError) Error() string {
	return "Missing required fields: " + strings.Join(e.Names, ", ")
}
