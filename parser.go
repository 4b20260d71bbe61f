package cliargs

import (
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// ValueParser Interface
///////////////////////////////////////////////////////////////////////////////

// ValueParser converts a single raw string into a typed value.
//
// All parsers must follow the same sentinel convention, because array
// splitting and required-field checks depend on it:
//   - the literal "null" (trimmed, any case) returns Null
//   - the empty string returns nil, meaning no value was supplied
//   - anything else is coerced, or an error is returned
//
// Use ParseSentinel at the top of a custom Parse implementation to get this
// behavior for free.
type ValueParser interface {
	// Name returns the display name of the target type, used in help output.
	Name() string
	// Parse coerces raw into the target type.
	Parse(raw string) (any, error)
}

type null struct{}

func (null) String() string { return NullLiteral }

func (null) MarshalJSON() ([]byte, error) { return []byte(NullLiteral), nil }

// Null is the value of an argument that was explicitly given as "null".
// It is distinct from nil, which means that no value was supplied at all.
var Null any = null{}

// IsNull reports whether v is the Null sentinel.
func IsNull(v any) bool {
	_, ok := v.(null)
	return ok
}

// IsAbsent reports whether v carries no value, either because none was
// supplied (nil) or because it was explicitly Null.
func IsAbsent(v any) bool {
	return v == nil || IsNull(v)
}

// ParseSentinel applies the shared sentinel convention to raw. If handled is
// true, value is the result (Null or nil) and the parser should return it
// without further coercion.
func ParseSentinel(raw string) (value any, handled bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case EmptyLiteral:
		return nil, true
	case NullLiteral:
		return Null, true
	}
	return nil, false
}

///////////////////////////////////////////////////////////////////////////////
// ParserRef
///////////////////////////////////////////////////////////////////////////////

// ParserRef references the ValueParser of an argument. It is either a
// shared instance, reused for every value, or a factory that builds a fresh
// parser each time one is needed. The zero ParserRef means identity: raw
// strings are passed through unchanged.
type ParserRef struct {
	instance ValueParser
	factory  func() ValueParser
}

// Shared returns a ParserRef that always resolves to p.
func Shared(p ValueParser) ParserRef {
	return ParserRef{instance: p}
}

// Factory returns a ParserRef that calls fn for every resolution.
func Factory(fn func() ValueParser) ParserRef {
	return ParserRef{factory: fn}
}

// FactoryOf returns a ParserRef that allocates a new zero P for every
// resolution. It is the Go counterpart of passing a parser type instead of
// a parser value:
//
//	cliargs.ArgumentConfig{Name: "count", Parser: cliargs.FactoryOf[cliargs.NumberParser]()}
func FactoryOf[P any, PP interface {
	*P
	ValueParser
}]() ParserRef {
	return Factory(func() ValueParser {
		return PP(new(P))
	})
}

// IsZero reports whether the reference has neither an instance nor a factory.
func (r ParserRef) IsZero() bool {
	return r.instance == nil && r.factory == nil
}

// IsFactory reports whether the reference builds a parser per resolution.
func (r ParserRef) IsFactory() bool {
	return r.factory != nil
}

// Resolve returns the referenced parser, or nil for the zero ParserRef.
func (r ParserRef) Resolve() ValueParser {
	if r.factory != nil {
		return r.factory()
	}
	return r.instance
}
