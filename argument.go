package cliargs

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

///////////////////////////////////////////////////////////////////////////////
// Requiredness
///////////////////////////////////////////////////////////////////////////////

// Requiredness decides whether an argument must have a value. It is either
// static (Required) or a predicate over the values resolved so far
// (RequiredIf).
type Requiredness interface {
	IsRequired(resolved Args) bool
}

// Required is a static Requiredness.
type Required bool

func (r Required) IsRequired(Args) bool { return bool(r) }

// RequiredIf is a conditional Requiredness. The predicate receives the
// in-progress resolved mapping and must not modify it.
type RequiredIf func(resolved Args) bool

func (r RequiredIf) IsRequired(resolved Args) bool { return r(resolved) }

// isOptional reports whether r is statically not required. A predicate is
// never considered optional, since it may require the argument.
func isOptional(r Requiredness) bool {
	static, ok := r.(Required)
	return ok && !bool(static)
}

///////////////////////////////////////////////////////////////////////////////
// ArgumentConfig
///////////////////////////////////////////////////////////////////////////////

// ArgumentConfig declares a single argument.
type ArgumentConfig struct {
	// Name is the key in Args and the `--name` token form. Required.
	Name string
	// Parser coerces raw values. The zero ParserRef passes strings through.
	Parser ParserRef
	// Required defaults to Required(true) on Command.Declare and to
	// Required(false) on NewArgument. Flags must leave it nil or false.
	Required Requiredness
	// Flag arguments take no value token; their presence sets them to true.
	Flag bool
	// Array arguments split their value on unescaped commas.
	Array bool
	// ShortCode is a one-character alias used as `-x`.
	ShortCode string
	// Positional arguments receive bare tokens in declaration order.
	Positional bool
	// Default is applied when no token supplies a value. nil means no default.
	Default any
	// Pattern must match every raw value (or array element) before coercion.
	Pattern string
	// Description is shown in the help text.
	Description string
}

///////////////////////////////////////////////////////////////////////////////
// Argument
///////////////////////////////////////////////////////////////////////////////

// Argument is the immutable descriptor of a declared argument.
type Argument struct {
	name        string
	shortCode   string
	position    int // -1 when not positional
	flag        bool
	array       bool
	required    Requiredness
	defaultVal  any
	pattern     *regexp.Regexp
	parser      ParserRef
	description string
}

// ArgumentOpts tunes NewArgument.
type ArgumentOpts struct {
	// ShortCodeSymbols overrides DefaultShortCodeSymbols.
	ShortCodeSymbols string
	// Position is used when cfg.Positional is set.
	Position int
}

// NewArgument validates cfg and builds a descriptor from it.
func NewArgument(cfg ArgumentConfig, opts ArgumentOpts) (*Argument, error) {
	if cfg.Name == "" {
		return nil, &DeclarationError{Err: ErrInvalidName}
	}

	symbols := opts.ShortCodeSymbols
	if symbols == "" {
		symbols = DefaultShortCodeSymbols
	}
	if utf8.RuneCountInString(cfg.ShortCode) > 1 && !strings.Contains(symbols, cfg.ShortCode) {
		return nil, &DeclarationError{Name: cfg.Name, Detail: fmt.Sprintf("%q for %s", cfg.ShortCode, cfg.Name), Err: ErrInvalidShortCode}
	}

	if cfg.Flag && cfg.Required != nil && !isOptional(cfg.Required) {
		return nil, &DeclarationError{Name: cfg.Name, Detail: cfg.Name, Err: ErrFlagRequired}
	}

	arg := &Argument{
		name:        cfg.Name,
		shortCode:   cfg.ShortCode,
		position:    -1,
		flag:        cfg.Flag,
		array:       cfg.Array,
		required:    cfg.Required,
		defaultVal:  cfg.Default,
		parser:      cfg.Parser,
		description: cfg.Description,
	}
	if cfg.Positional {
		arg.position = opts.Position
	}
	if arg.required == nil {
		arg.required = Required(false)
	}
	if cfg.Flag {
		arg.required = Required(false)
		arg.defaultVal = false
		arg.parser = FactoryOf[BooleanParser]()
	}

	if cfg.Pattern != "" {
		re, err := regexp.Compile(cfg.Pattern)
		if err != nil {
			return nil, &DeclarationError{Name: cfg.Name, Detail: fmt.Sprintf("%s for %s: %v", cfg.Pattern, cfg.Name, err), Err: ErrInvalidPattern}
		}
		arg.pattern = re
	}

	return arg, nil
}

func (a *Argument) Name() string               { return a.name }
func (a *Argument) ShortCode() string          { return a.shortCode }
func (a *Argument) IsFlag() bool               { return a.flag }
func (a *Argument) IsArray() bool              { return a.array }
func (a *Argument) IsPositional() bool         { return a.position >= 0 }
func (a *Argument) Default() any               { return cloneValue(a.defaultVal) }
func (a *Argument) Description() string        { return a.description }
func (a *Argument) Requiredness() Requiredness { return a.required }
func (a *Argument) ParserRef() ParserRef       { return a.parser }

// Position returns the positional index, if the argument is positional.
func (a *Argument) Position() (int, bool) {
	return a.position, a.position >= 0
}

// Pattern returns the source of the validation pattern, or "".
func (a *Argument) Pattern() string {
	if a.pattern == nil {
		return ""
	}
	return a.pattern.String()
}

// IsRequired evaluates the argument's Requiredness against the values
// resolved so far.
func (a *Argument) IsRequired(resolved Args) bool {
	return a.required.IsRequired(resolved)
}

// IsOptional reports whether the argument is statically not required.
func (a *Argument) IsOptional() bool {
	return isOptional(a.required)
}

// Parser resolves the argument's ValueParser. Factories produce a new
// parser on every call; nil means identity.
func (a *Argument) Parser() ValueParser {
	return a.parser.Resolve()
}

// Type is the display name of the value type.
func (a *Argument) Type() string {
	if p := a.Parser(); p != nil {
		return p.Name()
	}
	return StringParserName
}

// Parse validates and coerces a raw value.
//
// Array arguments split raw on commas, optionally followed by a single
// space, unless the comma is escaped with a backslash. Each element is
// validated and coerced on its own and nil/Null elements are kept. The first
// failing element fails the whole value.
func (a *Argument) Parse(raw string) (any, error) {
	if !a.array {
		if err := a.match(raw); err != nil {
			return nil, err
		}
		return a.convert(raw)
	}

	if raw == "" {
		return nil, nil
	}

	parts := SplitArray(raw)
	for _, part := range parts {
		if err := a.match(part); err != nil {
			return nil, err
		}
	}

	values := make([]any, 0, len(parts))
	for _, part := range parts {
		v, err := a.convert(part)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

func (a *Argument) match(value string) error {
	if value == "" || a.pattern == nil || a.pattern.MatchString(value) {
		return nil
	}
	return &PatternError{Value: value, Pattern: a.pattern.String(), Argument: a.name}
}

func (a *Argument) convert(value string) (any, error) {
	p := a.Parser()
	if p == nil {
		return value, nil
	}
	v, err := p.Parse(value)
	if err != nil {
		return nil, &ValueError{Argument: a.name, Value: value, Parser: p.Name(), Err: err}
	}
	return v, nil
}

// SplitArray splits raw on every comma not preceded by a backslash,
// dropping at most one space after each separator, and unescapes `\,` in
// the resulting elements. A trailing separator yields a trailing empty
// element.
func SplitArray(raw string) []string {
	var (
		parts   []string
		current strings.Builder
	)

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == ArrayEscape && i+1 < len(raw) && raw[i+1] == ArrayDelimiter {
			current.WriteString(EscapedArrayDelimiter)
			i++
			continue
		}
		if c != ArrayDelimiter {
			current.WriteByte(c)
			continue
		}

		parts = append(parts, current.String())
		current.Reset()
		if i+1 < len(raw) && raw[i+1] == ' ' {
			i++
		}
	}
	parts = append(parts, current.String())

	for i, part := range parts {
		parts[i] = strings.ReplaceAll(part, EscapedArrayDelimiter, string(ArrayDelimiter))
	}
	return parts
}

// EscapeArrayElement escapes the commas of a single element so that
// SplitArray returns it unchanged.
func EscapeArrayElement(element string) string {
	return strings.ReplaceAll(element, string(ArrayDelimiter), EscapedArrayDelimiter)
}
