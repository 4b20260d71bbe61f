package cliargs

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

var (
	ErrInvalidBoolean  = errors.New("invalid boolean")
	ErrInvalidNumber   = errors.New("not a number")
	ErrNotInteger      = errors.New("not an integer value")
	ErrInvalidDate     = errors.New("not a valid date")
	ErrInvalidDuration = errors.New("not a valid duration")
	ErrInvalidObject   = errors.New("not a valid JSON value")
	ErrInvalidRegExp   = errors.New("not a valid regular expression")
	ErrInvalidUUID     = errors.New("not a valid UUID")
	ErrPatternMismatch = errors.New("input does not match pattern")
	ErrUnknownEnum     = errors.New("no value named")
)

///////////////////////////////////////////////////////////////////////////////
// BooleanParser
///////////////////////////////////////////////////////////////////////////////

// BooleanParser parses boolean values.
//
// Many common boolean representations are supported:
//   - "true", "1", "yes", "on" (case insensitive)
//   - "false", "0", "no", "off" (case insensitive)
type BooleanParser struct{}

func (p *BooleanParser) Name() string { return BooleanParserName }

func (p *BooleanParser) Parse(raw string) (any, error) {
	if v, ok := ParseSentinel(raw); ok {
		return v, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidBoolean, raw)
	}
}

///////////////////////////////////////////////////////////////////////////////
// NumberParser
///////////////////////////////////////////////////////////////////////////////

// NumberMode selects the kind of number a NumberParser accepts.
type NumberMode int

const (
	// FloatMode accepts any number and produces a float64.
	FloatMode NumberMode = iota
	// IntMode rejects fractional input and produces an int64.
	IntMode
)

// NumberParser parses numeric values. The zero value parses floats.
type NumberParser struct {
	Mode NumberMode
}

func (p *NumberParser) Name() string { return NumberParserName }

func (p *NumberParser) Parse(raw string) (any, error) {
	if v, ok := ParseSentinel(raw); ok {
		return v, nil
	}
	value := strings.TrimSpace(raw)

	if p.Mode == IntMode {
		return parseInt(value)
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return f, nil
}

// parseInt accepts plain integers as well as integral exponent forms
// such as "1e3".
func parseInt(value string) (any, error) {
	if strings.Contains(value, ".") {
		return nil, fmt.Errorf("%w: %q", ErrNotInteger, value)
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, value)
	}
	i := int64(f)
	if float64(i) != f {
		return nil, fmt.Errorf("%w: %q", ErrNotInteger, value)
	}
	return i, nil
}

// IntParser is a NumberParser restricted to integers.
type IntParser struct{}

func (p *IntParser) Name() string { return IntParserName }

func (p *IntParser) Parse(raw string) (any, error) {
	return (&NumberParser{Mode: IntMode}).Parse(raw)
}

///////////////////////////////////////////////////////////////////////////////
// DateParser
///////////////////////////////////////////////////////////////////////////////

// DateParser parses dates and times into time.Time.
//
// The keywords "now", "today", "tomorrow" and "yesterday" are understood;
// the last three resolve to the start of the day. Any other input is handed
// to dateparse, which accepts most common layouts.
type DateParser struct {
	// Location used for inputs without a zone. Defaults to time.Local.
	Location *time.Location
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (p *DateParser) Name() string { return DateParserName }

func (p *DateParser) Parse(raw string) (any, error) {
	if v, ok := ParseSentinel(raw); ok {
		return v, nil
	}

	loc := p.Location
	if loc == nil {
		loc = time.Local
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	value := strings.TrimSpace(raw)
	switch strings.ToLower(value) {
	case "now":
		return now().In(loc), nil
	case "today":
		return startOfDay(now().In(loc), 0), nil
	case "tomorrow":
		return startOfDay(now().In(loc), 1), nil
	case "yesterday":
		return startOfDay(now().In(loc), -1), nil
	}

	t, err := dateparse.ParseIn(value, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidDate, raw, err)
	}
	return t, nil
}

func startOfDay(t time.Time, offsetDays int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+offsetDays, 0, 0, 0, 0, t.Location())
}

///////////////////////////////////////////////////////////////////////////////
// DurationParser
///////////////////////////////////////////////////////////////////////////////

// DurationParser parses Go duration strings such as "1h30m".
type DurationParser struct{}

func (p *DurationParser) Name() string { return DurationParserName }

func (p *DurationParser) Parse(raw string) (any, error) {
	if v, ok := ParseSentinel(raw); ok {
		return v, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
	}
	return d, nil
}

///////////////////////////////////////////////////////////////////////////////
// StringParser
///////////////////////////////////////////////////////////////////////////////

// StringParser passes strings through, applying the sentinel convention.
type StringParser struct {
	// NullAsString keeps the literal "null" as a string instead of Null.
	NullAsString bool
}

func (p *StringParser) Name() string { return StringParserName }

func (p *StringParser) Parse(raw string) (any, error) {
	v, ok := ParseSentinel(raw)
	if !ok || (IsNull(v) && p.NullAsString) {
		return raw, nil
	}
	return v, nil
}

///////////////////////////////////////////////////////////////////////////////
// PatternParser
///////////////////////////////////////////////////////////////////////////////

// PatternParser is a StringParser that only accepts strings matching Pattern.
type PatternParser struct {
	StringParser
	Pattern *regexp.Regexp
}

// NewPatternParser compiles expr and returns a parser for it.
func NewPatternParser(expr string) (*PatternParser, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	return &PatternParser{Pattern: re}, nil
}

// MustPatternParser is like NewPatternParser but panics on a bad expression.
func MustPatternParser(expr string) *PatternParser {
	p, err := NewPatternParser(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *PatternParser) Name() string { return StringParserName }

func (p *PatternParser) Parse(raw string) (any, error) {
	v, err := p.StringParser.Parse(raw)
	if err != nil {
		return nil, err
	}
	s, ok := v.(string)
	if ok && s != "" && p.Pattern != nil && !p.Pattern.MatchString(s) {
		return nil, fmt.Errorf("%w: input %s does not match /%s/", ErrPatternMismatch, s, p.Pattern)
	}
	return v, nil
}

///////////////////////////////////////////////////////////////////////////////
// EnumParser
///////////////////////////////////////////////////////////////////////////////

// EnumParser maps names to values. Names are matched exactly.
type EnumParser struct {
	Values   map[string]any
	TypeName string
}

// NewEnumParser builds an EnumParser from a typed name -> value table.
func NewEnumParser[T any](values map[string]T) *EnumParser {
	m := make(map[string]any, len(values))
	for k, v := range values {
		m[k] = v
	}
	return &EnumParser{Values: m}
}

func (p *EnumParser) Name() string {
	if p.TypeName != "" {
		return p.TypeName
	}
	return EnumParserName
}

func (p *EnumParser) Parse(raw string) (any, error) {
	if v, ok := ParseSentinel(raw); ok {
		return v, nil
	}
	v, ok := p.Values[raw]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnknownEnum, raw)
	}
	return v, nil
}

///////////////////////////////////////////////////////////////////////////////
// ObjectParser
///////////////////////////////////////////////////////////////////////////////

// ObjectParser parses JSON documents. Objects become map[string]any,
// arrays []any and numbers float64.
type ObjectParser struct{}

func (p *ObjectParser) Name() string { return ObjectParserName }

func (p *ObjectParser) Parse(raw string) (any, error) {
	if v, ok := ParseSentinel(raw); ok {
		return v, nil
	}
	value := strings.TrimSpace(raw)
	if !gjson.Valid(value) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidObject, raw)
	}
	return gjson.Parse(value).Value(), nil
}

///////////////////////////////////////////////////////////////////////////////
// RegExpParser
///////////////////////////////////////////////////////////////////////////////

// regExpLiteral matches "/source/flags".
var regExpLiteral = regexp.MustCompile(`^/(.+)/([a-z]*)$`)

// RegExpParser parses regular expressions, either bare ("^abc$") or in
// literal form with flags ("/^abc$/i"). The flags i, m and s map to the
// matching RE2 flags; g, u and y have no RE2 meaning and are accepted and
// ignored.
type RegExpParser struct{}

func (p *RegExpParser) Name() string { return RegExpParserName }

func (p *RegExpParser) Parse(raw string) (any, error) {
	if v, ok := ParseSentinel(raw); ok {
		return v, nil
	}

	source, flags := raw, ""
	if m := regExpLiteral.FindStringSubmatch(raw); m != nil {
		source, flags = m[1], m[2]
	}

	var prefix strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			prefix.WriteRune(f)
		case 'g', 'u', 'y':
		default:
			return nil, fmt.Errorf("%w: unsupported flag %q", ErrInvalidRegExp, f)
		}
	}
	if prefix.Len() > 0 {
		source = "(?" + prefix.String() + ")" + source
	}

	re, err := regexp.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRegExp, err)
	}
	return re, nil
}

///////////////////////////////////////////////////////////////////////////////
// PathParser
///////////////////////////////////////////////////////////////////////////////

// ParsedPath is the result of PathParser.
type ParsedPath struct {
	Root string // "/" for absolute paths, volume name on Windows
	Dir  string
	Base string
	Ext  string
	Name string // Base without Ext
}

// PathParser splits a file path into its components.
type PathParser struct{}

func (p *PathParser) Name() string { return PathParserName }

func (p *PathParser) Parse(raw string) (any, error) {
	if v, ok := ParseSentinel(raw); ok {
		return v, nil
	}

	root := filepath.VolumeName(raw)
	if filepath.IsAbs(raw) && root == "" {
		root = string(filepath.Separator)
	}

	base := filepath.Base(raw)
	ext := filepath.Ext(base)
	return ParsedPath{
		Root: root,
		Dir:  filepath.Dir(raw),
		Base: base,
		Ext:  ext,
		Name: strings.TrimSuffix(base, ext),
	}, nil
}

///////////////////////////////////////////////////////////////////////////////
// UUIDParser
///////////////////////////////////////////////////////////////////////////////

// UUIDParser parses UUIDs in any form accepted by uuid.Parse.
type UUIDParser struct{}

func (p *UUIDParser) Name() string { return UUIDParserName }

func (p *UUIDParser) Parse(raw string) (any, error) {
	if v, ok := ParseSentinel(raw); ok {
		return v, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUUID, err)
	}
	return id, nil
}
