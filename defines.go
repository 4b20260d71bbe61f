package cliargs

import (
	"reflect"
	"time"

	"github.com/google/uuid"
)

// constants for the implicit help argument
const (
	HelpArgumentName        = "help"
	HelpArgumentShortCode   = "?"
	HelpArgumentDescription = "Print this help information"
)

// constants for token classification
const (
	NamePrefix      = "--"
	ShortCodePrefix = "-"
)

// DefaultShortCodeSymbols lists the symbols accepted as multi-character short
// codes. A short code longer than one character is valid only if it occurs
// in this string.
const DefaultShortCodeSymbols = "\"'-?*$"

// constants for array values
const (
	ArrayDelimiter        = ','
	ArrayEscape           = '\\'
	EscapedArrayDelimiter = `\,`
)

// constants for value sentinels, matched after trimming and lower-casing
const (
	NullLiteral  = "null"
	EmptyLiteral = ""
)

// Parser Name constants for built in parsers.
const (
	StringParserName   = "string"
	BooleanParserName  = "Boolean"
	NumberParserName   = "number"
	IntParserName      = "int"
	DateParserName     = "Date"
	DurationParserName = "Duration"
	ObjectParserName   = "object"
	RegExpParserName   = "RegExp"
	PathParserName     = "ParsedPath"
	UUIDParserName     = "UUID"
	EnumParserName     = "enum"
)

// constants for struct tags read by DeclareStruct
const (
	ArgTagName         = "arg"
	DefaultTagName     = "default"
	PatternTagName     = "pattern"
	HelpTagName        = "help"
	TagModifierDelim   = ","
	TagKeyValueDelim   = "="
	ShortTagModifier   = "short"
	TypeTagModifier    = "type"
	PositionalModifier = "positional"
	OptionalModifier   = "optional"
	RequiredModifier   = "required"
	FlagModifier       = "flag"
	ArrayModifier      = "array"
)

// reflect.TypeOf constants for type checks
var (
	UUIDType     = reflect.TypeOf(uuid.UUID{})
	TimeType     = reflect.TypeOf(time.Time{})
	DurationType = reflect.TypeOf(time.Duration(0))
	PathType     = reflect.TypeOf(ParsedPath{})
	AnyType      = reflect.TypeOf((*any)(nil)).Elem()
)
