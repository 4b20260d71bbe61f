package cliargs

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Base Error types for struct tag errors
var (
	ErrNotAStruct           = errors.New("schema must be a struct or a pointer to a struct")
	ErrInvalidArgTagFormat  = errors.New("invalid arg tag format")
	ErrUnallowedArgModifier = errors.New("arg tag modifier is not allowed")
	ErrInvalidDefault       = errors.New("invalid default value")
)

// This file contains the struct tag reader used by DeclareStruct and
// Instance.Bind. Only fields carrying an `arg` tag are considered.
//
// Tag grammar:
//     <field> <type> `arg:"<arg_tag>" default:"<value>" pattern:"<regexp>" help:"<text>"`
//
// arg_tag:
//     <name>[,<modifier>]^*    // name may be empty, "-" skips the field
// modifier:
//     short=<code> | type=<parser name> | positional | optional | required | flag | array
//
// An empty name is the lower-cased field name. Without `type=`, the parser
// is inferred from the field type; slice fields (other than []byte) are
// arrays of their element type.

// ArgTag corresponds to the `arg` tag in the struct field tags.
// Example: Count int `arg:"count,short=c,optional"`
type ArgTag struct {
	Name       string
	ShortCode  string
	Type       string
	Positional bool
	Optional   bool
	Required   bool
	Flag       bool
	Array      bool
}

// DecodeArgTag parses the content of an `arg` tag.
func DecodeArgTag(tag string) (ArgTag, error) {
	parts := strings.Split(tag, TagModifierDelim)
	out := ArgTag{Name: strings.TrimSpace(parts[0])}

	for _, part := range parts[1:] {
		modifier := strings.TrimSpace(part)
		key, value, hasValue := strings.Cut(modifier, TagKeyValueDelim)

		switch {
		case hasValue && key == ShortTagModifier:
			out.ShortCode = value
		case hasValue && key == TypeTagModifier:
			out.Type = value
		case hasValue:
			return ArgTag{}, fmt.Errorf("%w: %s", ErrUnallowedArgModifier, modifier)
		case modifier == PositionalModifier:
			out.Positional = true
		case modifier == OptionalModifier:
			out.Optional = true
		case modifier == RequiredModifier:
			out.Required = true
		case modifier == FlagModifier:
			out.Flag = true
		case modifier == ArrayModifier:
			out.Array = true
		case modifier == "":
			continue
		default:
			return ArgTag{}, fmt.Errorf("%w: %s", ErrUnallowedArgModifier, modifier)
		}
	}

	if out.Optional && out.Required {
		return ArgTag{}, fmt.Errorf("%w: %s and %s are exclusive", ErrInvalidArgTagFormat, OptionalModifier, RequiredModifier)
	}
	return out, nil
}

// taggedField is a struct field with a decoded `arg` tag.
type taggedField struct {
	index []int
	field reflect.StructField
	tag   ArgTag
}

// taggedFields returns the tagged, exported fields of t in declaration
// order. Fields tagged `arg:"-"` are skipped.
func taggedFields(t reflect.Type) ([]taggedField, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w, got %s", ErrNotAStruct, t)
	}

	fields := make([]taggedField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		raw, ok := field.Tag.Lookup(ArgTagName)
		if !ok || raw == "-" || !field.IsExported() {
			continue
		}

		tag, err := DecodeArgTag(raw)
		if err != nil {
			return nil, fmt.Errorf("error parsing arg tag for field %s: %w", field.Name, err)
		}
		if tag.Name == "" {
			tag.Name = strings.ToLower(field.Name)
		}
		fields = append(fields, taggedField{index: field.Index, field: field, tag: tag})
	}
	return fields, nil
}

// DeclareStruct declares one argument per tagged field of schema, which
// must be a struct or a pointer to one. Declaration stops at the first
// failing field.
func (c *Command) DeclareStruct(schema any) error {
	if schema == nil {
		return ErrNotAStruct
	}
	fields, err := cachedTaggedFields(reflect.TypeOf(schema))
	if err != nil {
		return err
	}

	for _, f := range fields {
		cfg, err := argumentConfigFor(f)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.field.Name, err)
		}
		if _, err := c.Declare(cfg); err != nil {
			return fmt.Errorf("field %s: %w", f.field.Name, err)
		}
	}
	return nil
}

func argumentConfigFor(f taggedField) (ArgumentConfig, error) {
	fieldType := f.field.Type
	array := f.tag.Array
	if fieldType.Kind() == reflect.Slice && fieldType.Elem().Kind() != reflect.Uint8 {
		array = true
		fieldType = fieldType.Elem()
	}

	cfg := ArgumentConfig{
		Name:        f.tag.Name,
		ShortCode:   f.tag.ShortCode,
		Positional:  f.tag.Positional,
		Flag:        f.tag.Flag,
		Array:       array,
		Pattern:     f.field.Tag.Get(PatternTagName),
		Description: f.field.Tag.Get(HelpTagName),
	}

	switch {
	case f.tag.Optional:
		cfg.Required = Required(false)
	case f.tag.Required:
		cfg.Required = Required(true)
	}

	if f.tag.Type != "" {
		ref, err := LookupParser(f.tag.Type)
		if err != nil {
			return ArgumentConfig{}, err
		}
		cfg.Parser = ref
	} else {
		cfg.Parser = inferParser(fieldType)
	}

	if raw, ok := f.field.Tag.Lookup(DefaultTagName); ok && !cfg.Flag {
		value, err := coerceDefault(cfg.Parser, array, raw)
		if err != nil {
			return ArgumentConfig{}, fmt.Errorf("%w %q: %w", ErrInvalidDefault, raw, err)
		}
		cfg.Default = value
	}

	return cfg, nil
}

// inferParser picks the parser for a Go field type. Strings, interfaces
// and unknown types pass raw values through.
func inferParser(t reflect.Type) ParserRef {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t {
	case UUIDType:
		return FactoryOf[UUIDParser]()
	case TimeType:
		return FactoryOf[DateParser]()
	case DurationType:
		return FactoryOf[DurationParser]()
	case PathType:
		return FactoryOf[PathParser]()
	}

	switch t.Kind() {
	case reflect.Bool:
		return FactoryOf[BooleanParser]()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return FactoryOf[IntParser]()
	case reflect.Float32, reflect.Float64:
		return FactoryOf[NumberParser]()
	case reflect.Map:
		return FactoryOf[ObjectParser]()
	default:
		return ParserRef{}
	}
}

// coerceDefault runs a `default` tag through the argument's parser, so
// defaults have the same type as parsed values.
func coerceDefault(ref ParserRef, array bool, raw string) (any, error) {
	convert := func(s string) (any, error) {
		p := ref.Resolve()
		if p == nil {
			return s, nil
		}
		return p.Parse(s)
	}

	if !array {
		return convert(raw)
	}
	if raw == "" {
		return nil, nil
	}

	parts := SplitArray(raw)
	values := make([]any, 0, len(parts))
	for _, part := range parts {
		v, err := convert(part)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
