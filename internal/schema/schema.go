// Package schema reads argument declarations from configuration files and
// declares them on a cliargs.Command.
//
// A schema document holds an optional command `name` and `info` header and
// an `arguments` entry, either a list of records carrying a `name` key or a
// table of records keyed by name:
//
//	name: deploy
//	arguments:
//	  - name: target
//	    positional: true
//	  - name: replicas
//	    type: int
//	    default: "1"
//
// Table form is what HCL labeled blocks decode to:
//
//	arguments "replicas" {
//	  type    = "int"
//	  default = "1"
//	}
package schema

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/SimonDaKappa/go-cliargs"
)

var (
	ErrInvalidSchema = errors.New("invalid schema")
)

// Schema is a decoded schema document.
type Schema struct {
	Name      string
	Info      string
	Arguments []Record
}

// Record describes one argument.
type Record struct {
	Name        string
	Type        string
	Short       string
	Required    *bool
	Flag        bool
	Array       bool
	Positional  bool
	Default     any
	Pattern     string
	Description string
}

// Load reads the schema file at path, picking the decoder by extension.
func Load(path string) (*Schema, error) {
	decode, err := cliargs.DecoderFor(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}
	data, err := decode(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode schema %s: %w", path, err)
	}
	return FromObject(data)
}

// FromObject builds a Schema from a decoded document.
func FromObject(data map[string]any) (*Schema, error) {
	s := &Schema{}
	var err error
	if s.Name, err = stringField(data, "name"); err != nil {
		return nil, err
	}
	if s.Info, err = stringField(data, "info"); err != nil {
		return nil, err
	}

	switch args := data["arguments"].(type) {
	case nil:
	case []any:
		for i, raw := range args {
			m, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: argument %d is %T", ErrInvalidSchema, i, raw)
			}
			rec, err := recordFrom(m)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i, err)
			}
			s.Arguments = append(s.Arguments, rec)
		}
	case map[string]any:
		names := make([]string, 0, len(args))
		for name := range args {
			names = append(names, name)
		}
		// Table form has no order of its own.
		sort.Strings(names)
		for _, name := range names {
			m, ok := args[name].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: argument %s is %T", ErrInvalidSchema, name, args[name])
			}
			if _, ok := m["name"]; !ok {
				m["name"] = name
			}
			rec, err := recordFrom(m)
			if err != nil {
				return nil, fmt.Errorf("argument %s: %w", name, err)
			}
			s.Arguments = append(s.Arguments, rec)
		}
	default:
		return nil, fmt.Errorf("%w: arguments is %T", ErrInvalidSchema, args)
	}

	return s, nil
}

func recordFrom(m map[string]any) (Record, error) {
	var (
		rec Record
		err error
	)
	if rec.Name, err = stringField(m, "name"); err != nil {
		return Record{}, err
	}
	if rec.Name == "" {
		return Record{}, fmt.Errorf("%w: missing name", ErrInvalidSchema)
	}
	if rec.Type, err = stringField(m, "type"); err != nil {
		return Record{}, err
	}
	if rec.Short, err = stringField(m, "short"); err != nil {
		return Record{}, err
	}
	if rec.Pattern, err = stringField(m, "pattern"); err != nil {
		return Record{}, err
	}
	if rec.Description, err = stringField(m, "description"); err != nil {
		return Record{}, err
	}
	if rec.Flag, err = boolField(m, "flag"); err != nil {
		return Record{}, err
	}
	if rec.Array, err = boolField(m, "array"); err != nil {
		return Record{}, err
	}
	if rec.Positional, err = boolField(m, "positional"); err != nil {
		return Record{}, err
	}
	if _, ok := m["required"]; ok {
		required, err := boolField(m, "required")
		if err != nil {
			return Record{}, err
		}
		rec.Required = &required
	}
	rec.Default = m["default"]
	return rec, nil
}

func stringField(m map[string]any, key string) (string, error) {
	switch v := m[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidSchema, key, v)
	}
}

func boolField(m map[string]any, key string) (bool, error) {
	switch v := m[key].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	default:
		return false, fmt.Errorf("%w: %s must be a boolean, got %T", ErrInvalidSchema, key, v)
	}
}

// Declare declares every record of s on c, in order. The info header is
// applied when set.
func (s *Schema) Declare(c *cliargs.Command) error {
	if s.Info != "" {
		c.Info(s.Info)
	}
	for _, rec := range s.Arguments {
		cfg, err := rec.config()
		if err != nil {
			return fmt.Errorf("argument %s: %w", rec.Name, err)
		}
		if _, err := c.Declare(cfg); err != nil {
			return err
		}
	}
	return nil
}

func (r Record) config() (cliargs.ArgumentConfig, error) {
	ref, err := cliargs.LookupParser(r.Type)
	if err != nil {
		return cliargs.ArgumentConfig{}, err
	}

	cfg := cliargs.ArgumentConfig{
		Name:        r.Name,
		Parser:      ref,
		ShortCode:   r.Short,
		Flag:        r.Flag,
		Array:       r.Array,
		Positional:  r.Positional,
		Pattern:     r.Pattern,
		Description: r.Description,
		Default:     r.Default,
	}
	if r.Required != nil {
		cfg.Required = cliargs.Required(*r.Required)
	}

	// Scalar defaults go through the parser like command line values.
	if raw, ok := defaultText(r.Default); ok && !r.Flag {
		arg, err := cliargs.NewArgument(cliargs.ArgumentConfig{
			Name:   r.Name,
			Parser: ref,
			Array:  r.Array,
		}, cliargs.ArgumentOpts{})
		if err != nil {
			return cliargs.ArgumentConfig{}, err
		}
		if cfg.Default, err = arg.Parse(raw); err != nil {
			return cliargs.ArgumentConfig{}, err
		}
	}
	return cfg, nil
}

// defaultText renders a decoded default as the token it stands for. Arrays
// are joined with escaped commas. Objects have no textual form.
func defaultText(v any) (string, bool) {
	switch v := v.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case time.Time:
		return v.Format(time.RFC3339Nano), true
	case []any:
		parts := make([]string, len(v))
		for i, e := range v {
			if e == nil {
				parts[i] = cliargs.NullLiteral
				continue
			}
			text, ok := defaultText(e)
			if !ok {
				return "", false
			}
			parts[i] = cliargs.EscapeArrayElement(text)
		}
		return strings.Join(parts, ","), true
	default:
		return "", false
	}
}
