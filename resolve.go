package cliargs

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/google/shlex"
)

// ParseOpts controls ParseArgs and its variants.
type ParseOpts struct {
	// IgnoreStrict relaxes lookups for this parse only: unknown names, short
	// codes and positions are skipped instead of failing.
	IgnoreStrict bool
	// NoThrow logs a parse failure and returns a help-only Instance instead
	// of the error.
	NoThrow bool
}

// Parse resolves tokens against the declared arguments.
//
// Tokens are read left to right. `--name` and `-x` select an argument; a
// flag is set to true at once, any other argument takes the next token as
// its value. A bare token with no argument waiting for a value goes to the
// next positional argument. Later occurrences overwrite earlier ones and a
// trailing name without a value is dropped.
//
// If the help flag is set, the result only holds help=true and no
// required-field validation happens. Otherwise every required argument
// without a value is reported in a single MissingRequiredError.
func (c *Command) Parse(ignoreStrict bool, tokens ...string) (*Instance, error) {
	resolved := make(Args, c.args.Len())
	for pair := c.args.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.defaultVal != nil {
			resolved[pair.Key] = cloneValue(pair.Value.defaultVal)
		}
	}

	var (
		pending      *Argument
		nextPosition int
	)
	for _, token := range tokens {
		switch {
		case strings.HasPrefix(token, NamePrefix):
			arg, err := c.ArgumentByName(token[len(NamePrefix):], true, ignoreStrict)
			if err != nil {
				return nil, err
			}
			pending = c.selectArgument(resolved, arg)

		case strings.HasPrefix(token, ShortCodePrefix):
			arg, err := c.ArgumentByShortCode(token[len(ShortCodePrefix):], true, ignoreStrict)
			if err != nil {
				return nil, err
			}
			pending = c.selectArgument(resolved, arg)

		case pending != nil:
			value, err := pending.Parse(token)
			if err != nil {
				return nil, err
			}
			resolved[pending.name] = value
			pending = nil

		default:
			position := nextPosition
			nextPosition++
			arg, err := c.ArgumentByPosition(position, true, ignoreStrict)
			if err != nil {
				return nil, &PositionalError{Position: position, Token: token, Err: err}
			}
			if arg == nil {
				continue
			}
			value, err := arg.Parse(token)
			if err != nil {
				return nil, err
			}
			resolved[arg.name] = value
		}
	}

	if help, _ := resolved[HelpArgumentName].(bool); help {
		return newHelpInstance(c, tokens), nil
	}

	var missing []string
	for pair := c.args.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.IsRequired(resolved) && IsAbsent(resolved[pair.Key]) {
			missing = append(missing, pair.Key)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingRequiredError{Names: missing}
	}

	c.logger.Debug("Arguments parsed", "command", c.name, "count", len(resolved))
	return newInstance(c, resolved, tokens), nil
}

// cloneValue deep-copies slices and maps so a parse never shares a default
// with its Argument or with another parse.
func cloneValue(v any) any {
	switch v := v.(type) {
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = cloneValue(e)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := range rv.Len() {
			out.Index(i).Set(cloneReflect(rv.Index(i)))
		}
		return out.Interface()
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneReflect(iter.Value()))
		}
		return out.Interface()
	}
	return v
}

func cloneReflect(rv reflect.Value) reflect.Value {
	if !rv.IsValid() || !rv.CanInterface() {
		return rv
	}
	c := cloneValue(rv.Interface())
	if c == nil {
		return reflect.Zero(rv.Type())
	}
	return reflect.ValueOf(c).Convert(rv.Type())
}

// selectArgument handles a named token: flags are set at once, other arguments
// become pending. A nil arg (unknown, non-strict) leaves nothing pending.
func (c *Command) selectArgument(resolved Args, arg *Argument) *Argument {
	if arg == nil {
		return nil
	}
	if arg.flag {
		resolved[arg.name] = true
		return nil
	}
	return arg
}

// ParseArgs is Parse with options.
func (c *Command) ParseArgs(tokens []string, opts ParseOpts) (*Instance, error) {
	inst, err := c.Parse(opts.IgnoreStrict, tokens...)
	if err != nil {
		if opts.NoThrow {
			c.logger.Error(err.Error(), "command", c.name)
			return newHelpInstance(c, tokens), nil
		}
		return nil, err
	}
	return inst, nil
}

// ParseProcessArgs parses the arguments of the running process, skipping
// the program name.
func (c *Command) ParseProcessArgs(opts ParseOpts) (*Instance, error) {
	var tokens []string
	if len(os.Args) > 1 {
		tokens = os.Args[1:]
	}
	return c.ParseArgs(tokens, opts)
}

// ParseString splits line into tokens with shell quoting rules and parses
// them.
func (c *Command) ParseString(line string, opts ParseOpts) (*Instance, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		err = fmt.Errorf("failed to split command line: %w", err)
		if opts.NoThrow {
			c.logger.Error(err.Error(), "command", c.name)
			return newHelpInstance(c, nil), nil
		}
		return nil, err
	}
	return c.ParseArgs(tokens, opts)
}

// IsLookupError reports whether err is caused by an unknown name, short code
// or position.
func IsLookupError(err error) bool {
	var lookupErr *LookupError
	return errors.As(err, &lookupErr)
}
