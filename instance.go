package cliargs

import (
	"context"
	"fmt"
	"maps"
	"slices"
)

// Args is the resolved mapping of argument names to values. Keys are the
// declared names that received a default, a parsed value, or true for a
// flag.
type Args map[string]any

// Has reports whether name is a key of a, whatever its value.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// IsSet reports whether name holds a value that is neither nil nor Null.
func (a Args) IsSet(name string) bool {
	return !IsAbsent(a[name])
}

// Instance is the immutable result of a successful parse.
type Instance struct {
	command *Command
	args    Args
	raw     []string
}

func newInstance(c *Command, args Args, raw []string) *Instance {
	return &Instance{command: c, args: args, raw: slices.Clone(raw)}
}

func newHelpInstance(c *Command, raw []string) *Instance {
	return newInstance(c, Args{HelpArgumentName: true}, raw)
}

// Name returns the name of the command that produced the instance.
func (i *Instance) Name() string { return i.command.name }

// Command returns the command that produced the instance.
func (i *Instance) Command() *Command { return i.command }

// Args returns a copy of the resolved mapping.
func (i *Instance) Args() Args { return maps.Clone(i.args) }

// RawArgs returns a copy of the tokens the instance was parsed from.
func (i *Instance) RawArgs() []string { return slices.Clone(i.raw) }

// Help reports whether help was requested.
func (i *Instance) Help() bool {
	help, _ := i.args[HelpArgumentName].(bool)
	return help
}

// Get returns the value stored for name, even if it is nil or Null. If name
// was never resolved, defaultValue is returned.
func (i *Instance) Get(name string, defaultValue any) any {
	if v, ok := i.args[name]; ok {
		return v
	}
	return defaultValue
}

// Lookup returns the value stored for name and whether it was resolved.
func (i *Instance) Lookup(name string) (any, bool) {
	v, ok := i.args[name]
	return v, ok
}

// GetAs returns the value of name as a T. It reports false when the value
// is missing, nil, Null, or of another type.
func GetAs[T any](i *Instance, name string) (T, bool) {
	v, ok := i.args[name].(T)
	return v, ok
}

// Execute runs action with the resolved mapping, or the command's OnExecute
// action when action is nil. If help was requested, the command help is
// written to the command output instead. A failing action is logged and its
// error returned.
func (i *Instance) Execute(ctx context.Context, action Action) error {
	if action == nil {
		action = i.command.execute
	}
	if action == nil {
		return ErrNoAction
	}

	if i.Help() {
		_, err := fmt.Fprintln(i.command.output, i.command.Help())
		return err
	}

	if err := action(ctx, i.Args()); err != nil {
		i.command.logger.Error(err.Error(), "command", i.command.name)
		return err
	}
	return nil
}
