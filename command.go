package cliargs

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Action is the callback run by Instance.Execute with the resolved values.
type Action func(ctx context.Context, args Args) error

// Command is the argument registry of one command. It owns its argument
// descriptors, keeps them in declaration order and enforces their
// uniqueness and ordering rules.
//
// A Command must be treated as read-only once parsing starts: Parse may be
// called concurrently, Declare may not be interleaved with it.
type Command struct {
	name    string
	opts    CommandOpts
	logger  *slog.Logger
	output  io.Writer
	info    string
	execute Action

	args         *orderedmap.OrderedMap[string, *Argument]
	shortCodes   map[string]*Argument
	positionals  []*Argument
	lastOptional string // name of the last optional positional argument
}

type CommandOpts struct {
	// NonStrict ignores unknown names, short codes and positions instead of
	// failing. Non-strict commands do not support positional arguments.
	NonStrict bool
	// Logger receives warnings and errors. Defaults to a discarding logger.
	Logger *slog.Logger
	// Output receives the help text printed by Instance.Execute.
	// Defaults to os.Stdout.
	Output io.Writer
	// ShortCodeSymbols overrides DefaultShortCodeSymbols.
	ShortCodeSymbols string
}

// NewCommand creates a command with the implicit help flag declared.
func NewCommand(name string, opts CommandOpts) *Command {
	c := &Command{
		name:       name,
		opts:       opts,
		logger:     opts.Logger,
		output:     opts.Output,
		args:       orderedmap.New[string, *Argument](),
		shortCodes: make(map[string]*Argument),
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.output == nil {
		c.output = os.Stdout
	}

	c.MustDeclare(ArgumentConfig{
		Name:        HelpArgumentName,
		ShortCode:   HelpArgumentShortCode,
		Flag:        true,
		Description: HelpArgumentDescription,
	})
	return c
}

func (c *Command) Name() string         { return c.name }
func (c *Command) Strict() bool         { return !c.opts.NonStrict }
func (c *Command) Logger() *slog.Logger { return c.logger }

// Info sets the header printed above the usage line of the help text.
func (c *Command) Info(header string) *Command {
	c.info = header
	return c
}

// OnExecute sets the action run by Instance.Execute when it is called
// without one.
func (c *Command) OnExecute(action Action) *Command {
	c.execute = action
	return c
}

// Arguments returns the declared arguments in declaration order.
func (c *Command) Arguments() []*Argument {
	out := make([]*Argument, 0, c.args.Len())
	for pair := c.args.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

///////////////////////////////////////////////////////////////////////////////
// Declaration
///////////////////////////////////////////////////////////////////////////////

// Declare adds an argument to the command.
//
// It fails if the name is missing or taken, if the short code is taken, or
// if a required positional argument follows an optional one. On a
// non-strict command, positional declarations are dropped with a warning
// and (nil, nil) is returned.
func (c *Command) Declare(cfg ArgumentConfig) (*Argument, error) {
	if cfg.Name == "" {
		return nil, &DeclarationError{Err: ErrInvalidName}
	}
	if _, exists := c.args.Get(cfg.Name); exists {
		return nil, &DeclarationError{Name: cfg.Name, Err: ErrDuplicateName}
	}
	if cfg.ShortCode != "" {
		if _, exists := c.shortCodes[cfg.ShortCode]; exists {
			return nil, &DeclarationError{Name: cfg.ShortCode, Err: ErrDuplicateShortCode}
		}
	}

	if cfg.Positional && c.opts.NonStrict {
		c.logger.Warn("Positional arguments are ignored in a non-strict command",
			"command", c.name, "argument", cfg.Name)
		return nil, nil
	}

	if cfg.Required == nil && !cfg.Flag {
		cfg.Required = Required(true)
	}

	if cfg.Positional && !isOptional(cfg.Required) && c.lastOptional != "" {
		return nil, &DeclarationError{
			Name: cfg.Name,
			Detail: fmt.Sprintf(
				"there already is a previous optional positional parameter '%s', no new required positional argument are possible",
				c.lastOptional,
			),
			Err: ErrPositionalOrder,
		}
	}

	arg, err := NewArgument(cfg, ArgumentOpts{
		ShortCodeSymbols: c.opts.ShortCodeSymbols,
		Position:         len(c.positionals),
	})
	if err != nil {
		return nil, err
	}

	c.args.Set(arg.name, arg)
	if arg.shortCode != "" {
		c.shortCodes[arg.shortCode] = arg
	}
	if arg.IsPositional() {
		c.positionals = append(c.positionals, arg)
		if arg.IsOptional() {
			c.lastOptional = arg.name
		}
	}

	return arg, nil
}

// MustDeclare is like Declare but panics on error. It is meant for
// declarations fixed at compile time.
func (c *Command) MustDeclare(cfg ArgumentConfig) *Command {
	if _, err := c.Declare(cfg); err != nil {
		panic(fmt.Sprintf("cliargs: %s: %v", c.name, err))
	}
	return c
}

///////////////////////////////////////////////////////////////////////////////
// Lookup
///////////////////////////////////////////////////////////////////////////////

// ArgumentByName returns the argument called name. A missing argument is
// an error only if verify is set, the command is strict and ignoreStrict is
// not set; otherwise (nil, nil) is returned.
func (c *Command) ArgumentByName(name string, verify, ignoreStrict bool) (*Argument, error) {
	arg, _ := c.args.Get(name)
	if arg == nil && c.mustVerify(verify, ignoreStrict) {
		return nil, &LookupError{Kind: LookupByName, Key: name, Suggestion: c.suggest(name)}
	}
	return arg, nil
}

// ArgumentByShortCode is ArgumentByName for short codes.
func (c *Command) ArgumentByShortCode(shortCode string, verify, ignoreStrict bool) (*Argument, error) {
	arg := c.shortCodes[shortCode]
	if arg == nil && c.mustVerify(verify, ignoreStrict) {
		return nil, &LookupError{Kind: LookupByShortCode, Key: shortCode}
	}
	return arg, nil
}

// ArgumentByPosition is ArgumentByName for positional indices.
func (c *Command) ArgumentByPosition(position int, verify, ignoreStrict bool) (*Argument, error) {
	var arg *Argument
	if position >= 0 && position < len(c.positionals) {
		arg = c.positionals[position]
	}
	if arg == nil && c.mustVerify(verify, ignoreStrict) {
		return nil, &LookupError{Kind: LookupByPosition, Position: position}
	}
	return arg, nil
}

func (c *Command) mustVerify(verify, ignoreStrict bool) bool {
	return verify && c.Strict() && !ignoreStrict
}

// suggest returns the declared name closest to name, or "".
func (c *Command) suggest(name string) string {
	if name == "" {
		return ""
	}
	candidates := make([]string, 0, c.args.Len())
	for pair := c.args.Oldest(); pair != nil; pair = pair.Next() {
		candidates = append(candidates, pair.Key)
	}

	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
