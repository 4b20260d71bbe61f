// Command argcheck declares arguments from a schema file, parses the tokens
// following `--` against them and prints the resolved values as JSON.
//
//	argcheck --schema deploy.yaml -- web --replicas 3
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/SimonDaKappa/go-cliargs"
	"github.com/SimonDaKappa/go-cliargs/internal/schema"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

const tokenSeparator = "--"

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		code, message := exitStatus(err)
		fmt.Fprintln(os.Stderr, message)
		os.Exit(code)
	}
}

// exitStatus maps an error returned by run to the process exit code and the
// message printed on stderr. Errors without an ExitError exit with 1.
func exitStatus(err error) (int, string) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, exitErr.Message
	}
	return 1, err.Error()
}

// newCommand declares the options of argcheck itself.
func newCommand(outW io.Writer) *cliargs.Command {
	return cliargs.NewCommand("argcheck", cliargs.CommandOpts{Output: outW}).
		Info("argcheck - parse tokens against an argument schema").
		MustDeclare(cliargs.ArgumentConfig{
			Name:        "schema",
			ShortCode:   "s",
			Required:    cliargs.Required(false),
			Pattern:     `\.(json|ya?ml|toml|hcl)$`,
			Description: "Schema file declaring the arguments",
		}).
		MustDeclare(cliargs.ArgumentConfig{
			Name:        "name",
			Required:    cliargs.Required(false),
			Description: "Command name, overrides the schema",
		}).
		MustDeclare(cliargs.ArgumentConfig{
			Name:        "log-file",
			Required:    cliargs.Required(false),
			Description: "Write logs to this file, rotated by size",
		}).
		MustDeclare(cliargs.ArgumentConfig{
			Name:        "log-level",
			Required:    cliargs.Required(false),
			Default:     "info",
			Pattern:     `^(debug|info|warn|error)$`,
			Description: "Logging level",
		})
}

// run encapsulates the main application logic for easier testing and error handling.
func run(outW io.Writer, args []string) error {
	own, tokens := args, []string(nil)
	if i := slices.Index(args, tokenSeparator); i >= 0 {
		own, tokens = args[:i], args[i+1:]
	}

	cmd := newCommand(outW)
	opts, err := cmd.ParseArgs(own, cliargs.ParseOpts{})
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	if opts.Help() {
		fmt.Fprintln(outW, cmd.Help())
		return nil
	}

	logger, closeLog, err := newLogger(opts)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	defer closeLog()

	target, err := loadTarget(opts, logger, outW)
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}

	inst, err := target.ParseArgs(tokens, cliargs.ParseOpts{})
	if err != nil {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	return inst.Execute(context.Background(), nil)
}

// loadTarget builds the command described by the schema, printing its
// resolved values on execution.
func loadTarget(opts *cliargs.Instance, logger *slog.Logger, outW io.Writer) (*cliargs.Command, error) {
	s := &schema.Schema{Name: "command"}
	if path, ok := cliargs.GetAs[string](opts, "schema"); ok {
		loaded, err := schema.Load(path)
		if err != nil {
			return nil, err
		}
		if loaded.Name == "" {
			loaded.Name = s.Name
		}
		s = loaded
	}
	if name, ok := cliargs.GetAs[string](opts, "name"); ok {
		s.Name = name
	}

	target := cliargs.NewCommand(s.Name, cliargs.CommandOpts{Logger: logger, Output: outW})
	if err := s.Declare(target); err != nil {
		return nil, err
	}
	logger.Info("Schema loaded", "command", s.Name, "arguments", len(s.Arguments))

	target.OnExecute(func(ctx context.Context, args cliargs.Args) error {
		enc := json.NewEncoder(outW)
		enc.SetIndent("", "  ")
		return enc.Encode(args)
	})
	return target, nil
}

// newLogger returns a text logger writing to the rotated log file, or a
// discarding logger when no file is set.
func newLogger(opts *cliargs.Instance) (*slog.Logger, func(), error) {
	var level slog.Level
	if name, ok := cliargs.GetAs[string](opts, "log-level"); ok {
		if err := level.UnmarshalText([]byte(name)); err != nil {
			return nil, nil, fmt.Errorf("invalid log-level: %w", err)
		}
	}

	path, ok := cliargs.GetAs[string](opts, "log-file")
	if !ok {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = w.Close() }, nil
}
