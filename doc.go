// Package cliargs (Command Line ARGumentS) provides a declarative engine for
// defining and parsing command-line arguments in Go.
//
// A Command is declared once, argument by argument, and then used to turn a
// raw token sequence (usually os.Args[1:]) into a validated, typed Args map.
//
// The engine understands the following token forms:
//   - `--name <value>`: named arguments
//   - `-n <value>`: short codes for named arguments
//   - `--flag` / `-f`: flags, which take no value and resolve to true
//   - `<value>`: positional arguments, assigned in declaration order
//   - `--list "a,b, c\,d"`: array arguments, split on an unescaped comma
//
// Values are coerced by ValueParsers. Each parser shares one convention:
// the literal "null" (any case) yields Null, the empty string yields nil
// (no value), and anything else is either coerced or rejected with an error.
// The package provides built-in parsers for common types, such as:
//   - BooleanParser, NumberParser, DateParser, DurationParser
//   - StringParser, PatternParser, EnumParser, RegExpParser
//   - ObjectParser (JSON), PathParser, UUIDParser
//
// Arguments may be required statically (Required) or conditionally
// (RequiredIf), in which case the predicate is evaluated against the values
// resolved so far. A Command always declares a `help` flag with the short
// code `?`; when it is present, required-field validation is skipped and
// Instance.Execute prints the command help instead of running the action.
//
// Example:
//
//	cmd := cliargs.NewCommand("copy", cliargs.CommandOpts{})
//	cmd.MustDeclare(cliargs.ArgumentConfig{Name: "source", Positional: true})
//	cmd.MustDeclare(cliargs.ArgumentConfig{Name: "target", Positional: true})
//	cmd.MustDeclare(cliargs.ArgumentConfig{Name: "verbose", ShortCode: "v", Flag: true})
//
//	inst, err := cmd.Parse(false, os.Args[1:]...)
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = inst.Execute(ctx, func(ctx context.Context, args cliargs.Args) error {
//		fmt.Println(args["source"], args["target"], args["verbose"])
//		return nil
//	})
//
// Besides raw tokens, values can be loaded from plain objects
// (Command.LoadFromObject) or from JSON, YAML, TOML and HCL files
// (Command.LoadFromFile), and arguments can be declared from struct tags
// (Command.DeclareStruct) and bound back into structs (Instance.Bind).
package cliargs
