package cliargs

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	helpTitle = color.New(color.Bold)
	helpName  = color.New(color.FgCyan)
)

// String returns the help text of the command.
func (c *Command) String() string {
	return c.Help()
}

// Help documents the command: the info header if set, a usage line and one
// row per argument with its type, description, default and pattern.
func (c *Command) Help() string {
	var b strings.Builder
	if c.info != "" {
		b.WriteString(c.info)
		b.WriteString("\n\n")
	}

	args := c.Arguments()
	usage := []string{helpTitle.Sprint(c.name)}
	for _, arg := range args {
		usage = append(usage, usageOf(arg))
	}
	b.WriteString(strings.Join(usage, " "))
	b.WriteString("\n\n")

	nameWidth, typeWidth := 0, 0
	for _, arg := range args {
		nameWidth = max(nameWidth, len(arg.name))
		typeWidth = max(typeWidth, len(typeOf(arg)))
	}

	rows := make([]string, 0, len(args))
	for _, arg := range args {
		var row strings.Builder
		fmt.Fprintf(&row, "\t--%s\t%-*s", helpName.Sprintf("%-*s", nameWidth, arg.name), typeWidth+2, typeOf(arg))
		if arg.description != "" {
			fmt.Fprintf(&row, " - %s.", arg.description)
		}
		if arg.defaultVal != nil {
			fmt.Fprintf(&row, " Defaults to %s.", formatDefault(arg.defaultVal))
		}
		if arg.pattern != nil {
			fmt.Fprintf(&row, " Must match /%s/.", arg.pattern)
		}
		rows = append(rows, strings.TrimRight(row.String(), " "))
	}
	b.WriteString(strings.Join(rows, "\n"))
	return b.String()
}

// usageOf renders one argument of the usage line, e.g. `--name <name>`,
// `<source>`, `[--verbose]` or `[--tags <tag>, ...]`.
func usageOf(arg *Argument) string {
	var parts []string
	if !arg.IsPositional() {
		parts = append(parts, NamePrefix+arg.name)
	}
	if !arg.flag {
		parts = append(parts, "<"+arg.name+">")
	}
	s := strings.Join(parts, " ")
	if arg.array {
		if strings.HasSuffix(s, "s>") {
			s = s[:len(s)-2] + ">"
		}
		s += ", ..."
	}
	if arg.IsOptional() {
		return "[" + s + "]"
	}
	return s
}

func typeOf(arg *Argument) string {
	if arg.flag {
		return "Flag"
	}
	if arg.array {
		return arg.Type() + "[]"
	}
	return arg.Type()
}

func formatDefault(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
