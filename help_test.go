package cliargs

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestCommandHelp(t *testing.T) {
	color.NoColor = true

	c := NewCommand("copy", CommandOpts{}).
		Info("Copies files").
		MustDeclare(ArgumentConfig{Name: "source", Positional: true, Description: "File to copy"}).
		MustDeclare(ArgumentConfig{Name: "target", Positional: true, Required: Required(false)}).
		MustDeclare(ArgumentConfig{Name: "count", Parser: FactoryOf[IntParser](), Default: int64(1), Pattern: `^\d+$`}).
		MustDeclare(ArgumentConfig{Name: "tags", Array: true, Required: Required(false)})

	help := c.Help()
	assert.Equal(t, help, c.String())

	lines := strings.Split(help, "\n")
	assert.Equal(t, "Copies files", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "copy [--help] <source> [<target>] --count <count> [--tags <tag>, ...]", lines[2])
	assert.Equal(t, "", lines[3])

	rows := lines[4:]
	assert.Len(t, rows, 5)
	assert.True(t, strings.HasPrefix(rows[0], "\t--help"))
	assert.Contains(t, rows[0], "Flag")
	assert.Contains(t, rows[0], "- Print this help information.")
	assert.Contains(t, rows[0], "Defaults to false.")

	assert.Contains(t, rows[1], "--source")
	assert.Contains(t, rows[1], "- File to copy.")
	assert.NotContains(t, rows[1], "Defaults")

	assert.Contains(t, rows[3], "int")
	assert.Contains(t, rows[3], "Defaults to 1.")
	assert.Contains(t, rows[3], `Must match /^\d+$/.`)

	assert.Contains(t, rows[4], "string[]")
}

func TestCommandHelpWithoutInfo(t *testing.T) {
	color.NoColor = true

	help := NewCommand("bare", CommandOpts{}).Help()
	assert.True(t, strings.HasPrefix(help, "bare [--help]\n\n"))
}
