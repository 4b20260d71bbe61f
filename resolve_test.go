package cliargs

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newResolveCommand declares a small command used by most parse tests.
func newResolveCommand(t *testing.T) *Command {
	t.Helper()
	return NewCommand("copy", CommandOpts{}).
		MustDeclare(ArgumentConfig{Name: "source", Positional: true}).
		MustDeclare(ArgumentConfig{Name: "target", Positional: true, Required: Required(false)}).
		MustDeclare(ArgumentConfig{Name: "count", ShortCode: "c", Parser: FactoryOf[IntParser](), Default: int64(1)}).
		MustDeclare(ArgumentConfig{Name: "verbose", ShortCode: "v", Flag: true}).
		MustDeclare(ArgumentConfig{Name: "tags", Array: true, Required: Required(false)})
}

func TestParseMissingRequired(t *testing.T) {
	t.Run("Single", func(t *testing.T) {
		c := NewCommand("test", CommandOpts{}).MustDeclare(ArgumentConfig{Name: "test"})

		_, err := c.Parse(false)
		var missingErr *MissingRequiredError
		require.ErrorAs(t, err, &missingErr)
		assert.EqualError(t, err, "Missing required fields: test")
	})

	t.Run("NullIsMissing", func(t *testing.T) {
		c := NewCommand("test", CommandOpts{}).
			MustDeclare(ArgumentConfig{Name: "test", Parser: FactoryOf[StringParser]()})

		_, err := c.Parse(false, "--test", "null")
		assert.EqualError(t, err, "Missing required fields: test")
	})

	t.Run("DeclarationOrder", func(t *testing.T) {
		c := NewCommand("test", CommandOpts{}).
			MustDeclare(ArgumentConfig{Name: "b"}).
			MustDeclare(ArgumentConfig{Name: "a"}).
			MustDeclare(ArgumentConfig{Name: "c", Required: Required(false)})

		_, err := c.Parse(false)
		assert.EqualError(t, err, "Missing required fields: b, a")
	})

	t.Run("DefaultSatisfiesRequired", func(t *testing.T) {
		c := NewCommand("test", CommandOpts{}).
			MustDeclare(ArgumentConfig{Name: "mode", Default: "fast"})

		inst, err := c.Parse(false)
		require.NoError(t, err)
		assert.Equal(t, "fast", inst.Get("mode", nil))
	})
}

func TestParseConditionalRequired(t *testing.T) {
	c := NewCommand("test", CommandOpts{}).
		MustDeclare(ArgumentConfig{
			Name:     "test1",
			Required: RequiredIf(func(resolved Args) bool { return !resolved.IsSet("test2") }),
		}).
		MustDeclare(ArgumentConfig{
			Name:     "test2",
			Required: RequiredIf(func(resolved Args) bool { return !resolved.IsSet("test1") }),
		})

	inst, err := c.Parse(false, "--test1", "X")
	require.NoError(t, err)
	assert.Equal(t, "X", inst.Get("test1", nil))
	assert.False(t, inst.Args().Has("test2"))

	inst, err = c.Parse(false, "--test2", "Y")
	require.NoError(t, err)
	assert.Equal(t, "Y", inst.Get("test2", nil))

	_, err = c.Parse(false)
	assert.EqualError(t, err, "Missing required fields: test1, test2")
}

func TestParseBooleanRoundTrip(t *testing.T) {
	c := NewCommand("test", CommandOpts{}).
		MustDeclare(ArgumentConfig{Name: "enabled", Parser: FactoryOf[BooleanParser]()})

	inst, err := c.Parse(false, "--enabled", "false")
	require.NoError(t, err)
	v, ok := inst.Lookup("enabled")
	require.True(t, ok)
	assert.Equal(t, false, v)
}

func TestParseTokens(t *testing.T) {
	c := newResolveCommand(t)

	t.Run("Mixed", func(t *testing.T) {
		inst, err := c.Parse(false, "-v", "a.txt", "--count", "3", "b.txt", "--tags", "x, y")
		require.NoError(t, err)

		want := Args{
			"source":  "a.txt",
			"target":  "b.txt",
			"count":   int64(3),
			"verbose": true,
			"help":    false,
			"tags":    []any{"x", "y"},
		}
		if diff := cmp.Diff(want, inst.Args()); diff != "" {
			t.Errorf("resolved mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("DefaultsSeeded", func(t *testing.T) {
		inst, err := c.Parse(false, "a.txt")
		require.NoError(t, err)
		assert.Equal(t, int64(1), inst.Get("count", nil))
		assert.Equal(t, false, inst.Get("verbose", nil))
		assert.False(t, inst.Args().Has("target"))
		assert.False(t, inst.Args().Has("tags"))
	})

	t.Run("LaterOccurrenceWins", func(t *testing.T) {
		inst, err := c.Parse(false, "a", "--count", "2", "-c", "5")
		require.NoError(t, err)
		assert.Equal(t, int64(5), inst.Get("count", nil))
	})

	t.Run("TrailingNameDropped", func(t *testing.T) {
		inst, err := c.Parse(false, "a", "--count")
		require.NoError(t, err)
		assert.Equal(t, int64(1), inst.Get("count", nil))
	})

	t.Run("UnknownName", func(t *testing.T) {
		_, err := c.Parse(false, "a", "--cont", "2")
		assert.True(t, IsLookupError(err))
		assert.EqualError(t, err, "Unknown named parameter 'cont' (did you mean 'count'?)")
	})

	t.Run("UnknownShortCode", func(t *testing.T) {
		_, err := c.Parse(false, "a", "-x")
		assert.True(t, IsLookupError(err))
	})

	t.Run("TooManyPositionals", func(t *testing.T) {
		_, err := c.Parse(false, "a", "b", "c")
		var posErr *PositionalError
		require.ErrorAs(t, err, &posErr)
		assert.Equal(t, 2, posErr.Position)
		assert.Equal(t, "c", posErr.Token)
		assert.True(t, IsLookupError(err))
		assert.EqualError(t, err, "Can't resolve positional argument 2 (c)")
	})

	t.Run("IgnoreStrict", func(t *testing.T) {
		inst, err := c.Parse(true, "a", "b", "c", "--unknown", "-x")
		require.NoError(t, err)
		assert.Equal(t, "a", inst.Get("source", nil))
		assert.Equal(t, "b", inst.Get("target", nil))
	})

	t.Run("CoercionError", func(t *testing.T) {
		_, err := c.Parse(false, "a", "--count", "many")
		var valueErr *ValueError
		require.ErrorAs(t, err, &valueErr)
		assert.Equal(t, "count", valueErr.Argument)
	})

	t.Run("RawArgsKept", func(t *testing.T) {
		tokens := []string{"a", "-v"}
		inst, err := c.Parse(false, tokens...)
		require.NoError(t, err)
		tokens[0] = "changed"
		assert.Equal(t, []string{"a", "-v"}, inst.RawArgs())
	})
}

func TestParseNonStrictCommand(t *testing.T) {
	c := NewCommand("loose", CommandOpts{NonStrict: true}).
		MustDeclare(ArgumentConfig{Name: "name", Required: Required(false)})

	inst, err := c.Parse(false, "--other", "value", "--name", "n")
	require.NoError(t, err)
	assert.Equal(t, "n", inst.Get("name", nil))
	assert.False(t, inst.Args().Has("other"))
}

func TestParseHelp(t *testing.T) {
	c := newResolveCommand(t)

	for _, tokens := range [][]string{
		{"--help"},
		{"-?"},
		{"--count", "2", "--help"},
		{"--help", "a.txt", "b.txt"},
	} {
		inst, err := c.Parse(false, tokens...)
		require.NoError(t, err, tokens)
		assert.True(t, inst.Help())
		assert.Equal(t, Args{HelpArgumentName: true}, inst.Args())
		assert.Equal(t, tokens, inst.RawArgs())
	}
}

func TestParseIdempotent(t *testing.T) {
	c := newResolveCommand(t)
	tokens := []string{"a.txt", "-c", "4", "--tags", "x,y", "-v"}

	first, err := c.Parse(false, tokens...)
	require.NoError(t, err)
	second, err := c.Parse(false, tokens...)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Args(), second.Args()); diff != "" {
		t.Errorf("parses differ (-first +second):\n%s", diff)
	}
	assert.Equal(t, first.RawArgs(), second.RawArgs())
}

func TestParseDefaultsAreCopied(t *testing.T) {
	c := NewCommand("copy", CommandOpts{}).
		MustDeclare(ArgumentConfig{Name: "tags", Array: true, Required: Required(false), Default: []any{"a", "b"}}).
		MustDeclare(ArgumentConfig{Name: "meta", Parser: FactoryOf[ObjectParser](), Required: Required(false),
			Default: map[string]any{"owner": "ops", "labels": []any{"x"}}}).
		MustDeclare(ArgumentConfig{Name: "ports", Required: Required(false), Default: []int{80, 443}})

	first, err := c.Parse(false)
	require.NoError(t, err)

	first.Get("tags", nil).([]any)[0] = "changed"
	meta := first.Get("meta", nil).(map[string]any)
	meta["owner"] = "changed"
	meta["labels"].([]any)[0] = "changed"
	first.Get("ports", nil).([]int)[0] = 0

	second, err := c.Parse(false)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, second.Get("tags", nil))
	assert.Equal(t, map[string]any{"owner": "ops", "labels": []any{"x"}}, second.Get("meta", nil))
	assert.Equal(t, []int{80, 443}, second.Get("ports", nil))

	arg, err := c.ArgumentByName("tags", true, false)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, arg.Default())
	arg.Default().([]any)[1] = "changed"
	assert.Equal(t, []any{"a", "b"}, arg.Default())
}

func TestCloneValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"Nil", nil},
		{"Scalar", int64(3)},
		{"Null", Null},
		{"Array", []any{"a", nil, Null, []any{1.5}}},
		{"Object", map[string]any{"a": map[string]any{"b": []any{true}}}},
		{"TypedSlice", []string{"x", "y"}},
		{"TypedMap", map[string]int{"x": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.in, cloneValue(tt.in)); diff != "" {
				t.Errorf("clone differs (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseArgs(t *testing.T) {
	t.Run("NoThrow", func(t *testing.T) {
		var logs bytes.Buffer
		c := NewCommand("test", CommandOpts{Logger: slog.New(slog.NewTextHandler(&logs, nil))}).
			MustDeclare(ArgumentConfig{Name: "test"})

		inst, err := c.ParseArgs(nil, ParseOpts{NoThrow: true})
		require.NoError(t, err)
		assert.True(t, inst.Help())
		assert.Contains(t, logs.String(), "level=ERROR")
		assert.Contains(t, logs.String(), "Missing required fields: test")
	})

	t.Run("Throw", func(t *testing.T) {
		c := NewCommand("test", CommandOpts{}).MustDeclare(ArgumentConfig{Name: "test"})
		inst, err := c.ParseArgs(nil, ParseOpts{})
		assert.Error(t, err)
		assert.Nil(t, inst)
	})

	t.Run("IgnoreStrict", func(t *testing.T) {
		c := NewCommand("test", CommandOpts{})
		_, err := c.ParseArgs([]string{"--nope"}, ParseOpts{IgnoreStrict: true})
		assert.NoError(t, err)
	})
}

func TestParseString(t *testing.T) {
	c := NewCommand("greet", CommandOpts{}).
		MustDeclare(ArgumentConfig{Name: "message", ShortCode: "m"}).
		MustDeclare(ArgumentConfig{Name: "loud", Flag: true})

	inst, err := c.ParseString(`-m "hello there" --loud`, ParseOpts{})
	require.NoError(t, err)
	assert.Equal(t, "hello there", inst.Get("message", nil))
	assert.Equal(t, true, inst.Get("loud", nil))

	_, err = c.ParseString(`-m "unterminated`, ParseOpts{})
	assert.Error(t, err)

	inst, err = c.ParseString(`-m "unterminated`, ParseOpts{NoThrow: true})
	require.NoError(t, err)
	assert.True(t, inst.Help())
}

func TestParseProcessArgs(t *testing.T) {
	saved := os.Args
	t.Cleanup(func() { os.Args = saved })

	c := NewCommand("prog", CommandOpts{}).MustDeclare(ArgumentConfig{Name: "name"})

	os.Args = []string{"prog", "--name", "x"}
	inst, err := c.ParseProcessArgs(ParseOpts{})
	require.NoError(t, err)
	assert.Equal(t, "x", inst.Get("name", nil))
}

func BenchmarkParse(b *testing.B) {
	c := NewCommand("bench", CommandOpts{}).
		MustDeclare(ArgumentConfig{Name: "source", Positional: true}).
		MustDeclare(ArgumentConfig{Name: "count", Parser: FactoryOf[IntParser]()}).
		MustDeclare(ArgumentConfig{Name: "tags", Array: true, Required: Required(false)}).
		MustDeclare(ArgumentConfig{Name: "verbose", Flag: true})
	tokens := []string{"src", "--count", "10", "--tags", "a,b,c,d", "--verbose"}

	b.ReportAllocs()
	for b.Loop() {
		if _, err := c.Parse(false, tokens...); err != nil {
			b.Fatal(err)
		}
	}
}
