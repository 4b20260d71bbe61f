package cliargs

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeArgTag(t *testing.T) {
	tests := []struct {
		tag     string
		want    ArgTag
		wantErr error
	}{
		{tag: "name", want: ArgTag{Name: "name"}},
		{tag: "", want: ArgTag{}},
		{tag: ",optional", want: ArgTag{Optional: true}},
		{
			tag:  "count, short=c, type=int, positional, array",
			want: ArgTag{Name: "count", ShortCode: "c", Type: "int", Positional: true, Array: true},
		},
		{tag: "v,flag,required", want: ArgTag{Name: "v", Flag: true, Required: true}},
		{tag: "x,omitempty", wantErr: ErrUnallowedArgModifier},
		{tag: "x,size=3", wantErr: ErrUnallowedArgModifier},
		{tag: "x,optional,required", wantErr: ErrInvalidArgTagFormat},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, err := DecodeArgTag(tt.tag)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type deployOptions struct {
	Target   string            `arg:"target,positional" help:"Where to deploy"`
	Replicas int               `arg:"replicas,short=r,optional" default:"2" pattern:"^[0-9]+$"`
	Ratio    float64           `arg:",optional"`
	DryRun   bool              `arg:"dry-run,flag"`
	Labels   []string          `arg:"labels,optional"`
	Ports    []uint16          `arg:"ports,optional" default:"80, 443"`
	Timeout  time.Duration     `arg:"timeout,optional"`
	ID       uuid.UUID         `arg:"id,optional"`
	Since    *time.Time        `arg:"since,optional"`
	Extra    map[string]any    `arg:"extra,optional"`
	Level    string            `arg:"level,optional,type=int"`
	Skipped  string            `arg:"-"`
	Untagged string
	Notes    map[string]string `arg:"-"`
}

func TestDeclareStruct(t *testing.T) {
	c := NewCommand("deploy", CommandOpts{})
	require.NoError(t, c.DeclareStruct(&deployOptions{}))

	byName := map[string]*Argument{}
	for _, arg := range c.Arguments() {
		byName[arg.Name()] = arg
	}
	assert.Len(t, byName, 12)
	assert.NotContains(t, byName, "skipped")
	assert.NotContains(t, byName, "untagged")
	assert.NotContains(t, byName, "notes")

	target := byName["target"]
	assert.True(t, target.IsPositional())
	assert.False(t, target.IsOptional())
	assert.Equal(t, "Where to deploy", target.Description())

	replicas := byName["replicas"]
	assert.Equal(t, "r", replicas.ShortCode())
	assert.Equal(t, IntParserName, replicas.Type())
	assert.Equal(t, int64(2), replicas.Default())
	assert.Equal(t, "^[0-9]+$", replicas.Pattern())

	assert.Equal(t, NumberParserName, byName["ratio"].Type())
	assert.True(t, byName["dry-run"].IsFlag())
	assert.True(t, byName["labels"].IsArray())
	assert.Equal(t, StringParserName, byName["labels"].Type())
	assert.Equal(t, []any{int64(80), int64(443)}, byName["ports"].Default())
	assert.Equal(t, DurationParserName, byName["timeout"].Type())
	assert.Equal(t, UUIDParserName, byName["id"].Type())
	assert.Equal(t, DateParserName, byName["since"].Type())
	assert.Equal(t, ObjectParserName, byName["extra"].Type())
	assert.Equal(t, IntParserName, byName["level"].Type())
}

func TestDeclareStructErrors(t *testing.T) {
	t.Run("NotAStruct", func(t *testing.T) {
		c := NewCommand("test", CommandOpts{})
		assert.ErrorIs(t, c.DeclareStruct(42), ErrNotAStruct)
		assert.ErrorIs(t, c.DeclareStruct(nil), ErrNotAStruct)
	})

	t.Run("UnknownType", func(t *testing.T) {
		type opts struct {
			X string `arg:"x,type=nope"`
		}
		err := NewCommand("test", CommandOpts{}).DeclareStruct(opts{})
		assert.ErrorIs(t, err, ErrParserNotFound)
	})

	t.Run("InvalidDefault", func(t *testing.T) {
		type opts struct {
			N int `arg:"n" default:"many"`
		}
		err := NewCommand("test", CommandOpts{}).DeclareStruct(opts{})
		assert.ErrorIs(t, err, ErrInvalidDefault)
		assert.ErrorIs(t, err, ErrInvalidNumber)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		type opts struct {
			A string `arg:"a"`
			B string `arg:"a"`
		}
		err := NewCommand("test", CommandOpts{}).DeclareStruct(opts{})
		assert.ErrorIs(t, err, ErrDuplicateName)
		assert.Contains(t, err.Error(), "field B")
	})
}

type bindTarget struct {
	Name    string         `arg:"name"`
	Count   int32          `arg:"count,optional"`
	Port    uint16         `arg:"port,optional"`
	Ratio   float32        `arg:"ratio,optional"`
	Tags    []string       `arg:"tags,optional"`
	Sizes   []int          `arg:"sizes,optional"`
	Wait    time.Duration  `arg:"wait,optional"`
	ID      *uuid.UUID     `arg:"id,optional"`
	Verbose bool           `arg:"verbose,flag"`
	Meta    map[string]any `arg:"meta,optional"`
	Keep    string         `arg:"keep,optional,type=string"`
}

func TestInstanceBind(t *testing.T) {
	c := NewCommand("bind", CommandOpts{})
	require.NoError(t, c.DeclareStruct(bindTarget{}))

	id := uuid.New()
	inst, err := c.Parse(false,
		"--name", "api",
		"--count", "12",
		"--port", "8080",
		"--ratio", "0.5",
		"--tags", "a,b",
		"--sizes", "1,null,3",
		"--wait", "2s",
		"--id", id.String(),
		"--verbose",
		"--meta", `{"k": 1}`,
		"--keep", "null",
	)
	require.NoError(t, err)

	dest := bindTarget{Keep: "untouched"}
	require.NoError(t, inst.Bind(&dest))

	assert.Equal(t, "api", dest.Name)
	assert.Equal(t, int32(12), dest.Count)
	assert.Equal(t, uint16(8080), dest.Port)
	assert.Equal(t, float32(0.5), dest.Ratio)
	assert.Equal(t, []string{"a", "b"}, dest.Tags)
	assert.Equal(t, []int{1, 0, 3}, dest.Sizes)
	assert.Equal(t, 2*time.Second, dest.Wait)
	require.NotNil(t, dest.ID)
	assert.Equal(t, id, *dest.ID)
	assert.True(t, dest.Verbose)
	assert.Equal(t, map[string]any{"k": float64(1)}, dest.Meta)
	assert.Equal(t, "untouched", dest.Keep)
}

func TestInstanceBindErrors(t *testing.T) {
	c := NewCommand("bind", CommandOpts{}).
		MustDeclare(ArgumentConfig{Name: "small", Parser: FactoryOf[IntParser]()})
	inst, err := c.Parse(false, "--small", "300")
	require.NoError(t, err)

	t.Run("InvalidTarget", func(t *testing.T) {
		var dest struct{}
		assert.ErrorIs(t, inst.Bind(dest), ErrInvalidBindTarget)
		assert.ErrorIs(t, inst.Bind((*struct{})(nil)), ErrInvalidBindTarget)
	})

	t.Run("Overflow", func(t *testing.T) {
		var dest struct {
			Small int8 `arg:"small"`
		}
		err := inst.Bind(&dest)
		assert.ErrorContains(t, err, "overflows int8")
	})

	t.Run("Unsupported", func(t *testing.T) {
		var dest struct {
			Small bool `arg:"small"`
		}
		assert.ErrorIs(t, inst.Bind(&dest), ErrUnsupportedBindType)
	})
}

type validatedOptions struct {
	Min int `arg:"min"`
	Max int `arg:"max"`
}

var errRange = errors.New("min must not exceed max")

func (o *validatedOptions) Validate() error {
	if o.Min > o.Max {
		return errRange
	}
	return nil
}

func TestInstanceBindValidates(t *testing.T) {
	c := NewCommand("range", CommandOpts{})
	require.NoError(t, c.DeclareStruct(validatedOptions{}))

	inst, err := c.Parse(false, "--min", "1", "--max", "5")
	require.NoError(t, err)
	var ok validatedOptions
	assert.NoError(t, inst.Bind(&ok))

	inst, err = c.Parse(false, "--min", "9", "--max", "5")
	require.NoError(t, err)
	var bad validatedOptions
	err = inst.Bind(&bad)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "range", validationErr.Command)
	assert.ErrorIs(t, err, errRange)
}

func TestInferParser(t *testing.T) {
	tests := map[reflect.Type]string{
		reflect.TypeOf(""):               StringParserName,
		reflect.TypeOf(true):             BooleanParserName,
		reflect.TypeOf(int8(0)):          IntParserName,
		reflect.TypeOf(uint64(0)):        IntParserName,
		reflect.TypeOf(float32(0)):       NumberParserName,
		reflect.TypeOf(time.Second):      DurationParserName,
		reflect.TypeOf(time.Time{}):      DateParserName,
		reflect.TypeOf(&time.Time{}):     DateParserName,
		reflect.TypeOf(uuid.UUID{}):      UUIDParserName,
		reflect.TypeOf(ParsedPath{}):     PathParserName,
		reflect.TypeOf(map[string]any{}): ObjectParserName,
		AnyType:                          StringParserName,
	}

	for typ, want := range tests {
		t.Run(typ.String(), func(t *testing.T) {
			arg, err := NewArgument(ArgumentConfig{Name: "x", Parser: inferParser(typ)}, ArgumentOpts{})
			require.NoError(t, err)
			assert.Equal(t, want, arg.Type())
		})
	}
}
