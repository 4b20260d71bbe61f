package cliargs

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/tidwall/gjson"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

var (
	ErrNotAnObject = errors.New("top-level value is not an object")
)

// Decoder turns the content of a configuration file into a plain object
// for LoadFromObject.
type Decoder func(content []byte) (map[string]any, error)

var _decoders = map[string]Decoder{
	".json": DecodeJSON,
	".yaml": DecodeYAML,
	".yml":  DecodeYAML,
	".toml": DecodeTOML,
	".hcl":  DecodeHCL,
}

// DecoderFor returns the decoder for the extension of path.
func DecoderFor(path string) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := _decoders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, ext)
	}
	return decode, nil
}

// DecodeJSON decodes a JSON object. Numbers become float64.
func DecodeJSON(content []byte) (map[string]any, error) {
	if !gjson.ValidBytes(content) {
		return nil, ErrInvalidObject
	}
	m, ok := gjson.ParseBytes(content).Value().(map[string]any)
	if !ok {
		return nil, ErrNotAnObject
	}
	return m, nil
}

// DecodeYAML decodes a YAML mapping.
func DecodeYAML(content []byte) (map[string]any, error) {
	var m map[string]any
	if err := yaml.Unmarshal(content, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// DecodeTOML decodes a TOML document. Tables become sections.
func DecodeTOML(content []byte) (map[string]any, error) {
	var m map[string]any
	if _, err := toml.Decode(string(content), &m); err != nil {
		return nil, err
	}
	return normalizeTOML(m).(map[string]any), nil
}

// normalizeTOML turns arrays of tables, which decode as []map[string]any,
// into []any like every other decoder produces.
func normalizeTOML(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, inner := range v {
			v[k] = normalizeTOML(inner)
		}
		return v
	case []map[string]any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = normalizeTOML(inner)
		}
		return out
	case []any:
		for i, inner := range v {
			v[i] = normalizeTOML(inner)
		}
		return v
	default:
		return v
	}
}

// DecodeHCL decodes an HCL document. Attributes become keys and blocks
// become sections; labeled blocks nest one level per label. Expressions
// are evaluated without variables or functions.
func DecodeHCL(content []byte) (map[string]any, error) {
	file, diags := hclsyntax.ParseConfig(content, "config.hcl", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("unexpected HCL body type %T", file.Body)
	}
	return hclBodyToMap(body)
}

func hclBodyToMap(body *hclsyntax.Body) (map[string]any, error) {
	out := make(map[string]any, len(body.Attributes)+len(body.Blocks))

	for name, attr := range body.Attributes {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		v, err := ctyToGo(val)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		out[name] = v
	}

	for _, block := range body.Blocks {
		inner, err := hclBodyToMap(block.Body)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", block.Type, err)
		}

		parent := out
		key := block.Type
		for _, label := range block.Labels {
			next, ok := parent[key].(map[string]any)
			if !ok {
				next = map[string]any{}
				parent[key] = next
			}
			parent, key = next, label
		}
		parent[key] = inner
	}

	return out, nil
}

// ctyToGo converts a known cty value through its JSON form, so numbers
// become float64, objects map[string]any and lists []any.
func ctyToGo(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, errors.New("value is not known")
	}
	b, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return nil, err
	}
	return gjson.ParseBytes(b).Value(), nil
}
