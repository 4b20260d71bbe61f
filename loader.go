package cliargs

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// LoadOpts controls LoadFromObject and LoadFromFile.
type LoadOpts struct {
	// SectionName selects the top-level key holding the values. Defaults to
	// the command name.
	SectionName string
}

// LoadFromObject flattens one section of data into `--key value` tokens and
// parses them strictly.
//
// Values are formatted as follows: nil emits only `--key`, flags emit
// `--key` when true and nothing otherwise, slices are joined with commas
// (escaping commas inside elements), maps are encoded as JSON, and
// everything else is formatted as text.
func (c *Command) LoadFromObject(data map[string]any, opts LoadOpts) (*Instance, error) {
	sectionName := opts.SectionName
	if sectionName == "" {
		sectionName = c.name
	}

	var section map[string]any
	if raw, ok := data[sectionName]; ok && raw != nil {
		section, ok = raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s is %T", ErrInvalidSection, sectionName, raw)
		}
	}

	tokens, err := c.flatten(section)
	if err != nil {
		return nil, err
	}
	return c.Parse(false, tokens...)
}

// LoadFromFile reads path, decodes it with decode and loads the result with
// LoadFromObject.
func (c *Command) LoadFromFile(path string, decode Decoder, opts LoadOpts) (*Instance, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	data, err := decode(content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return c.LoadFromObject(data, opts)
}

// LoadFromFileAuto is LoadFromFile with the decoder chosen by the file
// extension, see DecoderFor.
func (c *Command) LoadFromFileAuto(path string, opts LoadOpts) (*Instance, error) {
	decode, err := DecoderFor(path)
	if err != nil {
		return nil, err
	}
	return c.LoadFromFile(path, decode, opts)
}

// flatten turns a section into tokens. Keys are emitted in sorted order.
func (c *Command) flatten(section map[string]any) ([]string, error) {
	keys := make([]string, 0, len(section))
	for key := range section {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tokens := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		value := section[key]

		if arg, _ := c.args.Get(key); arg != nil && arg.flag {
			if on, ok := value.(bool); ok {
				if on {
					tokens = append(tokens, NamePrefix+key)
				}
				continue
			}
		}

		tokens = append(tokens, NamePrefix+key)
		if value == nil {
			continue
		}
		text, err := formatValue(value)
		if err != nil {
			return nil, fmt.Errorf("failed to format value of %s: %w", key, err)
		}
		tokens = append(tokens, text)
	}
	return tokens, nil
}

func formatValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case []any:
		elements := make([]string, 0, len(v))
		for _, e := range v {
			if e == nil {
				elements = append(elements, NullLiteral)
				continue
			}
			text, err := formatValue(e)
			if err != nil {
				return "", err
			}
			elements = append(elements, EscapeArrayElement(text))
		}
		return strings.Join(elements, string(ArrayDelimiter)), nil
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		return fmt.Sprint(v), nil
	}
}
