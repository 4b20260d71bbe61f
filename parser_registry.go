package cliargs

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ParserRegistry maps type names to ParserRefs. It is how textual
// declarations, such as the `type=int` struct tag modifier or an argcheck
// schema, find their ValueParser.
//
// Names are case-insensitive. A ParserRegistry is safe for concurrent use.
type ParserRegistry struct {
	mu sync.RWMutex
	m  map[string]ParserRef // lower-cased name -> parser
}

// NamedParser pairs a registry name with a ParserRef.
type NamedParser struct {
	Name string
	Ref  ParserRef
}

type ParserRegistryOpts struct {
	Parsers         []NamedParser
	ExcludeDefaults bool
}

var (
	_defaultValueParsers []NamedParser = nil
)

func NewParserRegistry(opts ParserRegistryOpts) (*ParserRegistry, error) {
	reg := &ParserRegistry{
		m: make(map[string]ParserRef),
	}

	if !opts.ExcludeDefaults {
		for _, parser := range _defaultValueParsers {
			err := reg.Register(parser.Name, parser.Ref)
			if err != nil {
				return nil, err
			}
		}
	}

	for _, parser := range opts.Parsers {
		err := reg.Register(parser.Name, parser.Ref)
		if err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// Register adds ref under name. Registering a name twice is an error.
func (reg *ParserRegistry) Register(name string, ref ParserRef) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || ref.IsZero() {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.m[key]; exists {
		return fmt.Errorf("%w: %s", ErrParserAlreadyRegistered, name)
	}

	reg.m[key] = ref
	return nil
}

// Lookup returns the ParserRef registered under name. The empty name
// resolves to the zero ParserRef (identity). "string" is registered for
// StringParser by default, so "null" still yields Null through it.
func (reg *ParserRegistry) Lookup(name string) (ParserRef, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	if ref, found := reg.m[key]; found {
		return ref, nil
	}
	if key == "" {
		return ParserRef{}, nil
	}
	return ParserRef{}, fmt.Errorf("%w: %s", ErrParserNotFound, name)
}

// Names returns the registered names in sorted order.
func (reg *ParserRegistry) Names() []string {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	names := make([]string, 0, len(reg.m))
	for name := range reg.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

///////////////////////////////////////////////////////////////////////////////
// Global Singleton and Package Functions
///////////////////////////////////////////////////////////////////////////////

var _gParserRegistry *ParserRegistry = nil

func init() {
	_defaultValueParsers = []NamedParser{
		{"string", FactoryOf[StringParser]()},
		{"bool", FactoryOf[BooleanParser]()},
		{"boolean", FactoryOf[BooleanParser]()},
		{"number", FactoryOf[NumberParser]()},
		{"float", FactoryOf[NumberParser]()},
		{"int", FactoryOf[IntParser]()},
		{"date", FactoryOf[DateParser]()},
		{"time", FactoryOf[DateParser]()},
		{"duration", FactoryOf[DurationParser]()},
		{"object", FactoryOf[ObjectParser]()},
		{"json", FactoryOf[ObjectParser]()},
		{"regexp", FactoryOf[RegExpParser]()},
		{"path", FactoryOf[PathParser]()},
		{"uuid", FactoryOf[UUIDParser]()},
	}

	var err error
	_gParserRegistry, err = NewParserRegistry(ParserRegistryOpts{ExcludeDefaults: false})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize global ParserRegistry: %v", err))
	}
}

// Package-level functions that delegate to the global ParserRegistry instance

func RegisterParser(name string, ref ParserRef) error {
	return _gParserRegistry.Register(name, ref)
}

func LookupParser(name string) (ParserRef, error) {
	return _gParserRegistry.Lookup(name)
}

func DefaultParserRegistry() *ParserRegistry {
	return _gParserRegistry
}
