package cliargs

import (
	"reflect"
	"sync"
)

// fieldCache provides thread-safe caching of the tagged fields of struct
// types, so DeclareStruct and Bind read each type's tags only once.
type fieldCache struct {
	cache sync.Map // map[reflect.Type]*fieldCacheEntry
}

type fieldCacheEntry struct {
	once   sync.Once
	fields []taggedField
	err    error
}

var _gFieldCache = &fieldCache{}

// getOrCreate returns the tagged fields of t. The factory is called only
// once per type, even under concurrent access; its error is cached too.
func (fc *fieldCache) getOrCreate(t reflect.Type, factory func(reflect.Type) ([]taggedField, error)) ([]taggedField, error) {
	v, _ := fc.cache.LoadOrStore(t, &fieldCacheEntry{})
	entry := v.(*fieldCacheEntry)
	entry.once.Do(func() {
		entry.fields, entry.err = factory(t)
	})
	return entry.fields, entry.err
}

// size returns the number of cached types.
func (fc *fieldCache) size() int {
	n := 0
	fc.cache.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// reset removes all cache entries.
func (fc *fieldCache) reset() {
	fc.cache.Clear()
}

// cachedTaggedFields is taggedFields through the package cache.
func cachedTaggedFields(t reflect.Type) ([]taggedField, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return _gFieldCache.getOrCreate(t, taggedFields)
}
