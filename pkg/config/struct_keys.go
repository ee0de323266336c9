package config

import (
	"reflect"
	"strings"
)

const keySep = "."

// GetStructKeys returns the full dotted key of every leaf field in a nested
// struct, preferring the tag name over the field name.  A tag suffix equal
// to squashValue folds an embedded struct's fields into its parent, like
// mapstructure does.  Pointers are followed; maps and loops in nesting are
// not handled.
func GetStructKeys(typ reflect.Type, tag, squashValue string) []string {
	var keys []string
	collectStructKeys(typ, tag, ","+squashValue, nil, &keys)
	return keys
}

func collectStructKeys(typ reflect.Type, tag, squashSuffix string, prefix []string, keys *[]string) {
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		*keys = append(*keys, strings.Join(prefix, keySep))
		return
	}
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := field.Name
		squash := false
		if tagged, ok := field.Tag.Lookup(tag); ok {
			name = tagged
			if strings.HasSuffix(name, squashSuffix) {
				name = strings.TrimSuffix(name, squashSuffix)
				squash = true
			}
		}
		next := prefix
		if !squash {
			next = make([]string, len(prefix), len(prefix)+1)
			copy(next, prefix)
			next = append(next, name)
		}
		collectStructKeys(field.Type, tag, squashSuffix, next, keys)
	}
}
