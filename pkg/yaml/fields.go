package yaml

import (
	"reflect"
	"strings"
	"sync"
)

// fieldInfo contains information about a struct field for encoding and
// decoding.
type fieldInfo struct {
	name      string
	index     []int
	skip      bool
	omitEmpty bool
	flow      bool
	inline    bool
}

// getFieldInfo extracts field information from a struct field tag
func getFieldInfo(field reflect.StructField) fieldInfo {
	tag := field.Tag.Get("yaml")

	// No tag - use lowercase field name (YAML convention)
	if tag == "" {
		return fieldInfo{name: strings.ToLower(field.Name)}
	}

	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "-" && len(parts) == 1 {
		return fieldInfo{skip: true}
	}
	if name == "" {
		name = strings.ToLower(field.Name)
	}

	info := fieldInfo{name: name}
	for _, opt := range parts[1:] {
		switch opt {
		case "omitempty":
			info.omitEmpty = true
		case "flow":
			info.flow = true
		case "inline":
			info.inline = true
		}
	}
	return info
}

var structFieldCache sync.Map // map[reflect.Type][]fieldInfo

// structFields returns the encodable fields of struct type t in declaration
// order. Fields of inlined structs are listed in place with their full index
// path; an outer field hides an inlined one of the same name.
func structFields(t reflect.Type) []fieldInfo {
	if cached, ok := structFieldCache.Load(t); ok {
		return cached.([]fieldInfo)
	}

	var fields []fieldInfo
	seen := make(map[string]bool)
	var walk func(t reflect.Type, prefix []int, inlined bool)
	walk = func(t reflect.Type, prefix []int, inlined bool) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.PkgPath != "" && !sf.Anonymous { // unexported
				continue
			}
			info := getFieldInfo(sf)
			if info.skip {
				continue
			}
			info.index = append(append([]int(nil), prefix...), i)
			if info.inline && sf.Type.Kind() == reflect.Struct {
				walk(sf.Type, info.index, true)
				continue
			}
			if sf.PkgPath != "" {
				continue
			}
			if inlined && seen[info.name] {
				continue
			}
			seen[info.name] = true
			fields = append(fields, info)
		}
	}
	walk(t, nil, false)

	actual, _ := structFieldCache.LoadOrStore(t, fields)
	return actual.([]fieldInfo)
}

// fieldByName finds the field for a mapping key, preferring an exact match
// but also accepting a case-insensitive one.
func fieldByName(fields []fieldInfo, name string) (fieldInfo, bool) {
	for _, f := range fields {
		if f.name == name {
			return f, true
		}
	}
	for _, f := range fields {
		if strings.EqualFold(f.name, name) {
			return f, true
		}
	}
	return fieldInfo{}, false
}

// isEmptyValue checks if a reflect.Value is considered empty
func isEmptyValue(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Interface, reflect.Ptr:
		return rv.IsNil()
	case reflect.Struct:
		return rv.IsZero()
	}
	return false
}
