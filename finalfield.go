package structarray

import (
	"reflect"
	"sync"
)

// TagFinal marks a struct field as write-once in the `layout` tag. Shallow
// copies refuse to overwrite such fields unless explicitly permitted.
const TagFinal = "final"

var finalFieldCache sync.Map // reflect.Type -> []string

func typeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

// finalFieldsOf returns the names of write-once fields of t, including those
// nested in struct-typed fields, since a shallow element copy overwrites them
// wholesale.
func finalFieldsOf(t reflect.Type) []string {
	if fields, ok := finalFieldCache.Load(t); ok {
		//nolint:forcetypeassert
		return fields.([]string)
	}

	var fields []string
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			field := t.Field(i)
			if field.Tag.Get("layout") == TagFinal {
				fields = append(fields, field.Name)
				continue
			}
			if field.Type.Kind() == reflect.Struct {
				for _, nested := range finalFieldsOf(field.Type) {
					fields = append(fields, field.Name+"."+nested)
				}
			}
		}
	}

	finalFieldCache.Store(t, fields)
	return fields
}
