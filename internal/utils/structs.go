package utils

import (
	"fmt"
	"reflect"
)

// ColumnTag is the struct tag naming a field's database column.
var ColumnTag = "db"

// eachColumn calls fn for every exported field of input carrying a
// ColumnTag other than "-". input must be a struct or a pointer to one.
func eachColumn(input any, fn func(column string, value reflect.Value)) {
	v := reflect.Indirect(reflect.ValueOf(input))
	if v.Kind() != reflect.Struct {
		panic(fmt.Sprintf("utils: expected struct or pointer to struct, got %T", input))
	}

	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		column := field.Tag.Get(ColumnTag)
		if column == "" || column == "-" {
			continue
		}
		fn(column, v.Field(i))
	}
}

// StructTagValues lists the column names of input in field order.
func StructTagValues(input any) []string {
	var columns []string
	eachColumn(input, func(column string, _ reflect.Value) {
		columns = append(columns, column)
	})
	return columns
}

// StructToMap maps column names to field values, ready for squirrel SetMap.
func StructToMap(input any) map[string]any {
	out := make(map[string]any)
	eachColumn(input, func(column string, value reflect.Value) {
		out[column] = value.Interface()
	})
	return out
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil || msg == "" {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
