package schema

import (
	"fmt"
	"reflect"
	"time"
)

// DataType is the semantic scalar type of a field
type DataType int

const (
	Int DataType = iota + 1
	Int64
	Uint
	Uint64
	String
	Bool
	Float
	Double
	Time
)

func (t DataType) String() string {
	switch t {
	case Int:
		return "int"
	case Int64:
		return "int64"
	case Uint:
		return "uint"
	case Uint64:
		return "uint64"
	case String:
		return "string"
	case Bool:
		return "bool"
	case Float:
		return "float"
	case Double:
		return "double"
	case Time:
		return "time"
	}
	return fmt.Sprintf("DataType(%d)", int(t))
}

var timeType = reflect.TypeOf(time.Time{})

// DataTypeOf classifies a Go type by kind, so named types are supported
func DataTypeOf(t reflect.Type) (DataType, bool) {
	if t.ConvertibleTo(timeType) && t.Kind() == reflect.Struct {
		return Time, true
	}

	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return Int, true
	case reflect.Int, reflect.Int64:
		return Int64, true
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return Uint, true
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return Uint64, true
	case reflect.String:
		return String, true
	case reflect.Bool:
		return Bool, true
	case reflect.Float32:
		return Float, true
	case reflect.Float64:
		return Double, true
	}
	return 0, false
}

// DefaultSQLType is the column type used when neither the field nor the
// dialect overrides it
func DefaultSQLType(t DataType) string {
	switch t {
	case Int:
		return "INT"
	case Int64:
		return "BIGINT"
	case Uint:
		return "INT UNSIGNED"
	case Uint64:
		return "BIGINT UNSIGNED"
	case String:
		return "VARCHAR(255)"
	case Bool:
		return "TINYINT(1)"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case Time:
		return "DATETIME"
	}
	return ""
}

// Field describes one mapped column
type Field struct {
	Name       string
	DBName     string
	Constraint string

	// SQLType overrides the dialect column type when set
	SQLType   string
	DataType  DataType
	FieldType reflect.Type
	Constraints

	StructField reflect.StructField
	index       []int
}

// ReflectValueOf returns the settable field value of a struct (or pointer to struct)
func (field *Field) ReflectValueOf(rv reflect.Value) reflect.Value {
	return reflect.Indirect(rv).FieldByIndex(field.index)
}

// ValueOf returns the field value normalized to int32, int64, uint32,
// uint64, string, bool, float32, float64 or time.Time
func (field *Field) ValueOf(rv reflect.Value) interface{} {
	v := field.ReflectValueOf(rv)
	switch field.DataType {
	case Int:
		return int32(v.Int())
	case Int64:
		return v.Int()
	case Uint:
		return uint32(v.Uint())
	case Uint64:
		return v.Uint()
	case String:
		return v.String()
	case Bool:
		return v.Bool()
	case Float:
		return float32(v.Float())
	case Double:
		return v.Float()
	case Time:
		return v.Convert(timeType).Interface().(time.Time)
	}
	return v.Interface()
}

// IsBlank reports whether the value carries nothing: an empty string or a zero time
func (field *Field) IsBlank(rv reflect.Value) bool {
	switch field.DataType {
	case String:
		return field.ReflectValueOf(rv).Len() == 0
	case Time:
		return field.ValueOf(rv).(time.Time).IsZero()
	}
	return false
}

// Set assigns a normalized value, converting between widths of the same family
func (field *Field) Set(rv reflect.Value, value interface{}) error {
	target := field.ReflectValueOf(rv)

	switch v := value.(type) {
	case int32:
		return field.setInt(target, int64(v))
	case int64:
		return field.setInt(target, v)
	case uint32:
		return field.setUint(target, uint64(v))
	case uint64:
		return field.setUint(target, v)
	case float64:
		if field.DataType != Float && field.DataType != Double {
			break
		}
		target.SetFloat(v)
		return nil
	case string:
		if field.DataType != String {
			break
		}
		target.SetString(v)
		return nil
	case bool:
		if field.DataType != Bool {
			break
		}
		target.SetBool(v)
		return nil
	case time.Time:
		if field.DataType != Time {
			break
		}
		target.Set(reflect.ValueOf(v).Convert(target.Type()))
		return nil
	}
	return fmt.Errorf("%w: cannot assign %T to %s (%s)", ErrInvalidField, value, field.Name, field.DataType)
}

func (field *Field) setInt(target reflect.Value, v int64) error {
	switch field.DataType {
	case Int, Int64:
		target.SetInt(v)
	case Uint, Uint64:
		target.SetUint(uint64(v))
	default:
		return fmt.Errorf("%w: cannot assign integer to %s (%s)", ErrInvalidField, field.Name, field.DataType)
	}
	return nil
}

func (field *Field) setUint(target reflect.Value, v uint64) error {
	switch field.DataType {
	case Uint, Uint64:
		target.SetUint(v)
	case Int, Int64:
		target.SetInt(int64(v))
	default:
		return fmt.Errorf("%w: cannot assign unsigned integer to %s (%s)", ErrInvalidField, field.Name, field.DataType)
	}
	return nil
}
