package query

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// ErrUnsupportedType is returned for values outside the scalar set
var ErrUnsupportedType = errors.New("unsupported value type")

// TimeFormat is the text form times are bound with, always in UTC
const TimeFormat = "2006-01-02 15:04:05"

// Kind tags the variant held by a Value
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindInt64
	KindUint
	KindUint64
	KindString
	KindBool
	KindDouble
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindInt64:
		return "int64"
	case KindUint:
		return "uint"
	case KindUint64:
		return "uint64"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindDouble:
		return "double"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a bindable SQL scalar. The zero Value is NULL.
type Value struct {
	kind Kind
	i    int64
	u    uint64
	f    float64
	s    string
	b    bool
}

// Constructors, one per variant. Time is bound as text.
func Null() Value            { return Value{} }
func Int(v int32) Value      { return Value{kind: KindInt, i: int64(v)} }
func Int64(v int64) Value    { return Value{kind: KindInt64, i: v} }
func Uint(v uint32) Value    { return Value{kind: KindUint, u: uint64(v)} }
func Uint64(v uint64) Value  { return Value{kind: KindUint64, u: v} }
func String(v string) Value  { return Value{kind: KindString, s: v} }
func Bool(v bool) Value      { return Value{kind: KindBool, b: v} }
func Double(v float64) Value { return Value{kind: KindDouble, f: v} }
func Time(v time.Time) Value { return String(v.UTC().Format(TimeFormat)) }

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) AsInt() int32      { return int32(v.i) }
func (v Value) AsInt64() int64    { return v.i }
func (v Value) AsUint() uint32    { return uint32(v.u) }
func (v Value) AsUint64() uint64  { return v.u }
func (v Value) AsString() string  { return v.s }
func (v Value) AsBool() bool      { return v.b }
func (v Value) AsDouble() float64 { return v.f }

// Interface returns the held Go value, nil for NULL
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindInt:
		return int32(v.i)
	case KindInt64:
		return v.i
	case KindUint:
		return uint32(v.u)
	case KindUint64:
		return v.u
	case KindString:
		return v.s
	case KindBool:
		return v.b
	case KindDouble:
		return v.f
	}
	return nil
}

// Value implements driver.Valuer. Uint64 values are reinterpreted as int64.
func (v Value) Value() (driver.Value, error) {
	switch v.kind {
	case KindInt, KindInt64:
		return v.i, nil
	case KindUint, KindUint64:
		return int64(v.u), nil
	case KindString:
		return v.s, nil
	case KindBool:
		return v.b, nil
	case KindDouble:
		return v.f, nil
	}
	return nil, nil
}

func (v Value) String() string {
	if v.kind == KindNull {
		return "NULL"
	}
	return fmt.Sprint(v.Interface())
}

// ValueOf converts a Go scalar, a pointer to one or an existing Value.
// Named types are converted by their underlying kind.
func ValueOf(v interface{}) (Value, error) {
	switch value := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return value, nil
	case int8:
		return Int(int32(value)), nil
	case int16:
		return Int(int32(value)), nil
	case int32:
		return Int(value), nil
	case int:
		return Int64(int64(value)), nil
	case int64:
		return Int64(value), nil
	case uint8:
		return Uint(uint32(value)), nil
	case uint16:
		return Uint(uint32(value)), nil
	case uint32:
		return Uint(value), nil
	case uint:
		return Uint64(uint64(value)), nil
	case uint64:
		return Uint64(value), nil
	case float32:
		return Double(float64(value)), nil
	case float64:
		return Double(value), nil
	case string:
		return String(value), nil
	case []byte:
		return String(string(value)), nil
	case bool:
		return Bool(value), nil
	case time.Time:
		return Time(value), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr:
		if rv.IsNil() {
			return Null(), nil
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.Int8, reflect.Int16, reflect.Int32:
		return Int(int32(rv.Int())), nil
	case reflect.Int, reflect.Int64:
		return Int64(rv.Int()), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return Uint(uint32(rv.Uint())), nil
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return Uint64(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return Double(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Struct:
		if rv.Type().ConvertibleTo(reflect.TypeOf(time.Time{})) {
			return Time(rv.Convert(reflect.TypeOf(time.Time{})).Interface().(time.Time)), nil
		}
	}
	return Value{}, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}
