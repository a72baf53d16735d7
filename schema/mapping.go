package schema

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/sqlrecord"
	"github.com/syssam/sqlrecord/dialect"
)

// Entity exposes property values by name. Get reports false for unknown
// properties.
type Entity interface {
	Get(property string) (any, bool)
	Set(property string, value any) error
}

// Values is an Entity backed by a map, for data-driven callers.
// Lookups fall back to a case-insensitive match.
type Values map[string]any

// Get implements Entity.
func (v Values) Get(property string) (any, bool) {
	if x, ok := v[property]; ok {
		return x, true
	}
	key := fold(property)
	for k, x := range v {
		if fold(k) == key {
			return x, true
		}
	}
	return nil, false
}

// Set implements Entity. An existing key matching case-insensitively is
// overwritten.
func (v Values) Set(property string, value any) error {
	if _, ok := v[property]; !ok {
		key := fold(property)
		for k := range v {
			if fold(k) == key {
				property = k
				break
			}
		}
	}
	v[property] = value
	return nil
}

// Accessor reads and writes one property of a *T.
type Accessor[T any] struct {
	Get func(*T) any
	Set func(*T, any) error
}

// Mapping is the accessor registry of an entity type. Accessors are
// registered once; Bind then exposes any *T as an Entity without reflection.
type Mapping[T any] struct {
	accessors map[string]Accessor[T]
	names     []string
}

// NewMapping returns an empty mapping.
func NewMapping[T any]() *Mapping[T] {
	return &Mapping[T]{accessors: make(map[string]Accessor[T])}
}

// Map registers the accessor pair for property.
func (m *Mapping[T]) Map(property string, get func(*T) any, set func(*T, any) error) *Mapping[T] {
	key := fold(property)
	if _, ok := m.accessors[key]; !ok {
		m.names = append(m.names, property)
	}
	m.accessors[key] = Accessor[T]{Get: get, Set: set}
	return m
}

// Properties returns the registered property names, sorted.
func (m *Mapping[T]) Properties() []string {
	names := append([]string(nil), m.names...)
	sort.Strings(names)
	return names
}

// Bind returns e as an Entity.
func (m *Mapping[T]) Bind(e *T) Entity {
	return &bound[T]{m: m, e: e}
}

type bound[T any] struct {
	m *Mapping[T]
	e *T
}

func (b *bound[T]) Get(property string) (any, bool) {
	a, ok := b.m.accessors[fold(property)]
	if !ok || a.Get == nil {
		return nil, false
	}
	return a.Get(b.e), true
}

func (b *bound[T]) Set(property string, value any) error {
	a, ok := b.m.accessors[fold(property)]
	if !ok || a.Set == nil {
		return fmt.Errorf("schema: no setter for property %q", property)
	}
	return a.Set(b.e, value)
}

// Prop registers a property stored in a field of type V.
func Prop[T, V any](m *Mapping[T], property string, ptr func(*T) *V) *Mapping[T] {
	return m.Map(property,
		func(e *T) any { return *ptr(e) },
		func(e *T, v any) error { return assign(ptr(e), property, v) },
	)
}

// NullableProp registers a property stored in a *V field. A nil pointer reads
// as NULL and a NULL write stores nil.
func NullableProp[T, V any](m *Mapping[T], property string, ptr func(*T) **V) *Mapping[T] {
	return m.Map(property,
		func(e *T) any {
			if p := *ptr(e); p != nil {
				return *p
			}
			return nil
		},
		func(e *T, v any) error {
			if v == nil {
				*ptr(e) = nil
				return nil
			}
			x := new(V)
			if err := assign(x, property, v); err != nil {
				return err
			}
			*ptr(e) = x
			return nil
		},
	)
}

// assign stores v into dst, converting between compatible representations.
// Database scans often yield int64 or []byte where the entity holds int or
// string.
func assign[V any](dst *V, property string, v any) error {
	if x, ok := v.(V); ok {
		*dst = x
		return nil
	}
	var (
		t   dialect.PortableType
		set func(any)
	)
	switch d := any(dst).(type) {
	case *int:
		t, set = dialect.TypeInt64, func(x any) { *d = int(x.(int64)) }
	case *int64:
		t, set = dialect.TypeInt64, func(x any) { *d = x.(int64) }
	case *int32:
		t, set = dialect.TypeInt32, func(x any) { *d = int32(x.(int64)) }
	case *int16:
		t, set = dialect.TypeInt16, func(x any) { *d = int16(x.(int64)) }
	case *uint8:
		t, set = dialect.TypeByte, func(x any) { *d = uint8(x.(int64)) }
	case *float64:
		t, set = dialect.TypeDouble, func(x any) { *d = x.(float64) }
	case *float32:
		t, set = dialect.TypeSingle, func(x any) { *d = float32(x.(float64)) }
	case *bool:
		t, set = dialect.TypeBoolean, func(x any) { *d = x.(bool) }
	case *string:
		t, set = dialect.TypeString, func(x any) { *d = x.(string) }
	case *time.Time:
		t, set = dialect.TypeDateTime, func(x any) { *d = x.(time.Time) }
	case *uuid.UUID:
		t, set = dialect.TypeGUID, func(x any) { *d = x.(uuid.UUID) }
	case *[]byte:
		t, set = dialect.TypeBinary, func(x any) { *d = x.([]byte) }
	default:
		return assignKind(reflect.ValueOf(dst).Elem(), property, v)
	}
	x, err := coerce(v, t, property)
	if err != nil {
		return err
	}
	if x == nil {
		var zero V
		*dst = zero
		return nil
	}
	set(x)
	return nil
}

// assignKind stores v into dst by kind. It serves the integer widths the
// fixed set above leaves out, unsigned integers and named basic types such
// as type AccountID uint32.
func assignKind(dst reflect.Value, property string, v any) error {
	var t dialect.PortableType
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		t = dialect.TypeInt64
	case reflect.Float32, reflect.Float64:
		t = dialect.TypeDouble
	case reflect.Bool:
		t = dialect.TypeBoolean
	case reflect.String:
		t = dialect.TypeString
	default:
		return sqlrecord.NewCastError(property, dst.Type().String(), v, nil)
	}
	x, err := coerce(v, t, property)
	if err != nil {
		return err
	}
	if x == nil {
		dst.SetZero()
		return nil
	}
	overflow := sqlrecord.NewCastError(property, dst.Type().String(), v, errors.New("value out of range"))
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := x.(int64)
		if dst.OverflowInt(n) {
			return overflow
		}
		dst.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n := x.(int64)
		if n < 0 || dst.OverflowUint(uint64(n)) {
			return overflow
		}
		dst.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		f := x.(float64)
		if dst.OverflowFloat(f) {
			return overflow
		}
		dst.SetFloat(f)
	case reflect.Bool:
		dst.SetBool(x.(bool))
	default:
		dst.SetString(x.(string))
	}
	return nil
}

// coerce converts v for t and names property in a resulting CastError.
func coerce(v any, t dialect.PortableType, property string) (any, error) {
	x, err := dialect.Coerce(v, t)
	if err != nil {
		var ce *sqlrecord.CastError
		if errors.As(err, &ce) && ce.Parameter == "" {
			ce.Parameter = property
		}
		return nil, err
	}
	return x, nil
}
