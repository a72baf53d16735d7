package dialect

import (
	"fmt"
	"strings"
)

// PortableType is an engine-neutral column type code.
type PortableType uint8

// Portable type codes. Unknown codes map to each dialect's default text type.
const (
	TypeUnknown PortableType = iota
	TypeString
	TypeAnsiString
	TypeText
	TypeBoolean
	TypeByte
	TypeInt16
	TypeInt32
	TypeInt64
	TypeSingle
	TypeDouble
	TypeDecimal
	TypeCurrency
	TypeDateTime
	TypeDate
	TypeTime
	TypeGUID
	TypeBinary
	TypeXML
)

var typeNames = [...]string{
	TypeUnknown:    "unknown",
	TypeString:     "string",
	TypeAnsiString: "ansistring",
	TypeText:       "text",
	TypeBoolean:    "boolean",
	TypeByte:       "byte",
	TypeInt16:      "int16",
	TypeInt32:      "int32",
	TypeInt64:      "int64",
	TypeSingle:     "single",
	TypeDouble:     "double",
	TypeDecimal:    "decimal",
	TypeCurrency:   "currency",
	TypeDateTime:   "datetime",
	TypeDate:       "date",
	TypeTime:       "time",
	TypeGUID:       "guid",
	TypeBinary:     "binary",
	TypeXML:        "xml",
}

// aliases accepted by ParsePortableType in addition to the canonical names.
var typeAliases = map[string]PortableType{
	"bool":      TypeBoolean,
	"int":       TypeInt32,
	"integer":   TypeInt32,
	"smallint":  TypeInt16,
	"bigint":    TypeInt64,
	"long":      TypeInt64,
	"float":     TypeDouble,
	"float32":   TypeSingle,
	"float64":   TypeDouble,
	"money":     TypeCurrency,
	"timestamp": TypeDateTime,
	"uuid":      TypeGUID,
	"bytes":     TypeBinary,
	"blob":      TypeBinary,
	"varchar":   TypeString,
}

// String returns the canonical name of the type code.
func (t PortableType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("PortableType(%d)", uint8(t))
}

// Integer reports whether t is one of the integer codes.
func (t PortableType) Integer() bool {
	switch t {
	case TypeByte, TypeInt16, TypeInt32, TypeInt64:
		return true
	}
	return false
}

// ParsePortableType returns the type code for a case-insensitive name.
func ParsePortableType(name string) (PortableType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, tn := range typeNames {
		if tn == n && PortableType(i) != TypeUnknown {
			return PortableType(i), nil
		}
	}
	if t, ok := typeAliases[n]; ok {
		return t, nil
	}
	return TypeUnknown, fmt.Errorf("dialect: unknown portable type %q", name)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *PortableType) UnmarshalText(text []byte) error {
	v, err := ParsePortableType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (t PortableType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
