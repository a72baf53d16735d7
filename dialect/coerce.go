package dialect

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/sqlrecord"
)

// timeLayouts are tried in order when coercing strings to time values.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"15:04:05",
	"15:04",
}

// Coerce converts v to the Go representation bound for t. Nil stays nil, and
// an empty string is treated as NULL for every non-textual type, which is how
// delimited sources spell missing values.
func Coerce(v any, t PortableType) (any, error) {
	if v == nil {
		return nil, nil
	}
	if valuer, ok := v.(driver.Valuer); ok {
		if _, isUUID := v.(uuid.UUID); !isUUID {
			dv, err := valuer.Value()
			if err != nil {
				return nil, sqlrecord.NewCastError("", t.String(), v, err)
			}
			if dv == nil {
				return nil, nil
			}
			v = dv
		}
	}
	if s, ok := v.(string); ok && s == "" && !textual(t) {
		return nil, nil
	}
	switch t {
	case TypeString, TypeAnsiString, TypeText, TypeXML:
		return toString(v, t)
	case TypeBoolean:
		return toBool(v, t)
	case TypeByte:
		return toInt(v, t, 0, math.MaxUint8)
	case TypeInt16:
		return toInt(v, t, math.MinInt16, math.MaxInt16)
	case TypeInt32:
		return toInt(v, t, math.MinInt32, math.MaxInt32)
	case TypeInt64:
		return toInt(v, t, math.MinInt64, math.MaxInt64)
	case TypeSingle, TypeDouble, TypeDecimal, TypeCurrency:
		return toFloat(v, t)
	case TypeDateTime, TypeDate, TypeTime:
		return toTime(v, t)
	case TypeGUID:
		return toUUID(v, t)
	case TypeBinary:
		return toBytes(v, t)
	default:
		return v, nil
	}
}

func textual(t PortableType) bool {
	switch t {
	case TypeString, TypeAnsiString, TypeText, TypeXML, TypeUnknown:
		return true
	}
	return false
}

func castError(v any, t PortableType, err error) error {
	return sqlrecord.NewCastError("", t.String(), v, err)
}

// withParameter attaches the parameter name to a CastError.
func withParameter(err error, name string) error {
	var ce *sqlrecord.CastError
	if errors.As(err, &ce) && ce.Parameter == "" {
		ce.Parameter = name
	}
	return err
}

func toString(v any, t PortableType) (any, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(v), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	}
	return nil, castError(v, t, nil)
}

func toBool(v any, t PortableType) (any, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, castError(v, t, err)
		}
		return b, nil
	}
	if n, ok := asInt64(v); ok && (n == 0 || n == 1) {
		return n == 1, nil
	}
	return nil, castError(v, t, nil)
}

func toInt(v any, t PortableType, lo, hi int64) (any, error) {
	var n int64
	switch x := v.(type) {
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, castError(v, t, err)
		}
		n = parsed
	case float32, float64:
		f := asFloat64(x)
		if f != math.Trunc(f) || f < float64(lo) || f > float64(hi) {
			return nil, castError(v, t, nil)
		}
		n = int64(f)
	case bool:
		if x {
			n = 1
		}
	default:
		i, ok := asInt64(x)
		if !ok {
			return nil, castError(v, t, nil)
		}
		n = i
	}
	if n < lo || n > hi {
		return nil, castError(v, t, errors.New("value out of range"))
	}
	return n, nil
}

func toFloat(v any, t PortableType) (any, error) {
	switch x := v.(type) {
	case float32, float64:
		return asFloat64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, castError(v, t, err)
		}
		return f, nil
	}
	if n, ok := asInt64(v); ok {
		return float64(n), nil
	}
	return nil, castError(v, t, nil)
}

func toTime(v any, t PortableType) (any, error) {
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if tm, err := time.Parse(layout, s); err == nil {
				return tm, nil
			}
		}
		return nil, castError(v, t, errors.New("unrecognized time layout"))
	}
	return nil, castError(v, t, nil)
}

func toUUID(v any, t PortableType) (any, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case [16]byte:
		return uuid.UUID(x), nil
	case []byte:
		if len(x) == 16 {
			id, err := uuid.FromBytes(x)
			if err != nil {
				return nil, castError(v, t, err)
			}
			return id, nil
		}
		id, err := uuid.ParseBytes(x)
		if err != nil {
			return nil, castError(v, t, err)
		}
		return id, nil
	case string:
		id, err := uuid.Parse(strings.TrimSpace(x))
		if err != nil {
			return nil, castError(v, t, err)
		}
		return id, nil
	}
	return nil, castError(v, t, nil)
}

func toBytes(v any, t PortableType) (any, error) {
	switch x := v.(type) {
	case []byte:
		return x, nil
	case string:
		return []byte(x), nil
	}
	return nil, castError(v, t, nil)
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		if x > math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	}
	return 0, false
}

func asFloat64(v any) float64 {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	}
	return 0
}
