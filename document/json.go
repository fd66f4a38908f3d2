package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

// ErrUnsupportedFloat is returned when encoding NaN or an infinity.
var ErrUnsupportedFloat = errors.New("document: unsupported float value")

// MarshalJSON implements json.Marshaler. Object fields are written in key order.
func (v Value) MarshalJSON() ([]byte, error) {
	return v.AppendJSON(nil)
}

// AppendJSON appends the compact JSON encoding of v to dst.
func (v Value) AppendJSON(dst []byte) ([]byte, error) {
	switch v.Kind {
	case KindNull, KindInvalid:
		return append(dst, "null"...), nil
	case KindInt:
		return strconv.AppendInt(dst, v.I64, 10), nil
	case KindFloat:
		if math.IsNaN(v.F64) || math.IsInf(v.F64, 0) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFloat, v.F64)
		}
		start := len(dst)
		dst = strconv.AppendFloat(dst, v.F64, 'g', -1, 64)
		// Keep a float marker so the value decodes back as a float.
		if !bytes.ContainsAny(dst[start:], ".eE") {
			dst = append(dst, ".0"...)
		}
		return dst, nil
	case KindString:
		b, err := json.Marshal(v.s.Value())
		if err != nil {
			return nil, err
		}
		return append(dst, b...), nil
	case KindBool:
		return strconv.AppendBool(dst, v.B), nil
	case KindArray:
		dst = append(dst, '[')
		for i := range v.A {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = v.A[i].AppendJSON(dst); err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	case KindObject:
		return v.O.AppendJSON(dst)
	default:
		return nil, fmt.Errorf("document: cannot encode kind %d", v.Kind)
	}
}

// AppendJSON appends the compact JSON object encoding of d to dst.
func (d Document) AppendJSON(dst []byte) ([]byte, error) {
	dst = append(dst, '{')
	for i, k := range d.Keys() {
		if i > 0 {
			dst = append(dst, ',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		dst = append(dst, kb...)
		dst = append(dst, ':')
		if dst, err = d[k].AppendJSON(dst); err != nil {
			return nil, err
		}
	}
	return append(dst, '}'), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Parse decodes exactly one JSON value from data. Trailing non-space bytes
// are an error.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, errors.New("document: trailing data after JSON value")
	}
	return fromJSON(raw)
}

// MustParse is like Parse but panics on error. Intended for tests and examples.
func MustParse(s string) Value {
	v, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return v
}

func fromJSON(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return Value{}, err
		}
		return Float(f), nil
	case []any:
		arr := make([]Value, len(x))
		for i := range x {
			vv, err := fromJSON(x[i])
			if err != nil {
				return Value{}, err
			}
			arr[i] = vv
		}
		return Array(arr), nil
	case map[string]any:
		d := make(Document, len(x))
		for k, e := range x {
			vv, err := fromJSON(e)
			if err != nil {
				return Value{}, err
			}
			d[k] = vv
		}
		return Object(d), nil
	default:
		return Value{}, fmt.Errorf("document: unexpected JSON type %T", raw)
	}
}
