package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

var errNotScalar = errors.New("bookmark fields must be a string, number, boolean or null")

// Field is a JSON payload value that remembers whether its key was present.
//
// Any JSON scalar is accepted and kept in its textual form: 3 becomes "3",
// true becomes "true". Objects and arrays are rejected.
type Field struct {
	// Set is true when the key appeared in the JSON object.
	Set bool
	// Null is true when the key was present with a null value.
	Null bool
	// Value is the textual form of the value. Empty when Null.
	Value string

	truthy bool
}

// String builds a present, non-null Field.
func String(v string) Field {
	return Field{Set: true, Value: v, truthy: v != ""}
}

// Null builds a present Field holding JSON null.
func Null() Field {
	return Field{Set: true, Null: true}
}

// Truthy reports whether the field is present and not null, "", 0 or false.
func (f Field) Truthy() bool {
	return f.Set && f.truthy
}

// SQLValue returns the value to hand to the driver: nil for null, the text
// otherwise.
func (f Field) SQLValue() any {
	if f.Null {
		return nil
	}
	return f.Value
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked for keys
// that are present, which is what makes Set meaningful.
func (f *Field) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errNotScalar
	}

	*f = Field{Set: true}

	switch data[0] {
	case 'n':
		f.Null = true
		return nil

	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f.Value = s
		f.truthy = s != ""
		return nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		f.Value = strconv.FormatBool(b)
		f.truthy = b
		return nil

	case '{', '[':
		return errNotScalar

	default:
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return errNotScalar
		}
		// Out of range literals are still numbers: 1e400 overflows to
		// +Inf (truthy) and 1e-400 underflows to 0 (falsy).
		n, err := strconv.ParseFloat(num.String(), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return errNotScalar
		}
		f.Value = num.String()
		f.truthy = n != 0
		return nil
	}
}

// MarshalJSON writes null for null or absent fields and a string otherwise.
func (f Field) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
