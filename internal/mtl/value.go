package mtl

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags the scalar type a metadata value was coerced to.
type Kind int

const (
	Text Kind = iota
	Integer
	Float
	Boolean
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Boolean:
		return "boolean"
	default:
		return "text"
	}
}

// Value is a leaf of the metadata tree.
type Value struct {
	Kind Kind
	i    int64
	f    float64
	b    bool
	s    string
}

func (Value) node() {}

func IntValue(i int64) Value     { return Value{Kind: Integer, i: i} }
func FloatValue(f float64) Value { return Value{Kind: Float, f: f} }
func BoolValue(b bool) Value     { return Value{Kind: Boolean, b: b} }
func TextValue(s string) Value   { return Value{Kind: Text, s: s} }

// nonFinite holds the float literals JSON decoders commonly accept beyond
// the grammar.
var nonFinite = map[string]float64{
	"NaN":       math.NaN(),
	"Infinity":  math.Inf(1),
	"-Infinity": math.Inf(-1),
}

// Coerce turns the raw right-hand side of a KEY = VALUE line into a typed
// value. JSON scalars are recognised; anything else is kept verbatim as text.
func Coerce(raw string) Value {
	switch raw {
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	}

	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return TextValue(s)
		}
		return TextValue(raw)
	}

	if f, ok := nonFinite[raw]; ok {
		return FloatValue(f)
	}
	if !looksNumeric(raw) {
		return TextValue(raw)
	}

	var n json.Number
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return TextValue(raw)
	}
	if i, err := n.Int64(); err == nil {
		return IntValue(i)
	}
	if f, err := n.Float64(); err == nil {
		return FloatValue(f)
	}
	return TextValue(raw)
}

// looksNumeric rejects inputs json.Number would still accept when quoted.
func looksNumeric(raw string) bool {
	if raw == "" {
		return false
	}
	c := raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}

// Float returns the numeric value. Text is accepted when it parses as a
// float, since some MTL producers quote numbers.
func (v Value) Float() (float64, error) {
	switch v.Kind {
	case Integer:
		return float64(v.i), nil
	case Float:
		return v.f, nil
	case Text:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrNotNumeric, v.s)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %s value", ErrNotNumeric, v.Kind)
	}
}

func (v Value) Int() (int64, bool) {
	return v.i, v.Kind == Integer
}

func (v Value) Bool() (bool, bool) {
	return v.b, v.Kind == Boolean
}

// String renders the value the way it would appear after coercion.
func (v Value) String() string {
	switch v.Kind {
	case Integer:
		return strconv.FormatInt(v.i, 10)
	case Float:
		switch {
		case math.IsInf(v.f, 1):
			return "Infinity"
		case math.IsInf(v.f, -1):
			return "-Infinity"
		}
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case Boolean:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}
