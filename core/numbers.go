package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NumberError is returned when a JSON value cannot be read as a finite number.
type NumberError struct {
	Value string
}

func (e *NumberError) Error() string {
	return fmt.Sprintf("%s is not a valid number", e.Value)
}

// unquote accepts both JSON numbers and JSON strings holding a number.
func unquote(b []byte) (s string, quoted bool) {
	s = strings.TrimSpace(string(b))
	if uq, err := strconv.Unquote(s); err == nil {
		return strings.TrimSpace(uq), true
	}
	return s, false
}

// Float is a float64 decoded from a JSON number or a numeric string. NaN and infinities are rejected.
type Float float64

func (f *Float) UnmarshalJSON(b []byte) error {
	s, _ := unquote(b)
	if s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return &NumberError{Value: strconv.Quote(s)}
	}
	*f = Float(v)
	return nil
}

// Int is an int decoded from a JSON number or a numeric string.
// An empty string decodes to 0; fractional values are rejected.
type Int int

func (i *Int) UnmarshalJSON(b []byte) error {
	s, quoted := unquote(b)
	if s == "null" || (quoted && s == "") {
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		*i = Int(v)
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return &NumberError{Value: strconv.Quote(s)}
	}
	*i = Int(v)
	return nil
}
