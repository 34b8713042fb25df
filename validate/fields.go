package validate

import (
	"encoding/json"
	"math"
	"strings"
)

// Record is an untrusted provider payload.
type Record = map[string]any

// lookup returns the first present alias of a field, with the alias found.
func lookup(r Record, names ...string) (any, string, bool) {
	for _, name := range names {
		if v, ok := r[name]; ok && v != nil {
			return v, name, true
		}
	}
	return nil, names[0], false
}

func requiredString(r Record, names ...string) (string, error) {
	v, name, ok := lookup(r, names...)
	if !ok {
		return "", fieldError(name, "missing")
	}

	s, isString := v.(string)
	if !isString {
		return "", fieldError(name, "expected a string, got %T", v)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return "", fieldError(name, "blank")
	}

	return s, nil
}

func optionalString(r Record, def string, names ...string) (string, error) {
	v, name, ok := lookup(r, names...)
	if !ok {
		return def, nil
	}

	s, isString := v.(string)
	if !isString {
		return "", fieldError(name, "expected a string, got %T", v)
	}

	if s = strings.TrimSpace(s); s == "" {
		return def, nil
	}

	return s, nil
}

func optionalBool(r Record, names ...string) (bool, error) {
	v, name, ok := lookup(r, names...)
	if !ok {
		return false, nil
	}

	b, isBool := v.(bool)
	if !isBool {
		return false, fieldError(name, "expected a boolean, got %T", v)
	}

	return b, nil
}

// optionalStrings accepts a list of strings or a comma separated string.
func optionalStrings(r Record, names ...string) ([]string, error) {
	v, name, ok := lookup(r, names...)
	if !ok {
		return nil, nil
	}

	var raw []string
	switch list := v.(type) {
	case string:
		raw = strings.Split(list, ",")
	case []string:
		raw = list
	case []any:
		for i, item := range list {
			s, isString := item.(string)
			if !isString {
				return nil, fieldError(name, "element %d: expected a string, got %T", i, item)
			}
			raw = append(raw, s)
		}
	default:
		return nil, fieldError(name, "expected a list of strings, got %T", v)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	return out, nil
}

// number converts any numeric shape to a finite float64.
func number(name string, v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fieldError(name, "not a number: %q", n.String())
		}
		f = parsed
	default:
		return 0, fieldError(name, "expected a number, got %T", v)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fieldError(name, "not a finite number")
	}

	return f, nil
}

// optionalCount reads a non-negative integer, defaulting to 0.
func optionalCount(r Record, names ...string) (int, error) {
	v, name, ok := lookup(r, names...)
	if !ok {
		return 0, nil
	}

	f, err := number(name, v)
	if err != nil {
		return 0, err
	}

	switch {
	case f < 0:
		return 0, fieldError(name, "must not be negative, got %v", f)
	case f != math.Trunc(f):
		return 0, fieldError(name, "must be an integer, got %v", f)
	case f > math.MaxInt32:
		return 0, fieldError(name, "out of range")
	}

	return int(f), nil
}

// optionalEnum parses a declared enum value; a present but unknown value is an error.
func optionalEnum[T any](r Record, def T, parse func(string) (T, bool), names ...string) (T, error) {
	v, name, ok := lookup(r, names...)
	if !ok {
		return def, nil
	}

	s, isString := v.(string)
	if !isString {
		return def, fieldError(name, "expected a string, got %T", v)
	}

	if strings.TrimSpace(s) == "" {
		return def, nil
	}

	parsed, known := parse(s)
	if !known {
		return def, fieldError(name, "unknown value %q", s)
	}

	return parsed, nil
}
