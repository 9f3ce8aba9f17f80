package qxrt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Scalar is the set of host types the built-in scalar table (qxschema's
// annotation reader) ever maps an XSD built-in onto, plus the handful of
// aliased types (time.Time, []byte) non-trivial built-ins require.
type Scalar interface {
	~string | ~bool | ~int | ~int64 | ~uint | ~uint64 | ~float32 | ~float64 | time.Time | []byte
}

// ConvertData is the generic fallback value coercion every generated
// alias simpleType's specialized converter ultimately bottoms out on: it
// performs the host's default string-to-T coercion. Enum/List/Union
// simpleTypes emit their own converter instead of calling this directly,
// but that converter's element-wise conversion calls back into
// ConvertData for its underlying scalar.
func ConvertData[T Scalar](raw string) (T, error) {
	var zero T
	switch any(zero).(type) {
	case string:
		return any(raw).(T), nil
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return zero, err
		}
		return any(v).(T), nil
	case int:
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return zero, err
		}
		return any(v).(T), nil
	case int64:
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return zero, err
		}
		return any(v).(T), nil
	case uint:
		v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return zero, err
		}
		return any(uint(v)).(T), nil
	case uint64:
		v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return zero, err
		}
		return any(v).(T), nil
	case float32:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 32)
		if err != nil {
			return zero, err
		}
		return any(float32(v)).(T), nil
	case float64:
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return zero, err
		}
		return any(v).(T), nil
	case time.Time:
		v, err := parseAnyXSDTime(raw)
		if err != nil {
			return zero, err
		}
		return any(v).(T), nil
	case []byte:
		return any([]byte(raw)).(T), nil
	default:
		return zero, fmt.Errorf("qxrt: no conversion for %T", zero)
	}
}

// xsdTimeLayouts covers the non-trivial date/time built-ins
// (date, time, dateTime, gYear, gYearMonth, gMonth, gMonthDay, gDay)
// the annotation reader's built-in table maps onto time.Time.
var xsdTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"15:04:05",
	"2006-01",
	"2006",
	"--01-02",
	"---02",
	"--01",
}

func parseAnyXSDTime(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range xsdTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

// SplitListItems splits a List simpleType's whitespace-separated text
// into its elements, skipping empty runs, per §4.G's "split on \s+
// (empties skipped)" rule.
func SplitListItems(raw string) []string {
	return strings.Fields(raw)
}

// SplitUnionItems splits a Union simpleType's whitespace-separated text
// and requires exactly n elements.
func SplitUnionItems(raw string, n int) ([]string, error) {
	items := strings.Fields(raw)
	if len(items) != n {
		return nil, fmt.Errorf("qxrt: union value %q has %d fields, want %d", raw, len(items), n)
	}
	return items, nil
}

// ConvertList converts a List simpleType's text into a slice, by
// splitting on whitespace and applying elem to every item.
func ConvertList[T any](raw string, elem func(string) (T, error)) ([]T, error) {
	items := SplitListItems(raw)
	out := make([]T, 0, len(items))
	for _, item := range items {
		v, err := elem(item)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// MatchEnum performs the linear xml_value -> key match every generated
// Enum simpleType's converter does, returning ok=false (never an error
// itself — callers raise ThrowInvalidEnum, which needs the Reader) when
// value matches no entry.
func MatchEnum[T any](value string, table map[string]T) (T, bool) {
	v, ok := table[value]
	return v, ok
}

// ReadRequiredAttrib reads a required attribute: it is an *XMLError (via
// ThrowMissingAttribute) for the attribute to be absent.
func ReadRequiredAttrib[T Scalar](r Reader, name string) (T, error) {
	var zero T
	raw, ok := r.Attr(name)
	if !ok {
		return zero, ThrowMissingAttribute(r, name)
	}
	v, err := ConvertData[T](raw)
	if err != nil {
		return zero, ThrowInvalidSimple(r, raw, err)
	}
	return v, nil
}

// ReadOptionalAttrib reads an optional-without-default attribute,
// reporting whether it was present.
func ReadOptionalAttrib[T Scalar](r Reader, name string) (T, bool, error) {
	var zero T
	raw, ok := r.Attr(name)
	if !ok {
		return zero, false, nil
	}
	v, err := ConvertData[T](raw)
	if err != nil {
		return zero, false, ThrowInvalidSimple(r, raw, err)
	}
	return v, true, nil
}

// ReadOptionalAttribDefault reads an optional-with-default attribute,
// converting defaultStr when the attribute is absent from the document.
func ReadOptionalAttribDefault[T Scalar](r Reader, name, defaultStr string) (T, error) {
	var zero T
	raw, ok := r.Attr(name)
	if !ok {
		raw = defaultStr
	}
	v, err := ConvertData[T](raw)
	if err != nil {
		return zero, ThrowInvalidSimple(r, raw, err)
	}
	return v, nil
}

// ReadContent reads a SimpleType's scalar content member: the element's
// text, converted to T. It is what a generated SimpleTypeDef reader calls
// for its content_member field.
func ReadContent[T Scalar](r Reader) (T, error) {
	var zero T
	raw, err := r.ElementText()
	if err != nil {
		return zero, err
	}
	v, err := ConvertData[T](raw)
	if err != nil {
		return zero, ThrowInvalidSimple(r, raw, err)
	}
	return v, nil
}
