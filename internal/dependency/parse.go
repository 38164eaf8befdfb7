package dependency

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Parse normalizes a persisted dependency field into a set of milestone ids.
//
// The field is normally a JSON array of integers stored as text, but rows
// written by older clients or edited by hand can hold anything. Parse never
// fails: a value that cannot be decoded, is not a list, or is null yields an
// empty set, and list elements that are not integers are dropped.
func Parse(raw any) Set {
	s, _ := ParseStrict(raw)
	return s
}

// ParseStrict performs the same normalization as Parse and additionally
// reports a *MalformedEncodingError when the input was not a clean integer
// list. The returned set is always usable; the error is informational.
func ParseStrict(raw any) (Set, error) {
	switch v := raw.(type) {
	case nil:
		return Set{}, nil
	case string:
		return parseText([]byte(v))
	case []byte:
		return parseText(v)
	case json.RawMessage:
		return parseText(v)
	case []any:
		return fromElements(v, describe(raw))
	case []int:
		s := make(Set, len(v))
		for _, id := range v {
			s[MilestoneID(id)] = struct{}{}
		}
		return s, nil
	case []int64:
		s := make(Set, len(v))
		for _, id := range v {
			s[MilestoneID(id)] = struct{}{}
		}
		return s, nil
	case []MilestoneID:
		return NewSet(v...), nil
	case Set:
		s := make(Set, len(v))
		for id := range v {
			s[id] = struct{}{}
		}
		return s, nil
	default:
		return Set{}, &MalformedEncodingError{Raw: describe(raw), Reason: fmt.Sprintf("unsupported type %T", raw)}
	}
}

func parseText(data []byte) (Set, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Set{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return Set{}, &MalformedEncodingError{Raw: string(trimmed), Reason: err.Error()}
	}
	if dec.More() {
		return Set{}, &MalformedEncodingError{Raw: string(trimmed), Reason: "trailing data after JSON value"}
	}

	elems, ok := decoded.([]any)
	if !ok {
		return Set{}, &MalformedEncodingError{Raw: string(trimmed), Reason: fmt.Sprintf("expected a JSON array, got %s", jsonKind(decoded))}
	}
	return fromElements(elems, string(trimmed))
}

func fromElements(elems []any, raw string) (Set, error) {
	s := make(Set, len(elems))
	dropped := 0
	for _, e := range elems {
		id, ok := toID(e)
		if !ok {
			dropped++
			continue
		}
		s[id] = struct{}{}
	}
	if dropped > 0 {
		return s, &MalformedEncodingError{Raw: raw, Reason: fmt.Sprintf("dropped %d non-integer element(s)", dropped)}
	}
	return s, nil
}

func toID(e any) (MilestoneID, bool) {
	switch n := e.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return MilestoneID(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatID(f)
	case float64:
		return floatID(n)
	case int:
		return MilestoneID(n), true
	case int64:
		return MilestoneID(n), true
	case MilestoneID:
		return n, true
	default:
		return 0, false
	}
}

// floatID accepts floats that hold an exact integer, such as 3.0.
func floatID(f float64) (MilestoneID, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return MilestoneID(int64(f)), true
}

func jsonKind(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func describe(raw any) string {
	b, err := json.Marshal(raw)
	if err != nil {
		return fmt.Sprintf("%v", raw)
	}
	return string(b)
}

// Encode returns the canonical persisted form of a dependency set: a JSON
// array of ids in ascending order.
func Encode(s Set) string {
	ids := s.Sorted()
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, id := range ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.FormatInt(int64(id), 10))
	}
	buf.WriteByte(']')
	return buf.String()
}
