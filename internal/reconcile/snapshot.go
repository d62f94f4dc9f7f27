package reconcile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
)

// ErrNotObject is returned when a payload is valid JSON but not an object.
var ErrNotObject = errors.New("payload is not a JSON object")

// Snapshot is the full self-contained state payload received in one cycle.
// Numbers are kept as json.Number so integer values round-trip exactly.
type Snapshot map[string]any

// ParseSnapshot decodes a raw payload into a Snapshot.
func ParseSnapshot(data []byte) (Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode snapshot: trailing data after object")
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return Snapshot(obj), nil
}

// Canonical returns the key-sorted JSON form used for equality checks.
func (s Snapshot) Canonical() string {
	// encoding/json writes map keys in sorted order at every depth.
	b, err := json.Marshal(map[string]any(s))
	if err != nil {
		return fmt.Sprintf("%#v", map[string]any(s))
	}
	return string(b)
}

// Equal reports structural equality of two snapshots.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.Canonical() == other.Canonical()
}

// Clone returns a shallow copy. Nested values are never mutated in place,
// so a shallow copy is enough to keep callers from sharing the top-level map.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	return maps.Clone(s)
}

// Int returns the integer value stored under key. Fractional numbers and
// numeric strings are not integers and report false.
func (s Snapshot) Int(key string) (int, bool) {
	switch v := s[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		if f, err := v.Float64(); err == nil {
			return integral(f)
		}
	case float64:
		return integral(v)
	case int:
		return v, true
	case int64:
		return int(v), true
	}
	return 0, false
}

// integral accepts floats such as 2.0 that carry an exact integer.
func integral(f float64) (int, bool) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// Text returns the string value stored under key.
func (s Snapshot) Text(key string) (string, bool) {
	switch v := s[key].(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	}
	return "", false
}

// Bool returns the boolean value stored under key.
func (s Snapshot) Bool(key string) (bool, bool) {
	v, ok := s[key].(bool)
	return v, ok
}
