// Package pipework is the sample-pipe model of an organ rank: the logical
// pipes of the rank, the attack and release samples attached to each pipe,
// and the policies for growing, shrinking and shifting the pipe window
// when the rank configuration changes.
package pipework

import (
	"encoding/json"
	"strconv"

	"golang.org/x/exp/constraints"
	"gopkg.in/yaml.v3"
)

type (
	// Optional is a value that may be unset. Definition files write unset
	// offsets and times as -1; the conversion happens only in package odf.
	Optional[T constraints.Integer] struct {
		value T
		set   bool
	}

	// Tremulant tells if a sample is used when the tremulant is on, off, or
	// regardless of the tremulant state.
	Tremulant int

	intRange struct {
		Min, Max int
	}
)

const (
	TremulantAny Tremulant = iota
	TremulantOff
	TremulantOn
)

// Some returns a set Optional holding v.
func Some[T constraints.Integer](v T) Optional[T] { return Optional[T]{value: v, set: true} }

// None returns an unset Optional.
func None[T constraints.Integer]() Optional[T] { return Optional[T]{} }

// Get returns the value and whether it is set.
func (o Optional[T]) Get() (T, bool) { return o.value, o.set }

// IsSet reports whether the value is set.
func (o Optional[T]) IsSet() bool { return o.set }

// IsZero is used by the yaml encoder for omitempty; an unset value is empty.
func (o Optional[T]) IsZero() bool { return !o.set }

// Or returns the value if set, otherwise def.
func (o Optional[T]) Or(def T) T {
	if o.set {
		return o.value
	}
	return def
}

func (o Optional[T]) String() string {
	if !o.set {
		return "unset"
	}
	return strconv.FormatInt(int64(o.value), 10)
}

func (o Optional[T]) MarshalYAML() (interface{}, error) {
	if !o.set {
		return nil, nil
	}
	return int64(o.value), nil
}

func (o *Optional[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" || node.Value == "" || node.Value == "~" {
		*o = Optional[T]{}
		return nil
	}
	var v int64
	if err := node.Decode(&v); err != nil {
		return err
	}
	*o = Some(T(v))
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(int64(o.value))
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = Optional[T]{}
		return nil
	}
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(T(v))
	return nil
}

// clampOptional unsets the value for negative input and otherwise clamps it
// into r. Negative input is how the -1 "unset" convention reaches setters.
func clampOptional(value int, r intRange) Optional[int] {
	if value < 0 {
		return None[int]()
	}
	return Some(r.Clamp(value))
}

func (r intRange) Clamp(value int) int {
	return clamp(value, r.Min, r.Max)
}

func clamp[T constraints.Ordered](value, lo, hi T) T {
	return max(min(value, hi), lo)
}

// Sentinel returns the tremulant state in the -1/0/1 form of definition
// files.
func (t Tremulant) Sentinel() int {
	switch t {
	case TremulantOff:
		return 0
	case TremulantOn:
		return 1
	default:
		return -1
	}
}

// TremulantFromSentinel is the inverse of Sentinel; anything but 0 and 1
// means the sample plays regardless of the tremulant.
func TremulantFromSentinel(v int) Tremulant {
	switch v {
	case 0:
		return TremulantOff
	case 1:
		return TremulantOn
	default:
		return TremulantAny
	}
}

func (t Tremulant) String() string {
	switch t {
	case TremulantOff:
		return "off"
	case TremulantOn:
		return "on"
	default:
		return "any"
	}
}

func (t Tremulant) MarshalYAML() (interface{}, error) { return t.String(), nil }

func (t *Tremulant) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	*t = parseTremulant(s)
	return nil
}

func (t Tremulant) MarshalJSON() ([]byte, error) { return json.Marshal(t.String()) }

func (t *Tremulant) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = parseTremulant(s)
	return nil
}

func parseTremulant(s string) Tremulant {
	switch s {
	case "off":
		return TremulantOff
	case "on":
		return TremulantOn
	default:
		return TremulantAny
	}
}
