package fitmsg

import (
	"math"
	"time"
)

// New builds a message from already-decoded field values. Nil values are
// stored as absent fields. It is the constructor for producers other than the
// binary decoder and for tests.
func New(name string, fields map[string]any) Message {
	m := Message{
		Name:   name,
		Fields: make(map[string]Field, len(fields)),
	}
	for k, v := range fields {
		m.Fields[k] = Field{Raw: v, Value: v}
	}
	return m
}

// Get returns the semantic value of a field. Fields that were not decoded or
// hold the invalid sentinel report false.
func (m Message) Get(name string) (any, bool) {
	f, ok := m.Fields[name]
	if !ok || f.Value == nil {
		return nil, false
	}
	return f.Value, true
}

// RawValue returns the stored base-type value of a field.
func (m Message) RawValue(name string) (any, bool) {
	f, ok := m.Fields[name]
	if !ok || f.Raw == nil {
		return nil, false
	}
	return f.Raw, true
}

// Has reports whether the field carries a non-empty value.
func (m Message) Has(name string) bool {
	v, ok := m.Get(name)
	if !ok {
		return false
	}
	switch x := v.(type) {
	case string:
		return x != ""
	case time.Time:
		return !x.IsZero()
	}
	return true
}

// Text returns a string field.
func (m Message) Text(name string) (string, bool) {
	v, ok := m.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// Time returns a date_time field.
func (m Message) Time(name string) (time.Time, bool) {
	v, ok := m.Get(name)
	if !ok {
		return time.Time{}, false
	}
	t, ok := v.(time.Time)
	return t, ok && !t.IsZero()
}

// Float returns a numeric field as float64.
func (m Message) Float(name string) (float64, bool) {
	v, ok := m.Get(name)
	if !ok {
		return 0, false
	}
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Int returns a numeric field truncated to int64.
func (m Message) Int(name string) (int64, bool) {
	f, ok := m.Float(name)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}
