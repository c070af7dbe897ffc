// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package ast defines a tree representation for JSON values, and an
// incremental parser that constructs value trees from chunked JSON source.
package ast

import (
	"strconv"
	"strings"

	"github.com/creachadair/jstream"
)

// A Value is an arbitrary JSON value.
type Value interface {
	// JSON renders the value as JSON source text.
	JSON() string
}

// Null represents the null constant.
type Null struct{}

// JSON satisfies the Value interface.
func (Null) JSON() string { return "null" }

// A Bool is a Boolean constant, true or false.
type Bool bool

// JSON satisfies the Value interface.
func (b Bool) JSON() string {
	if b {
		return "true"
	}
	return "false"
}

// A Number is a numeric value. All numbers are represented as float64.
type Number float64

// JSON satisfies the Value interface.
func (n Number) JSON() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }

// A String is a string value. Unlike arrays and objects, a string under
// construction is replaced rather than modified as it grows: a String held
// by the consumer remains a valid copy of its prior state.
type String string

// JSON satisfies the Value interface.
func (s String) JSON() string { return jstream.Quote(string(s)) }

// An Array is a sequence of values. An Array under construction is extended
// in place: the consumer may hold the pointer through the life of a parse
// and observe elements accumulate.
type Array struct {
	Values []Value
}

// JSON satisfies the Value interface.
func (a *Array) JSON() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a.Values {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(v.JSON())
	}
	sb.WriteByte(']')
	return sb.String()
}

// An Object is a collection of key-value members in insertion order.
type Object struct {
	Members []*Member
}

// JSON satisfies the Value interface.
func (o *Object) JSON() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, m := range o.Members {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(m.JSON())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Find returns the member of o with the given key, or nil.
func (o *Object) Find(key string) *Member {
	for _, m := range o.Members {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// Set sets the value of the member of o with the given key, appending a new
// member if no member has that key. Setting an existing key replaces its
// value but keeps the member's original position. Keys are plain member
// names with no special cases.
func (o *Object) Set(key string, v Value) {
	if m := o.Find(key); m != nil {
		m.Value = v
		return
	}
	o.Members = append(o.Members, &Member{Key: key, Value: v})
}

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string
	Value Value
}

// JSON satisfies the Value interface, rendering the member as a key-value
// pair.
func (m *Member) JSON() string { return jstream.Quote(m.Key) + ":" + m.Value.JSON() }
