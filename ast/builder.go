// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"fmt"
	"unicode/utf8"
)

// frameKind discriminates the states of a builder stack frame.
type frameKind byte

const (
	frameString frameKind = 1 + iota // accumulating a string value or object key
	frameArray                       // appending elements to an array
	frameKey                         // object open, expecting the next key
	frameValue                       // object key complete, expecting its value
)

// A frame records one level of the value under construction. An object is
// represented by a single frame whose kind alternates between frameKey and
// frameValue as members are parsed; key holds the most recent key seen.
type frame struct {
	kind frameKind
	arr  *Array
	obj  *Object
	key  string
	acc  []byte // string accumulator, for frameString

	// pending holds the most recently completed member value of an object
	// frame. Its completion callback is withheld until the next key is read
	// or the object closes: if the next key repeats it, it is dropped
	// unreported.
	pending    Value
	pendingSet bool
}

// A Builder consumes scanner tokens and incrementally builds a Value. It
// implements jstream.Handler, so it may be driven directly by a
// jstream.Scanner; the Parser type packages the two together.
//
// The value under construction is available from Root at any time between
// tokens. Arrays and objects are created at their open bracket and mutated
// in place thereafter; strings grow by replacement. The caller must treat
// the returned tree as read-only.
type Builder struct {
	frames     []frame
	root       Value
	started    bool
	progressed bool
	complete   func(Value, Path)
}

// NewBuilder constructs an empty Builder.
func NewBuilder() *Builder { return new(Builder) }

// OnComplete sets f to be called once for each value at the moment the value
// becomes final: strings at their closing quote, arrays and objects at their
// closing bracket, and atoms at their token. A member value of an object is
// reported later, once the next key or the closing brace has been read.
// Values complete in stream order, children before parents. A member value
// replaced by a duplicate key that immediately follows it is not reported;
// one replaced by a later, non-adjacent duplicate has already been reported.
//
// The Path passed to f is valid only for the duration of the call.
// OnComplete must be called before the first token is processed.
func (b *Builder) OnComplete(f func(Value, Path)) { b.complete = f }

// Root returns the value under construction, or nil if no token of the
// top-level value has been processed yet.
func (b *Builder) Root() Value { return b.root }

// Done reports whether the top-level value is complete.
func (b *Builder) Done() bool { return b.started && len(b.frames) == 0 }

// Null satisfies the jstream.Handler interface.
func (b *Builder) Null() error { b.setValue(Null{}); return nil }

// Bool satisfies the jstream.Handler interface.
func (b *Builder) Bool(v bool) error { b.setValue(Bool(v)); return nil }

// Number satisfies the jstream.Handler interface.
func (b *Builder) Number(v float64) error { b.setValue(Number(v)); return nil }

// setValue installs a completed atomic value at the current position.
func (b *Builder) setValue(v Value) {
	b.progressed = true
	switch f := b.top(); {
	case f == nil:
		b.mustInitial("value")
		b.root = v
	case f.kind == frameArray:
		f.arr.Values = append(f.arr.Values, v)
	case f.kind == frameValue:
		f.obj.Set(f.key, v)
		f.kind = frameKey
	default:
		b.invariant("value token in state %d", f.kind)
	}
	b.valueComplete(v)
}

// place installs a newly opened container at the current position. The
// container completes later, at its matching end token.
func (b *Builder) place(v Value) {
	b.progressed = true
	switch f := b.top(); {
	case f == nil:
		b.mustInitial("container")
		b.root = v
	case f.kind == frameArray:
		f.arr.Values = append(f.arr.Values, v)
	case f.kind == frameValue:
		f.obj.Set(f.key, v)
		f.kind = frameKey
	default:
		b.invariant("container token in state %d", f.kind)
	}
}

// BeginArray satisfies the jstream.Handler interface.
func (b *Builder) BeginArray() error {
	a := new(Array)
	b.place(a)
	b.push(frame{kind: frameArray, arr: a})
	return nil
}

// EndArray satisfies the jstream.Handler interface.
func (b *Builder) EndArray() error {
	f := b.top()
	if f == nil || f.kind != frameArray {
		b.invariant("end of array with no array open")
	}
	b.pop()
	b.valueComplete(f.arr)
	return nil
}

// BeginObject satisfies the jstream.Handler interface.
func (b *Builder) BeginObject() error {
	o := new(Object)
	b.place(o)
	b.push(frame{kind: frameKey, obj: o})
	return nil
}

// EndObject satisfies the jstream.Handler interface.
func (b *Builder) EndObject() error {
	f := b.top()
	if f == nil || f.kind != frameKey {
		b.invariant("end of object with no object open")
	}
	b.flushPending(f)
	b.pop()
	b.valueComplete(f.obj)
	return nil
}

// BeginString satisfies the jstream.Handler interface. For a string value, a
// placeholder empty string is installed at once so the consumer sees the
// position occupied; a key in progress is not yet visible anywhere.
func (b *Builder) BeginString() error {
	switch f := b.top(); {
	case f == nil:
		b.mustInitial("string")
		b.root = String("")
		b.progressed = true
	case f.kind == frameArray:
		f.arr.Values = append(f.arr.Values, String(""))
		b.progressed = true
	case f.kind == frameValue:
		f.obj.Set(f.key, String(""))
		b.progressed = true
	case f.kind == frameKey:
		// an object key: no visible change yet
	default:
		b.invariant("string start in state %d", f.kind)
	}
	b.push(frame{kind: frameString})
	return nil
}

// StringData satisfies the jstream.Handler interface. Each fragment extends
// the accumulator and, for a string value, mirrors the grown snapshot into
// the position the string occupies.
func (b *Builder) StringData(frag string) error {
	f := b.top()
	if f == nil || f.kind != frameString {
		b.invariant("string data with no string open")
	}
	n := len(f.acc)
	f.acc = append(f.acc, frag...)
	// A multibyte rune split across fragments stays hidden until complete.
	vis := f.acc
	for i := len(vis) - 1; i >= 0 && i >= len(vis)-utf8.UTFMax; i-- {
		if utf8.RuneStart(vis[i]) {
			if !utf8.FullRune(vis[i:]) {
				vis = vis[:i]
			}
			break
		}
	}
	if len(vis) <= n && len(vis) < len(f.acc) {
		return nil // only an incomplete rune was added: no visible change
	}
	switch p := b.parent(); {
	case p == nil:
		b.root = String(vis)
		b.progressed = true
	case p.kind == frameArray:
		p.arr.Values[len(p.arr.Values)-1] = String(vis)
		b.progressed = true
	case p.kind == frameValue:
		p.obj.Set(p.key, String(vis))
		b.progressed = true
	case p.kind == frameKey:
		// an object key: no visible change yet
	default:
		b.invariant("string data in state %d", p.kind)
	}
	return nil
}

// EndString satisfies the jstream.Handler interface.
func (b *Builder) EndString() error {
	f := b.top()
	if f == nil || f.kind != frameString {
		b.invariant("end of string with no string open")
	}
	b.pop()
	s := String(f.acc)
	switch p := b.top(); {
	case p == nil:
		b.root = s
		b.valueComplete(s)
	case p.kind == frameArray:
		p.arr.Values[len(p.arr.Values)-1] = s
		b.valueComplete(s)
	case p.kind == frameValue:
		p.obj.Set(p.key, s)
		p.kind = frameKey
		b.valueComplete(s)
	case p.kind == frameKey:
		// the key is complete: the pending member, if any, is now decided
		key := string(f.acc)
		if p.pendingSet {
			if p.key == key {
				p.pending, p.pendingSet = nil, false // overridden, not reported
			} else {
				b.flushPending(p)
			}
		}
		p.key = key
		p.kind = frameValue
	default:
		b.invariant("end of string in state %d", p.kind)
	}
	return nil
}

// valueComplete reports v as complete. A value completing directly under an
// object frame is that frame's most recent member value; its report is
// deferred until the next key or the end of the object shows that the key
// that immediately follows does not override it.
func (b *Builder) valueComplete(v Value) {
	if b.complete == nil {
		return
	}
	if p := b.top(); p != nil && p.kind == frameKey {
		p.pending, p.pendingSet = v, true
		return
	}
	b.complete(v, Path{b: b})
}

// flushPending reports the withheld member value of f, if any. The path
// segments derived from the stack still name the member's key.
func (b *Builder) flushPending(f *frame) {
	if f.pendingSet {
		v := f.pending
		f.pending, f.pendingSet = nil, false
		b.complete(v, Path{b: b})
	}
}

func (b *Builder) top() *frame {
	if len(b.frames) == 0 {
		return nil
	}
	return &b.frames[len(b.frames)-1]
}

func (b *Builder) parent() *frame {
	if len(b.frames) < 2 {
		return nil
	}
	return &b.frames[len(b.frames)-2]
}

func (b *Builder) push(f frame) { b.frames = append(b.frames, f) }
func (b *Builder) pop()         { b.frames = b.frames[:len(b.frames)-1] }

// mustInitial checks that the builder has not already finished a top-level
// value when a new one begins.
func (b *Builder) mustInitial(label string) {
	if b.started {
		b.invariant("%s token after the top-level value", label)
	}
	b.started = true
}

func (b *Builder) invariant(msg string, args ...any) {
	panic(fmt.Sprintf("jstream/ast: invariant violated: "+msg, args...))
}

// A Path describes the location of a value within the tree under
// construction, as reported to a completion callback. A Path is derived
// lazily from the builder state; it is only valid during the callback that
// received it and must not be retained.
type Path struct {
	b *Builder
}

// Segments returns the path from the root as a sequence of object keys
// (string) and array indexes (int). The result is freshly allocated and
// remains valid after the callback returns.
func (p Path) Segments() []any {
	var segs []any
	for i := range p.b.frames {
		switch f := &p.b.frames[i]; f.kind {
		case frameArray:
			segs = append(segs, len(f.arr.Values)-1)
		case frameKey, frameValue:
			segs = append(segs, f.key)
		}
	}
	return segs
}
