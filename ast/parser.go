// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"io"

	"github.com/creachadair/jstream"
)

// A Parser incrementally parses a single JSON value from a chunked input
// source. Each call to Next advances the parse until the value under
// construction has visibly changed, and Value returns the current state of
// the value. The same containers are returned across calls, extended in
// place; the final state is identical to a non-streaming parse of the whole
// input.
//
//	p := ast.NewParser(src)
//	for p.Next() {
//	   render(p.Value())
//	}
//	if err := p.Err(); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
type Parser struct {
	sc   *jstream.Scanner
	b    *Builder
	err  error
	done bool
}

// NewParser constructs a Parser that consumes input from src.
func NewParser(src jstream.Source) *Parser {
	return &Parser{sc: jstream.NewScanner(src), b: NewBuilder()}
}

// OnComplete sets a callback invoked once for each subvalue at the moment it
// becomes final. See Builder.OnComplete. It must be called before the first
// call to Next.
func (p *Parser) OnComplete(f func(Value, Path)) { p.b.OnComplete(f) }

// Next advances the parse and reports whether the value under construction
// changed visibly. It returns false when the value is complete and the input
// is exhausted, or when parsing fails; use Err to distinguish the two.
func (p *Parser) Next() bool {
	if p.done {
		return false
	}
	for {
		p.b.progressed = false
		if err := p.sc.Pump(p.b); err == io.EOF {
			p.done = true
			return false
		} else if err != nil {
			p.err = err
			p.done = true
			return false
		}
		if p.b.progressed {
			return true
		}
	}
}

// Value returns the value under construction. The value is extended in
// place by subsequent calls to Next, and must be treated as read-only by
// the caller. It returns nil before the first successful call to Next.
func (p *Parser) Value() Value { return p.b.Root() }

// Err returns the error that terminated parsing, or nil if parsing ended at
// a complete value followed only by whitespace.
func (p *Parser) Err() error { return p.err }

// Parse consumes src to completion and returns the final parsed value. It
// is equivalent to running a Parser to completion and keeping only the last
// value.
func Parse(src jstream.Source) (Value, error) {
	p := NewParser(src)
	for p.Next() {
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	return p.Value(), nil
}
