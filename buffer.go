// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jstream

import (
	"io"

	"go4.org/mem"
)

// A buffer holds the unconsumed tail of the input received so far, and
// extends it on demand by pulling chunks from a Source. All methods except
// expand and expectEnd operate on buffered text only.
//
// The buffer tracks the absolute offset and line/column position of its read
// position for error reporting. The more flag records whether further input
// is required for the parse to be well-formed; it is cleared while the
// scanner is inside a number, which has no terminating character, and by
// expectEnd once the top-level value is complete.
type buffer struct {
	src  Source
	data []byte
	pos  int  // read position in data
	eof  bool // the source is exhausted
	more bool // more content is expected

	off       int // absolute offset of data[0]
	line, col int // position of data[pos], 0-based
}

func newBuffer(src Source) buffer { return buffer{src: src, more: true} }

// rem reports the number of unconsumed bytes currently buffered.
func (b *buffer) rem() int { return len(b.data) - b.pos }

// at returns the unconsumed byte at offset i without consuming it.
// Precondition: i < b.rem().
func (b *buffer) at(i int) byte { return b.data[b.pos+i] }

// window returns a view of the unconsumed text without consuming it.
func (b *buffer) window() []byte { return b.data[b.pos:] }

// advance consumes n bytes, updating the line and column position.
func (b *buffer) advance(n int) {
	for _, c := range b.data[b.pos : b.pos+n] {
		if c == '\n' {
			b.line++
			b.col = 0
		} else {
			b.col++
		}
	}
	b.pos += n
}

// take consumes and returns the next n bytes. The returned slice is only
// valid until the next call to commit.
func (b *buffer) take(n int) []byte {
	out := b.data[b.pos : b.pos+n]
	b.advance(n)
	return out
}

// tryTakePrefix consumes s and reports true if the buffer begins with s.
func (b *buffer) tryTakePrefix(s string) bool {
	if b.rem() < len(s) || !mem.HasPrefix(mem.B(b.window()), mem.S(s)) {
		return false
	}
	b.advance(len(s))
	return true
}

// skipSpace consumes any run of JSON whitespace at the front of the buffer.
func (b *buffer) skipSpace() {
	for b.rem() > 0 && isSpace(b.at(0)) {
		b.advance(1)
	}
}

// scanStringBody consumes and returns the maximal prefix of the buffer
// containing neither a quotation mark nor a backslash. It reports an error
// if an unescaped control character is found.
// Precondition: b.rem() > 0 and b.at(0) is not '"' or '\\'.
func (b *buffer) scanStringBody() ([]byte, error) {
	i := 0
	for i < b.rem() {
		c := b.at(i)
		if c == '"' || c == '\\' {
			break
		} else if c < ' ' {
			b.advance(i)
			return nil, &LexicalError{Location: b.location(), Message: "unescaped control " + quoteByte(c)}
		}
		i++
	}
	return b.take(i), nil
}

// commit discards the consumed prefix of the buffer, bounding retained
// memory to at most what is needed to finish the current token.
func (b *buffer) commit() {
	if b.pos == 0 {
		return
	}
	n := copy(b.data, b.data[b.pos:])
	b.data = b.data[:n]
	b.off += b.pos
	b.pos = 0
}

// expand pulls one chunk from the source and appends it to the buffer,
// reporting whether a chunk was delivered. If the source is exhausted while
// more content is expected, expand reports ErrUnexpectedEnd.
func (b *buffer) expand() (bool, error) {
	if b.eof {
		return false, b.checkEnd()
	}
	chunk, err := b.src.NextChunk()
	if err == io.EOF {
		b.eof = true
		return false, b.checkEnd()
	} else if err != nil {
		return false, posError{pos: b.off + len(b.data), err: err}
	}
	b.data = append(b.data, chunk...)
	return true, nil
}

func (b *buffer) checkEnd() error {
	if b.more {
		return posError{pos: b.off + len(b.data), err: ErrUnexpectedEnd}
	}
	return nil
}

// expectEnd requires that the rest of the input, buffered and not, contains
// only whitespace. It consumes the remainder of the source.
func (b *buffer) expectEnd() error {
	b.more = false
	for {
		b.skipSpace()
		if b.rem() > 0 {
			return posError{pos: b.off + b.pos, err: ErrTrailingContent}
		}
		if b.eof {
			return nil
		}
		if _, err := b.expand(); err != nil {
			return err
		}
	}
}

// location returns the line/column position of the next unconsumed byte.
func (b *buffer) location() LineCol { return LineCol{Line: b.line + 1, Column: b.col} }

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
