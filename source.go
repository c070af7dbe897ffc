// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package jstream

import "io"

// A Source supplies successive chunks of input text to a Scanner. Chunks may
// be of any length, including empty, and may split the input at arbitrary
// positions, including inside tokens. A Source is single-use: once it reports
// io.EOF it must continue to do so.
type Source interface {
	// NextChunk returns the next chunk of input. At the end of input it
	// returns "", io.EOF. Any other error terminates the parse.
	NextChunk() (string, error)
}

// A SourceFunc implements the Source interface by calling a function.
type SourceFunc func() (string, error)

// NextChunk satisfies the Source interface.
func (f SourceFunc) NextChunk() (string, error) { return f() }

// Chunks returns a Source that delivers the given chunks in order, then
// reports io.EOF.
func Chunks(chunks ...string) Source { return &chunkSource{chunks: chunks} }

type chunkSource struct {
	chunks []string
	pos    int
}

func (c *chunkSource) NextChunk() (string, error) {
	if c.pos >= len(c.chunks) {
		return "", io.EOF
	}
	next := c.chunks[c.pos]
	c.pos++
	return next, nil
}

// NewReaderSource returns a Source that delivers chunks read from r. Each
// chunk is at most one read of the underlying reader.
func NewReaderSource(r io.Reader) Source {
	return &readerSource{r: r, buf: make([]byte, 4096)}
}

type readerSource struct {
	r   io.Reader
	buf []byte
}

func (r *readerSource) NextChunk() (string, error) {
	nr, err := r.r.Read(r.buf)
	if nr > 0 {
		return string(r.buf[:nr]), nil
	}
	return "", err
}
