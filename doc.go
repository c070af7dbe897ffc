// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package jstream implements an incremental JSON scanner over chunked input.
//
// The input to a parse is a [Source], a lazy sequence of text chunks such as
// the bodies of network reads. Chunks may split the input anywhere, including
// in the middle of tokens; the scanner resumes from wherever the previous
// chunk left off. Use [Chunks] for in-memory input, or [NewReaderSource] to
// chunk an io.Reader.
//
// # Scanning
//
// The [Scanner] type is a resumable lexical scanner. Each call to its Pump
// method advances the scan until at least one token has been delivered to a
// [Handler], pulling further chunks from the source only when the buffered
// input is exhausted mid-token:
//
//	s := jstream.NewScanner(src)
//	for {
//	   err := s.Pump(h)
//	   if err == io.EOF {
//	      break // input complete
//	   } else if err != nil {
//	      log.Fatalf("Scanning failed: %v", err)
//	   }
//	}
//
// Pump returns io.EOF once the top-level value is complete and the rest of
// the input is whitespace. Any other error is terminal.
//
// Tokens are delivered as calls on the Handler: constants and numbers
// atomically, strings as a BeginString, any number of decoded StringData
// fragments, and an EndString, and containers as balanced Begin/End pairs.
// Values are never reported partially except through this fragmenting, so a
// handler can maintain a faithful prefix of the final document at all times.
// The ast package provides such a handler, along with a driver that turns
// the token stream into a growing value tree:
//
//	p := ast.NewParser(src)
//	for p.Next() {
//	   render(p.Value()) // each state is a valid prefix of the final value
//	}
//	if err := p.Err(); err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// # Errors
//
// Malformed input is reported as a [*LexicalError] or [*StructuralError]
// carrying the position of the offending text. Input that ends mid-value
// fails with an error satisfying errors.Is(err, [ErrUnexpectedEnd]), and
// non-whitespace input after the value fails with [ErrTrailingContent]. The
// grammar is strict JSON: no comments, trailing commas, or other extensions.
package jstream
