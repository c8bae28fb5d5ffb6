// This file is part of wave - https://github.com/thomashk0/wave
//
// Copyright 2020 Thomas Hiscock <thomashk000@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vcd

import (
	"io"

	"github.com/thomashk0/wave/internal/wvi"
)

// TokenKind discriminates the three syntactic shapes of a VCD token.
// Finer classification (value-change sigils, numbers) is contextual: the
// same word is a vector change in the body and a plain name in the header,
// so it is left to the parsers.
type TokenKind uint8

const (
	TokWord    TokenKind = iota // any bare word: names, numbers, value changes
	TokKeyword                  // $-prefixed directive, $end included
	TokTime                     // #-prefixed time marker
)

// Token is a single whitespace-delimited token. Text points into a buffer
// owned by the Lexer and is only valid until the next call to Next; parsers
// that keep token text must copy it.
type Token struct {
	Kind TokenKind
	Text []byte
	Pos  Pos
}

// A Lexer splits a VCD stream into tokens. VCD is whitespace-separated at
// the token level (tokens freely span or share lines), so the scan loop is
// a plain byte loop over a chunked buffer with no per-token allocation.
type Lexer struct {
	b    *wvi.Buffer
	buf  []byte // reused token storage
	line int
}

// NewLexer returns a Lexer reading from r with the default chunk size.
func NewLexer(r io.Reader) *Lexer {
	return NewLexerSize(r, wvi.DefaultChunkSize)
}

// NewLexerSize is like NewLexer with an explicit read chunk size, mostly
// useful to exercise refill boundaries in tests.
func NewLexerSize(r io.Reader, size int) *Lexer {
	return &Lexer{
		b:    wvi.NewBuffer(r, size),
		buf:  make([]byte, 0, 64),
		line: 1,
	}
}

// Offset returns the absolute byte offset of the next unread byte. After
// the header's closing $end it is the resume point of the body section.
func (lx *Lexer) Offset() int64 { return lx.b.Offset() }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

// Next returns the next token, or io.EOF once the input is exhausted.
// Any byte outside the ASCII range is a LexError: the format is ASCII by
// definition and a high byte means the stream is not a VCD dump at all.
func (lx *Lexer) Next() (Token, error) {
	var c byte
	var err error
	for {
		c, err = lx.b.ReadByte()
		if err != nil {
			if err != io.EOF {
				return Token{}, ioErr(err)
			}
			return Token{}, io.EOF
		}
		if !isSpace(c) {
			break
		}
		if c == '\n' {
			lx.line++
		}
	}
	if c >= 0x80 {
		return Token{}, lexErr(Pos{Line: lx.line, Offset: lx.b.Offset() - 1}, "",
			"non-ASCII byte 0x%02x", c)
	}
	tok := Token{
		Kind: TokWord,
		Pos:  Pos{Line: lx.line, Offset: lx.b.Offset() - 1},
	}
	switch c {
	case '$':
		tok.Kind = TokKeyword
	case '#':
		tok.Kind = TokTime
	}
	lx.buf = append(lx.buf[:0], c)
	for {
		c, err = lx.b.ReadByte()
		if err != nil {
			if err != io.EOF {
				return Token{}, ioErr(err)
			}
			break
		}
		if isSpace(c) {
			if c == '\n' {
				lx.line++
			}
			break
		}
		if c >= 0x80 {
			return Token{}, lexErr(Pos{Line: lx.line, Offset: lx.b.Offset() - 1}, "",
				"non-ASCII byte 0x%02x", c)
		}
		lx.buf = append(lx.buf, c)
	}
	tok.Text = lx.buf
	return tok, nil
}
