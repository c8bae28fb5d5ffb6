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

import "fmt"

// Kind classifies parse and simulation errors. The numeric values are
// stable: they double as the status codes reported across the C boundary,
// so they must never be renumbered.
type Kind int

// Error kinds. KindNone is returned by ErrKind for errors that did not
// originate in this package.
const (
	KindNone       Kind = 0
	KindIO         Kind = 1 // underlying stream failure
	KindLex        Kind = 2 // malformed token
	KindStructural Kind = 3 // unbalanced scope, missing $enddefinitions
	KindSemantic   Kind = 4 // unknown identifier, width or redeclaration conflict
	KindTemporal   Kind = 5 // non-monotonic #time, backward seek
)

// Code returns the stable integer status code for the kind.
func (k Kind) Code() int { return int(k) }

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io error"
	case KindLex:
		return "lex error"
	case KindStructural:
		return "structural error"
	case KindSemantic:
		return "semantic error"
	case KindTemporal:
		return "temporal error"
	}
	return "unknown error"
}

// Pos locates a token in the input stream. Offset is an absolute byte
// offset, usable as a resume point; Line is 1-based.
type Pos struct {
	Line   int
	Offset int64
}

// IsValid reports whether the position was actually set.
func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	return fmt.Sprintf("line %d, offset %d", p.Line, p.Offset)
}

// Error is the concrete error type produced by the lexer and parsers. Tok
// holds the offending token text when one is available.
type Error struct {
	Kind Kind
	Pos  Pos
	Msg  string
	Tok  string
	Err  error // wrapped cause, set for KindIO
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Tok != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Tok)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// ErrKind returns the Kind of err, unwrapping any github.com/pkg/errors or
// stdlib wrapping on the way. It returns KindNone for foreign errors.
func ErrKind(err error) Kind {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind
		}
		switch x := err.(type) {
		case interface{ Cause() error }:
			err = x.Cause()
		case interface{ Unwrap() error }:
			err = x.Unwrap()
		default:
			return KindNone
		}
	}
	return KindNone
}

// ErrCode maps err to its stable status code: 0 for nil, the kind's code
// for errors from this package and KindIO's code for anything else.
func ErrCode(err error) int {
	if err == nil {
		return 0
	}
	if k := ErrKind(err); k != KindNone {
		return k.Code()
	}
	return KindIO.Code()
}

func lexErr(pos Pos, tok string, format string, args ...interface{}) *Error {
	return &Error{Kind: KindLex, Pos: pos, Tok: tok, Msg: fmt.Sprintf(format, args...)}
}

func structErr(pos Pos, format string, args ...interface{}) *Error {
	return &Error{Kind: KindStructural, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func semErr(pos Pos, tok string, format string, args ...interface{}) *Error {
	return &Error{Kind: KindSemantic, Pos: pos, Tok: tok, Msg: fmt.Sprintf(format, args...)}
}

func tempErr(pos Pos, format string, args ...interface{}) *Error {
	return &Error{Kind: KindTemporal, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func ioErr(err error) *Error {
	return &Error{Kind: KindIO, Err: err}
}

// TemporalError builds a TemporalError with no positional context. It is
// exported for the sim package, which detects backward seeks long after
// the parser's positions are gone.
func TemporalError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindTemporal, Msg: fmt.Sprintf(format, args...)}
}
