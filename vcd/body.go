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
	"strconv"
)

// Change is one value-change event: at time Time, the value slot Var took
// Value. Var indexes the Header's value slots (Signal.Var), not the signal
// list, so aliased identifiers produce a single change.
type Change struct {
	Time  uint64
	Var   int
	Value Value
}

// BodyParser is a pull cursor over the value-change section of a dump. It
// yields changes in file order, one at a time, and never rewinds.
//
// The section's $dumpvars block (when present) simply yields its changes
// at the current time, which makes it the initial snapshot at time 0.
// Dumps that skip $dumpvars and open with a #time marker are accepted.
type BodyParser struct {
	lx      *Lexer
	h       *Header
	time    uint64
	started bool
	pending Change
	hasPend bool
}

// NewBodyParser returns a cursor over the value changes readable from lx,
// which must be positioned at the start of the body section (as left by
// ParseHeader, or seeked to Header.BodyOffset).
func NewBodyParser(lx *Lexer, h *Header) *BodyParser {
	return &BodyParser{lx: lx, h: h}
}

// Time returns the current timestamp, that of the last #marker read.
func (p *BodyParser) Time() uint64 { return p.time }

// Next returns the next change in file order, or io.EOF once the section
// is exhausted. Any other error is fatal to the cursor: a desynchronized
// change stream cannot be trusted, so there is no recovery.
func (p *BodyParser) Next() (Change, error) {
	if p.hasPend {
		p.hasPend = false
		return p.pending, nil
	}
	return p.scan()
}

// Peek returns what Next would return, without consuming it.
func (p *BodyParser) Peek() (Change, error) {
	if !p.hasPend {
		c, err := p.scan()
		if err != nil {
			return Change{}, err
		}
		p.pending, p.hasPend = c, true
	}
	return p.pending, nil
}

// DrainTo feeds fn every remaining change with Time <= t, in file order.
// It returns io.EOF when the section ends before t is reached and nil when
// a later change is left pending.
func (p *BodyParser) DrainTo(t uint64, fn func(Change)) error {
	for {
		c, err := p.Peek()
		if err != nil {
			return err
		}
		if c.Time > t {
			return nil
		}
		p.hasPend = false
		fn(c)
	}
}

func (p *BodyParser) scan() (Change, error) {
	for {
		tok, err := p.lx.Next()
		if err != nil {
			return Change{}, err
		}
		switch tok.Kind {
		case TokTime:
			t, err := strconv.ParseUint(string(tok.Text[1:]), 10, 64)
			if err != nil {
				return Change{}, lexErr(tok.Pos, string(tok.Text), "malformed time marker")
			}
			if p.started && t < p.time {
				return Change{}, tempErr(tok.Pos, "non-monotonic time marker #%d after #%d", t, p.time)
			}
			p.time = t
			p.started = true
		case TokKeyword:
			switch string(tok.Text) {
			case "$end", "$dumpvars", "$dumpall", "$dumpon", "$dumpoff":
				// Dump blocks carry plain value changes at the current time;
				// the block markers themselves need no action.
				p.started = true
			default:
				if _, err := directiveWords(p.lx, tok); err != nil {
					return Change{}, err
				}
			}
		case TokWord:
			return p.change(tok)
		}
	}
}

// change decodes one value-change token (plus its trailing identifier for
// vector, real and string forms).
func (p *BodyParser) change(tok Token) (Change, error) {
	text := tok.Text
	switch c := text[0]; c {
	case 'b', 'B':
		bits := make([]Level, 0, len(text)-1)
		for _, b := range text[1:] {
			l := LevelOf(b)
			if l == levelInvalid {
				return Change{}, lexErr(tok.Pos, string(text), "invalid bit %q in vector value", b)
			}
			bits = append(bits, l)
		}
		if len(bits) == 0 {
			return Change{}, lexErr(tok.Pos, string(text), "empty vector value")
		}
		v, pos, err := p.ident(tok)
		if err != nil {
			return Change{}, err
		}
		if !p.h.kindOf[v].widthless() {
			w := p.h.widthOf[v]
			if len(bits) > w {
				return Change{}, semErr(pos, "b"+levelString(bits), "vector wider than declared width %d", w)
			}
			bits = extend(bits, w)
		}
		return Change{Time: p.time, Var: v, Value: BitsValue(bits)}, nil
	case 'r', 'R':
		f, err := strconv.ParseFloat(string(text[1:]), 64)
		if err != nil {
			return Change{}, lexErr(tok.Pos, string(text), "malformed real value")
		}
		v, _, err := p.ident(tok)
		if err != nil {
			return Change{}, err
		}
		return Change{Time: p.time, Var: v, Value: RealValue(f)}, nil
	case 's', 'S':
		s := string(text[1:])
		v, _, err := p.ident(tok)
		if err != nil {
			return Change{}, err
		}
		return Change{Time: p.time, Var: v, Value: StringValue(s)}, nil
	default:
		l := LevelOf(c)
		if l == levelInvalid {
			return Change{}, lexErr(tok.Pos, string(text), "unexpected token in value-change section")
		}
		if len(text) < 2 {
			return Change{}, lexErr(tok.Pos, string(text), "scalar change without identifier")
		}
		v, err := p.resolve(text[1:], tok.Pos)
		if err != nil {
			return Change{}, err
		}
		bits := []Level{l}
		if !p.h.kindOf[v].widthless() {
			bits = extend(bits, p.h.widthOf[v])
		}
		return Change{Time: p.time, Var: v, Value: BitsValue(bits)}, nil
	}
}

// ident reads the identifier token that follows vector, real and string
// values and resolves it. Short identifiers may use any printable
// character, '#' and '$' included, so the token's shape is irrelevant
// here. Callers must be done with at.Text: reading the identifier
// recycles the lexer's token buffer.
func (p *BodyParser) ident(at Token) (int, Pos, error) {
	tok, err := p.lx.Next()
	if err == io.EOF {
		return 0, at.Pos, lexErr(at.Pos, "", "truncated value change")
	}
	if err != nil {
		return 0, at.Pos, err
	}
	v, err := p.resolve(tok.Text, tok.Pos)
	return v, tok.Pos, err
}

func (p *BodyParser) resolve(id []byte, pos Pos) (int, error) {
	v, ok := p.h.varOf[string(id)]
	if !ok {
		return 0, semErr(pos, string(id), "unknown identifier")
	}
	return v, nil
}

// extend left-extends bits to the given width following the IEEE 1364
// rule: a leading x extends with x, a leading z with z, anything else
// (0 and 1 included) with 0.
func extend(bits []Level, width int) []Level {
	if len(bits) >= width {
		return bits
	}
	fill := L0
	switch bits[0] {
	case LX:
		fill = LX
	case LZ:
		fill = LZ
	}
	out := make([]Level, width)
	n := width - len(bits)
	for i := 0; i < n; i++ {
		out[i] = fill
	}
	copy(out[n:], bits)
	return out
}

func levelString(bits []Level) string {
	b := make([]byte, len(bits))
	for i, l := range bits {
		b[i] = byte(l.Rune())
	}
	return string(b)
}
