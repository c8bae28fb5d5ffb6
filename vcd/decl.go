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
	"strings"

	"github.com/pkg/errors"
)

// ParseHeader consumes tokens through `$enddefinitions $end` and returns
// the declaration section as an immutable Header.
//
// Unknown directives ($attrbegin and friends, vendor keywords) are skipped
// through their $end rather than rejected: simulators disagree wildly on
// header extensions and a reader that chokes on them is useless in
// practice. Structural problems (unbalanced scopes, truncated input) and
// conflicting redeclarations still fail the parse.
func ParseHeader(lx *Lexer) (*Header, error) {
	h := &Header{varOf: make(map[string]int)}
	var stack []int // indices of open scopes in h.scopes
	for {
		tok, err := lx.Next()
		if err == io.EOF {
			return nil, structErr(Pos{}, "missing $enddefinitions")
		}
		if err != nil {
			return nil, err
		}
		if tok.Kind != TokKeyword {
			return nil, structErr(tok.Pos, "expected directive in header, got %q", tok.Text)
		}
		switch string(tok.Text) {
		case "$enddefinitions":
			if err := expectEnd(lx, tok); err != nil {
				return nil, err
			}
			if n := len(stack); n != 0 {
				return nil, structErr(tok.Pos, "unbalanced scope: %d scope(s) still open at $enddefinitions", n)
			}
			h.bodyOffset = lx.Offset()
			return h, nil
		case "$scope":
			words, err := directiveWords(lx, tok)
			if err != nil {
				return nil, err
			}
			if len(words) != 2 {
				return nil, structErr(tok.Pos, "malformed $scope: want kind and name, got %d word(s)", len(words))
			}
			parent := -1
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			h.scopes = append(h.scopes, Scope{Kind: scopeKindOf(words[0]), Name: words[1], Parent: parent})
			stack = append(stack, len(h.scopes)-1)
		case "$upscope":
			if err := expectEnd(lx, tok); err != nil {
				return nil, err
			}
			if len(stack) == 0 {
				return nil, structErr(tok.Pos, "unbalanced $upscope: no open scope")
			}
			stack = stack[:len(stack)-1]
		case "$var":
			words, err := directiveWords(lx, tok)
			if err != nil {
				return nil, err
			}
			if err := h.addVar(words, tok.Pos, stack); err != nil {
				return nil, err
			}
		case "$timescale":
			words, err := directiveWords(lx, tok)
			if err != nil {
				return nil, err
			}
			ts, ok := parseTimescale(words)
			if !ok {
				return nil, structErr(tok.Pos, "malformed $timescale %q", strings.Join(words, " "))
			}
			h.Timescale = ts
		case "$date":
			h.Date, err = directiveText(lx, tok)
			if err != nil {
				return nil, err
			}
		case "$version":
			h.Version, err = directiveText(lx, tok)
			if err != nil {
				return nil, err
			}
		case "$comment":
			h.Comment, err = directiveText(lx, tok)
			if err != nil {
				return nil, err
			}
		default:
			if _, err := directiveWords(lx, tok); err != nil {
				return nil, err
			}
		}
	}
}

// addVar registers one $var declaration. words holds everything between
// $var and its $end.
func (h *Header) addVar(words []string, pos Pos, stack []int) error {
	if len(words) < 4 {
		return structErr(pos, "malformed $var: want kind, width, id and name, got %d word(s)", len(words))
	}
	width, err := strconv.Atoi(words[1])
	if err != nil || width < 1 {
		return structErr(pos, "malformed $var: bad width %q", words[1])
	}
	kind := signalKindOf(words[0])
	id := words[2]

	// The reference name may carry its bit range glued on ("data[7:0]") or
	// split over any number of tokens ("data [7 : 0]").
	name := words[3]
	rangeText := strings.Join(words[4:], "")
	if i := strings.IndexByte(name, '['); i >= 0 {
		rangeText = name[i:] + rangeText
		name = name[:i]
	}
	var rng *Range
	if rangeText != "" {
		rng, err = parseRange(rangeText)
		if err != nil {
			return structErr(pos, "malformed $var range %q", rangeText)
		}
	}

	v, seen := h.varOf[id]
	if seen {
		// Identifier reuse is legal (aliased clocks are everywhere) as long
		// as the widths agree.
		if h.widthOf[v] != width {
			return semErr(pos, id, "identifier redeclared with width %d, previously %d", width, h.widthOf[v])
		}
	} else {
		v = len(h.widthOf)
		h.varOf[id] = v
		h.widthOf = append(h.widthOf, width)
		h.kindOf = append(h.kindOf, kind)
	}

	scope := -1
	if len(stack) > 0 {
		scope = stack[len(stack)-1]
	}
	h.signals = append(h.signals, Signal{
		Handle: len(h.signals),
		Var:    v,
		ID:     id,
		Name:   name,
		Kind:   kind,
		Width:  width,
		Range:  rng,
		Scope:  scope,
	})
	return nil
}

func parseRange(s string) (*Range, error) {
	if len(s) < 3 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, errInvalidRange
	}
	inner := s[1 : len(s)-1]
	if i := strings.IndexByte(inner, ':'); i >= 0 {
		msb, err := strconv.Atoi(inner[:i])
		if err != nil {
			return nil, err
		}
		lsb, err := strconv.Atoi(inner[i+1:])
		if err != nil {
			return nil, err
		}
		return &Range{Msb: msb, Lsb: lsb}, nil
	}
	n, err := strconv.Atoi(inner)
	if err != nil {
		return nil, err
	}
	return &Range{Msb: n, Lsb: n}, nil
}

var errInvalidRange = errors.New("invalid bit range")

func parseTimescale(words []string) (Timescale, bool) {
	s := strings.Join(words, "")
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	mag, err := strconv.Atoi(s[:i])
	if err != nil || (mag != 1 && mag != 10 && mag != 100) {
		return Timescale{}, false
	}
	unit, ok := timeUnitOf(s[i:])
	if !ok {
		return Timescale{}, false
	}
	return Timescale{Mag: mag, Unit: unit}, true
}

func timeUnitOf(s string) (TimeUnit, bool) {
	switch s {
	case "s":
		return Second, true
	case "ms":
		return Millisecond, true
	case "us":
		return Microsecond, true
	case "ns":
		return Nanosecond, true
	case "ps":
		return Picosecond, true
	case "fs":
		return Femtosecond, true
	}
	return 0, false
}

// directiveWords collects the words between a directive keyword and its
// matching $end. Token text is copied, so the result outlives the lexer's
// buffer.
func directiveWords(lx *Lexer, at Token) ([]string, error) {
	var words []string
	name := string(at.Text)
	for {
		tok, err := lx.Next()
		if err == io.EOF {
			return nil, lexErr(at.Pos, name, "unterminated directive")
		}
		if err != nil {
			return nil, err
		}
		if tok.Kind == TokKeyword && string(tok.Text) == "$end" {
			return words, nil
		}
		words = append(words, string(tok.Text))
	}
}

// directiveText is directiveWords joined back into free text, for $date,
// $version and $comment payloads.
func directiveText(lx *Lexer, at Token) (string, error) {
	words, err := directiveWords(lx, at)
	if err != nil {
		return "", err
	}
	return strings.Join(words, " "), nil
}

// expectEnd consumes the single $end that must follow directives taking
// no arguments.
func expectEnd(lx *Lexer, at Token) error {
	name := string(at.Text) // at.Text dies on the next lexer call
	tok, err := lx.Next()
	if err == io.EOF {
		return lexErr(at.Pos, name, "unterminated directive")
	}
	if err != nil {
		return err
	}
	if tok.Kind != TokKeyword || string(tok.Text) != "$end" {
		return structErr(tok.Pos, "expected $end after %s, got %q", name, tok.Text)
	}
	return nil
}
