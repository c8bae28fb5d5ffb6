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
	"strconv"
	"strings"
)

// Level is the state of a single bit. Driven levels are non-negative so
// that state buffers exposed to foreign consumers can treat any negative
// value as "not a plain 0/1".
type Level int8

// Bit levels.
const (
	L0 Level = 0  // driven 0
	L1 Level = 1  // driven 1
	LU Level = -1 // uninitialized
	LW Level = -2 // weak unknown
	LZ Level = -3 // high impedance
	LX Level = -4 // unknown

	levelInvalid Level = -5
)

// LevelOf maps a VCD value character to a Level. It returns a negative
// value below LX for characters that are not bit levels.
func LevelOf(c byte) Level {
	switch c {
	case '0':
		return L0
	case '1':
		return L1
	case 'u', 'U':
		return LU
	case 'w', 'W':
		return LW
	case 'z', 'Z':
		return LZ
	case 'x', 'X':
		return LX
	}
	return levelInvalid
}

// Rune returns the canonical (lower case) VCD character for the level.
func (l Level) Rune() rune {
	switch l {
	case L0:
		return '0'
	case L1:
		return '1'
	case LU:
		return 'u'
	case LW:
		return 'w'
	case LZ:
		return 'z'
	case LX:
		return 'x'
	}
	return '?'
}

// ValueKind tags the representation held by a Value.
type ValueKind uint8

// Value kinds. ValueNone is the zero Value, reported for signals that have
// not been assigned yet.
const (
	ValueNone ValueKind = iota
	ValueBits
	ValueReal
	ValueString
)

// Value is a signal value: a bit vector of the signal's declared width, a
// real, or a string, depending on the signal kind.
type Value struct {
	kind ValueKind
	bits []Level
	real float64
	str  string
}

// BitsValue returns a bit-vector Value. The slice is retained as-is.
func BitsValue(bits []Level) Value { return Value{kind: ValueBits, bits: bits} }

// RealValue returns a real-number Value.
func RealValue(f float64) Value { return Value{kind: ValueReal, real: f} }

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: ValueString, str: s} }

// Kind returns the value's representation tag.
func (v Value) Kind() ValueKind { return v.kind }

// Bits returns the bit vector, most significant bit first. It is nil for
// non-vector values. Callers must not modify it.
func (v Value) Bits() []Level { return v.bits }

// Width returns the number of bits, or 0 for non-vector values.
func (v Value) Width() int { return len(v.bits) }

// Real returns the real-number payload.
func (v Value) Real() float64 { return v.real }

// Str returns the string payload.
func (v Value) Str() string { return v.str }

// Bit returns the single level of a 1-bit value, LX otherwise.
func (v Value) Bit() Level {
	if v.kind == ValueBits && len(v.bits) == 1 {
		return v.bits[0]
	}
	return LX
}

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case ValueBits:
		if len(v.bits) != len(o.bits) {
			return false
		}
		for i, b := range v.bits {
			if b != o.bits[i] {
				return false
			}
		}
		return true
	case ValueReal:
		return v.real == o.real
	case ValueString:
		return v.str == o.str
	}
	return true
}

// String renders the value in VCD notation ("1", "b10xz", "r3.14", ...).
func (v Value) String() string {
	switch v.kind {
	case ValueBits:
		if len(v.bits) == 1 {
			return string(v.bits[0].Rune())
		}
		var sb strings.Builder
		sb.WriteByte('b')
		for _, b := range v.bits {
			sb.WriteRune(b.Rune())
		}
		return sb.String()
	case ValueReal:
		return "r" + strconv.FormatFloat(v.real, 'g', -1, 64)
	case ValueString:
		return "s" + v.str
	}
	return "<unset>"
}
