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
	"fmt"
	"strings"
)

// ScopeKind is the declared kind of a $scope block.
type ScopeKind uint8

// Scope kinds. Vendor extensions and SystemVerilog kinds all map to
// ScopeOther rather than failing the parse.
const (
	ScopeModule ScopeKind = iota
	ScopeTask
	ScopeFunction
	ScopeBegin
	ScopeFork
	ScopeOther
)

var scopeKindNames = [...]string{"module", "task", "function", "begin", "fork", "other"}

func (k ScopeKind) String() string {
	if int(k) < len(scopeKindNames) {
		return scopeKindNames[k]
	}
	return "other"
}

func scopeKindOf(name string) ScopeKind {
	switch name {
	case "module":
		return ScopeModule
	case "task":
		return ScopeTask
	case "function":
		return ScopeFunction
	case "begin":
		return ScopeBegin
	case "fork":
		return ScopeFork
	}
	return ScopeOther
}

// Scope is one node of the scope tree. Nodes live in a flat arena owned by
// the Header and reference their parent by index, -1 for top-level scopes.
type Scope struct {
	Kind   ScopeKind
	Name   string
	Parent int
}

// SignalKind is the declared kind of a $var.
type SignalKind uint8

// Signal kinds, covering the IEEE 1364 set. Anything unrecognized maps to
// SigUnknown and is otherwise treated like a wire.
const (
	SigWire SignalKind = iota
	SigReg
	SigInteger
	SigReal
	SigRealtime
	SigParameter
	SigEvent
	SigSupply0
	SigSupply1
	SigTime
	SigTri
	SigTriand
	SigTrior
	SigTrireg
	SigTri0
	SigTri1
	SigWand
	SigWor
	SigString
	SigUnknown
)

var signalKindNames = map[string]SignalKind{
	"wire":      SigWire,
	"reg":       SigReg,
	"integer":   SigInteger,
	"real":      SigReal,
	"realtime":  SigRealtime,
	"parameter": SigParameter,
	"event":     SigEvent,
	"supply0":   SigSupply0,
	"supply1":   SigSupply1,
	"time":      SigTime,
	"tri":       SigTri,
	"triand":    SigTriand,
	"trior":     SigTrior,
	"trireg":    SigTrireg,
	"tri0":      SigTri0,
	"tri1":      SigTri1,
	"wand":      SigWand,
	"wor":       SigWor,
	"string":    SigString,
}

func signalKindOf(name string) SignalKind {
	if k, ok := signalKindNames[name]; ok {
		return k
	}
	return SigUnknown
}

func (k SignalKind) String() string {
	for n, v := range signalKindNames {
		if v == k {
			return n
		}
	}
	return "unknown"
}

// widthless reports whether value changes for this kind bypass the
// bit-width check.
func (k SignalKind) widthless() bool {
	return k == SigReal || k == SigRealtime || k == SigString
}

// Range is the optional [msb:lsb] suffix of a $var declaration. A single
// bit select [n] has Msb == Lsb.
type Range struct {
	Msb, Lsb int
}

// Signal is one declared variable. Signals are created during header
// parsing and immutable afterwards.
//
// Handle is the signal's position in declaration order. Var is the dense
// index of the signal's value slot: VCD permits several declarations to
// share a short identifier (a clock wired through many modules, say), in
// which case they alias a single slot and Var is the same for all of them.
type Signal struct {
	Handle int
	Var    int
	ID     string
	Name   string
	Kind   SignalKind
	Width  int
	Range  *Range
	Scope  int // index into the Header's scope arena, -1 for top level
}

// TimeUnit is the unit part of a $timescale declaration.
type TimeUnit uint8

// Time units, largest first.
const (
	Second TimeUnit = iota
	Millisecond
	Microsecond
	Nanosecond
	Picosecond
	Femtosecond
)

var timeUnitNames = [...]string{"s", "ms", "us", "ns", "ps", "fs"}

func (u TimeUnit) String() string {
	if int(u) < len(timeUnitNames) {
		return timeUnitNames[u]
	}
	return "?"
}

// Timescale scales integer timestamps to physical time: each #t step is
// Mag units of Unit. Mag is 1, 10 or 100.
type Timescale struct {
	Mag  int
	Unit TimeUnit
}

func (t Timescale) String() string {
	if t.Mag == 0 {
		return "none"
	}
	return fmt.Sprintf("%d%s", t.Mag, t.Unit)
}

// Header is the parsed declaration section of a dump: the signal table,
// the scope arena and the free-text directives. It is immutable once
// ParseHeader returns.
type Header struct {
	Date      string
	Version   string
	Comment   string
	Timescale Timescale

	signals    []Signal
	scopes     []Scope
	varOf      map[string]int // short id -> value slot
	widthOf    []int          // per slot, declared width
	kindOf     []SignalKind   // per slot, declared kind
	bodyOffset int64
}

// Signals returns all declared signals in declaration order. Callers must
// not modify the slice.
func (h *Header) Signals() []Signal { return h.signals }

// Scopes returns the scope arena. Callers must not modify the slice.
func (h *Header) Scopes() []Scope { return h.scopes }

// NumVars returns the number of distinct value slots, which is at most
// len(Signals()) and smaller when identifiers are aliased.
func (h *Header) NumVars() int { return len(h.widthOf) }

// SignalByID returns the first declared signal bound to the given short
// identifier.
func (h *Header) SignalByID(id string) (*Signal, bool) {
	v, ok := h.varOf[id]
	if !ok {
		return nil, false
	}
	for i := range h.signals {
		if h.signals[i].Var == v {
			return &h.signals[i], true
		}
	}
	return nil, false
}

// FullName returns the signal's hierarchical name, scope names joined
// with dots.
func (h *Header) FullName(s *Signal) string {
	parts := h.ScopePath(s)
	parts = append(parts, s.Name)
	return strings.Join(parts, ".")
}

// ScopePath returns the scope names enclosing s, outermost first.
func (h *Header) ScopePath(s *Signal) []string {
	var rev []string
	for i := s.Scope; i >= 0; i = h.scopes[i].Parent {
		rev = append(rev, h.scopes[i].Name)
	}
	parts := make([]string, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		parts = append(parts, rev[i])
	}
	return parts
}

// BodyOffset returns the absolute byte offset just past the header's
// closing $end, where the value-change section starts. A reader seeked to
// this offset can feed a BodyParser directly.
func (h *Header) BodyOffset() int64 { return h.bodyOffset }
