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

// Package vcd parses Value Change Dump files as emitted by Verilog and
// VHDL simulators.
//
// Parsing is split in two stages sharing one streaming Lexer. ParseHeader
// consumes the declaration section and returns an immutable Header: the
// signal table, the scope tree (a flat arena with parent links) and the
// $date/$version/$timescale text. NewBodyParser then turns the rest of the
// stream into a pull cursor of Change events, one value change at a time,
// in a single pass over the input.
//
// The parsers are deliberately tolerant of the dialect zoo: unknown
// directives are skipped through their $end, a missing $dumpvars block is
// accepted, narrow vector values are left-extended to the declared width
// (0-fill, or x/z-fill after a leading x/z). Structural problems are not
// forgiven: unbalanced scopes, non-monotonic time markers, unknown
// identifiers and over-wide values abort the parse with a positioned
// error.
//
// Errors carry a Kind with a stable integer code (see ErrCode) so that
// foreign bindings can report them without string matching.
package vcd
