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

// Package sim replays parsed waveform dumps as a time-stepped simulation.
//
// Open (or New, for an arbitrary stream) builds a Waveform from a VCD
// dump. By default the whole change history is materialized into
// per-signal timelines: any number of independent simulation States can
// then advance through time, seek backwards, or ask for a value at an
// arbitrary timestamp, each query a binary search away. With the
// Streaming option nothing is retained and a single State replays the
// file in one cheap forward pass; that is the mode for dumps too large to
// hold in memory.
//
// A State answers "what is signal X now" via ValueOf after AdvanceTo or
// Step. Both modes apply changes in non-decreasing time order with ties
// broken by file order, so for any monotonically reached time the two
// agree on every signal's value.
package sim
