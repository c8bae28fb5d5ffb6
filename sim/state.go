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

package sim

import (
	"io"
	"sort"

	"github.com/pkg/errors"

	"github.com/thomashk0/wave/vcd"
)

// Status is the simulation state machine's state.
type Status uint8

// Simulation statuses. A zero State is Uninitialized; Waveform.Simulate
// returns Ready states; Advancing is only observable from a callback
// while changes are being applied; Exhausted means the event source is
// drained, with the final snapshot still queryable.
const (
	Uninitialized Status = iota
	Ready
	Advancing
	Exhausted
)

var statusNames = [...]string{"uninitialized", "ready", "advancing", "exhausted"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "invalid"
}

// State is one replay of a waveform: a current time plus the value of
// every signal at that time. States referencing the same materialized
// Waveform are fully independent; each mutates only itself.
type State struct {
	w      *Waveform
	status Status
	time   uint64
	vals   []vcd.Value // per value slot
	set    []bool
	cur    []int // per slot: next timeline event, materialized mode
}

// Time returns the current simulated time.
func (s *State) Time() uint64 { return s.time }

// Status returns the state machine's current status.
func (s *State) Status() Status { return s.status }

// ValueOf returns the current value of the signal with the given handle.
// ok is false while the signal is still unset, that is before the first
// change event touching it has been applied (including a signal excluded
// by KeepSignals, which stays unset forever).
func (s *State) ValueOf(handle int) (v vcd.Value, ok bool) {
	slot := s.w.h.Signals()[handle].Var
	if !s.set[slot] {
		return vcd.Value{}, false
	}
	return s.vals[slot], true
}

// AdvanceTo applies every change with timestamp <= t that is not applied
// yet, in non-decreasing time order with ties in file order, and sets the
// current time to t. Advancing to the current time again is a no-op, so
// the call is idempotent.
//
// Moving backwards is only possible on a materialized waveform, where the
// state is rebuilt from the timelines; in streaming mode a backward t is
// a TemporalError since the history is gone.
func (s *State) AdvanceTo(t uint64) error {
	if s.status == Uninitialized {
		return errors.New("simulation state is not initialized")
	}
	if s.w.mode == ModeStreaming {
		if t < s.time {
			return vcd.TemporalError("cannot seek back to %d from %d: streaming mode retains no history", t, s.time)
		}
		s.status = Advancing
		err := s.w.body.DrainTo(t, s.apply)
		s.time = t
		switch {
		case err == io.EOF:
			s.status = Exhausted
		case err != nil:
			s.status = Ready
			return err
		default:
			s.status = Ready
		}
		return nil
	}
	if t < s.time {
		s.rewind(t)
		return nil
	}
	s.status = Advancing
	for slot, tl := range s.w.tl {
		i := s.cur[slot]
		for i < len(tl) && tl[i].T <= t {
			s.vals[slot] = tl[i].V
			s.set[slot] = true
			i++
		}
		s.cur[slot] = i
	}
	s.time = t
	s.status = s.drainedStatus()
	return nil
}

// Step advances to the next pending timestamp, applying every change
// scheduled there, and returns it. It returns io.EOF, leaving the final
// snapshot in place, once no change is pending.
func (s *State) Step() (uint64, error) {
	if s.status == Uninitialized {
		return 0, errors.New("simulation state is not initialized")
	}
	if s.w.mode == ModeStreaming {
		c, err := s.w.body.Peek()
		if err == io.EOF {
			s.status = Exhausted
			return s.time, io.EOF
		}
		if err != nil {
			return s.time, err
		}
		return c.Time, s.AdvanceTo(c.Time)
	}
	next, ok := s.nextEventTime()
	if !ok {
		s.status = Exhausted
		return s.time, io.EOF
	}
	return next, s.AdvanceTo(next)
}

func (s *State) apply(c vcd.Change) {
	if s.w.keep != nil && !s.w.keep[c.Var] {
		return
	}
	s.vals[c.Var] = c.Value
	s.set[c.Var] = true
}

// rewind rebuilds the snapshot at time t by binary-searching every
// timeline, the random-access path of the engine.
func (s *State) rewind(t uint64) {
	s.status = Advancing
	for slot, tl := range s.w.tl {
		i := sort.Search(len(tl), func(i int) bool { return tl[i].T > t })
		if i > 0 {
			s.vals[slot] = tl[i-1].V
			s.set[slot] = true
		} else {
			s.vals[slot] = vcd.Value{}
			s.set[slot] = false
		}
		s.cur[slot] = i
	}
	s.time = t
	s.status = s.drainedStatus()
}

func (s *State) drainedStatus() Status {
	for slot, tl := range s.w.tl {
		if s.cur[slot] < len(tl) {
			return Ready
		}
	}
	return Exhausted
}

func (s *State) nextEventTime() (uint64, bool) {
	var next uint64
	found := false
	for slot, tl := range s.w.tl {
		if i := s.cur[slot]; i < len(tl) {
			if !found || tl[i].T < next {
				next = tl[i].T
				found = true
			}
		}
	}
	return next, found
}
