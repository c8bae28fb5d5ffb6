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

package sim_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomashk0/wave/sim"
	"github.com/thomashk0/wave/vcd"
)

// Handles: 0 = clk ("!"), 1 = data ("\"").
const testDump = `$timescale 1ns $end
$scope module top $end
$var wire 1 ! clk $end
$var wire 8 " data $end
$upscope $end
$enddefinitions $end
$dumpvars
0!
$end
#5
1!
#10
0!
b1010 "
`

func open(t *testing.T, src string, opts ...sim.Option) *sim.Waveform {
	t.Helper()
	w, err := sim.New(strings.NewReader(src), opts...)
	require.NoError(t, err)
	return w
}

func value(t *testing.T, s *sim.State, handle int) string {
	t.Helper()
	v, ok := s.ValueOf(handle)
	if !ok {
		return "unset"
	}
	return v.String()
}

func TestWaveform_materialize(t *testing.T) {
	w := open(t, testDump)
	require.Len(t, w.Signals(), 2)
	assert.Equal(t, sim.ModeMaterialized, w.Mode())
	assert.Equal(t, "1ns", w.Header().Timescale.String())

	tl := w.Timeline(0)
	require.Len(t, tl, 3)
	assert.Equal(t, uint64(0), tl[0].T)
	assert.Equal(t, uint64(5), tl[1].T)
	assert.Equal(t, uint64(10), tl[2].T)

	for _, tt := range []struct {
		t    uint64
		want string
	}{
		{0, "0"}, {4, "0"}, {5, "1"}, {7, "1"}, {10, "0"}, {12, "0"},
	} {
		v, ok := w.ValueAt(0, tt.t)
		require.True(t, ok, "t=%d", tt.t)
		assert.Equal(t, tt.want, v.String(), "t=%d", tt.t)
	}
	_, ok := w.ValueAt(1, 7) // data only changes at #10
	assert.False(t, ok)
}

// Two changes of one signal at one timestamp: the later one wins, and the
// timeline itself must hold a single entry for that timestamp.
func TestWaveform_lastWriteWins(t *testing.T) {
	w := open(t, `$var wire 1 ! clk $end
$enddefinitions $end
$dumpvars
0!
$end
#5
0!
1!
`)
	tl := w.Timeline(0)
	require.Len(t, tl, 2)
	assert.Equal(t, uint64(5), tl[1].T)
	assert.Equal(t, "1", tl[1].V.String())
}

func TestState_advance(t *testing.T) {
	w := open(t, testDump)
	s, err := w.Simulate()
	require.NoError(t, err)
	assert.Equal(t, sim.Ready, s.Status())

	// unset before the initial snapshot is applied
	assert.Equal(t, "unset", value(t, s, 0))

	for _, tt := range []struct {
		t    uint64
		want string
	}{
		{0, "0"}, {7, "1"}, {12, "0"},
	} {
		require.NoError(t, s.AdvanceTo(tt.t))
		assert.Equal(t, tt.want, value(t, s, 0), "t=%d", tt.t)
		assert.Equal(t, tt.t, s.Time())
	}
	assert.Equal(t, sim.Exhausted, s.Status())
	assert.Equal(t, "b00001010", value(t, s, 1))
}

func TestState_advanceIdempotent(t *testing.T) {
	for _, opts := range [][]sim.Option{nil, {sim.Streaming()}} {
		w := open(t, testDump, opts...)
		s, err := w.Simulate()
		require.NoError(t, err)

		require.NoError(t, s.AdvanceTo(7))
		first := value(t, s, 0)
		require.NoError(t, s.AdvanceTo(7))
		assert.Equal(t, first, value(t, s, 0))
		assert.Equal(t, uint64(7), s.Time())
	}
}

func TestState_unsetBeforeFirstChange(t *testing.T) {
	w := open(t, testDump)
	s, err := w.Simulate()
	require.NoError(t, err)

	require.NoError(t, s.AdvanceTo(7))
	_, ok := s.ValueOf(1)
	assert.False(t, ok, "data has no change before #10")

	require.NoError(t, s.AdvanceTo(10))
	v, ok := s.ValueOf(1)
	require.True(t, ok)
	assert.Equal(t, "b00001010", v.String())
}

// Both retention modes must answer identically for monotonically
// increasing times.
func TestState_modesAgree(t *testing.T) {
	wm := open(t, testDump)
	ws := open(t, testDump, sim.Streaming())
	assert.Equal(t, sim.ModeStreaming, ws.Mode())

	sm, err := wm.Simulate()
	require.NoError(t, err)
	ss, err := ws.Simulate()
	require.NoError(t, err)

	for _, at := range []uint64{0, 3, 5, 7, 10, 42} {
		require.NoError(t, sm.AdvanceTo(at))
		require.NoError(t, ss.AdvanceTo(at))
		for h := range wm.Signals() {
			assert.Equal(t, value(t, sm, h), value(t, ss, h), "t=%d handle=%d", at, h)
		}
	}
}

func TestState_streamingBackwardSeek(t *testing.T) {
	w := open(t, testDump, sim.Streaming())
	s, err := w.Simulate()
	require.NoError(t, err)

	require.NoError(t, s.AdvanceTo(7))
	err = s.AdvanceTo(3)
	require.Error(t, err)
	assert.Equal(t, vcd.KindTemporal, vcd.ErrKind(err))
	// the failed seek must leave the state untouched
	assert.Equal(t, uint64(7), s.Time())
	assert.Equal(t, "1", value(t, s, 0))
}

func TestState_materializedBackwardSeek(t *testing.T) {
	w := open(t, testDump)
	s, err := w.Simulate()
	require.NoError(t, err)

	require.NoError(t, s.AdvanceTo(12))
	assert.Equal(t, "0", value(t, s, 0))

	require.NoError(t, s.AdvanceTo(7))
	assert.Equal(t, "1", value(t, s, 0))
	assert.Equal(t, "unset", value(t, s, 1))

	require.NoError(t, s.AdvanceTo(0))
	assert.Equal(t, "0", value(t, s, 0))

	// forward again after the rewind
	require.NoError(t, s.AdvanceTo(10))
	assert.Equal(t, "0", value(t, s, 0))
	assert.Equal(t, "b00001010", value(t, s, 1))
}

func TestState_step(t *testing.T) {
	for _, opts := range [][]sim.Option{nil, {sim.Streaming()}} {
		w := open(t, testDump, opts...)
		s, err := w.Simulate()
		require.NoError(t, err)

		var steps []uint64
		for {
			at, err := s.Step()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			steps = append(steps, at)
		}
		assert.Equal(t, []uint64{0, 5, 10}, steps)
		assert.Equal(t, sim.Exhausted, s.Status())
		// final snapshot still queryable
		assert.Equal(t, "0", value(t, s, 0))
		assert.Equal(t, "b00001010", value(t, s, 1))
	}
}

func TestWaveform_streamingSingleUse(t *testing.T) {
	w := open(t, testDump, sim.Streaming())
	_, err := w.Simulate()
	require.NoError(t, err)
	_, err = w.Simulate()
	assert.Error(t, err)
}

// A body error surfaces, but the header and the changes before the error
// stay available.
func TestWaveform_partialAfterBodyError(t *testing.T) {
	w, err := sim.New(strings.NewReader(`$var wire 1 ! clk $end
$enddefinitions $end
#0
0!
#5
1?
`))
	require.Error(t, err)
	assert.Equal(t, vcd.KindSemantic, vcd.ErrKind(err))
	require.NotNil(t, w)
	require.Len(t, w.Signals(), 1)
	assert.Equal(t, "clk", w.Signals()[0].Name)
	require.Len(t, w.Timeline(0), 1)
	assert.Equal(t, uint64(0), w.Timeline(0)[0].T)
}

func TestKeepSignals(t *testing.T) {
	w := open(t, testDump, sim.KeepSignals("!"))
	s, err := w.Simulate()
	require.NoError(t, err)

	require.NoError(t, s.AdvanceTo(10))
	assert.Equal(t, "0", value(t, s, 0))
	assert.Equal(t, "unset", value(t, s, 1), "untracked signal must stay unset")
	assert.Empty(t, w.Timeline(1))

	_, err = sim.New(strings.NewReader(testDump), sim.KeepSignals("nope"))
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	for _, opts := range [][]sim.Option{nil, {sim.Mmap(true)}, {sim.Mmap(false), sim.ChunkSize(16)}} {
		w, err := sim.Open("testdata/counter.vcd", opts...)
		require.NoError(t, err)
		require.Len(t, w.Signals(), 3)

		s, err := w.Simulate()
		require.NoError(t, err)
		require.NoError(t, s.AdvanceTo(15))
		assert.Equal(t, "b00000010", value(t, s, 1))
		require.NoError(t, w.Close())
	}
}

func TestOpen_missing(t *testing.T) {
	_, err := sim.Open("testdata/nope.vcd")
	assert.Error(t, err)
}
