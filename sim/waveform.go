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
	"os"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/exp/mmap"

	"github.com/thomashk0/wave/vcd"
)

// Mode selects how much history a Waveform retains.
type Mode uint8

const (
	// ModeMaterialized keeps every signal's full timeline in memory,
	// allowing arbitrary time seeks and any number of concurrent
	// simulation states. This is the default.
	ModeMaterialized Mode = iota
	// ModeStreaming retains nothing: the single simulation state advances
	// through the file in one forward pass.
	ModeStreaming
)

func (m Mode) String() string {
	if m == ModeStreaming {
		return "streaming"
	}
	return "materialized"
}

// Files at least this large are memory-mapped by Open unless Mmap says
// otherwise.
const mmapThreshold = 1 << 20

// Event is one entry of a materialized timeline.
type Event struct {
	T uint64
	V vcd.Value
}

// Waveform combines a parsed Header with the dump's value-change history,
// either materialized into per-signal timelines or left as a pending
// stream. A materialized Waveform is immutable and safe for concurrent
// read-only use by any number of States.
type Waveform struct {
	h       *vcd.Header
	mode    Mode
	tl      [][]Event // per value slot, ModeMaterialized only
	body    *vcd.BodyParser
	closer  io.Closer
	keep    []bool // per value slot, nil keeps everything
	simming bool
}

type config struct {
	chunk  int
	mode   Mode
	keep   []string
	mmapOn int8 // 0 auto, 1 forced on, -1 forced off
}

// Option configures Open and New.
type Option func(*config) error

// Streaming selects ModeStreaming: no history is retained and the
// waveform supports exactly one forward simulation pass.
func Streaming() Option {
	return func(c *config) error { c.mode = ModeStreaming; return nil }
}

// ChunkSize sets the parser's read chunk size in bytes.
func ChunkSize(n int) Option {
	return func(c *config) error {
		if n <= 0 {
			return errors.Errorf("invalid chunk size %d", n)
		}
		c.chunk = n
		return nil
	}
}

// KeepSignals restricts the retained state to the signals with the given
// short identifiers. Changes on other signals are parsed and validated but
// not stored, which keeps big dumps cheap when only a few signals matter.
func KeepSignals(ids ...string) Option {
	return func(c *config) error { c.keep = append(c.keep, ids...); return nil }
}

// Mmap forces memory-mapped file input on or off for Open. Without it,
// files of a megabyte and more are mapped, smaller ones plainly read.
// New ignores the option.
func Mmap(on bool) Option {
	return func(c *config) error {
		if on {
			c.mmapOn = 1
		} else {
			c.mmapOn = -1
		}
		return nil
	}
}

// Open parses the VCD file at path and returns its Waveform. In the
// default materialized mode the whole body is replayed into timelines
// before Open returns; with Streaming only the header is parsed.
//
// On a body parse error Open returns the error together with a non-nil
// Waveform holding the complete header and the changes accumulated so
// far, so declarations stay inspectable. Close must be called to release
// the underlying file.
func Open(path string, opts ...Option) (*Waveform, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "open waveform")
	}
	var (
		r      io.Reader
		closer io.Closer
	)
	if cfg.mmapOn == 1 || (cfg.mmapOn == 0 && fi.Size() >= mmapThreshold) {
		ra, err := mmap.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "mmap waveform")
		}
		r = io.NewSectionReader(ra, 0, int64(ra.Len()))
		closer = ra
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "open waveform")
		}
		r = f
		closer = f
	}
	w, err := build(r, cfg)
	if w == nil {
		closer.Close()
		return nil, err
	}
	w.closer = closer
	return w, err
}

// New is Open for an arbitrary stream. The caller keeps ownership of r.
func New(r io.Reader, opts ...Option) (*Waveform, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	return build(r, cfg)
}

func buildConfig(opts []Option) (*config, error) {
	cfg := new(config)
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func build(r io.Reader, cfg *config) (*Waveform, error) {
	lx := vcd.NewLexerSize(r, cfg.chunk)
	h, err := vcd.ParseHeader(lx)
	if err != nil {
		return nil, err
	}
	w := &Waveform{h: h, mode: cfg.mode}
	if len(cfg.keep) > 0 {
		w.keep = make([]bool, h.NumVars())
		for _, id := range cfg.keep {
			s, ok := h.SignalByID(id)
			if !ok {
				return nil, errors.Errorf("keep %q: no such identifier", id)
			}
			w.keep[s.Var] = true
		}
	}
	body := vcd.NewBodyParser(lx, h)
	if cfg.mode == ModeStreaming {
		w.body = body
		return w, nil
	}
	w.tl = make([][]Event, h.NumVars())
	for {
		c, err := body.Next()
		if err == io.EOF {
			return w, nil
		}
		if err != nil {
			// Partial store: the header and everything parsed so far stay
			// available to the caller.
			return w, err
		}
		if w.keep != nil && !w.keep[c.Var] {
			continue
		}
		w.record(c)
	}
}

// record appends a change to its timeline. Two changes of one signal at
// the same timestamp collapse to the later one, so materialized timelines
// never carry intra-timestamp duplicates.
func (w *Waveform) record(c vcd.Change) {
	tl := w.tl[c.Var]
	if n := len(tl); n > 0 && tl[n-1].T == c.Time {
		tl[n-1].V = c.Value
		return
	}
	w.tl[c.Var] = append(tl, Event{T: c.Time, V: c.Value})
}

// Header returns the parsed declaration section.
func (w *Waveform) Header() *vcd.Header { return w.h }

// Mode returns the waveform's retention mode.
func (w *Waveform) Mode() Mode { return w.mode }

// Signals returns the declared signals in declaration order.
func (w *Waveform) Signals() []vcd.Signal { return w.h.Signals() }

// Close releases the file backing an Open'ed waveform. It is a no-op for
// waveforms built by New.
func (w *Waveform) Close() error {
	if w.closer == nil {
		return nil
	}
	err := w.closer.Close()
	w.closer = nil
	return err
}

// Timeline returns the materialized change history of the signal with the
// given handle, oldest first. It is nil in streaming mode. Aliased signals
// share one timeline. Callers must not modify the slice.
func (w *Waveform) Timeline(handle int) []Event {
	if w.tl == nil {
		return nil
	}
	return w.tl[w.h.Signals()[handle].Var]
}

// ValueAt returns the signal's value at time t, binary-searching its
// timeline. ok is false if the signal has no change at or before t, or in
// streaming mode.
func (w *Waveform) ValueAt(handle int, t uint64) (v vcd.Value, ok bool) {
	tl := w.Timeline(handle)
	i := sort.Search(len(tl), func(i int) bool { return tl[i].T > t })
	if i == 0 {
		return vcd.Value{}, false
	}
	return tl[i-1].V, true
}

// Simulate returns a fresh simulation state positioned before time zero.
// Materialized waveforms support any number of independent states;
// streaming waveforms exactly one.
func (w *Waveform) Simulate() (*State, error) {
	if w.mode == ModeStreaming {
		if w.simming {
			return nil, errors.New("streaming waveform supports a single simulation pass")
		}
		w.simming = true
	}
	n := w.h.NumVars()
	return &State{
		w:      w,
		status: Ready,
		vals:   make([]vcd.Value, n),
		set:    make([]bool, n),
		cur:    make([]int, n),
	}, nil
}
