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

// Package wvi - or wave-internal with some commonly used stuff.
package wvi

import "io"

// DefaultChunkSize is the read chunk size used when none is specified.
const DefaultChunkSize = 64 * 1024

// Buffer is a chunked read buffer for streaming scanners. It hands out one
// byte at a time and keeps track of the absolute offset of the next byte,
// so that scanners built on top of it can report exact error positions and
// resume points without any bookkeeping of their own.
type Buffer struct {
	r   io.Reader
	buf []byte
	pos int
	n   int
	off int64
	err error // sticky read error, returned once buffered data is drained
}

// NewBuffer returns a Buffer reading from r in chunks of the given size.
// A size <= 0 selects DefaultChunkSize.
func NewBuffer(r io.Reader, size int) *Buffer {
	if size <= 0 {
		size = DefaultChunkSize
	}
	return &Buffer{r: r, buf: make([]byte, size)}
}

// ReadByte returns the next input byte. Once the underlying reader is
// drained it keeps returning io.EOF (or the reader's error).
func (b *Buffer) ReadByte() (byte, error) {
	if b.pos >= b.n {
		if err := b.fill(); err != nil {
			return 0, err
		}
	}
	c := b.buf[b.pos]
	b.pos++
	b.off++
	return c, nil
}

// Offset returns the absolute offset of the next unread byte.
func (b *Buffer) Offset() int64 { return b.off }

func (b *Buffer) fill() error {
	if b.err != nil {
		return b.err
	}
	b.pos, b.n = 0, 0
	for {
		n, err := b.r.Read(b.buf)
		if n > 0 {
			b.n = n
			if err != nil {
				b.err = err
			}
			return nil
		}
		if err != nil {
			b.err = err
			return err
		}
	}
}
