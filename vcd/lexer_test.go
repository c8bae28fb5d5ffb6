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

package vcd_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomashk0/wave/vcd"
)

func drain(t *testing.T, lx *vcd.Lexer) []string {
	t.Helper()
	var toks []string
	for {
		tok, err := lx.Next()
		if err == io.EOF {
			return toks
		}
		require.NoError(t, err)
		toks = append(toks, string(tok.Text))
	}
}

func TestLexer_tokens(t *testing.T) {
	const src = "$scope module top $end\n#10\nb1010 !\n0a"
	lx := vcd.NewLexer(strings.NewReader(src))

	want := []struct {
		kind vcd.TokenKind
		text string
		line int
	}{
		{vcd.TokKeyword, "$scope", 1},
		{vcd.TokWord, "module", 1},
		{vcd.TokWord, "top", 1},
		{vcd.TokKeyword, "$end", 1},
		{vcd.TokTime, "#10", 2},
		{vcd.TokWord, "b1010", 3},
		{vcd.TokWord, "!", 3},
		{vcd.TokWord, "0a", 4},
	}
	for _, w := range want {
		tok, err := lx.Next()
		require.NoError(t, err)
		assert.Equal(t, w.kind, tok.Kind)
		assert.Equal(t, w.text, string(tok.Text))
		assert.Equal(t, w.line, tok.Pos.Line)
	}
	_, err := lx.Next()
	assert.Equal(t, io.EOF, err)
}

// Token boundaries must not depend on where the read chunks fall.
func TestLexer_chunkBoundaries(t *testing.T) {
	const src = "$var wire 8 ! data [7:0] $end\n#5\nb00001111 !\n"
	ref := drain(t, vcd.NewLexer(strings.NewReader(src)))
	require.NotEmpty(t, ref)
	for _, size := range []int{1, 3, 13, 128} {
		lx := vcd.NewLexerSize(strings.NewReader(src), size)
		assert.Equal(t, ref, drain(t, lx), "chunk size %d", size)
	}
}

func TestLexer_offsets(t *testing.T) {
	const src = "  $date\nx $end"
	lx := vcd.NewLexer(strings.NewReader(src))

	tok, err := lx.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(2), tok.Pos.Offset)
	assert.Equal(t, 1, tok.Pos.Line)

	tok, err = lx.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(8), tok.Pos.Offset)
	assert.Equal(t, 2, tok.Pos.Line)
}

func TestLexer_nonASCII(t *testing.T) {
	lx := vcd.NewLexer(strings.NewReader("$date caf\xc3\xa9 $end"))
	for {
		_, err := lx.Next()
		require.NotEqual(t, io.EOF, err, "lexer accepted non-ASCII input")
		if err != nil {
			assert.Equal(t, vcd.KindLex, vcd.ErrKind(err))
			assert.Contains(t, err.Error(), "non-ASCII")
			return
		}
	}
}
