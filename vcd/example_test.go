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
	"fmt"
	"io"
	"strings"

	"github.com/thomashk0/wave/vcd"
)

// Shows the two-stage parse: header first, then a pull cursor over the
// value changes.
func ExampleParseHeader() {
	const dump = `$timescale 1ns $end
$scope module top $end
$var wire 1 ! clk $end
$var reg 8 " data [7:0] $end
$upscope $end
$enddefinitions $end
$dumpvars
0!
b0 "
$end
#5
1!
b101 "
`
	lx := vcd.NewLexer(strings.NewReader(dump))
	h, err := vcd.ParseHeader(lx)
	if err != nil {
		panic(err)
	}
	for i := range h.Signals() {
		s := &h.Signals()[i]
		fmt.Printf("%s: %s %d bit(s)\n", h.FullName(s), s.Kind, s.Width)
	}

	bp := vcd.NewBodyParser(lx, h)
	for {
		c, err := bp.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			panic(err)
		}
		fmt.Printf("#%d var%d <- %s\n", c.Time, c.Var, c.Value)
	}
	// Output:
	// top.clk: wire 1 bit(s)
	// top.data: reg 8 bit(s)
	// #0 var0 <- 0
	// #0 var1 <- b00000000
	// #5 var0 <- 1
	// #5 var1 <- b00000101
}
