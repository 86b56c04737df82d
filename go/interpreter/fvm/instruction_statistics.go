// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package fvm

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/frontier-evm/fevm/go/fevm/vm"
)

// statisticRunner is a runner that collects statistics about the instruction
// sequence of the executed code.
type statisticRunner struct {
	mutex sync.Mutex
	stats *statistics
}

func (s *statisticRunner) run(c *context) (status, error) {
	stats := statsCollector{stats: newStatistics()}
	status := statusRunning
	for status == statusRunning {
		if c.pc < len(c.code) {
			stats.nextOp(vm.OpCode(c.code[c.pc]))
		}
		status = step(c)
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stats == nil {
		s.stats = newStatistics()
	}
	s.stats.insert(stats.stats)
	return status, nil
}

// getSummary returns a summary of the collected statistics in a human-readable
// format.
func (s *statisticRunner) getSummary() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.stats == nil {
		s.stats = newStatistics()
	}
	return s.stats.print()
}

func (s *statisticRunner) reset() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.stats = newStatistics()
}

// statistics counts the number of times each instruction is executed, as
// well as the number of times each pair, triple, and quad of consecutive
// instructions is executed. Sequences are keyed by their op codes packed
// into a single integer, 8 bits per instruction.
type statistics struct {
	count       uint64
	singleCount map[uint64]uint64
	pairCount   map[uint64]uint64
	tripleCount map[uint64]uint64
	quadCount   map[uint64]uint64
}

func newStatistics() *statistics {
	return &statistics{
		singleCount: map[uint64]uint64{},
		pairCount:   map[uint64]uint64{},
		tripleCount: map[uint64]uint64{},
		quadCount:   map[uint64]uint64{},
	}
}

// insert adds the instruction counts of the given statistics to this instance.
func (s *statistics) insert(src *statistics) {
	s.count += src.count
	for _, pair := range []struct{ trg, src map[uint64]uint64 }{
		{s.singleCount, src.singleCount},
		{s.pairCount, src.pairCount},
		{s.tripleCount, src.tripleCount},
		{s.quadCount, src.quadCount},
	} {
		for k, v := range pair.src {
			pair.trg[k] += v
		}
	}
}

// print returns a human-readable summary of the collected statistics.
func (s *statistics) print() string {
	type entry struct {
		value uint64
		count uint64
	}

	getTopN := func(data map[uint64]uint64, n int) []entry {
		list := make([]entry, 0, len(data))
		for k, c := range data {
			list = append(list, entry{k, c})
		}
		slices.SortFunc(list, func(a, b entry) int {
			if res := cmp.Compare(b.count, a.count); res != 0 {
				return res
			}
			return cmp.Compare(a.value, b.value)
		})
		return list[:min(n, len(list))]
	}

	sequence := func(value uint64, length int) string {
		ops := make([]string, 0, length)
		for i := length - 1; i >= 0; i-- {
			ops = append(ops, fmt.Sprintf("%-14v", vm.OpCode(value>>(8*i))))
		}
		return strings.Join(ops, "")
	}

	builder := strings.Builder{}
	write := func(format string, args ...any) {
		builder.WriteString(fmt.Sprintf(format, args...))
	}

	write("\n----- Statistics ------\n")
	write("\nSteps: %d\n", s.count)
	for i, section := range []struct {
		name string
		data map[uint64]uint64
	}{
		{"Singles", s.singleCount},
		{"Pairs", s.pairCount},
		{"Triples", s.tripleCount},
		{"Quads", s.quadCount},
	} {
		write("\n%s:\n", section.name)
		for _, e := range getTopN(section.data, 5) {
			write("\t%s: %d (%.2f%%)\n", sequence(e.value, i+1), e.count, float32(e.count*100)/float32(s.count))
		}
	}
	write("\n")

	return builder.String()
}

// statsCollector keeps track of the recent history of instructions executed
// by the VM to collect instruction sequence statistics.
type statsCollector struct {
	stats *statistics

	last       uint64
	secondLast uint64
	thirdLast  uint64
}

func (s *statsCollector) nextOp(op vm.OpCode) {
	cur := uint64(op)
	s.stats.count++
	s.stats.singleCount[cur]++
	if s.stats.count >= 2 {
		s.stats.pairCount[s.last<<8|cur]++
	}
	if s.stats.count >= 3 {
		s.stats.tripleCount[s.secondLast<<16|s.last<<8|cur]++
	}
	if s.stats.count >= 4 {
		s.stats.quadCount[s.thirdLast<<24|s.secondLast<<16|s.last<<8|cur]++
	}
	s.last, s.secondLast, s.thirdLast = cur, s.last, s.secondLast
}
