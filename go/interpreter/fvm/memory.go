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
	"github.com/frontier-evm/fevm/go/fevm"
	"github.com/holiman/uint256"
)

// maxMemoryExpansionSize bounds the size memory may be grown to. Beyond this
// size the expansion costs exceed any gas budget a frame can have.
const maxMemoryExpansionSize = 0x1FFFFFFFE0

// Memory is the byte-addressed scratch space of a single execution frame.
// It only grows, always to a multiple of 32 bytes, and every growth is paid
// for before it happens.
type Memory struct {
	store []byte
}

func NewMemory() *Memory {
	return &Memory{}
}

// memoryRange is an (offset, size) pair accessed by an instruction.
type memoryRange struct {
	offset, size *uint256.Int
}

// memoryGasCost is the total cost of a memory holding the given number of
// words: 3 gas per word plus a quadratic term.
func memoryGasCost(words uint64) fevm.Gas {
	return fevm.Gas(GasMemory*words + words*words/512)
}

// calculateGasExtendMemory computes the costs for growing a memory of the
// current size such that it covers all given ranges. Ranges of size zero are
// ignored. The result includes the new memory size. Ranges that can not be
// covered by any affordable memory result in ErrOutOfGas.
func calculateGasExtendMemory(currentSize uint64, ranges ...memoryRange) (fevm.Gas, uint64, error) {
	newSize := currentSize
	for _, r := range ranges {
		if r.size.IsZero() {
			continue
		}
		if !r.offset.IsUint64() || !r.size.IsUint64() {
			return 0, 0, fevm.ErrOutOfGas
		}
		offset, size := r.offset.Uint64(), r.size.Uint64()
		end := offset + size
		if end < offset || end > maxMemoryExpansionSize {
			return 0, 0, fevm.ErrOutOfGas
		}
		if end = fevm.SizeInWords(end) * 32; end > newSize {
			newSize = end
		}
	}
	if newSize == currentSize {
		return 0, currentSize, nil
	}
	cost := memoryGasCost(newSize/32) - memoryGasCost(fevm.SizeInWords(currentSize))
	return cost, newSize, nil
}

func (m *Memory) length() uint64 {
	return uint64(len(m.store))
}

// expansionCosts returns the costs for growing this memory to cover the
// given ranges and the resulting size.
func (m *Memory) expansionCosts(ranges ...memoryRange) (fevm.Gas, uint64, error) {
	return calculateGasExtendMemory(m.length(), ranges...)
}

// grow extends the memory to the given size. Smaller sizes are ignored.
func (m *Memory) grow(size uint64) {
	if cur := m.length(); cur < size {
		m.store = append(m.store, make([]byte, size-cur)...)
	}
}

// getSlice returns the memory section [offset, offset+size). The section
// must be covered by the memory. The result shares the memory's storage and
// is only valid until the next growth.
func (m *Memory) getSlice(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// read returns a copy of the memory section [offset, offset+size).
func (m *Memory) read(offset, size uint64) []byte {
	if size == 0 {
		return []byte{}
	}
	res := make([]byte, size)
	copy(res, m.store[offset:offset+size])
	return res
}

// set writes the given data at the given offset. The target section must be
// covered by the memory.
func (m *Memory) set(offset uint64, data []byte) {
	if len(data) > 0 {
		copy(m.store[offset:offset+uint64(len(data))], data)
	}
}

func (m *Memory) setWord(offset uint64, value *uint256.Int) {
	value.WriteToSlice(m.store[offset : offset+32])
}

func (m *Memory) readWord(offset uint64, target *uint256.Int) {
	target.SetBytes32(m.store[offset : offset+32])
}
