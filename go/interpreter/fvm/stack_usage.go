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
	"fmt"

	"github.com/frontier-evm/fevm/go/fevm"
	"github.com/frontier-evm/fevm/go/fevm/vm"
)

// stackUsage describes the effect of an instruction on the stack. The
// instruction accesses the elements in the range [from, to) relative to the
// current stack pointer and changes the stack size by delta.
type stackUsage struct {
	from, to, delta int
}

// computeStackUsage computes the stack usage of the given opcode. Undefined
// opcodes yield an error.
func computeStackUsage(op vm.OpCode) (stackUsage, error) {
	makeUsage := func(pops, pushes int) stackUsage {
		delta := pushes - pops
		to := 0
		if delta > 0 {
			to = delta
		}
		return stackUsage{from: -pops, to: to, delta: delta}
	}

	if vm.PUSH1 <= op && op <= vm.PUSH32 {
		return makeUsage(0, 1), nil
	}
	if vm.DUP1 <= op && op <= vm.DUP16 {
		return makeUsage(int(op-vm.DUP1+1), int(op-vm.DUP1+2)), nil
	}
	if vm.SWAP1 <= op && op <= vm.SWAP16 {
		return makeUsage(int(op-vm.SWAP1+2), int(op-vm.SWAP1+2)), nil
	}
	if vm.LOG0 <= op && op <= vm.LOG4 {
		return makeUsage(int(op-vm.LOG0+2), 0), nil
	}

	switch op {
	case vm.JUMPDEST, vm.STOP:
		return makeUsage(0, 0), nil
	case vm.MSIZE, vm.ADDRESS, vm.ORIGIN, vm.CALLER, vm.CALLVALUE,
		vm.CALLDATASIZE, vm.CODESIZE, vm.GASPRICE, vm.COINBASE,
		vm.TIMESTAMP, vm.NUMBER, vm.DIFFICULTY, vm.GASLIMIT, vm.PC, vm.GAS:
		return makeUsage(0, 1), nil
	case vm.POP, vm.JUMP, vm.SELFDESTRUCT:
		return makeUsage(1, 0), nil
	case vm.ISZERO, vm.NOT, vm.BALANCE, vm.CALLDATALOAD, vm.EXTCODESIZE,
		vm.BLOCKHASH, vm.MLOAD, vm.SLOAD:
		return makeUsage(1, 1), nil
	case vm.MSTORE, vm.MSTORE8, vm.SSTORE, vm.JUMPI, vm.RETURN:
		return makeUsage(2, 0), nil
	case vm.ADD, vm.SUB, vm.MUL, vm.DIV, vm.SDIV, vm.MOD, vm.SMOD, vm.EXP,
		vm.SIGNEXTEND, vm.SHA3, vm.LT, vm.GT, vm.SLT, vm.SGT, vm.EQ,
		vm.AND, vm.XOR, vm.OR, vm.BYTE:
		return makeUsage(2, 1), nil
	case vm.CALLDATACOPY, vm.CODECOPY:
		return makeUsage(3, 0), nil
	case vm.ADDMOD, vm.MULMOD, vm.CREATE:
		return makeUsage(3, 1), nil
	case vm.EXTCODECOPY:
		return makeUsage(4, 0), nil
	case vm.CALL, vm.CALLCODE:
		return makeUsage(7, 1), nil
	}

	return stackUsage{}, fmt.Errorf("unsupported opcode: %v", op)
}

// stackLimits defines the stack heights an instruction can be executed at.
type stackLimits struct {
	min int // the minimum stack size required by an instruction
	max int // the maximum stack size allowed before running an instruction
}

var _precomputedStackLimits = newOpCodePropertyMap(func(op vm.OpCode) stackLimits {
	usage, err := computeStackUsage(op)
	if err != nil {
		// Undefined instructions fail before their stack usage is checked.
		return stackLimits{min: 0, max: maxStackSize}
	}
	return stackLimits{
		min: -usage.from,
		max: maxStackSize - usage.to,
	}
})

// checkStackLimits checks that the instruction will not access elements
// beyond the boundaries of the stack.
func checkStackLimits(stackLen int, op vm.OpCode) error {
	limits := _precomputedStackLimits.get(op)
	if stackLen < limits.min {
		return fevm.ErrStackUnderflow
	}
	if stackLen > limits.max {
		return fevm.ErrStackOverflow
	}
	return nil
}
