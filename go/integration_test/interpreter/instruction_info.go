// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package interpreter_test

import (
	"github.com/frontier-evm/fevm/go/fevm"
	"github.com/frontier-evm/fevm/go/fevm/vm"
)

// InstructionInfo contains meta-information about instructions used for
// generating test cases.
type InstructionInfo struct {
	stack StackUsage
	gas   fevm.Gas // < the static gas price
}

type StackUsage struct {
	popped int // < the number of elements popped from the stack
	pushed int // < the number of elements pushed on the stack
}

// getInstructions returns the instruction set of the Frontier revision as
// listed in appendix H of the yellow paper.
func getInstructions() map[vm.OpCode]InstructionInfo {
	op := func(popped, pushed int, gas fevm.Gas) InstructionInfo {
		return InstructionInfo{stack: StackUsage{popped: popped, pushed: pushed}, gas: gas}
	}

	res := map[vm.OpCode]InstructionInfo{
		vm.STOP:       op(0, 0, 0),
		vm.ADD:        op(2, 1, 3),
		vm.MUL:        op(2, 1, 5),
		vm.SUB:        op(2, 1, 3),
		vm.DIV:        op(2, 1, 5),
		vm.SDIV:       op(2, 1, 5),
		vm.MOD:        op(2, 1, 5),
		vm.SMOD:       op(2, 1, 5),
		vm.ADDMOD:     op(3, 1, 8),
		vm.MULMOD:     op(3, 1, 8),
		vm.EXP:        op(2, 1, 10),
		vm.SIGNEXTEND: op(2, 1, 5),

		vm.LT:     op(2, 1, 3),
		vm.GT:     op(2, 1, 3),
		vm.SLT:    op(2, 1, 3),
		vm.SGT:    op(2, 1, 3),
		vm.EQ:     op(2, 1, 3),
		vm.ISZERO: op(1, 1, 3),
		vm.AND:    op(2, 1, 3),
		vm.OR:     op(2, 1, 3),
		vm.XOR:    op(2, 1, 3),
		vm.NOT:    op(1, 1, 3),
		vm.BYTE:   op(2, 1, 3),

		vm.SHA3: op(2, 1, 30),

		vm.ADDRESS:      op(0, 1, 2),
		vm.BALANCE:      op(1, 1, 20),
		vm.ORIGIN:       op(0, 1, 2),
		vm.CALLER:       op(0, 1, 2),
		vm.CALLVALUE:    op(0, 1, 2),
		vm.CALLDATALOAD: op(1, 1, 3),
		vm.CALLDATASIZE: op(0, 1, 2),
		vm.CALLDATACOPY: op(3, 0, 3),
		vm.CODESIZE:     op(0, 1, 2),
		vm.CODECOPY:     op(3, 0, 3),
		vm.GASPRICE:     op(0, 1, 2),
		vm.EXTCODESIZE:  op(1, 1, 20),
		vm.EXTCODECOPY:  op(4, 0, 20),

		vm.BLOCKHASH:  op(1, 1, 20),
		vm.COINBASE:   op(0, 1, 2),
		vm.TIMESTAMP:  op(0, 1, 2),
		vm.NUMBER:     op(0, 1, 2),
		vm.DIFFICULTY: op(0, 1, 2),
		vm.GASLIMIT:   op(0, 1, 2),

		vm.POP:      op(1, 0, 2),
		vm.MLOAD:    op(1, 1, 3),
		vm.MSTORE:   op(2, 0, 3),
		vm.MSTORE8:  op(2, 0, 3),
		vm.SLOAD:    op(1, 1, 50),
		vm.SSTORE:   op(2, 0, 0),
		vm.JUMP:     op(1, 0, 8),
		vm.JUMPI:    op(2, 0, 10),
		vm.PC:       op(0, 1, 2),
		vm.MSIZE:    op(0, 1, 2),
		vm.GAS:      op(0, 1, 2),
		vm.JUMPDEST: op(0, 0, 1),

		vm.CREATE:       op(3, 1, 32000),
		vm.CALL:         op(7, 1, 40),
		vm.CALLCODE:     op(7, 1, 40),
		vm.RETURN:       op(2, 0, 0),
		vm.SELFDESTRUCT: op(1, 0, 0),
	}

	for i := 0; i < 32; i++ {
		res[vm.PUSH1+vm.OpCode(i)] = op(0, 1, 3)
	}
	for i := 0; i < 16; i++ {
		res[vm.DUP1+vm.OpCode(i)] = op(i+1, i+2, 3)
		res[vm.SWAP1+vm.OpCode(i)] = op(i+2, i+2, 3)
	}
	for i := 0; i < 5; i++ {
		res[vm.LOG0+vm.OpCode(i)] = op(i+2, 0, 375+375*fevm.Gas(i))
	}
	return res
}
