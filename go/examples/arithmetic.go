// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package examples

import (
	"github.com/frontier-evm/fevm/go/fevm"
	"github.com/frontier-evm/fevm/go/fevm/vm"
	"github.com/holiman/uint256"
)

// GetArithmeticExample runs a loop mixing additions, multiplications,
// subtractions and divisions on 256-bit values:
//
//	for i := n; i > 0; i-- {
//		r = ((r+i)*i + i*i - i) / 3
//	}
func GetArithmeticExample() Example {
	code := fevm.Code{
		byte(vm.PUSH1), 0,
		byte(vm.PUSH1), 4,
		byte(vm.CALLDATALOAD),

		// Loop header, stack is [r, i].
		byte(vm.JUMPDEST),
		byte(vm.DUP1),
		byte(vm.ISZERO),
		byte(vm.PUSH1), 35,
		byte(vm.JUMPI),

		// x = (r+i)*i
		byte(vm.SWAP1),
		byte(vm.DUP2),
		byte(vm.ADD),
		byte(vm.DUP2),
		byte(vm.MUL),

		// x += i*i
		byte(vm.DUP2),
		byte(vm.DUP1),
		byte(vm.MUL),
		byte(vm.ADD),

		// x -= i
		byte(vm.DUP2),
		byte(vm.SWAP1),
		byte(vm.SUB),

		// r = x / 3
		byte(vm.PUSH1), 3,
		byte(vm.SWAP1),
		byte(vm.DIV),
		byte(vm.SWAP1),

		// i--
		byte(vm.PUSH1), 1,
		byte(vm.SWAP1),
		byte(vm.SUB),
		byte(vm.PUSH1), 5,
		byte(vm.JUMP),

		// Return r.
		byte(vm.JUMPDEST),
		byte(vm.POP),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}

	return exampleSpec{
		Name:      "arithmetic",
		Code:      code,
		function:  0xCC821C09,
		reference: arithmetic,
	}.build()
}

func arithmetic(n int) int {
	result := uint256.NewInt(0)
	three := uint256.NewInt(3)
	for i := uint256.NewInt(uint64(n)); !i.IsZero(); i.SubUint64(i, 1) {
		result.Add(result, i)
		result.Mul(result, i)
		result.Add(result, new(uint256.Int).Mul(i, i))
		result.Sub(result, i)
		result.Div(result, three)
	}
	return int(uint32(result.Uint64()))
}
