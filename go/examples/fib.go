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
)

// GetFibExample computes Fibonacci numbers iteratively. The stack holds
// the two most recent numbers and the remaining iterations.
func GetFibExample() Example {
	code := fevm.Code{
		// Initialize a = 0, b = 1 and parse the number of iterations.
		byte(vm.PUSH1), 0,
		byte(vm.PUSH1), 1,
		byte(vm.PUSH1), 4,
		byte(vm.CALLDATALOAD),

		// Loop header, stack is [a, b, n].
		byte(vm.JUMPDEST),
		byte(vm.DUP1),
		byte(vm.ISZERO),
		byte(vm.PUSH1), 27,
		byte(vm.JUMPI),

		// Decrement the iteration counter.
		byte(vm.PUSH1), 1,
		byte(vm.SWAP1),
		byte(vm.SUB),

		// Replace [a, b, n] by [b, a+b, n].
		byte(vm.SWAP2),
		byte(vm.DUP2),
		byte(vm.ADD),
		byte(vm.SWAP2),
		byte(vm.SWAP1),
		byte(vm.SWAP2),
		byte(vm.SWAP1),

		byte(vm.PUSH1), 7,
		byte(vm.JUMP),

		// Return a.
		byte(vm.JUMPDEST),
		byte(vm.POP),
		byte(vm.POP),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}

	return exampleSpec{
		Name:      "fib",
		Code:      code,
		function:  0xC6C2EA17, // fib(uint256)
		reference: fib,
	}.build()
}

func fib(n int) int {
	a, b := uint32(0), uint32(1)
	for i := 0; i < n; i++ {
		a, b = b, a+b
	}
	return int(a)
}
