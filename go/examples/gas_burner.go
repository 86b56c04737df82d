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

// GetGasBurnerExample provides an example code for tests and benchmarks that
// runs a loop burning the given amount of gas:
//
//	want := gasleft() - x
//	for gasleft() > want {}
//	return x
func GetGasBurnerExample() Example {
	code := fevm.Code{
		byte(vm.PUSH1), 4,
		byte(vm.CALLDATALOAD),
		byte(vm.GAS),
		byte(vm.SUB),

		byte(vm.JUMPDEST),
		byte(vm.DUP1),
		byte(vm.GAS),
		byte(vm.GT),
		byte(vm.PUSH1), 5,
		byte(vm.JUMPI),

		byte(vm.POP),
		byte(vm.PUSH1), 4,
		byte(vm.CALLDATALOAD),
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}

	return exampleSpec{
		Name:      "gas_burner",
		Code:      code,
		function:  0x7a5984c4, // function selector for the burn function
		reference: burnGas,
	}.build()
}

func burnGas(x int) int {
	return x
}
