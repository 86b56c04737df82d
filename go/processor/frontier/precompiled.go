// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package frontier

import (
	"github.com/ethereum/go-ethereum/common"
	geth "github.com/ethereum/go-ethereum/core/vm"
	"github.com/frontier-evm/fevm/go/fevm"
)

// The contracts at 0x01 to 0x04 (ecrecover, sha256, ripemd160 and identity)
// are priced identically from Frontier to Homestead.
func getPrecompiledContract(address fevm.Address) (geth.PrecompiledContract, bool) {
	if !fevm.IsPrecompiledContract(address) {
		return nil, false
	}
	contract, ok := geth.PrecompiledContractsHomestead[common.Address(address)]
	return contract, ok
}

// runPrecompiledContract charges the cost of the contract and computes its
// output. Running out of gas fails the message.
func runPrecompiledContract(contract geth.PrecompiledContract, input fevm.Data, gas fevm.Gas) evm {
	cost := contract.RequiredGas(input)
	if cost > uint64(gas) {
		return evm{hasErred: true}
	}
	gas -= fevm.Gas(cost)
	output, err := contract.Run(input)
	if err != nil {
		return evm{hasErred: true}
	}
	return evm{
		gasLeft: gas,
		output:  output,
	}
}
