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
	"github.com/frontier-evm/fevm/go/fevm/vm"
)

// Gas prices of the Frontier revision.
const (
	GasZero                  fevm.Gas = 0
	GasJumpDest              fevm.Gas = 1
	GasBase                  fevm.Gas = 2
	GasVeryLow               fevm.Gas = 3
	GasLow                   fevm.Gas = 5
	GasMid                   fevm.Gas = 8
	GasHigh                  fevm.Gas = 10
	GasExponentiation        fevm.Gas = 10
	GasExponentiationPerByte fevm.Gas = 10
	GasKeccak256             fevm.Gas = 30
	GasKeccak256Word         fevm.Gas = 6
	GasCopy                  fevm.Gas = 3
	GasBlockHash             fevm.Gas = 20
	GasExternal              fevm.Gas = 20
	GasBalance               fevm.Gas = 20
	GasSload                 fevm.Gas = 50
	GasStorageSet            fevm.Gas = 20000
	GasStorageUpdate         fevm.Gas = 5000
	GasStorageClearRefund    fevm.Gas = 15000
	GasLog                   fevm.Gas = 375
	GasLogData               fevm.Gas = 8
	GasLogTopic              fevm.Gas = 375
	GasCreate                fevm.Gas = 32000
	GasCall                  fevm.Gas = 40
	GasNewAccount            fevm.Gas = 25000
	GasCallValue             fevm.Gas = 9000
	GasCallStipend           fevm.Gas = 2300

	// GasMemory is the linear part of the memory costs per word.
	GasMemory = 3
)

// staticGasPrices holds the part of the gas price of each instruction that
// does not depend on its operands. Undefined instructions cost nothing; they
// fail before being charged.
var staticGasPrices = newOpCodePropertyMap(getStaticGasPrice)

func getStaticGasPrice(op vm.OpCode) fevm.Gas {
	if vm.PUSH1 <= op && op <= vm.PUSH32 {
		return GasVeryLow
	}
	if vm.DUP1 <= op && op <= vm.DUP16 {
		return GasVeryLow
	}
	if vm.SWAP1 <= op && op <= vm.SWAP16 {
		return GasVeryLow
	}
	if vm.LOG0 <= op && op <= vm.LOG4 {
		return GasLog + fevm.Gas(op-vm.LOG0)*GasLogTopic
	}
	switch op {
	case vm.STOP, vm.RETURN, vm.SELFDESTRUCT, vm.SSTORE:
		return GasZero
	case vm.JUMPDEST:
		return GasJumpDest
	case vm.ADDRESS, vm.ORIGIN, vm.CALLER, vm.CALLVALUE, vm.CALLDATASIZE,
		vm.CODESIZE, vm.GASPRICE, vm.COINBASE, vm.TIMESTAMP, vm.NUMBER,
		vm.DIFFICULTY, vm.GASLIMIT, vm.POP, vm.PC, vm.MSIZE, vm.GAS:
		return GasBase
	case vm.ADD, vm.SUB, vm.LT, vm.GT, vm.SLT, vm.SGT, vm.EQ, vm.ISZERO,
		vm.AND, vm.OR, vm.XOR, vm.NOT, vm.BYTE, vm.CALLDATALOAD,
		vm.CALLDATACOPY, vm.CODECOPY, vm.MLOAD, vm.MSTORE, vm.MSTORE8:
		return GasVeryLow
	case vm.MUL, vm.DIV, vm.SDIV, vm.MOD, vm.SMOD, vm.SIGNEXTEND:
		return GasLow
	case vm.ADDMOD, vm.MULMOD, vm.JUMP:
		return GasMid
	case vm.JUMPI:
		return GasHigh
	case vm.EXP:
		return GasExponentiation
	case vm.SHA3:
		return GasKeccak256
	case vm.BALANCE:
		return GasBalance
	case vm.EXTCODESIZE, vm.EXTCODECOPY:
		return GasExternal
	case vm.BLOCKHASH:
		return GasBlockHash
	case vm.SLOAD:
		return GasSload
	case vm.CREATE:
		return GasCreate
	case vm.CALL, vm.CALLCODE:
		return GasCall
	}
	return GasZero
}

// copyCosts is the per-word price of copying size bytes into memory.
func copyCosts(size uint64) fevm.Gas {
	return GasCopy * fevm.Gas(fevm.SizeInWords(size))
}

// messageCallGas computes the costs of a CALL or CALLCODE beyond its static
// price, and the stipend handed to the nested call. The stipend is refunded
// if the call is not executed.
func messageCallGas(targetExists bool, gas fevm.Gas, withValue bool) (cost, stipend fevm.Gas) {
	cost, stipend = gas, gas
	if !targetExists {
		cost += GasNewAccount
	}
	if withValue {
		cost += GasCallValue
		stipend += GasCallStipend
	}
	return cost, stipend
}

// sstoreCosts returns the price and the refund of replacing the current value
// of a storage slot with the new value.
func sstoreCosts(current, next fevm.Word) (cost, refund fevm.Gas) {
	zero := fevm.Word{}
	if next != zero && current == zero {
		cost = GasStorageSet
	} else {
		cost = GasStorageUpdate
	}
	if next == zero && current != zero {
		refund = GasStorageClearRefund
	}
	return cost, refund
}
