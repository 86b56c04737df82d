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

// analysisCodeLength is the size of the contracts used to benchmark the
// jump destination analysis.
const analysisCodeLength = 0x6000

// GenerateAnalysisCode produces a contract returning its argument after
// jumping over a block made of repetitions of the given filler.
func GenerateAnalysisCode(filler []byte) fevm.Code {
	initCode := []byte{
		// Parse the input parameter.
		byte(vm.PUSH1), 4,
		byte(vm.CALLDATALOAD),

		// Store result (input) in memory[0].
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),

		// Jump over filler code (destination is a placeholder).
		byte(vm.PUSH2), 0xFF, 0xFF,
		byte(vm.JUMP),
	}

	endingCode := []byte{
		// Jumpdest for jumping over filler code.
		byte(vm.JUMPDEST),

		// Return the result from memory[0].
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}

	maxFillerCodeLength := analysisCodeLength - len(initCode) - len(endingCode)
	fillerCode := []byte{}
	for i := 0; i < maxFillerCodeLength/len(filler); i++ {
		fillerCode = append(fillerCode, filler...)
	}

	// Fill placeholder destination for jumping over filler code.
	jmpdestPos := len(initCode) + len(fillerCode)
	initCode[7] = byte(jmpdestPos >> 8)
	initCode[8] = byte(jmpdestPos)

	code := append(initCode, fillerCode...)
	return append(code, endingCode...)
}

func GetJumpdestAnalysisExample() Example {
	return newAnalysisExample("jumpdest", []byte{byte(vm.JUMPDEST)})
}

func GetStopAnalysisExample() Example {
	return newAnalysisExample("stop", []byte{byte(vm.STOP)})
}

func GetPush1AnalysisExample() Example {
	return newAnalysisExample("push1", []byte{byte(vm.PUSH1), 0})
}

func GetPush32AnalysisExample() Example {
	filler := append([]byte{byte(vm.PUSH32)}, make([]byte, 32)...)
	return newAnalysisExample("push32", filler)
}

func newAnalysisExample(name string, filler []byte) Example {
	return exampleSpec{
		Name:      name,
		Code:      GenerateAnalysisCode(filler),
		reference: analysis,
	}.build()
}

func analysis(x int) int {
	return x
}
