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
	"fmt"
	"testing"

	"github.com/frontier-evm/fevm/go/fevm/vm"
)

const stackLimit = 1024

func TestStackMaxBoundary(t *testing.T) {
	for _, variant := range getAllInterpreterVariantsForTests() {
		for op, info := range getInstructions() {
			if info.stack.popped >= info.stack.pushed {
				continue
			}
			t.Run(fmt.Sprintf("%s/%s", variant, op), func(t *testing.T) {
				evm := GetCleanEVM(variant, nil)

				// fill the stack such that the instruction exceeds the limit
				size := stackLimit - (info.stack.pushed - info.stack.popped) + 1
				code := getCode(size, op)

				res, err := evm.Run(code, []byte{})
				if err != nil {
					t.Fatalf("unexpected error during EVM execution: %v", err)
				}
				if res.Success {
					t.Errorf("execution should have failed due to a stack overflow, got result %v", res)
				}
			})
		}
	}
}

func TestStackMaxBoundary_FullStackIsUsable(t *testing.T) {
	for _, variant := range getAllInterpreterVariantsForTests() {
		t.Run(variant, func(t *testing.T) {
			evm := GetCleanEVM(variant, nil)
			code := getCode(stackLimit-1, vm.PUSH1)

			res, err := evm.Run(append(code, 0), []byte{})
			if err != nil {
				t.Fatalf("unexpected error during EVM execution: %v", err)
			}
			if !res.Success {
				t.Errorf("filling the stack up to its limit should succeed")
			}
		})
	}
}

func TestStackMinBoundary(t *testing.T) {
	for _, variant := range getAllInterpreterVariantsForTests() {
		for op, info := range getInstructions() {
			if info.stack.popped <= 0 {
				continue
			}
			t.Run(fmt.Sprintf("%s/%s", variant, op), func(t *testing.T) {
				evm := GetCleanEVM(variant, nil)
				code := getCode(info.stack.popped-1, op)

				res, err := evm.Run(code, []byte{})
				if err != nil {
					t.Fatalf("unexpected error during EVM execution: %v", err)
				}
				if res.Success {
					t.Errorf("execution should have failed due to a stack underflow, got result %v", res)
				}
			})
		}
	}
}

func getCode(stackLength int, op vm.OpCode) []byte {
	code := make([]byte, 0, stackLength*2+1)
	for i := 0; i < stackLength; i++ {
		code = append(code, byte(vm.PUSH1), byte(0))
	}
	return append(code, byte(op))
}
