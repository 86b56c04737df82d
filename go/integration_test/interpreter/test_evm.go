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
	"math/big"

	"github.com/frontier-evm/fevm/go/fevm"
	"github.com/frontier-evm/fevm/go/fevm/vm"
	"go.uber.org/mock/gomock"
)

const InitialTestGas fevm.Gas = 1 << 44

// TestEVM wraps an interpreter to run isolated code snippets in a fixed run
// context. Nested calls are not supported; tests covering them are run on
// top of a transaction processor.
type TestEVM struct {
	interpreter fevm.Interpreter
	context     fevm.RunContext
}

// GetCleanEVM creates an EVM running code on the given interpreter variant.
// The context may be nil for code not interacting with the world state.
func GetCleanEVM(interpreter string, context fevm.RunContext) TestEVM {
	instance, err := fevm.NewInterpreter(interpreter)
	if err != nil {
		panic(err)
	}
	return TestEVM{
		interpreter: instance,
		context:     context,
	}
}

type RunResult struct {
	Output  []byte
	GasUsed fevm.Gas
	Success bool
}

func (e *TestEVM) Run(code []byte, input []byte) (RunResult, error) {
	return e.RunWithGas(code, input, InitialTestGas)
}

func (e *TestEVM) RunWithGas(code []byte, input []byte, initialGas fevm.Gas) (RunResult, error) {
	hash := fevm.Keccak256(code)
	result, err := e.interpreter.Run(fevm.Parameters{
		Context:  e.context,
		Code:     code,
		CodeHash: &hash,
		Input:    input,
		Gas:      initialGas,
	})
	if err != nil {
		return RunResult{}, err
	}
	return RunResult{
		Output:  result.Output,
		GasUsed: initialGas - result.GasLeft,
		Success: result.Success,
	}, nil
}

// newMockRunContextForIntegrationTests creates a run context answering all
// read requests with zero values and accepting storage updates.
func newMockRunContextForIntegrationTests(ctrl *gomock.Controller) *fevm.MockRunContext {
	context := fevm.NewMockRunContext(ctrl)
	context.EXPECT().AccountExists(gomock.Any()).AnyTimes().Return(true)
	context.EXPECT().GetBalance(gomock.Any()).AnyTimes()
	context.EXPECT().GetNonce(gomock.Any()).AnyTimes()
	context.EXPECT().GetCode(gomock.Any()).AnyTimes()
	context.EXPECT().GetCodeSize(gomock.Any()).AnyTimes()
	context.EXPECT().GetCodeHash(gomock.Any()).AnyTimes()
	context.EXPECT().GetStorage(gomock.Any(), gomock.Any()).AnyTimes()
	context.EXPECT().SetStorage(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	context.EXPECT().GetBlockHash(gomock.Any()).AnyTimes()
	return context
}

// addValuesToStack produces code pushing the given values in order, leaving
// the last value on top of the stack.
func addValuesToStack(values []*big.Int) []byte {
	code := []byte{}
	for _, value := range values {
		valueBytes := value.Bytes()
		if len(valueBytes) == 0 {
			valueBytes = []byte{0}
		}
		code = append(code, byte(vm.PUSH1+vm.OpCode(len(valueBytes)-1)))
		code = append(code, valueBytes...)
	}
	return code
}

// getReturnStackCode produces code returning the top of the stack as a
// 32 byte word.
func getReturnStackCode() []byte {
	return []byte{
		byte(vm.PUSH1), 0,
		byte(vm.MSTORE),
		byte(vm.PUSH1), 32,
		byte(vm.PUSH1), 0,
		byte(vm.RETURN),
	}
}
