// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package examples provides contracts with (int)->int entry points for
// tests and benchmarks of interpreters and processors.
package examples

import (
	"fmt"
	"math"

	"github.com/frontier-evm/fevm/go/fevm"
)

// Example is an executable description of a contract and an entry point with a (int)->int signature.
type Example struct {
	exampleSpec
	codeHash fevm.Hash // the hash of the code
}

// exampleSpec specifies a contract and an entry point with a (int)->int signature.
type exampleSpec struct {
	Name      string
	Code      fevm.Code
	function  uint32        // identifier of the function in the contract to be called
	reference func(int) int // a reference function computing the same function
}

func (s exampleSpec) build() Example {
	return Example{
		exampleSpec: s,
		codeHash:    fevm.Keccak256(s.Code),
	}
}

type Result struct {
	Result  int
	UsedGas fevm.Gas
}

// GetAllExamples lists the examples usable in benchmarks.
func GetAllExamples() []Example {
	return []Example{
		GetFibExample(),
		GetArithmeticExample(),
		GetSha3Example(),
		GetGasBurnerExample(),
		GetStaticOverheadExample(),
		GetJumpdestAnalysisExample(),
		GetStopAnalysisExample(),
		GetPush1AnalysisExample(),
		GetPush32AnalysisExample(),
	}
}

// GetExample returns the example with the given name.
func GetExample(name string) (Example, error) {
	for _, example := range GetAllExamples() {
		if example.Name == name {
			return example, nil
		}
	}
	return Example{}, fmt.Errorf("unknown example %q", name)
}

// RunOn runs this example on the given interpreter, using the given argument.
func (e *Example) RunOn(interpreter fevm.Interpreter, argument int) (Result, error) {
	const initialGas = math.MaxInt64
	params := fevm.Parameters{
		Context:  noOpRunContext{},
		Code:     e.Code,
		CodeHash: &e.codeHash,
		Input:    e.EncodeInput(argument),
		Gas:      initialGas,
	}

	res, err := interpreter.Run(params)
	if err != nil {
		return Result{}, err
	}
	if !res.Success {
		return Result{}, fmt.Errorf("execution of %s failed", e.Name)
	}

	result, err := DecodeOutput(res.Output)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Result:  result,
		UsedGas: initialGas - res.GasLeft,
	}, nil
}

// RunReference runs the reference function of this example to produce the expected result.
func (e *Example) RunReference(argument int) int {
	return e.reference(argument)
}

// EncodeInput produces the call data invoking the example's entry point.
func (e *Example) EncodeInput(argument int) fevm.Data {
	data := make([]byte, 4+32) // parameter is padded up to 32 bytes

	// encode function selector in big-endian format
	data[0] = byte(e.function >> 24)
	data[1] = byte(e.function >> 16)
	data[2] = byte(e.function >> 8)
	data[3] = byte(e.function)

	// encode argument as a big-endian value
	data[4+28] = byte(argument >> 24)
	data[5+28] = byte(argument >> 16)
	data[6+28] = byte(argument >> 8)
	data[7+28] = byte(argument)

	return data
}

// DecodeOutput extracts the result of an example from the output of the
// contract, the lowest 32 bits of a single word.
func DecodeOutput(output []byte) (int, error) {
	if len(output) != 32 {
		return 0, fmt.Errorf("unexpected length of output; wanted 32, got %d", len(output))
	}
	return (int(output[28]) << 24) | (int(output[29]) << 16) | (int(output[30]) << 8) | (int(output[31]) << 0), nil
}

// noOpRunContext is a fevm.RunContext for example codes not depending on
// any chain state. No operation has any effect.
type noOpRunContext struct{}

func (noOpRunContext) AccountExists(fevm.Address) bool              { return false }
func (noOpRunContext) GetBalance(fevm.Address) fevm.Value           { return fevm.Value{} }
func (noOpRunContext) SetBalance(fevm.Address, fevm.Value)          {}
func (noOpRunContext) GetNonce(fevm.Address) uint64                 { return 0 }
func (noOpRunContext) SetNonce(fevm.Address, uint64)                {}
func (noOpRunContext) GetCode(fevm.Address) fevm.Code               { return nil }
func (noOpRunContext) GetCodeHash(fevm.Address) fevm.Hash           { return fevm.EmptyCodeHash }
func (noOpRunContext) GetCodeSize(fevm.Address) int                 { return 0 }
func (noOpRunContext) SetCode(fevm.Address, fevm.Code)              {}
func (noOpRunContext) GetStorage(fevm.Address, fevm.Key) fevm.Word  { return fevm.Word{} }
func (noOpRunContext) SetStorage(fevm.Address, fevm.Key, fevm.Word) {}
func (noOpRunContext) GetBlockHash(int64) fevm.Hash                 { return fevm.Hash{} }

func (noOpRunContext) Call(fevm.CallKind, fevm.CallParameters) (fevm.CallResult, error) {
	return fevm.CallResult{}, nil
}
