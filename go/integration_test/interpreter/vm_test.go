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

	"github.com/frontier-evm/fevm/go/examples"
	"github.com/frontier-evm/fevm/go/fevm"
	"go.uber.org/mock/gomock"
)

func TestExamples_ComputesCorrectResult(t *testing.T) {
	for _, example := range examples.GetAllExamples() {
		for _, variant := range getAllInterpreterVariantsForTests() {
			vm, err := fevm.NewInterpreter(variant)
			if err != nil {
				t.Fatalf("failed to load %s interpreter: %v", variant, err)
			}
			for i := 0; i < 10; i++ {
				t.Run(fmt.Sprintf("%s-%s-%d", example.Name, variant, i), func(t *testing.T) {
					want := example.RunReference(i)
					got, err := example.RunOn(vm, i)
					if err != nil {
						t.Fatalf("error processing contract: %v", err)
					}
					if want != got.Result {
						t.Fatalf("incorrect result, wanted %d, got %d", want, got.Result)
					}
				})
			}
		}
	}
}

func TestExamples_AllVariantsConsumeTheSameGas(t *testing.T) {
	reference, err := fevm.NewInterpreter("fvm")
	if err != nil {
		t.Fatalf("failed to load reference interpreter: %v", err)
	}
	for _, example := range examples.GetAllExamples() {
		for _, variant := range getAllInterpreterVariantsForTests() {
			vm, err := fevm.NewInterpreter(variant)
			if err != nil {
				t.Fatalf("failed to load %s interpreter: %v", variant, err)
			}
			for i := 0; i < 10; i++ {
				t.Run(fmt.Sprintf("%s-%s-%d", example.Name, variant, i), func(t *testing.T) {
					want, err := example.RunOn(reference, i)
					if err != nil {
						t.Fatalf("failed to run reference VM: %v", err)
					}
					got, err := example.RunOn(vm, i)
					if err != nil {
						t.Fatalf("error processing contract: %v", err)
					}
					if want.UsedGas != got.UsedGas {
						t.Errorf("incorrect gas usage, wanted %d, got %d", want.UsedGas, got.UsedGas)
					}
				})
			}
		}
	}
}

func BenchmarkEmpty(b *testing.B) {
	ctxt := gomock.NewController(b)
	runContext := fevm.NewMockRunContext(ctxt)
	emptyRunParameters := fevm.Parameters{
		Context: runContext,
	}
	for _, variant := range getAllInterpreterVariantsForTests() {
		interpreter, err := fevm.NewInterpreter(variant)
		if err != nil {
			b.Fatalf("failed to load %s interpreter: %v", variant, err)
		}
		b.Run(variant, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, err := interpreter.Run(emptyRunParameters)
				if err != nil {
					b.Fatalf("error running empty example: %v", err)
				}
			}
		})
	}
}

func BenchmarkStaticOverhead(b *testing.B) {
	// the benchmark name consists of 3 parts to be matched like the others
	b.Run("1", func(b *testing.B) {
		benchmark(b, examples.GetStaticOverheadExample(), 1)
	})
}

func BenchmarkFib(b *testing.B) {
	for _, i := range []int{1, 5, 10, 15, 20} {
		b.Run(fmt.Sprintf("%d", i), func(b *testing.B) {
			benchmark(b, examples.GetFibExample(), i)
		})
	}
}

func BenchmarkSha3(b *testing.B) {
	for _, i := range []int{1, 10, 100, 1000} {
		b.Run(fmt.Sprintf("%d", i), func(b *testing.B) {
			benchmark(b, examples.GetSha3Example(), i)
		})
	}
}

func BenchmarkArith(b *testing.B) {
	for _, i := range []int{1, 10, 100, 280} {
		b.Run(fmt.Sprintf("%d", i), func(b *testing.B) {
			benchmark(b, examples.GetArithmeticExample(), i)
		})
	}
}

func BenchmarkAnalysis(b *testing.B) {
	examples := []examples.Example{
		examples.GetJumpdestAnalysisExample(),
		examples.GetStopAnalysisExample(),
		examples.GetPush1AnalysisExample(),
		examples.GetPush32AnalysisExample(),
	}
	for _, example := range examples {
		b.Run(example.Name, func(b *testing.B) {
			benchmark(b, example, 0)
		})
	}
}

func benchmark(b *testing.B, example examples.Example, arg int) {
	wanted := example.RunReference(arg)

	for _, variant := range getAllInterpreterVariantsForTests() {
		evm, err := fevm.NewInterpreter(variant)
		if err != nil {
			b.Fatalf("failed to load %s interpreter: %v", variant, err)
		}
		if pvm, ok := evm.(fevm.ProfilingInterpreter); ok {
			pvm.ResetProfile()
		}
		active := false
		b.Run(variant, func(b *testing.B) {
			active = true
			for i := 0; i < b.N; i++ {
				got, err := example.RunOn(evm, arg)
				if err != nil {
					b.Fatalf("running the %s example failed: %v", example.Name, err)
				}
				if wanted != got.Result {
					b.Fatalf("unexpected result, wanted %d, got %d", wanted, got.Result)
				}
			}
		})
		if pvm, ok := evm.(fevm.ProfilingInterpreter); active && ok {
			pvm.DumpProfile()
		}
	}
}
