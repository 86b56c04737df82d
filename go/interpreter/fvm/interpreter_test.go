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
	"bytes"
	"strings"
	"testing"

	"github.com/frontier-evm/fevm/go/fevm"
	"github.com/frontier-evm/fevm/go/fevm/vm"
)

func op(op vm.OpCode) byte {
	return byte(op)
}

func TestRun_EmptyCodeSucceedsWithoutUsingGas(t *testing.T) {
	res, err := run(interpreterConfig{}, fevm.Parameters{Gas: 100}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Errorf("execution of empty code should succeed")
	}
	if want, got := fevm.Gas(100), res.GasLeft; want != got {
		t.Errorf("unexpected gas left, wanted %d, got %d", want, got)
	}
}

func TestRun_ProducesExpectedResults(t *testing.T) {
	returnWord := []byte{
		op(vm.PUSH1), 0x2a, op(vm.PUSH1), 0, op(vm.MSTORE),
		op(vm.PUSH1), 32, op(vm.PUSH1), 0, op(vm.RETURN),
	}

	tests := map[string]struct {
		code    []byte
		gas     fevm.Gas
		success bool
		gasLeft fevm.Gas
		output  []byte
	}{
		"stop": {
			code:    []byte{op(vm.STOP)},
			gas:     10,
			success: true,
			gasLeft: 10,
		},
		"end of code": {
			code:    []byte{op(vm.PUSH1), 1},
			gas:     10,
			success: true,
			gasLeft: 7,
		},
		"return": {
			code:    returnWord,
			gas:     100,
			success: true,
			gasLeft: 100 - 18,
			output:  append(make([]byte, 31), 0x2a),
		},
		"out of gas": {
			code:    returnWord,
			gas:     17,
			success: false,
		},
		"invalid opcode": {
			code:    []byte{0xfe},
			gas:     100,
			success: false,
		},
		"stack underflow": {
			code:    []byte{op(vm.ADD)},
			gas:     100,
			success: false,
		},
		"valid jump": {
			code:    []byte{op(vm.PUSH1), 4, op(vm.JUMP), 0xfe, op(vm.JUMPDEST)},
			gas:     100,
			success: true,
			gasLeft: 100 - 3 - 8 - 1,
		},
		"jump into push data": {
			code:    []byte{op(vm.PUSH1), 4, op(vm.JUMP), op(vm.PUSH1), op(vm.JUMPDEST)},
			gas:     100,
			success: false,
		},
		"gas reports remaining gas": {
			code:    []byte{op(vm.GAS), op(vm.PUSH1), 0, op(vm.MSTORE), op(vm.PUSH1), 32, op(vm.PUSH1), 0, op(vm.RETURN)},
			gas:     100,
			success: true,
			gasLeft: 100 - 2 - 3 - 6 - 3 - 3,
			output:  append(make([]byte, 31), 98),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			params := fevm.Parameters{
				Gas:  test.gas,
				Code: test.code,
			}
			res, err := run(interpreterConfig{}, params, analyzeJumpDestinations(test.code))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want, got := test.success, res.Success; want != got {
				t.Fatalf("unexpected success, wanted %t, got %t", want, got)
			}
			if want, got := test.gasLeft, res.GasLeft; want != got {
				t.Errorf("unexpected gas left, wanted %d, got %d", want, got)
			}
			if want, got := test.output, res.Output; !bytes.Equal(want, got) {
				t.Errorf("unexpected output, wanted %x, got %x", want, got)
			}
		})
	}
}

func TestRun_FailedExecutionDiscardsEffects(t *testing.T) {
	code := []byte{
		op(vm.PUSH1), 0, op(vm.PUSH1), 0, op(vm.LOG0),
		op(vm.PUSH1), 0, op(vm.JUMP),
	}
	res, err := run(interpreterConfig{}, fevm.Parameters{Gas: 1000, Code: code}, analyzeJumpDestinations(code))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success || res.GasLeft != 0 || len(res.Logs) != 0 || res.Output != nil {
		t.Errorf("unexpected result of failed execution: %+v", res)
	}
}

func TestRun_SuccessfulExecutionReportsLogs(t *testing.T) {
	recipient := fevm.Address{1}
	code := []byte{
		op(vm.PUSH1), 0x2a, op(vm.PUSH1), 0, op(vm.MSTORE8),
		op(vm.PUSH1), 1, op(vm.PUSH1), 0, op(vm.LOG0),
	}
	params := fevm.Parameters{Gas: 1000, Code: code, Recipient: recipient}
	res, err := run(interpreterConfig{}, params, analyzeJumpDestinations(code))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("execution failed")
	}
	if len(res.Logs) != 1 {
		t.Fatalf("unexpected number of logs: %d", len(res.Logs))
	}
	if want, got := (fevm.Log{Address: recipient, Topics: []fevm.Hash{}, Data: []byte{0x2a}}), res.Logs[0]; want.Address != got.Address || !bytes.Equal(want.Data, got.Data) || len(got.Topics) != 0 {
		t.Errorf("unexpected log, wanted %v, got %v", want, got)
	}
}

func TestInterpreter_IsRegistered(t *testing.T) {
	for _, name := range []string{"fvm", "fvm-no-sha-cache", "fvm-no-code-cache", "fvm-logging", "fvm-stats"} {
		interpreter, err := fevm.NewInterpreter(name)
		if err != nil {
			t.Fatalf("failed to create interpreter %s: %v", name, err)
		}
		if _, ok := interpreter.(*fvm); !ok {
			t.Errorf("unexpected interpreter type for %s: %T", name, interpreter)
		}
	}
}

func TestInterpreter_RejectsExcessiveDepth(t *testing.T) {
	interpreter, err := NewInterpreter(Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = interpreter.Run(fevm.Parameters{Depth: fevm.MaxCallDepth + 1})
	if err == nil {
		t.Errorf("expected an error for excessive depth")
	}
}

func TestInterpreter_RunsCodeWithAndWithoutCodeHash(t *testing.T) {
	interpreter, err := NewInterpreter(Config{WithShaCache: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	code := fevm.Code{op(vm.PUSH1), 4, op(vm.JUMP), 0xfe, op(vm.JUMPDEST)}
	hash := fevm.Keccak256(code)
	for _, codeHash := range []*fevm.Hash{nil, &hash, &hash} {
		res, err := interpreter.Run(fevm.Parameters{Gas: 100, Code: code, CodeHash: codeHash})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.Success {
			t.Errorf("execution failed")
		}
	}
}

func TestLogger_WritesOneLinePerInstruction(t *testing.T) {
	buffer := bytes.NewBuffer([]byte{})
	config := interpreterConfig{runner: newLogger(buffer)}
	code := []byte{op(vm.PUSH1), 1, op(vm.STOP)}
	_, err := run(config, fevm.Parameters{Gas: 10, Code: code}, analyzeJumpDestinations(code))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := "PUSH1, 10, -empty-\nSTOP, 7, 1\n", buffer.String(); want != got {
		t.Errorf("unexpected log, wanted %q, got %q", want, got)
	}
}

func TestStatistics_CountsInstructionSequences(t *testing.T) {
	runner := &statisticRunner{}
	config := interpreterConfig{runner: runner}
	code := []byte{op(vm.PUSH1), 1, op(vm.PUSH1), 2, op(vm.ADD), op(vm.POP)}
	for i := 0; i < 2; i++ {
		if _, err := run(config, fevm.Parameters{Gas: 100, Code: code}, analyzeJumpDestinations(code)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	stats := runner.stats
	if want, got := uint64(8), stats.count; want != got {
		t.Errorf("unexpected number of steps, wanted %d, got %d", want, got)
	}
	if want, got := uint64(4), stats.singleCount[uint64(vm.PUSH1)]; want != got {
		t.Errorf("unexpected PUSH1 count, wanted %d, got %d", want, got)
	}
	pair := uint64(vm.PUSH1)<<8 | uint64(vm.ADD)
	if want, got := uint64(2), stats.pairCount[pair]; want != got {
		t.Errorf("unexpected PUSH1-ADD count, wanted %d, got %d", want, got)
	}

	summary := runner.getSummary()
	if !strings.Contains(summary, "Steps: 8") {
		t.Errorf("summary does not report steps: %v", summary)
	}

	runner.reset()
	if want, got := uint64(0), runner.stats.count; want != got {
		t.Errorf("reset did not clear statistics, got %d steps", got)
	}
}
