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
	"fmt"

	"github.com/frontier-evm/fevm/go/fevm"
	"github.com/frontier-evm/fevm/go/fevm/vm"
)

// status is enumeration of the execution state of an interpreter run.
type status byte

const (
	statusRunning        status = iota // < all fine, ops are processed
	statusStopped                      // < execution stopped with a STOP or by reaching the end of the code
	statusReturned                     // < execution stopped with a RETURN
	statusSelfDestructed               // < execution stopped with a SELFDESTRUCT
	statusFailed                       // < execution stopped with a halting error
)

func (s status) String() string {
	switch s {
	case statusRunning:
		return "running"
	case statusStopped:
		return "stopped"
	case statusReturned:
		return "returned"
	case statusSelfDestructed:
		return "self-destructed"
	case statusFailed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", s)
}

// context is the execution frame of a single interpreter run. A new context
// is created for every contract execution.
type context struct {
	// Inputs
	params    fevm.Parameters
	context   fevm.RunContext
	code      fevm.Code
	jumpDests jumpDestinations

	// Execution state
	pc     int
	gas    fevm.Gas
	refund fevm.Gas
	stack  *stack
	memory *Memory

	// Outputs
	output           []byte
	logs             []fevm.Log
	accountsToDelete fevm.AddressSet

	// Configuration flags
	withShaCache bool
}

// useGas reduces the gas level by the given amount. ErrOutOfGas is returned
// if the available gas is insufficient, in which case the gas level is not
// modified.
func (c *context) useGas(amount fevm.Gas) error {
	if c.gas < 0 || amount < 0 || c.gas < amount {
		return fevm.ErrOutOfGas
	}
	c.gas -= amount
	return nil
}

// useGasAndExpandMemory charges the given costs plus the costs of growing
// the memory to cover all given ranges, and grows the memory.
func (c *context) useGasAndExpandMemory(cost fevm.Gas, ranges ...memoryRange) error {
	memoryCost, size, err := c.memory.expansionCosts(ranges...)
	if err != nil {
		return err
	}
	if err := c.useGas(cost + memoryCost); err != nil {
		return err
	}
	c.memory.grow(size)
	return nil
}

// --- Interpreter ---

type runner interface {
	// run executes the contract code in the given context. Halting errors
	// are reported as statusFailed. The error result is reserved for
	// failures of the runner itself.
	run(*context) (status, error)
}

type interpreterConfig struct {
	withShaCache bool
	runner       runner
}

func run(
	config interpreterConfig,
	params fevm.Parameters,
	jumpDests jumpDestinations,
) (fevm.Result, error) {
	// Don't bother with the execution if there's no code.
	if len(params.Code) == 0 {
		return fevm.Result{
			Success: true,
			GasLeft: params.Gas,
		}, nil
	}

	var ctxt = context{
		params:       params,
		context:      params.Context,
		code:         params.Code,
		jumpDests:    jumpDests,
		gas:          params.Gas,
		stack:        newStack(),
		memory:       NewMemory(),
		withShaCache: config.withShaCache,
	}
	defer returnStack(ctxt.stack)

	if config.runner == nil {
		config.runner = vanillaRunner{}
	}
	status, err := config.runner.run(&ctxt)
	if err != nil {
		return fevm.Result{}, err
	}

	return generateResult(status, &ctxt)
}

func generateResult(status status, ctxt *context) (fevm.Result, error) {
	switch status {
	case statusStopped, statusSelfDestructed, statusReturned:
		return fevm.Result{
			Success:          true,
			Output:           ctxt.output,
			GasLeft:          ctxt.gas,
			GasRefund:        ctxt.refund,
			Logs:             ctxt.logs,
			AccountsToDelete: ctxt.accountsToDelete,
		}, nil
	case statusFailed:
		// All gas is consumed, all effects are discarded.
		return fevm.Result{
			Success: false,
		}, nil
	default:
		return fevm.Result{}, fmt.Errorf("unexpected error in interpreter, unknown status: %v", status)
	}
}

// --- Runners ---

// vanillaRunner executes the contract code without any additional features.
type vanillaRunner struct{}

func (r vanillaRunner) run(c *context) (status, error) {
	return execute(c, false), nil
}

// --- Execution ---

// execute runs the contract code in the given context. If oneStepOnly is set,
// only the instruction pointed to by the program counter is executed. Any
// halting error yields statusFailed.
func execute(c *context, oneStepOnly bool) status {
	status, err := steps(c, oneStepOnly)
	if err != nil {
		c.gas = 0
		return statusFailed
	}
	return status
}

// step executes a single instruction.
func step(c *context) status {
	return execute(c, true)
}

// steps executes the contract code in the given context. Every instruction
// is first checked against its stack limits and charged its static gas
// price; the instruction itself charges all operand dependent costs before
// it modifies any state.
func steps(c *context, oneStepOnly bool) (status, error) {
	status := statusRunning
	for status == statusRunning {
		if c.pc >= len(c.code) {
			return statusStopped, nil
		}

		op := vm.OpCode(c.code[c.pc])
		if !vm.IsValid(op) {
			return status, fevm.ErrInvalidOpcode
		}

		if err := checkStackLimits(c.stack.len(), op); err != nil {
			return status, err
		}

		if err := c.useGas(staticGasPrices.get(op)); err != nil {
			return status, err
		}

		var err error
		switch op {
		case vm.STOP:
			status = statusStopped
		case vm.ADD:
			opAdd(c)
		case vm.MUL:
			opMul(c)
		case vm.SUB:
			opSub(c)
		case vm.DIV:
			opDiv(c)
		case vm.SDIV:
			opSDiv(c)
		case vm.MOD:
			opMod(c)
		case vm.SMOD:
			opSMod(c)
		case vm.ADDMOD:
			opAddMod(c)
		case vm.MULMOD:
			opMulMod(c)
		case vm.EXP:
			err = opExp(c)
		case vm.SIGNEXTEND:
			opSignExtend(c)
		case vm.LT:
			opLt(c)
		case vm.GT:
			opGt(c)
		case vm.SLT:
			opSlt(c)
		case vm.SGT:
			opSgt(c)
		case vm.EQ:
			opEq(c)
		case vm.ISZERO:
			opIszero(c)
		case vm.AND:
			opAnd(c)
		case vm.OR:
			opOr(c)
		case vm.XOR:
			opXor(c)
		case vm.NOT:
			opNot(c)
		case vm.BYTE:
			opByte(c)
		case vm.SHA3:
			err = opSha3(c)
		case vm.ADDRESS:
			opAddress(c)
		case vm.BALANCE:
			opBalance(c)
		case vm.ORIGIN:
			opOrigin(c)
		case vm.CALLER:
			opCaller(c)
		case vm.CALLVALUE:
			opCallvalue(c)
		case vm.CALLDATALOAD:
			opCallDataload(c)
		case vm.CALLDATASIZE:
			opCallDatasize(c)
		case vm.CALLDATACOPY:
			err = genericDataCopy(c, c.params.Input)
		case vm.CODESIZE:
			opCodeSize(c)
		case vm.CODECOPY:
			err = genericDataCopy(c, c.code)
		case vm.GASPRICE:
			opGasPrice(c)
		case vm.EXTCODESIZE:
			opExtcodesize(c)
		case vm.EXTCODECOPY:
			err = opExtCodeCopy(c)
		case vm.BLOCKHASH:
			opBlockhash(c)
		case vm.COINBASE:
			opCoinbase(c)
		case vm.TIMESTAMP:
			opTimestamp(c)
		case vm.NUMBER:
			opNumber(c)
		case vm.DIFFICULTY:
			opDifficulty(c)
		case vm.GASLIMIT:
			opGasLimit(c)
		case vm.POP:
			opPop(c)
		case vm.MLOAD:
			err = opMload(c)
		case vm.MSTORE:
			err = opMstore(c)
		case vm.MSTORE8:
			err = opMstore8(c)
		case vm.SLOAD:
			opSload(c)
		case vm.SSTORE:
			err = opSstore(c)
		case vm.JUMP:
			err = opJump(c)
		case vm.JUMPI:
			err = opJumpi(c)
		case vm.PC:
			opPc(c)
		case vm.MSIZE:
			opMsize(c)
		case vm.GAS:
			opGas(c)
		case vm.JUMPDEST:
			// nothing
		case vm.PUSH1:
			opPush1(c)
		case vm.PUSH2:
			opPush2(c)
		case vm.PUSH32:
			opPush(c, 32)
		case vm.LOG0:
			err = opLog(c, 0)
		case vm.LOG1:
			err = opLog(c, 1)
		case vm.LOG2:
			err = opLog(c, 2)
		case vm.LOG3:
			err = opLog(c, 3)
		case vm.LOG4:
			err = opLog(c, 4)
		case vm.CREATE:
			err = opCreate(c)
		case vm.CALL:
			err = genericCall(c, fevm.Call)
		case vm.CALLCODE:
			err = genericCall(c, fevm.CallCode)
		case vm.RETURN:
			err = opReturn(c)
			status = statusReturned
		case vm.SELFDESTRUCT:
			status = opSelfdestruct(c)
		default:
			switch {
			case vm.PUSH3 <= op && op <= vm.PUSH31:
				opPush(c, int(op-vm.PUSH1)+1)
			case vm.DUP1 <= op && op <= vm.DUP16:
				opDup(c, int(op-vm.DUP1)+1)
			case vm.SWAP1 <= op && op <= vm.SWAP16:
				opSwap(c, int(op-vm.SWAP1)+1)
			default:
				err = fevm.ErrInvalidOpcode
			}
		}

		if err != nil {
			return status, err
		}

		c.pc++

		if oneStepOnly {
			return status, nil
		}
	}
	return status, nil
}
