// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package frontier implements the message call protocol and the processing
// of transactions and block bodies of the Frontier revision.
package frontier

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/frontier-evm/fevm/go/fevm"
)

const (
	// GasCodeDeposit is the price per byte of the code of a new contract.
	GasCodeDeposit fevm.Gas = 200
	// RefundSelfDestruct is granted for every account deleted by a
	// transaction.
	RefundSelfDestruct fevm.Gas = 24_000
)

// Message is the input of a single message call or contract creation.
type Message struct {
	Caller        fevm.Address
	Target        *fevm.Address // < nil for contract creations
	CurrentTarget fevm.Address  // < the account the code operates on
	Gas           fevm.Gas
	Value         fevm.Value
	Data          fevm.Data
	Code          fevm.Code
	CodeAddress   *fevm.Address // < the account providing the code, nil for creations
	Depth         int
}

func (m *Message) isCreate() bool {
	return m.Target == nil
}

// Environment holds the parts of the execution context shared by all
// messages of a transaction.
type Environment struct {
	fevm.BlockParameters
	fevm.TransactionParameters
	// BlockHashes lists the hashes of up to 256 preceding blocks in the
	// order of increasing block number.
	BlockHashes []fevm.Hash
	State       fevm.TransactionContext
}

// MessageCallOutput summarizes the effects of a top-level message call.
type MessageCallOutput struct {
	GasLeft          fevm.Gas
	RefundCounter    fevm.Gas
	Logs             []fevm.Log
	AccountsToDelete fevm.AddressSet
	HasErred         bool
	Output           fevm.Data
	CreatedAddress   fevm.Address // < only set for successful creations
}

// evm is the outcome of processing a single message.
type evm struct {
	gasLeft          fevm.Gas
	refundCounter    fevm.Gas
	logs             []fevm.Log
	accountsToDelete fevm.AddressSet
	output           fevm.Data
	hasErred         bool
}

// ProcessMessageCall runs a top-level message, which is either a call or,
// if the message has no target, a contract creation. The state is only
// modified if the message succeeds, except for the consumed gas.
func ProcessMessageCall(message Message, env *Environment, interpreter fevm.Interpreter) (MessageCallOutput, error) {
	var res evm
	var err error
	if message.isCreate() {
		if env.State.AccountHasCodeOrNonce(message.CurrentTarget) {
			log.Debug("address collision", "address", message.CurrentTarget)
			return MessageCallOutput{HasErred: true}, nil
		}
		res, err = processCreateMessage(message, env, interpreter)
	} else {
		res, err = processMessage(message, env, interpreter)
	}
	if err != nil {
		return MessageCallOutput{}, err
	}

	out := MessageCallOutput{
		GasLeft:  res.gasLeft,
		HasErred: res.hasErred,
		Output:   res.output,
	}
	if !res.hasErred {
		out.Logs = res.logs
		out.AccountsToDelete = res.accountsToDelete
		out.RefundCounter = res.refundCounter + RefundSelfDestruct*fevm.Gas(res.accountsToDelete.Len())
		if message.isCreate() {
			out.CreatedAddress = message.CurrentTarget
		}
	}
	return out, nil
}

// processCreateMessage runs the init code of a new contract and installs
// the resulting code. If the code deposit can not be paid, the creation
// fails and all its effects are reverted.
func processCreateMessage(message Message, env *Environment, interpreter fevm.Interpreter) (evm, error) {
	env.State.BeginTransaction()
	res, err := processMessage(message, env, interpreter)
	if err != nil {
		env.State.RollbackTransaction()
		return evm{}, err
	}
	if res.hasErred {
		env.State.RollbackTransaction()
		return res, nil
	}

	code := res.output
	deposit := GasCodeDeposit * fevm.Gas(len(code))
	if res.gasLeft < deposit {
		env.State.RollbackTransaction()
		return evm{hasErred: true}, nil
	}
	res.gasLeft -= deposit
	env.State.SetCode(message.CurrentTarget, fevm.Code(code))
	env.State.CommitTransaction()
	res.output = nil
	return res, nil
}

// processMessage moves the value of the message to its target and runs the
// code of the message. All state modifications are reverted if the code
// fails.
func processMessage(message Message, env *Environment, interpreter fevm.Interpreter) (evm, error) {
	if message.Depth > fevm.MaxCallDepth {
		return evm{}, fevm.ErrStackDepthLimit
	}
	log.Trace("processing message", "depth", message.Depth, "target", message.CurrentTarget, "gas", message.Gas)

	state := env.State
	state.BeginTransaction()
	state.TouchAccount(message.CurrentTarget)
	if !message.Value.IsZero() {
		if err := state.MoveEther(message.Caller, message.CurrentTarget, message.Value); err != nil {
			state.RollbackTransaction()
			return evm{}, err
		}
	}

	res, err := executeCode(message, env, interpreter)
	if err != nil {
		state.RollbackTransaction()
		return evm{}, err
	}
	if res.hasErred {
		state.RollbackTransaction()
	} else {
		state.CommitTransaction()
	}
	return res, nil
}

// executeCode runs the code of the message, or the precompiled contract
// addressed by it.
func executeCode(message Message, env *Environment, interpreter fevm.Interpreter) (evm, error) {
	if message.CodeAddress != nil {
		if contract, found := getPrecompiledContract(*message.CodeAddress); found {
			return runPrecompiledContract(contract, message.Data, message.Gas), nil
		}
	}

	var codeHash *fevm.Hash
	if message.CodeAddress != nil && !message.isCreate() {
		hash := env.State.GetCodeHash(*message.CodeAddress)
		codeHash = &hash
	}

	var recipient fevm.Address
	if message.Target != nil {
		recipient = *message.Target
	}
	kind := fevm.Call
	switch {
	case message.isCreate():
		kind = fevm.Create
	case message.CodeAddress != nil && *message.CodeAddress != recipient:
		kind = fevm.CallCode
	}

	params := fevm.Parameters{
		BlockParameters:       env.BlockParameters,
		TransactionParameters: env.TransactionParameters,
		Context: runContext{
			TransactionContext: env.State,
			env:                env,
			interpreter:        interpreter,
			depth:              message.Depth,
		},
		Kind:      kind,
		Depth:     message.Depth,
		Gas:       message.Gas,
		Recipient: message.CurrentTarget,
		Sender:    message.Caller,
		Input:     message.Data,
		Value:     message.Value,
		CodeHash:  codeHash,
		Code:      message.Code,
	}

	result, err := interpreter.Run(params)
	if err != nil {
		return evm{}, fmt.Errorf("failed to run code of %v: %w", message.CurrentTarget, err)
	}
	if !result.Success {
		return evm{hasErred: true}, nil
	}
	return evm{
		gasLeft:          result.GasLeft,
		refundCounter:    result.GasRefund,
		logs:             result.Logs,
		accountsToDelete: result.AccountsToDelete,
		output:           result.Output,
	}, nil
}
