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
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/frontier-evm/fevm/go/fevm"
)

// runContext is the view of the interpreter on the world state. It runs
// nested message calls and contract creations requested by the code.
type runContext struct {
	fevm.TransactionContext
	env         *Environment
	interpreter fevm.Interpreter
	depth       int
}

// GetBlockHash returns the hash of one of the preceding blocks, or zero if
// the block is not covered by the environment.
func (r runContext) GetBlockHash(number int64) fevm.Hash {
	hashes := r.env.BlockHashes
	index := int64(len(hashes)) - (r.env.BlockNumber - number)
	if number >= r.env.BlockNumber || index < 0 || index >= int64(len(hashes)) {
		return fevm.Hash{}
	}
	return hashes[index]
}

func (r runContext) Call(kind fevm.CallKind, parameters fevm.CallParameters) (fevm.CallResult, error) {
	if kind == fevm.Create {
		return r.executeCreate(parameters)
	}
	return r.executeCall(parameters)
}

// executeCall runs a CALL or CALLCODE. For CALLCODE the recipient is the
// calling account itself and only the code is taken from the code address.
func (r runContext) executeCall(parameters fevm.CallParameters) (fevm.CallResult, error) {
	target := parameters.Recipient
	codeAddress := parameters.CodeAddress
	message := Message{
		Caller:        parameters.Sender,
		Target:        &target,
		CurrentTarget: target,
		Gas:           parameters.Gas,
		Value:         parameters.Value,
		Data:          parameters.Input,
		Code:          r.GetCode(codeAddress),
		CodeAddress:   &codeAddress,
		Depth:         r.depth + 1,
	}
	res, err := processMessage(message, r.env, r.interpreter)
	if err != nil {
		return fevm.CallResult{}, err
	}
	return toCallResult(res), nil
}

// executeCreate derives the address of the new contract from the sender's
// nonce, which is incremented even if the creation fails.
func (r runContext) executeCreate(parameters fevm.CallParameters) (fevm.CallResult, error) {
	nonce := r.GetNonce(parameters.Sender)
	address := createAddress(parameters.Sender, nonce)
	r.SetNonce(parameters.Sender, nonce+1)

	if r.AccountHasCodeOrNonce(address) {
		log.Debug("address collision", "address", address)
		return fevm.CallResult{}, nil
	}

	message := Message{
		Caller:        parameters.Sender,
		CurrentTarget: address,
		Gas:           parameters.Gas,
		Value:         parameters.Value,
		Code:          fevm.Code(parameters.Input),
		Depth:         r.depth + 1,
	}
	res, err := processCreateMessage(message, r.env, r.interpreter)
	if err != nil {
		return fevm.CallResult{}, err
	}
	result := toCallResult(res)
	if result.Success {
		result.CreatedAddress = address
	}
	return result, nil
}

func toCallResult(res evm) fevm.CallResult {
	if res.hasErred {
		return fevm.CallResult{GasLeft: res.gasLeft}
	}
	return fevm.CallResult{
		Output:           res.output,
		GasLeft:          res.gasLeft,
		GasRefund:        res.refundCounter,
		Logs:             res.logs,
		AccountsToDelete: res.accountsToDelete,
		Success:          true,
	}
}

func createAddress(sender fevm.Address, nonce uint64) fevm.Address {
	return fevm.Address(crypto.CreateAddress(common.Address(sender), nonce))
}
