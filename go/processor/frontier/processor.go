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
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/log"
	"github.com/frontier-evm/fevm/go/fevm"
	"github.com/holiman/uint256"
)

const (
	TxGas         fevm.Gas = 21_000
	TxDataZero    fevm.Gas = 4
	TxDataNonZero fevm.Gas = 68
)

// ErrInvalidTransaction is wrapped by all errors reporting transactions
// that can not be included in a block.
const ErrInvalidTransaction = fevm.ConstError("invalid transaction")

func init() {
	fevm.RegisterProcessorFactory("frontier", newProcessor)
}

func newProcessor(interpreter fevm.Interpreter) fevm.Processor {
	return &processor{
		interpreter: interpreter,
	}
}

type processor struct {
	interpreter fevm.Interpreter
}

// Run validates and executes a transaction. Invalid transactions are
// rejected with an error wrapping ErrInvalidTransaction before touching
// the state.
func (p *processor) Run(
	blockEnv fevm.BlockEnvironment,
	transaction fevm.Transaction,
	context fevm.TransactionContext,
) (fevm.Receipt, error) {
	if err := validateTransaction(transaction, context); err != nil {
		return fevm.Receipt{}, err
	}
	log.Debug("processing transaction", "sender", transaction.Sender, "nonce", transaction.Nonce, "gas", transaction.GasLimit)

	// Internal errors must not leave a partially processed transaction.
	context.BeginTransaction()
	receipt, err := p.run(blockEnv, transaction, context)
	if err != nil {
		context.RollbackTransaction()
		return fevm.Receipt{}, err
	}
	context.CommitTransaction()
	return receipt, nil
}

func (p *processor) run(
	blockEnv fevm.BlockEnvironment,
	transaction fevm.Transaction,
	context fevm.TransactionContext,
) (fevm.Receipt, error) {
	sender := transaction.Sender
	gas := transaction.GasLimit - intrinsicCost(transaction.Input)

	context.SetNonce(sender, context.GetNonce(sender)+1)
	gasFee := transaction.GasPrice.Scale(uint64(transaction.GasLimit))
	context.SetBalance(sender, fevm.Sub(context.GetBalance(sender), gasFee))

	message := Message{
		Caller: sender,
		Gas:    gas,
		Value:  transaction.Value,
		Depth:  0,
	}
	if transaction.Recipient == nil {
		message.CurrentTarget = createAddress(sender, transaction.Nonce)
		message.Code = fevm.Code(transaction.Input)
	} else {
		target := *transaction.Recipient
		message.Target = &target
		message.CurrentTarget = target
		message.Data = transaction.Input
		message.Code = context.GetCode(target)
		message.CodeAddress = &target
	}

	env := &Environment{
		BlockParameters: blockEnv.BlockParameters,
		TransactionParameters: fevm.TransactionParameters{
			Origin:   sender,
			GasPrice: transaction.GasPrice,
		},
		BlockHashes: blockEnv.BlockHashes,
		State:       context,
	}
	output, err := ProcessMessageCall(message, env, p.interpreter)
	if err != nil {
		return fevm.Receipt{}, err
	}

	gasUsed := transaction.GasLimit - output.GasLeft
	refund := min(gasUsed/2, output.RefundCounter)

	senderRefund := transaction.GasPrice.Scale(uint64(output.GasLeft + refund))
	context.SetBalance(sender, fevm.Add(context.GetBalance(sender), senderRefund))

	coinbase := blockEnv.Coinbase
	fee := transaction.GasPrice.Scale(uint64(gasUsed - refund))
	context.SetBalance(coinbase, fevm.Add(context.GetBalance(coinbase), fee))

	for _, address := range output.AccountsToDelete.Sorted() {
		context.DestroyAccount(address)
	}

	receipt := fevm.Receipt{
		Success: !output.HasErred,
		GasUsed: gasUsed - refund,
		Logs:    output.Logs,
	}
	if transaction.Recipient == nil {
		if !output.HasErred {
			created := output.CreatedAddress
			receipt.ContractAddress = &created
		}
	} else {
		receipt.Output = output.Output
	}
	log.Debug("transaction processed", "success", receipt.Success, "gasUsed", receipt.GasUsed)
	return receipt, nil
}

func validateTransaction(transaction fevm.Transaction, context fevm.WorldState) error {
	sender := transaction.Sender
	if transaction.GasLimit < 0 {
		return fmt.Errorf("%w: negative gas limit %d", ErrInvalidTransaction, transaction.GasLimit)
	}
	if cost := intrinsicCost(transaction.Input); cost > transaction.GasLimit {
		return fmt.Errorf("%w: intrinsic gas %d exceeds gas limit %d", ErrInvalidTransaction, cost, transaction.GasLimit)
	}
	if transaction.Nonce >= math.MaxUint64 {
		return fmt.Errorf("%w: nonce out of range", ErrInvalidTransaction)
	}
	if nonce := context.GetNonce(sender); nonce != transaction.Nonce {
		return fmt.Errorf("%w: nonce mismatch, wanted %d, got %d", ErrInvalidTransaction, nonce, transaction.Nonce)
	}

	cost, overflow := new(uint256.Int).MulOverflow(
		transaction.GasPrice.ToUint256(),
		uint256.NewInt(uint64(transaction.GasLimit)),
	)
	if !overflow {
		_, overflow = cost.AddOverflow(cost, transaction.Value.ToUint256())
	}
	balance := context.GetBalance(sender).ToUint256()
	if overflow || balance.Lt(cost) {
		return fmt.Errorf("%w: insufficient balance of %v", ErrInvalidTransaction, sender)
	}
	if context.GetCodeSize(sender) != 0 {
		return fmt.Errorf("%w: sender %v is a contract", ErrInvalidTransaction, sender)
	}
	return nil
}

// intrinsicCost is the gas charged for a transaction before any code runs.
func intrinsicCost(data fevm.Data) fevm.Gas {
	cost := TxGas
	for _, b := range data {
		if b == 0 {
			cost += TxDataZero
		} else {
			cost += TxDataNonZero
		}
	}
	return cost
}
