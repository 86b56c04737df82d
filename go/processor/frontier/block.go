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

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/frontier-evm/fevm/go/fevm"
	"github.com/frontier-evm/fevm/go/state"
	"github.com/frontier-evm/fevm/go/trie"
	"github.com/holiman/uint256"
)

// BlockReward is the reward of the miner of a block, 5 ether.
var BlockReward = fevm.NewValue(5_000_000_000_000_000_000)

// ErrInvalidOmmer is reported for ommers outside the range rewarded by a block.
const ErrInvalidOmmer = fevm.ConstError("invalid ommer")

const maxOmmerAge = 7

// Ommer is the part of an ommer header relevant for the block rewards.
type Ommer struct {
	Coinbase fevm.Address
	Number   int64
}

// BlockReceipt is the Frontier receipt of a transaction included in a block.
type BlockReceipt struct {
	PostState         fevm.Hash
	CumulativeGasUsed fevm.Gas
	Bloom             types.Bloom
	Logs              []fevm.Log
}

// BodyResult summarizes the effects of a block body. The roots and the bloom
// are what a block header commits to.
type BodyResult struct {
	GasUsed          fevm.Gas
	TransactionsRoot fevm.Hash
	ReceiptRoot      fevm.Hash
	Bloom            types.Bloom
	Receipts         []BlockReceipt
}

// ApplyBody runs all transactions of a block on the given state and pays the
// rewards of the miner and the ommers. Any invalid transaction invalidates
// the block; the state is then left in an undefined condition.
func ApplyBody(
	processor fevm.Processor,
	state *state.State,
	env fevm.BlockEnvironment,
	transactions []*types.Transaction,
	ommers []Ommer,
) (BodyResult, error) {
	transactionsTrie := trie.New[trie.Bytes, trie.Bytes](false, "")
	receiptsTrie := trie.New[trie.Bytes, trie.Bytes](false, "")

	var res BodyResult
	var blockLogs []fevm.Log
	for i, tx := range transactions {
		key := trie.Bytes(mustEncode(uint64(i)))
		encoded, err := tx.MarshalBinary()
		if err != nil {
			return BodyResult{}, fmt.Errorf("failed to encode transaction %d: %w", i, err)
		}
		transactionsTrie.Set(key, trie.Bytes(encoded))

		transaction, err := checkTransaction(tx, env.GasLimit-res.GasUsed)
		if err != nil {
			return BodyResult{}, fmt.Errorf("transaction %d: %w", i, err)
		}
		receipt, err := processor.Run(env, transaction, state)
		if err != nil {
			return BodyResult{}, fmt.Errorf("transaction %d: %w", i, err)
		}
		res.GasUsed += receipt.GasUsed

		blockReceipt := BlockReceipt{
			PostState:         state.StateRoot(),
			CumulativeGasUsed: res.GasUsed,
			Bloom:             LogsBloom(receipt.Logs),
			Logs:              receipt.Logs,
		}
		receiptsTrie.Set(key, trie.Bytes(blockReceipt.encode()))
		res.Receipts = append(res.Receipts, blockReceipt)
		blockLogs = append(blockLogs, receipt.Logs...)
	}

	if err := payRewards(state, env.BlockNumber, env.Coinbase, ommers); err != nil {
		return BodyResult{}, err
	}

	res.TransactionsRoot = transactionsTrie.Root(trie.EncodeBytes[trie.Bytes])
	res.ReceiptRoot = receiptsTrie.Root(trie.EncodeBytes[trie.Bytes])
	res.Bloom = LogsBloom(blockLogs)
	return res, nil
}

// checkTransaction recovers the sender of a signed transaction and checks
// that it fits into the gas left in the block.
func checkTransaction(tx *types.Transaction, gasAvailable fevm.Gas) (fevm.Transaction, error) {
	if tx.Type() != types.LegacyTxType {
		return fevm.Transaction{}, fmt.Errorf("%w: unsupported transaction type %d", ErrInvalidTransaction, tx.Type())
	}
	if tx.Gas() > math.MaxInt64 || fevm.Gas(tx.Gas()) > gasAvailable {
		return fevm.Transaction{}, fmt.Errorf("%w: gas limit %d exceeds available block gas %d", ErrInvalidTransaction, tx.Gas(), gasAvailable)
	}
	sender, err := types.Sender(types.FrontierSigner{}, tx)
	if err != nil {
		return fevm.Transaction{}, fmt.Errorf("%w: %w", ErrInvalidTransaction, err)
	}
	value, overflow := uint256.FromBig(tx.Value())
	if overflow {
		return fevm.Transaction{}, fmt.Errorf("%w: value out of range", ErrInvalidTransaction)
	}
	gasPrice, overflow := uint256.FromBig(tx.GasPrice())
	if overflow {
		return fevm.Transaction{}, fmt.Errorf("%w: gas price out of range", ErrInvalidTransaction)
	}

	res := fevm.Transaction{
		Sender:   fevm.Address(sender),
		Nonce:    tx.Nonce(),
		Input:    tx.Data(),
		Value:    fevm.ValueFromUint256(value),
		GasLimit: fevm.Gas(tx.Gas()),
		GasPrice: fevm.ValueFromUint256(gasPrice),
	}
	if to := tx.To(); to != nil {
		recipient := fevm.Address(*to)
		res.Recipient = &recipient
	}
	return res, nil
}

// payRewards mints the reward of the block's miner, including a share for
// every referenced ommer, and the reward of each ommer's miner decreasing
// with the ommer's age. Ommers must be between 1 and 7 blocks older than the
// block; otherwise no reward is paid at all.
func payRewards(state *state.State, blockNumber int64, coinbase fevm.Address, ommers []Ommer) error {
	for _, ommer := range ommers {
		if age := blockNumber - ommer.Number; age < 1 || age > maxOmmerAge {
			return fmt.Errorf("%w: ommer of block %d has age %d", ErrInvalidOmmer, ommer.Number, age)
		}
	}
	reward := BlockReward.ToUint256()

	minerReward := new(uint256.Int).Div(reward, uint256.NewInt(32))
	minerReward.Mul(minerReward, uint256.NewInt(uint64(len(ommers))))
	minerReward.Add(minerReward, reward)
	state.CreateEther(coinbase, fevm.ValueFromUint256(minerReward))

	for _, ommer := range ommers {
		age := blockNumber - ommer.Number
		ommerReward := new(uint256.Int).Mul(reward, uint256.NewInt(uint64(8-age)))
		ommerReward.Div(ommerReward, uint256.NewInt(8))
		state.CreateEther(ommer.Coinbase, fevm.ValueFromUint256(ommerReward))
	}
	return nil
}

// LogsBloom computes the 2048-bit bloom filter of the addresses and topics
// of the given logs.
func LogsBloom(logs []fevm.Log) types.Bloom {
	var bloom types.Bloom
	for _, log := range logs {
		bloom.Add(log.Address[:])
		for _, topic := range log.Topics {
			bloom.Add(topic[:])
		}
	}
	return bloom
}

type rlpReceipt struct {
	PostState         fevm.Hash
	CumulativeGasUsed uint64
	Bloom             types.Bloom
	Logs              []fevm.Log
}

func (r *BlockReceipt) encode() []byte {
	return mustEncode(rlpReceipt{
		PostState:         r.PostState,
		CumulativeGasUsed: uint64(r.CumulativeGasUsed),
		Bloom:             r.Bloom,
		Logs:              r.Logs,
	})
}

func mustEncode(value any) []byte {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		panic(fmt.Sprintf("failed to encode %T: %v", value, err))
	}
	return encoded
}
