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
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/frontier-evm/fevm/go/fevm"
	"github.com/frontier-evm/fevm/go/state"
	"github.com/frontier-evm/fevm/go/trie"
	"github.com/holiman/uint256"
)

func newSignedTransfer(t *testing.T, key *ecdsa.PrivateKey, nonce uint64, to fevm.Address, value int64) *types.Transaction {
	t.Helper()
	tx := types.NewTransaction(nonce, common.Address(to), big.NewInt(value), 21_000, big.NewInt(1), nil)
	signed, err := types.SignTx(tx, types.FrontierSigner{}, key)
	if err != nil {
		t.Fatalf("failed to sign transaction: %v", err)
	}
	return signed
}

func newBlockTestSetup(t *testing.T) (*state.State, *ecdsa.PrivateKey, fevm.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	sender := fevm.Address(crypto.PubkeyToAddress(key.PublicKey))
	s := state.New()
	s.CreateEther(sender, fevm.NewValue(1_000_000))
	return s, key, sender
}

func newBlockEnvironment(gasLimit fevm.Gas) fevm.BlockEnvironment {
	return fevm.BlockEnvironment{
		BlockParameters: fevm.BlockParameters{
			BlockNumber: 100,
			Coinbase:    fevm.Address{0xcb},
			GasLimit:    gasLimit,
		},
	}
}

func TestApplyBody_EmptyBody(t *testing.T) {
	s := state.New()
	env := newBlockEnvironment(1_000_000)
	res, err := ApplyBody(newProcessor(newTestInterpreter(t)), s, env, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.GasUsed != 0 || len(res.Receipts) != 0 {
		t.Errorf("unexpected result for empty body: %+v", res)
	}
	if res.TransactionsRoot != trie.EmptyRoot || res.ReceiptRoot != trie.EmptyRoot {
		t.Errorf("unexpected roots of empty body")
	}
	if want, got := BlockReward, s.GetBalance(env.Coinbase); want != got {
		t.Errorf("unexpected miner balance, wanted %v, got %v", want, got)
	}
}

func TestApplyBody_ProcessesTransactions(t *testing.T) {
	s, key, sender := newBlockTestSetup(t)
	receiver := fevm.Address{2}
	transactions := []*types.Transaction{
		newSignedTransfer(t, key, 0, receiver, 100),
		newSignedTransfer(t, key, 1, receiver, 50),
	}

	res, err := ApplyBody(newProcessor(newTestInterpreter(t)), s, newBlockEnvironment(1_000_000), transactions, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want, got := fevm.Gas(42_000), res.GasUsed; want != got {
		t.Errorf("unexpected gas used, wanted %d, got %d", want, got)
	}
	if want, got := 2, len(res.Receipts); want != got {
		t.Fatalf("unexpected number of receipts, wanted %d, got %d", want, got)
	}
	if want, got := fevm.Gas(21_000), res.Receipts[0].CumulativeGasUsed; want != got {
		t.Errorf("unexpected cumulative gas, wanted %d, got %d", want, got)
	}
	if want, got := fevm.Gas(42_000), res.Receipts[1].CumulativeGasUsed; want != got {
		t.Errorf("unexpected cumulative gas, wanted %d, got %d", want, got)
	}
	if res.Receipts[0].PostState == res.Receipts[1].PostState {
		t.Errorf("post states of different transactions should differ")
	}
	if want, got := fevm.NewValue(150), s.GetBalance(receiver); want != got {
		t.Errorf("unexpected receiver balance, wanted %v, got %v", want, got)
	}
	if want, got := fevm.NewValue(1_000_000-150-42_000), s.GetBalance(sender); want != got {
		t.Errorf("unexpected sender balance, wanted %v, got %v", want, got)
	}
	if res.TransactionsRoot == trie.EmptyRoot || res.ReceiptRoot == trie.EmptyRoot {
		t.Errorf("roots of non-empty body should not be empty")
	}
	if res.Bloom != (types.Bloom{}) {
		t.Errorf("transfers should not produce a bloom")
	}
}

func TestApplyBody_TransactionsRootIsIndexedByPosition(t *testing.T) {
	_, key, _ := newBlockTestSetup(t)
	first := newSignedTransfer(t, key, 0, fevm.Address{2}, 1)
	second := newSignedTransfer(t, key, 1, fevm.Address{2}, 1)

	roots := []fevm.Hash{}
	for _, order := range [][]*types.Transaction{{first, second}, {second, first}} {
		transactionsTrie := trie.New[trie.Bytes, trie.Bytes](false, "")
		for i, tx := range order {
			encoded, err := tx.MarshalBinary()
			if err != nil {
				t.Fatalf("failed to encode transaction: %v", err)
			}
			transactionsTrie.Set(trie.Bytes(mustEncode(uint64(i))), trie.Bytes(encoded))
		}
		roots = append(roots, transactionsTrie.Root(trie.EncodeBytes[trie.Bytes]))
	}
	if roots[0] == roots[1] {
		t.Errorf("transaction order should affect the root")
	}

	s, key, _ := newBlockTestSetup(t)
	first = newSignedTransfer(t, key, 0, fevm.Address{2}, 1)
	second = newSignedTransfer(t, key, 1, fevm.Address{2}, 1)
	res, err := ApplyBody(newProcessor(newTestInterpreter(t)), s, newBlockEnvironment(1_000_000), []*types.Transaction{first, second}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reference := trie.New[trie.Bytes, trie.Bytes](false, "")
	for i, tx := range []*types.Transaction{first, second} {
		encoded, _ := tx.MarshalBinary()
		reference.Set(trie.Bytes(mustEncode(uint64(i))), trie.Bytes(encoded))
	}
	if want, got := reference.Root(trie.EncodeBytes[trie.Bytes]), res.TransactionsRoot; want != got {
		t.Errorf("unexpected transactions root, wanted %v, got %v", want, got)
	}
}

func TestApplyBody_RejectsInvalidTransactions(t *testing.T) {
	tests := map[string]func(*testing.T, *ecdsa.PrivateKey) []*types.Transaction{
		"block gas exceeded": func(t *testing.T, key *ecdsa.PrivateKey) []*types.Transaction {
			return []*types.Transaction{
				newSignedTransfer(t, key, 0, fevm.Address{2}, 1),
				newSignedTransfer(t, key, 1, fevm.Address{2}, 1),
			}
		},
		"unsigned": func(*testing.T, *ecdsa.PrivateKey) []*types.Transaction {
			return []*types.Transaction{
				types.NewTransaction(0, common.Address{2}, big.NewInt(1), 21_000, big.NewInt(1), nil),
			}
		},
		"wrong nonce": func(t *testing.T, key *ecdsa.PrivateKey) []*types.Transaction {
			return []*types.Transaction{newSignedTransfer(t, key, 7, fevm.Address{2}, 1)}
		},
	}

	for name, transactions := range tests {
		t.Run(name, func(t *testing.T) {
			s, key, _ := newBlockTestSetup(t)
			_, err := ApplyBody(newProcessor(newTestInterpreter(t)), s, newBlockEnvironment(30_000), transactions(t, key), nil)
			if !errors.Is(err, ErrInvalidTransaction) {
				t.Errorf("unexpected error, wanted %v, got %v", ErrInvalidTransaction, err)
			}
		})
	}
}

func TestPayRewards_MinerAndOmmers(t *testing.T) {
	s := state.New()
	miner := fevm.Address{1}
	ommers := []Ommer{
		{Coinbase: fevm.Address{2}, Number: 99},
		{Coinbase: fevm.Address{3}, Number: 98},
	}
	if err := payRewards(s, 100, miner, ommers); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reward := BlockReward.ToUint256()
	fraction := func(numerator, denominator uint64) fevm.Value {
		res := new(uint256.Int).Mul(reward, uint256.NewInt(numerator))
		return fevm.ValueFromUint256(res.Div(res, uint256.NewInt(denominator)))
	}

	if want, got := fevm.Add(BlockReward, fraction(2, 32)), s.GetBalance(miner); want != got {
		t.Errorf("unexpected miner reward, wanted %v, got %v", want, got)
	}
	if want, got := fraction(7, 8), s.GetBalance(fevm.Address{2}); want != got {
		t.Errorf("unexpected reward of first ommer, wanted %v, got %v", want, got)
	}
	if want, got := fraction(6, 8), s.GetBalance(fevm.Address{3}); want != got {
		t.Errorf("unexpected reward of second ommer, wanted %v, got %v", want, got)
	}
}

func TestPayRewards_OmmersOutsideRewardedAgesAreRejected(t *testing.T) {
	tests := map[string]int64{
		"same block":   100,
		"future block": 101,
		"too old":      92,
	}
	for name, number := range tests {
		t.Run(name, func(t *testing.T) {
			s := state.New()
			ommers := []Ommer{
				{Coinbase: fevm.Address{2}, Number: 99},
				{Coinbase: fevm.Address{3}, Number: number},
			}
			before := s.StateRoot()
			err := payRewards(s, 100, fevm.Address{1}, ommers)
			if !errors.Is(err, ErrInvalidOmmer) {
				t.Fatalf("unexpected error, wanted %v, got %v", ErrInvalidOmmer, err)
			}
			if want, got := before, s.StateRoot(); want != got {
				t.Errorf("rewards were paid for invalid ommers")
			}
		})
	}
}

func TestPayRewards_OldestRewardedOmmerGetsAnEighth(t *testing.T) {
	s := state.New()
	if err := payRewards(s, 100, fevm.Address{1}, []Ommer{{Coinbase: fevm.Address{2}, Number: 93}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := fevm.ValueFromUint256(new(uint256.Int).Div(BlockReward.ToUint256(), uint256.NewInt(8)))
	if got := s.GetBalance(fevm.Address{2}); want != got {
		t.Errorf("unexpected ommer reward, wanted %v, got %v", want, got)
	}
}

func TestLogsBloom_ContainsAddressesAndTopics(t *testing.T) {
	logs := []fevm.Log{
		{Address: fevm.Address{1}, Topics: []fevm.Hash{{2}, {3}}},
		{Address: fevm.Address{4}},
	}
	bloom := LogsBloom(logs)
	for _, item := range [][]byte{
		fevm.Address{1}.Bytes(),
		fevm.Address{4}.Bytes(),
		{2, 31: 0},
		{3, 31: 0},
	} {
		if !bloom.Test(item) {
			t.Errorf("bloom does not contain %x", item)
		}
	}
	if LogsBloom(nil) != (types.Bloom{}) {
		t.Errorf("bloom of no logs should be empty")
	}
}
