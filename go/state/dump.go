// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package state

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/frontier-evm/fevm/go/fevm"
)

// DumpAccount is the content of a single account in a Dump.
type DumpAccount struct {
	Nonce   uint64                 `json:"nonce"`
	Balance fevm.Value             `json:"balance"`
	Code    hexutil.Bytes          `json:"code,omitempty"`
	Storage map[fevm.Key]fevm.Word `json:"storage,omitempty"`
}

// Dump is a detached copy of all accounts and their storage.
type Dump map[fevm.Address]DumpAccount

// Dump lists the content of the state including uncommitted modifications
// of open transactions.
func (s *State) Dump() Dump {
	res := make(Dump, s.mainTrie.Len())
	for _, address := range s.mainTrie.Keys() {
		account := s.mainTrie.Get(address)
		entry := DumpAccount{
			Nonce:   account.Nonce,
			Balance: account.Balance,
			Code:    bytes.Clone(account.Code),
		}
		if storage, found := s.storageTries[address]; found {
			entry.Storage = make(map[fevm.Key]fevm.Word, storage.Len())
			for _, key := range storage.Keys() {
				entry.Storage[key] = storage.Get(key)
			}
		}
		res[address] = entry
	}
	return res
}

// NewFromDump creates a state holding the accounts of the given dump.
func NewFromDump(dump Dump) *State {
	s := New()
	for address, account := range dump {
		s.SetAccount(address, &Account{
			Nonce:   account.Nonce,
			Balance: account.Balance,
			Code:    bytes.Clone(account.Code),
		})
		for key, value := range account.Storage {
			s.SetStorage(address, key, value)
		}
	}
	return s
}
