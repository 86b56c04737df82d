// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package state holds the world state of a chain: the accounts, their
// storage, and a stack of nested transactions over both.
package state

import (
	"github.com/frontier-evm/fevm/go/fevm"
	"github.com/frontier-evm/fevm/go/trie"
)

type accountTrie = trie.Trie[fevm.Address, *Account]
type storageTrie = trie.Trie[fevm.Key, fevm.Word]

// State is the main account trie plus one storage trie per account with
// non-empty storage. A State is not safe for concurrent use.
//
// The distinction between an account that does not exist and the empty
// account is preserved.
type State struct {
	mainTrie     *accountTrie
	storageTries map[fevm.Address]*storageTrie
	snapshots    []snapshot
}

type snapshot struct {
	mainTrie     *accountTrie
	storageTries map[fevm.Address]*storageTrie
}

func New() *State {
	return &State{
		mainTrie:     trie.New[fevm.Address, *Account](true, nil),
		storageTries: map[fevm.Address]*storageTrie{},
	}
}

// BeginTransaction starts a state transaction. Transactions are implicit and
// can be nested. It is not possible to compute roots during a transaction.
func (s *State) BeginTransaction() {
	storageTries := make(map[fevm.Address]*storageTrie, len(s.storageTries))
	for address, storage := range s.storageTries {
		storageTries[address] = storage.Copy()
	}
	s.snapshots = append(s.snapshots, snapshot{
		mainTrie:     s.mainTrie.Copy(),
		storageTries: storageTries,
	})
}

// CommitTransaction accepts all modifications since the matching
// BeginTransaction.
func (s *State) CommitTransaction() {
	if len(s.snapshots) == 0 {
		panic("commit without open transaction")
	}
	s.snapshots = s.snapshots[:len(s.snapshots)-1]
}

// RollbackTransaction resets the state to the point of the matching
// BeginTransaction.
func (s *State) RollbackTransaction() {
	if len(s.snapshots) == 0 {
		panic("rollback without open transaction")
	}
	last := s.snapshots[len(s.snapshots)-1]
	s.snapshots = s.snapshots[:len(s.snapshots)-1]
	s.mainTrie = last.mainTrie
	s.storageTries = last.storageTries
}

// InTransaction is true while at least one transaction is open.
func (s *State) InTransaction() bool {
	return len(s.snapshots) > 0
}

// GetAccount returns the account at the given address, or the empty account
// if there is none. The result must not be modified.
func (s *State) GetAccount(address fevm.Address) *Account {
	if account := s.mainTrie.Get(address); account != nil {
		return account
	}
	return &EmptyAccount
}

// GetAccountOptional returns the account at the given address, or nil if
// there is none.
func (s *State) GetAccountOptional(address fevm.Address) *Account {
	return s.mainTrie.Get(address)
}

// SetAccount stores the given account. A nil account deletes the account but
// not its storage; see DestroyAccount.
func (s *State) SetAccount(address fevm.Address, account *Account) {
	if account != nil {
		account = account.clone()
	}
	s.mainTrie.Set(address, account)
}

// DestroyAccount removes the account and all of its storage.
func (s *State) DestroyAccount(address fevm.Address) {
	s.DestroyStorage(address)
	s.SetAccount(address, nil)
}

func (s *State) DestroyStorage(address fevm.Address) {
	delete(s.storageTries, address)
}

// GetStorage returns the value stored under the given key, zero if unset.
func (s *State) GetStorage(address fevm.Address, key fevm.Key) fevm.Word {
	storage, found := s.storageTries[address]
	if !found {
		return fevm.Word{}
	}
	return storage.Get(key)
}

// SetStorage updates a storage slot of an existing account. Writing zero
// deletes the slot.
func (s *State) SetStorage(address fevm.Address, key fevm.Key, value fevm.Word) {
	if s.mainTrie.Get(address) == nil {
		panic("storage write to non-existing account " + address.String())
	}
	storage, found := s.storageTries[address]
	if !found {
		storage = trie.New[fevm.Key, fevm.Word](true, fevm.Word{})
		s.storageTries[address] = storage
	}
	storage.Set(key, value)
	if storage.Len() == 0 {
		delete(s.storageTries, address)
	}
}

// StorageRoot computes the root of the storage trie of the given account.
func (s *State) StorageRoot(address fevm.Address) fevm.Hash {
	if s.InTransaction() {
		panic("storage root requested during transaction")
	}
	return s.storageRoot(address)
}

func (s *State) storageRoot(address fevm.Address) fevm.Hash {
	if storage, found := s.storageTries[address]; found {
		return storage.Root(trie.EncodeWord[fevm.Key])
	}
	return trie.EmptyRoot
}

// StateRoot computes the root of the main trie, folding in the storage root
// of every account.
func (s *State) StateRoot() fevm.Hash {
	if s.InTransaction() {
		panic("state root requested during transaction")
	}
	return s.mainTrie.Root(func(address fevm.Address, account *Account) []byte {
		return encodeAccount(account, s.storageRoot(address))
	})
}
