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
	"fmt"

	"github.com/frontier-evm/fevm/go/fevm"
)

func (s *State) AccountExists(address fevm.Address) bool {
	return s.GetAccountOptional(address) != nil
}

// AccountHasCodeOrNonce is true if the account has a non-zero nonce or
// non-empty code. Contract creations targeting such an account fail.
func (s *State) AccountHasCodeOrNonce(address fevm.Address) bool {
	account := s.GetAccount(address)
	return account.Nonce != 0 || len(account.Code) != 0
}

// ModifyState applies the given update to a copy of the account at the given
// address and stores the result. Non-existing accounts are created.
func (s *State) ModifyState(address fevm.Address, update func(*Account)) {
	account := s.GetAccount(address).clone()
	update(account)
	s.mainTrie.Set(address, account)
}

// MoveEther transfers the given amount between two accounts. The state is
// left untouched if the sender can not cover the amount.
func (s *State) MoveEther(sender, recipient fevm.Address, amount fevm.Value) error {
	if balance := s.GetAccount(sender).Balance; balance.Cmp(amount) < 0 {
		return fmt.Errorf("insufficient balance of %v: %v < %v", sender, balance, amount)
	}
	s.ModifyState(sender, func(account *Account) {
		account.Balance = fevm.Sub(account.Balance, amount)
	})
	s.ModifyState(recipient, func(account *Account) {
		account.Balance = fevm.Add(account.Balance, amount)
	})
	return nil
}

func (s *State) SetAccountBalance(address fevm.Address, amount fevm.Value) {
	s.ModifyState(address, func(account *Account) {
		account.Balance = amount
	})
}

// TouchAccount materializes the empty account at the given address if there
// is no account yet.
func (s *State) TouchAccount(address fevm.Address) {
	if !s.AccountExists(address) {
		s.SetAccount(address, &EmptyAccount)
	}
}

func (s *State) SetCode(address fevm.Address, code fevm.Code) {
	s.ModifyState(address, func(account *Account) {
		account.Code = code
	})
}

// CreateEther adds newly minted currency to an account, for instance for
// genesis allocations and block rewards.
func (s *State) CreateEther(address fevm.Address, amount fevm.Value) {
	s.ModifyState(address, func(account *Account) {
		account.Balance = fevm.Add(account.Balance, amount)
	})
}

// The remaining methods complete the fevm.TransactionContext interface.

func (s *State) GetBalance(address fevm.Address) fevm.Value {
	return s.GetAccount(address).Balance
}

func (s *State) SetBalance(address fevm.Address, value fevm.Value) {
	s.SetAccountBalance(address, value)
}

func (s *State) GetNonce(address fevm.Address) uint64 {
	return s.GetAccount(address).Nonce
}

func (s *State) SetNonce(address fevm.Address, nonce uint64) {
	s.ModifyState(address, func(account *Account) {
		account.Nonce = nonce
	})
}

func (s *State) GetCode(address fevm.Address) fevm.Code {
	return s.GetAccount(address).Code
}

func (s *State) GetCodeHash(address fevm.Address) fevm.Hash {
	return s.GetAccount(address).CodeHash()
}

func (s *State) GetCodeSize(address fevm.Address) int {
	return len(s.GetAccount(address).Code)
}

var _ fevm.TransactionContext = (*State)(nil)
