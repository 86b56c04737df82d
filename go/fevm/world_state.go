// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package fevm

//go:generate mockgen -source world_state.go -destination world_state_mock.go -package fevm

// WorldState is an interface to access and manipulate the state of the block chain.
// The state of the chain is a collection of accounts, each with a balance, a nonce,
// optional code and storage.
type WorldState interface {
	// AccountExists is true if the account is present in the state, even if
	// it is the empty account.
	AccountExists(Address) bool

	GetBalance(Address) Value
	SetBalance(Address, Value)

	GetNonce(Address) uint64
	SetNonce(Address, uint64)

	GetCode(Address) Code
	GetCodeHash(Address) Hash
	GetCodeSize(Address) int
	SetCode(Address, Code)

	GetStorage(Address, Key) Word
	SetStorage(Address, Key, Word)
}

// TransactionContext extends the WorldState by the operations needed to run
// a transaction: nested all-or-nothing transactions on the state and the
// account life-cycle operations of the message call protocol.
type TransactionContext interface {
	WorldState

	// TouchAccount materializes an empty account at the given address if
	// there is none.
	TouchAccount(Address)

	// AccountHasCodeOrNonce is true if the account has a non-zero nonce or
	// non-empty code. Contract creations targeting such an account fail.
	AccountHasCodeOrNonce(Address) bool

	// MoveEther transfers the given amount between two accounts. It fails
	// without modifying the state if the sender can not cover the amount.
	MoveEther(sender, recipient Address, amount Value) error

	// DestroyAccount removes the account and all of its storage.
	DestroyAccount(Address)

	// BeginTransaction starts a nested transaction. Every call must be
	// matched by exactly one CommitTransaction or RollbackTransaction.
	BeginTransaction()
	CommitTransaction()
	RollbackTransaction()
}
