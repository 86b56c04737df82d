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
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/frontier-evm/fevm/go/fevm"
)

// Account is the record kept in the state for every address. Accounts held
// by a State are never modified in place; updates replace the stored
// instance.
type Account struct {
	Nonce   uint64
	Balance fevm.Value
	Code    fevm.Code
}

// EmptyAccount is the account materialized for addresses touched by a
// message call. It is distinct from a non-existing account.
var EmptyAccount = Account{}

func (a *Account) IsEmpty() bool {
	return a.Nonce == 0 && a.Balance.IsZero() && len(a.Code) == 0
}

func (a *Account) Equal(other *Account) bool {
	return a.Nonce == other.Nonce &&
		a.Balance == other.Balance &&
		bytes.Equal(a.Code, other.Code)
}

func (a *Account) CodeHash() fevm.Hash {
	if len(a.Code) == 0 {
		return fevm.EmptyCodeHash
	}
	return fevm.Keccak256(a.Code)
}

func (a *Account) clone() *Account {
	res := *a
	return &res
}

func (a *Account) String() string {
	return fmt.Sprintf("Account{nonce: %d, balance: %v, code: %d bytes}", a.Nonce, a.Balance, len(a.Code))
}

// encodeAccount produces the RLP encoding of the account as it is committed
// to by the state root: the list of nonce, balance, storage root and code
// hash.
func encodeAccount(account *Account, storageRoot fevm.Hash) []byte {
	codeHash := account.CodeHash()
	encoded, err := rlp.EncodeToBytes(&types.StateAccount{
		Nonce:    account.Nonce,
		Balance:  account.Balance.ToUint256(),
		Root:     common.Hash(storageRoot),
		CodeHash: codeHash[:],
	})
	if err != nil {
		panic(fmt.Sprintf("failed to encode account: %v", err))
	}
	return encoded
}
