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

import (
	"sync"

	"golang.org/x/crypto/sha3"
)

var keccak256HasherPool = sync.Pool{New: func() any { return sha3.NewLegacyKeccak256() }}

type keccakHasher interface {
	Reset()
	Write(in []byte) (int, error)
	Read(out []byte) (int, error)
}

// Keccak256 computes the 32-byte Keccak hash of the given data.
func Keccak256(data []byte) Hash {
	hasher := keccak256HasherPool.Get().(keccakHasher)
	hasher.Reset()
	hasher.Write(data)
	var res Hash
	hasher.Read(res[:])
	keccak256HasherPool.Put(hasher)
	return res
}

// EmptyCodeHash is the hash of an empty byte sequence, and thus the code hash
// of every account without code.
var EmptyCodeHash = Keccak256(nil)
