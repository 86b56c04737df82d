// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package trie

import (
	"github.com/frontier-evm/fevm/go/fevm"
)

// Bytes is an immutable byte sequence usable as key and value of a trie.
type Bytes string

func (b Bytes) Bytes() []byte {
	return []byte(b)
}

// EncodeBytes stores byte values in the trie as they are.
func EncodeBytes[K Key](_ K, value Bytes) []byte {
	return []byte(value)
}

// EncodeWord encodes a storage word as an RLP integer, thus as a string of
// its big-endian bytes without leading zeros.
func EncodeWord[K Key](_ K, value fevm.Word) []byte {
	return mustEncode(value.ToUint256().Bytes())
}
