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

// bytesToNibbles splits every byte of the given key into two 4-bit nibbles,
// high nibble first.
func bytesToNibbles(key []byte) []byte {
	nibbles := make([]byte, len(key)*2)
	for i, b := range key {
		nibbles[i*2] = b >> 4
		nibbles[i*2+1] = b & 0x0F
	}
	return nibbles
}

// nibblesToCompact packs a nibble sequence into the hex-prefix encoding.
//
// The high nibble of the first byte holds two flags:
//   - 0x2: the encoded key belongs to a leaf node
//   - 0x1: the number of nibbles is odd
//
// For an odd number of nibbles the low nibble of the first byte holds the
// first nibble, otherwise it is zero.
func nibblesToCompact(nibbles []byte, isLeaf bool) []byte {
	flags := byte(0)
	if isLeaf {
		flags = 2
	}
	res := make([]byte, 0, len(nibbles)/2+1)
	if len(nibbles)%2 == 0 {
		res = append(res, flags<<4)
	} else {
		res = append(res, (flags+1)<<4|nibbles[0])
		nibbles = nibbles[1:]
	}
	for i := 0; i < len(nibbles); i += 2 {
		res = append(res, nibbles[i]<<4|nibbles[i+1])
	}
	return res
}

// commonPrefixLength returns the length of the common prefix of a and b.
func commonPrefixLength(a, b []byte) int {
	length := min(len(a), len(b))
	for i := 0; i < length; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return length
}
