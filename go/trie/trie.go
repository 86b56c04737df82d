// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package trie implements the Merkle-Patricia trie used to commit to the
// content of key/value mappings like the account and storage state.
//
// A trie is a plain mapping; the node structure is only materialized while
// computing the root hash. Thus, the root is a pure function of the mapping's
// content, independent of the order in which entries were inserted.
package trie

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/frontier-evm/fevm/go/fevm"
)

// EmptyRoot is the root hash of a trie without entries.
var EmptyRoot = fevm.Keccak256(emptyString)

// Key is the constraint on key types of tries.
type Key interface {
	comparable
	Bytes() []byte
}

// ValueEncoder produces the byte encoding of a value stored under the given
// key as it is committed to by the trie's root. Encodings must not be empty.
type ValueEncoder[K Key, V comparable] func(key K, value V) []byte

// Trie is a mapping from keys to values with a deterministic root hash.
// Storing the default value for a key removes the key from the trie.
type Trie[K Key, V comparable] struct {
	secured      bool
	defaultValue V
	data         map[K]V
}

// New creates an empty trie. If secured is set, keys are hashed before
// being placed in the trie.
func New[K Key, V comparable](secured bool, defaultValue V) *Trie[K, V] {
	return &Trie[K, V]{
		secured:      secured,
		defaultValue: defaultValue,
		data:         map[K]V{},
	}
}

// Get returns the value stored for the given key or the default value if
// there is none.
func (t *Trie[K, V]) Get(key K) V {
	if value, found := t.data[key]; found {
		return value
	}
	return t.defaultValue
}

// Set stores the value for the given key, or removes the key if the value
// is the default value.
func (t *Trie[K, V]) Set(key K, value V) {
	if value == t.defaultValue {
		delete(t.data, key)
	} else {
		t.data[key] = value
	}
}

func (t *Trie[K, V]) Len() int {
	return len(t.data)
}

// Copy creates an independent trie with the same content. Values are
// copied shallowly.
func (t *Trie[K, V]) Copy() *Trie[K, V] {
	return &Trie[K, V]{
		secured:      t.secured,
		defaultValue: t.defaultValue,
		data:         maps.Clone(t.data),
	}
}

// Keys lists all keys with a non-default value, ordered by their byte
// representation.
func (t *Trie[K, V]) Keys() []K {
	res := make([]K, 0, len(t.data))
	for key := range t.data {
		res = append(res, key)
	}
	slices.SortFunc(res, func(a, b K) int {
		return bytes.Compare(a.Bytes(), b.Bytes())
	})
	return res
}

// Root computes the root hash committing to the content of the trie, using
// the given encoder to serialize values.
func (t *Trie[K, V]) Root(encode ValueEncoder[K, V]) fevm.Hash {
	entries := make([]entry, 0, len(t.data))
	for key, value := range t.data {
		preimage := key.Bytes()
		if t.secured {
			hash := fevm.Keccak256(preimage)
			preimage = hash[:]
		}
		encoded := encode(key, value)
		if len(encoded) == 0 {
			panic(fmt.Sprintf("empty encoding of trie value for key %x", key.Bytes()))
		}
		entries = append(entries, entry{key: bytesToNibbles(preimage), value: encoded})
	}

	root := encodeInternalNode(patricialize(entries, 0))
	if len(root) < 32 {
		return fevm.Keccak256(root)
	}
	// Large nodes are referenced as an encoded 32-byte string.
	var res fevm.Hash
	copy(res[:], root[1:])
	return res
}
