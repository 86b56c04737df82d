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
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/frontier-evm/fevm/go/fevm"
)

// node is one of the internal node types of a Merkle-Patricia trie. The
// empty (null) node is represented by nil. Nodes are built bottom-up for
// every root computation and never modified afterwards.
type node interface {
	// serialize produces the list of items forming the RLP encoding of
	// the node.
	serialize() []any
}

// leafNode holds the remaining nibbles of a single key and its value.
type leafNode struct {
	restOfKey []byte
	value     []byte
}

// extensionNode holds a nibble sequence shared by all keys of the sub-trie.
type extensionNode struct {
	keySegment []byte
	subnode    rlp.RawValue
}

// branchNode has one child reference per nibble and the value of the key
// ending at this node, if any.
type branchNode struct {
	subnodes [16]rlp.RawValue
	value    []byte
}

func (n *leafNode) serialize() []any {
	return []any{nibblesToCompact(n.restOfKey, true), n.value}
}

func (n *extensionNode) serialize() []any {
	return []any{nibblesToCompact(n.keySegment, false), n.subnode}
}

func (n *branchNode) serialize() []any {
	res := make([]any, 0, 17)
	for _, subnode := range n.subnodes {
		res = append(res, subnode)
	}
	return append(res, n.value)
}

// entry is a key/value pair prepared for the root computation. The key is
// given as a nibble sequence, the value in its final encoding.
type entry struct {
	key   []byte
	value []byte
}

// emptyString is the RLP encoding of the null node.
var emptyString = rlp.RawValue{0x80}

// encodeInternalNode produces the reference to the given node as it is
// embedded in its parent: nodes with an encoding shorter than 32 bytes are
// embedded directly, larger nodes are referenced by their hash.
func encodeInternalNode(n node) rlp.RawValue {
	if n == nil {
		return emptyString
	}
	encoded := mustEncode(n.serialize())
	if len(encoded) < 32 {
		return encoded
	}
	hash := fevm.Keccak256(encoded)
	return mustEncode(hash[:])
}

// patricialize builds the node covering all given entries, whose keys are
// known to agree on their first level nibbles.
func patricialize(entries []entry, level int) node {
	if len(entries) == 0 {
		return nil
	}

	arbitraryKey := entries[0].key
	if len(entries) == 1 {
		return &leafNode{restOfKey: arbitraryKey[level:], value: entries[0].value}
	}

	// Find the longest common prefix of all keys below the current level.
	substring := arbitraryKey[level:]
	prefixLength := len(substring)
	for _, e := range entries {
		prefixLength = min(prefixLength, commonPrefixLength(substring, e.key[level:]))
		if prefixLength == 0 {
			break
		}
	}

	if prefixLength > 0 {
		return &extensionNode{
			keySegment: arbitraryKey[level : level+prefixLength],
			subnode:    encodeInternalNode(patricialize(entries, level+prefixLength)),
		}
	}

	var branches [16][]entry
	var value []byte
	for _, e := range entries {
		if len(e.key) == level {
			value = e.value
		} else {
			nibble := e.key[level]
			branches[nibble] = append(branches[nibble], e)
		}
	}
	res := &branchNode{value: value}
	for i := range branches {
		res.subnodes[i] = encodeInternalNode(patricialize(branches[i], level+1))
	}
	if res.value == nil {
		res.value = []byte{}
	}
	return res
}

func mustEncode(value any) []byte {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		panic(fmt.Sprintf("failed to encode trie node: %v", err))
	}
	return encoded
}
