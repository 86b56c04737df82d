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
	"bytes"
	"encoding/hex"
	"fmt"
	"slices"
	"testing"

	"github.com/frontier-evm/fevm/go/fevm"
	"pgregory.net/rand"
)

func TestTrie_EmptyRootIsKnownConstant(t *testing.T) {
	want := "56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421"
	if got := hex.EncodeToString(EmptyRoot[:]); want != got {
		t.Fatalf("unexpected empty root, wanted %v, got %v", want, got)
	}

	for _, secured := range []bool{true, false} {
		bytesTrie := New[Bytes, Bytes](secured, "")
		if got := bytesTrie.Root(EncodeBytes[Bytes]); got != EmptyRoot {
			t.Errorf("unexpected root of empty bytes trie, secured %t, got %v", secured, got)
		}
		wordTrie := New[fevm.Key, fevm.Word](secured, fevm.Word{31: 1})
		if got := wordTrie.Root(EncodeWord[fevm.Key]); got != EmptyRoot {
			t.Errorf("unexpected root of empty word trie, secured %t, got %v", secured, got)
		}
	}
}

func TestTrie_ProducesKnownRoots(t *testing.T) {
	tests := map[string]struct {
		entries map[string]string
		root    string
	}{
		"dogs": {
			entries: map[string]string{"doe": "reindeer", "dog": "puppy", "dogglesworth": "cat"},
			root:    "8aad789dff2f538bca5d8ea56e8abe10f4c7ba3a5dea95fea4cd6e7c3a1168d3",
		},
		"puppy": {
			entries: map[string]string{"do": "verb", "horse": "stallion", "doge": "coin", "dog": "puppy"},
			root:    "5991bb8c6514148a29db676a14ac506cd2cd5775ace63c30a4fe457715e9ac84",
		},
		"foo": {
			entries: map[string]string{"foo": "bar", "food": "bass"},
			root:    "17beaa1648bafa633cda809c90c04af50fc8aed3cb40d16efbddee6fdf63c4c3",
		},
		"smallValues": {
			entries: map[string]string{"be": "e", "dog": "puppy", "bed": "d"},
			root:    "3f67c7a47520f79faa29255d2d3c084a7a6df0453116ed7232ff10277a8be68b",
		},
		"testy": {
			entries: map[string]string{"test": "test", "te": "testy"},
			root:    "8452568af70d8d140f58d941338542f645fcca50094b20f3c3d8c3df49337928",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			trie := New[Bytes, Bytes](false, "")
			for key, value := range test.entries {
				trie.Set(Bytes(key), Bytes(value))
			}
			got := trie.Root(EncodeBytes[Bytes])
			if want := test.root; want != hex.EncodeToString(got[:]) {
				t.Errorf("unexpected root, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestTrie_GetReturnsDefaultForMissingKeys(t *testing.T) {
	trie := New[fevm.Key, fevm.Word](true, fevm.Word{})
	if want, got := (fevm.Word{}), trie.Get(fevm.Key{1}); want != got {
		t.Errorf("unexpected value, wanted %v, got %v", want, got)
	}
	trie.Set(fevm.Key{1}, fevm.Word{2})
	if want, got := (fevm.Word{2}), trie.Get(fevm.Key{1}); want != got {
		t.Errorf("unexpected value, wanted %v, got %v", want, got)
	}
}

func TestTrie_SettingDefaultRemovesKey(t *testing.T) {
	for _, secured := range []bool{true, false} {
		t.Run(fmt.Sprintf("secured=%t", secured), func(t *testing.T) {
			reference := New[fevm.Key, fevm.Word](secured, fevm.Word{})
			reference.Set(fevm.Key{1}, fevm.Word{31: 1})

			trie := New[fevm.Key, fevm.Word](secured, fevm.Word{})
			trie.Set(fevm.Key{1}, fevm.Word{31: 1})
			trie.Set(fevm.Key{2}, fevm.Word{31: 2})
			trie.Set(fevm.Key{2}, fevm.Word{})

			if want, got := 1, trie.Len(); want != got {
				t.Errorf("unexpected number of entries, wanted %d, got %d", want, got)
			}
			want := reference.Root(EncodeWord[fevm.Key])
			if got := trie.Root(EncodeWord[fevm.Key]); want != got {
				t.Errorf("unexpected root, wanted %v, got %v", want, got)
			}
		})
	}
}

func TestTrie_RootIsIndependentOfInsertionOrder(t *testing.T) {
	r := rand.New(42)
	for _, secured := range []bool{true, false} {
		for _, size := range []int{1, 2, 5, 17, 100, 500} {
			keys := make([]fevm.Key, size)
			for i := range keys {
				// Short random keys produce shared prefixes and thus extension
				// and branch nodes at various depths.
				keys[i] = fevm.Key{byte(r.Intn(4)), byte(r.Intn(256)), 31: byte(i)}
			}

			var want fevm.Hash
			for round := 0; round < 5; round++ {
				r.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })
				trie := New[fevm.Key, fevm.Word](secured, fevm.Word{})
				for _, key := range keys {
					trie.Set(key, fevm.Word(key))
				}
				got := trie.Root(EncodeWord[fevm.Key])
				if round == 0 {
					want = got
				} else if want != got {
					t.Fatalf("root depends on insertion order, secured %t, size %d", secured, size)
				}
			}
		}
	}
}

func TestTrie_CopyIsIndependent(t *testing.T) {
	trie := New[Bytes, Bytes](false, "")
	trie.Set("a", "1")
	copied := trie.Copy()
	copied.Set("a", "2")
	copied.Set("b", "3")

	if want, got := Bytes("1"), trie.Get("a"); want != got {
		t.Errorf("original trie was modified, wanted %v, got %v", want, got)
	}
	if want, got := []Bytes{"a", "b"}, copied.Keys(); !slices.Equal(want, got) {
		t.Errorf("unexpected keys, wanted %v, got %v", want, got)
	}
	if copied.secured != trie.secured || copied.defaultValue != trie.defaultValue {
		t.Errorf("copy does not preserve trie properties")
	}
}

func TestTrie_EmptyValueEncodingIsRejected(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic, got nil")
		}
	}()
	trie := New[Bytes, Bytes](false, "")
	trie.Set("a", "b")
	trie.Root(func(Bytes, Bytes) []byte { return nil })
}

func TestNibblesToCompact(t *testing.T) {
	tests := []struct {
		nibbles []byte
		isLeaf  bool
		compact []byte
	}{
		{nibbles: []byte{}, isLeaf: false, compact: []byte{0x00}},
		{nibbles: []byte{}, isLeaf: true, compact: []byte{0x20}},
		{nibbles: []byte{1, 2, 3, 4, 5}, isLeaf: false, compact: []byte{0x11, 0x23, 0x45}},
		{nibbles: []byte{0, 1, 2, 3, 4, 5}, isLeaf: false, compact: []byte{0x00, 0x01, 0x23, 0x45}},
		{nibbles: []byte{0, 15, 1, 12, 11, 8}, isLeaf: true, compact: []byte{0x20, 0x0f, 0x1c, 0xb8}},
		{nibbles: []byte{15, 1, 12, 11, 8}, isLeaf: true, compact: []byte{0x3f, 0x1c, 0xb8}},
	}
	for _, test := range tests {
		if want, got := test.compact, nibblesToCompact(test.nibbles, test.isLeaf); !bytes.Equal(want, got) {
			t.Errorf("unexpected compact encoding of %v, wanted %x, got %x", test.nibbles, want, got)
		}
	}
}

func TestBytesToNibbles(t *testing.T) {
	if want, got := []byte{1, 2, 0xa, 0xb}, bytesToNibbles([]byte{0x12, 0xab}); !bytes.Equal(want, got) {
		t.Errorf("unexpected nibbles, wanted %v, got %v", want, got)
	}
	if got := bytesToNibbles(nil); len(got) != 0 {
		t.Errorf("unexpected nibbles for empty key: %v", got)
	}
}

func TestCommonPrefixLength(t *testing.T) {
	tests := []struct {
		a, b []byte
		want int
	}{
		{nil, nil, 0},
		{[]byte{1}, nil, 0},
		{[]byte{1, 2}, []byte{1, 3}, 1},
		{[]byte{1, 2}, []byte{1, 2, 3}, 2},
		{[]byte{4}, []byte{1}, 0},
	}
	for _, test := range tests {
		if got := commonPrefixLength(test.a, test.b); test.want != got {
			t.Errorf("unexpected prefix length of %v and %v, wanted %d, got %d", test.a, test.b, test.want, got)
		}
	}
}

func TestPatricialize_ProducesExpectedNodeTypes(t *testing.T) {
	if got := patricialize(nil, 0); got != nil {
		t.Errorf("expected null node, got %v", got)
	}

	single := []entry{{key: []byte{1, 2}, value: []byte{1}}}
	if _, ok := patricialize(single, 0).(*leafNode); !ok {
		t.Errorf("expected leaf node")
	}

	shared := []entry{
		{key: []byte{1, 2, 3}, value: []byte{1}},
		{key: []byte{1, 2, 4}, value: []byte{2}},
	}
	extension, ok := patricialize(shared, 0).(*extensionNode)
	if !ok {
		t.Fatalf("expected extension node")
	}
	if want, got := []byte{1, 2}, extension.keySegment; !bytes.Equal(want, got) {
		t.Errorf("unexpected key segment, wanted %v, got %v", want, got)
	}

	diverging := []entry{
		{key: []byte{1}, value: []byte{1}},
		{key: []byte{2}, value: []byte{2}},
		{key: []byte{}, value: []byte{3}},
	}
	branch, ok := patricialize(diverging, 0).(*branchNode)
	if !ok {
		t.Fatalf("expected branch node")
	}
	if want, got := []byte{3}, branch.value; !bytes.Equal(want, got) {
		t.Errorf("unexpected branch value, wanted %v, got %v", want, got)
	}
	if want, got := emptyString, branch.subnodes[0]; !bytes.Equal(want, got) {
		t.Errorf("unexpected empty child reference, wanted %x, got %x", want, got)
	}
}

func TestEncodeInternalNode_LargeNodesAreHashed(t *testing.T) {
	small := &leafNode{restOfKey: []byte{1}, value: []byte{1}}
	if got := encodeInternalNode(small); len(got) >= 32 {
		t.Errorf("small node should be embedded, got %x", got)
	}
	large := &leafNode{restOfKey: []byte{1}, value: bytes.Repeat([]byte{1}, 40)}
	got := encodeInternalNode(large)
	if want := 33; len(got) != want || got[0] != 0xa0 {
		t.Errorf("large node should be referenced by its hash, got %x", got)
	}
}
