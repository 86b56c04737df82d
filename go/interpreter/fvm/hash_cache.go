// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package fvm

import (
	"github.com/frontier-evm/fevm/go/fevm"
	lru "github.com/hashicorp/golang-lru/v2"
)

// sha3HashCache is an LRU governed fixed-capacity cache for Keccak256 hashes
// of 32 and 64 byte inputs, which are the vast majority of values hashed by
// contracts computing storage locations. Inputs of other sizes are hashed on
// demand. The cache is thread-safe.
type sha3HashCache struct {
	cache32 *lru.Cache[[32]byte, fevm.Hash]
	cache64 *lru.Cache[[64]byte, fevm.Hash]
}

// newSha3HashCache creates a cache with the given capacities. Capacities
// below 1 are raised to 1.
func newSha3HashCache(capacity32 int, capacity64 int) *sha3HashCache {
	cache32, _ := lru.New[[32]byte, fevm.Hash](max(capacity32, 1))
	cache64, _ := lru.New[[64]byte, fevm.Hash](max(capacity64, 1))
	return &sha3HashCache{cache32: cache32, cache64: cache64}
}

// hash fetches a cached hash or computes the hash for the provided data.
func (h *sha3HashCache) hash(data []byte) fevm.Hash {
	switch len(data) {
	case 32:
		return getOrCompute(h.cache32, [32]byte(data), data)
	case 64:
		return getOrCompute(h.cache64, [64]byte(data), data)
	}
	return fevm.Keccak256(data)
}

// getOrCompute looks up the hash of data, which is also encoded in key.
func getOrCompute[K comparable](cache *lru.Cache[K, fevm.Hash], key K, data []byte) fevm.Hash {
	if hash, found := cache.Get(key); found {
		return hash
	}
	hash := fevm.Keccak256(data)
	cache.Add(key, hash)
	return hash
}
