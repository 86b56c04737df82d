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
	"bytes"
	"math"
	"slices"

	"golang.org/x/exp/maps"
)

// SizeInWords returns the number of words required to store the given size,
// checking that size+32 does not overflow uint64.
func SizeInWords(size uint64) uint64 {
	if size > math.MaxUint64-31 {
		return math.MaxUint64/32 + 1
	}
	return (size + 31) / 32
}

// IsPrecompiledContract is true for the addresses of the precompiled
// contracts available in the Frontier revision, 0x01 to 0x04.
func IsPrecompiledContract(recipient Address) bool {
	for i := 0; i < 19; i++ {
		if recipient[i] != 0 {
			return false
		}
	}
	return 1 <= recipient[19] && recipient[19] <= 4
}

// AddressSet is a set of addresses. The zero value is an empty set ready
// to be used.
type AddressSet map[Address]struct{}

// NewAddressSet creates a set holding the given addresses.
func NewAddressSet(addresses ...Address) AddressSet {
	res := make(AddressSet, len(addresses))
	for _, addr := range addresses {
		res[addr] = struct{}{}
	}
	return res
}

func (s *AddressSet) Add(addr Address) {
	if *s == nil {
		*s = AddressSet{}
	}
	(*s)[addr] = struct{}{}
}

func (s AddressSet) Contains(addr Address) bool {
	_, found := s[addr]
	return found
}

func (s AddressSet) Len() int {
	return len(s)
}

// AddAll adds all members of other to this set.
func (s *AddressSet) AddAll(other AddressSet) {
	for addr := range other {
		s.Add(addr)
	}
}

// Sorted lists the members of the set in ascending byte order.
func (s AddressSet) Sorted() []Address {
	res := maps.Keys(s)
	slices.SortFunc(res, func(a, b Address) int {
		return bytes.Compare(a[:], b[:])
	})
	return res
}
