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

import "github.com/frontier-evm/fevm/go/fevm/vm"

// opCodePropertyMap is a lookup table mapping each OpCode to a property
// computed once at startup.
type opCodePropertyMap[T any] struct {
	lookup [256]T
}

// newOpCodePropertyMap creates a property map. The property function is
// evaluated for every byte value, including undefined instructions, and
// must not panic for those.
func newOpCodePropertyMap[T any](property func(op vm.OpCode) T) opCodePropertyMap[T] {
	lookup := [256]T{}
	for i := 0; i < 256; i++ {
		lookup[i] = property(vm.OpCode(i))
	}
	return opCodePropertyMap[T]{lookup}
}

func (p *opCodePropertyMap[T]) get(op vm.OpCode) T {
	return p.lookup[op]
}
