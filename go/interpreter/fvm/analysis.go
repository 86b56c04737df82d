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
	"github.com/frontier-evm/fevm/go/fevm/vm"
	lru "github.com/hashicorp/golang-lru/v2"
)

// jumpDestinations is a bit-set of the code positions holding a JUMPDEST
// instruction that is not part of the immediate data of a PUSH.
type jumpDestinations []uint64

// analyzeJumpDestinations scans the given code for valid jump targets.
func analyzeJumpDestinations(code []byte) jumpDestinations {
	res := make(jumpDestinations, len(code)/64+1)
	for pc := 0; pc < len(code); {
		op := vm.OpCode(code[pc])
		if op == vm.JUMPDEST {
			res[pc/64] |= 1 << (pc % 64)
		}
		pc += op.Width()
	}
	return res
}

func (d jumpDestinations) contains(pos uint64) bool {
	if pos/64 >= uint64(len(d)) {
		return false
	}
	return d[pos/64]&(1<<(pos%64)) != 0
}

// defaultAnalysisCacheSize is the number of analysis results retained if no
// explicit size is configured.
const defaultAnalysisCacheSize = 1 << 14

// analyzer computes jump destinations of codes, caching results by code hash.
type analyzer struct {
	cache *lru.Cache[fevm.Hash, jumpDestinations]
}

// newAnalyzer creates an analyzer retaining up to the given number of
// results. A size of zero selects a default size; negative sizes disable the
// cache.
func newAnalyzer(cacheSize int) (*analyzer, error) {
	if cacheSize == 0 {
		cacheSize = defaultAnalysisCacheSize
	}
	if cacheSize < 0 {
		return &analyzer{}, nil
	}
	cache, err := lru.New[fevm.Hash, jumpDestinations](cacheSize)
	if err != nil {
		return nil, err
	}
	return &analyzer{cache: cache}, nil
}

// analyze returns the jump destinations of the given code. If the code hash
// is provided, it must be the hash of the code, and is used for caching.
func (a *analyzer) analyze(code fevm.Code, codeHash *fevm.Hash) jumpDestinations {
	if a.cache == nil || codeHash == nil {
		return analyzeJumpDestinations(code)
	}
	if res, found := a.cache.Get(*codeHash); found {
		return res
	}
	res := analyzeJumpDestinations(code)
	a.cache.Add(*codeHash, res)
	return res
}
