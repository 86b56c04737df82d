// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package interpreter_test

import (
	"slices"
	"strings"

	"github.com/frontier-evm/fevm/go/fevm"
	"golang.org/x/exp/maps"

	_ "github.com/frontier-evm/fevm/go/interpreter/fvm"
)

// getAllInterpreterVariantsForTests returns all registered interpreter variants
// that should be covered in integration tests.
func getAllInterpreterVariantsForTests() []string {
	// TODO: re-add logging variants once the logger can be redirected away from stderr
	res := slices.DeleteFunc(
		maps.Keys(fevm.GetAllRegisteredInterpreters()),
		func(s string) bool { return strings.Contains(s, "logging") },
	)
	slices.Sort(res)
	return res
}
