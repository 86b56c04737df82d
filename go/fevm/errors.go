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

// ConstError is an error type that can be used to define immutable
// error constants.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

// Halting conditions of a single execution frame. None of them escapes the
// frame it occurred in; the enclosing message call rolls back the frame's
// state changes and reports the frame as failed.
const (
	ErrStackUnderflow  = ConstError("stack underflow")
	ErrStackOverflow   = ConstError("stack overflow")
	ErrOutOfGas        = ConstError("out of gas")
	ErrInvalidOpcode   = ConstError("invalid opcode")
	ErrInvalidJumpDest = ConstError("invalid jump destination")
	ErrStackDepthLimit = ConstError("stack depth limit reached")
)
