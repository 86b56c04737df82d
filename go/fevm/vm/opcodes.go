// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package vm defines the instruction set of the Frontier revision of the EVM.
package vm

import "fmt"

type OpCode byte

const (
	STOP         OpCode = 0x00
	ADD          OpCode = 0x01
	MUL          OpCode = 0x02
	SUB          OpCode = 0x03
	DIV          OpCode = 0x04
	SDIV         OpCode = 0x05
	MOD          OpCode = 0x06
	SMOD         OpCode = 0x07
	ADDMOD       OpCode = 0x08
	MULMOD       OpCode = 0x09
	EXP          OpCode = 0x0A
	SIGNEXTEND   OpCode = 0x0B
	LT           OpCode = 0x10
	GT           OpCode = 0x11
	SLT          OpCode = 0x12
	SGT          OpCode = 0x13
	EQ           OpCode = 0x14
	ISZERO       OpCode = 0x15
	AND          OpCode = 0x16
	OR           OpCode = 0x17
	XOR          OpCode = 0x18
	NOT          OpCode = 0x19
	BYTE         OpCode = 0x1A
	SHA3         OpCode = 0x20
	ADDRESS      OpCode = 0x30
	BALANCE      OpCode = 0x31
	ORIGIN       OpCode = 0x32
	CALLER       OpCode = 0x33
	CALLVALUE    OpCode = 0x34
	CALLDATALOAD OpCode = 0x35
	CALLDATASIZE OpCode = 0x36
	CALLDATACOPY OpCode = 0x37
	CODESIZE     OpCode = 0x38
	CODECOPY     OpCode = 0x39
	GASPRICE     OpCode = 0x3A
	EXTCODESIZE  OpCode = 0x3B
	EXTCODECOPY  OpCode = 0x3C
	BLOCKHASH    OpCode = 0x40
	COINBASE     OpCode = 0x41
	TIMESTAMP    OpCode = 0x42
	NUMBER       OpCode = 0x43
	DIFFICULTY   OpCode = 0x44
	GASLIMIT     OpCode = 0x45
	POP          OpCode = 0x50
	MLOAD        OpCode = 0x51
	MSTORE       OpCode = 0x52
	MSTORE8      OpCode = 0x53
	SLOAD        OpCode = 0x54
	SSTORE       OpCode = 0x55
	JUMP         OpCode = 0x56
	JUMPI        OpCode = 0x57
	PC           OpCode = 0x58
	MSIZE        OpCode = 0x59
	GAS          OpCode = 0x5A
	JUMPDEST     OpCode = 0x5B
	PUSH1        OpCode = 0x60
	PUSH2        OpCode = 0x61
	PUSH3        OpCode = 0x62
	PUSH4        OpCode = 0x63
	PUSH5        OpCode = 0x64
	PUSH6        OpCode = 0x65
	PUSH7        OpCode = 0x66
	PUSH8        OpCode = 0x67
	PUSH9        OpCode = 0x68
	PUSH10       OpCode = 0x69
	PUSH11       OpCode = 0x6A
	PUSH12       OpCode = 0x6B
	PUSH13       OpCode = 0x6C
	PUSH14       OpCode = 0x6D
	PUSH15       OpCode = 0x6E
	PUSH16       OpCode = 0x6F
	PUSH17       OpCode = 0x70
	PUSH18       OpCode = 0x71
	PUSH19       OpCode = 0x72
	PUSH20       OpCode = 0x73
	PUSH21       OpCode = 0x74
	PUSH22       OpCode = 0x75
	PUSH23       OpCode = 0x76
	PUSH24       OpCode = 0x77
	PUSH25       OpCode = 0x78
	PUSH26       OpCode = 0x79
	PUSH27       OpCode = 0x7A
	PUSH28       OpCode = 0x7B
	PUSH29       OpCode = 0x7C
	PUSH30       OpCode = 0x7D
	PUSH31       OpCode = 0x7E
	PUSH32       OpCode = 0x7F
	DUP1         OpCode = 0x80
	DUP2         OpCode = 0x81
	DUP3         OpCode = 0x82
	DUP4         OpCode = 0x83
	DUP5         OpCode = 0x84
	DUP6         OpCode = 0x85
	DUP7         OpCode = 0x86
	DUP8         OpCode = 0x87
	DUP9         OpCode = 0x88
	DUP10        OpCode = 0x89
	DUP11        OpCode = 0x8A
	DUP12        OpCode = 0x8B
	DUP13        OpCode = 0x8C
	DUP14        OpCode = 0x8D
	DUP15        OpCode = 0x8E
	DUP16        OpCode = 0x8F
	SWAP1        OpCode = 0x90
	SWAP2        OpCode = 0x91
	SWAP3        OpCode = 0x92
	SWAP4        OpCode = 0x93
	SWAP5        OpCode = 0x94
	SWAP6        OpCode = 0x95
	SWAP7        OpCode = 0x96
	SWAP8        OpCode = 0x97
	SWAP9        OpCode = 0x98
	SWAP10       OpCode = 0x99
	SWAP11       OpCode = 0x9A
	SWAP12       OpCode = 0x9B
	SWAP13       OpCode = 0x9C
	SWAP14       OpCode = 0x9D
	SWAP15       OpCode = 0x9E
	SWAP16       OpCode = 0x9F
	LOG0         OpCode = 0xA0
	LOG1         OpCode = 0xA1
	LOG2         OpCode = 0xA2
	LOG3         OpCode = 0xA3
	LOG4         OpCode = 0xA4
	CREATE       OpCode = 0xF0
	CALL         OpCode = 0xF1
	CALLCODE     OpCode = 0xF2
	RETURN       OpCode = 0xF3
	SELFDESTRUCT OpCode = 0xFF
)

// NumOpCodes is the number of instructions defined by the Frontier revision.
const NumOpCodes = 129

var opCodeNames = [256]string{
	STOP:         "STOP",
	ADD:          "ADD",
	MUL:          "MUL",
	SUB:          "SUB",
	DIV:          "DIV",
	SDIV:         "SDIV",
	MOD:          "MOD",
	SMOD:         "SMOD",
	ADDMOD:       "ADDMOD",
	MULMOD:       "MULMOD",
	EXP:          "EXP",
	SIGNEXTEND:   "SIGNEXTEND",
	LT:           "LT",
	GT:           "GT",
	SLT:          "SLT",
	SGT:          "SGT",
	EQ:           "EQ",
	ISZERO:       "ISZERO",
	AND:          "AND",
	OR:           "OR",
	XOR:          "XOR",
	NOT:          "NOT",
	BYTE:         "BYTE",
	SHA3:         "SHA3",
	ADDRESS:      "ADDRESS",
	BALANCE:      "BALANCE",
	ORIGIN:       "ORIGIN",
	CALLER:       "CALLER",
	CALLVALUE:    "CALLVALUE",
	CALLDATALOAD: "CALLDATALOAD",
	CALLDATASIZE: "CALLDATASIZE",
	CALLDATACOPY: "CALLDATACOPY",
	CODESIZE:     "CODESIZE",
	CODECOPY:     "CODECOPY",
	GASPRICE:     "GASPRICE",
	EXTCODESIZE:  "EXTCODESIZE",
	EXTCODECOPY:  "EXTCODECOPY",
	BLOCKHASH:    "BLOCKHASH",
	COINBASE:     "COINBASE",
	TIMESTAMP:    "TIMESTAMP",
	NUMBER:       "NUMBER",
	DIFFICULTY:   "DIFFICULTY",
	GASLIMIT:     "GASLIMIT",
	POP:          "POP",
	MLOAD:        "MLOAD",
	MSTORE:       "MSTORE",
	MSTORE8:      "MSTORE8",
	SLOAD:        "SLOAD",
	SSTORE:       "SSTORE",
	JUMP:         "JUMP",
	JUMPI:        "JUMPI",
	PC:           "PC",
	MSIZE:        "MSIZE",
	GAS:          "GAS",
	JUMPDEST:     "JUMPDEST",
	PUSH1:        "PUSH1",
	PUSH2:        "PUSH2",
	PUSH3:        "PUSH3",
	PUSH4:        "PUSH4",
	PUSH5:        "PUSH5",
	PUSH6:        "PUSH6",
	PUSH7:        "PUSH7",
	PUSH8:        "PUSH8",
	PUSH9:        "PUSH9",
	PUSH10:       "PUSH10",
	PUSH11:       "PUSH11",
	PUSH12:       "PUSH12",
	PUSH13:       "PUSH13",
	PUSH14:       "PUSH14",
	PUSH15:       "PUSH15",
	PUSH16:       "PUSH16",
	PUSH17:       "PUSH17",
	PUSH18:       "PUSH18",
	PUSH19:       "PUSH19",
	PUSH20:       "PUSH20",
	PUSH21:       "PUSH21",
	PUSH22:       "PUSH22",
	PUSH23:       "PUSH23",
	PUSH24:       "PUSH24",
	PUSH25:       "PUSH25",
	PUSH26:       "PUSH26",
	PUSH27:       "PUSH27",
	PUSH28:       "PUSH28",
	PUSH29:       "PUSH29",
	PUSH30:       "PUSH30",
	PUSH31:       "PUSH31",
	PUSH32:       "PUSH32",
	DUP1:         "DUP1",
	DUP2:         "DUP2",
	DUP3:         "DUP3",
	DUP4:         "DUP4",
	DUP5:         "DUP5",
	DUP6:         "DUP6",
	DUP7:         "DUP7",
	DUP8:         "DUP8",
	DUP9:         "DUP9",
	DUP10:        "DUP10",
	DUP11:        "DUP11",
	DUP12:        "DUP12",
	DUP13:        "DUP13",
	DUP14:        "DUP14",
	DUP15:        "DUP15",
	DUP16:        "DUP16",
	SWAP1:        "SWAP1",
	SWAP2:        "SWAP2",
	SWAP3:        "SWAP3",
	SWAP4:        "SWAP4",
	SWAP5:        "SWAP5",
	SWAP6:        "SWAP6",
	SWAP7:        "SWAP7",
	SWAP8:        "SWAP8",
	SWAP9:        "SWAP9",
	SWAP10:       "SWAP10",
	SWAP11:       "SWAP11",
	SWAP12:       "SWAP12",
	SWAP13:       "SWAP13",
	SWAP14:       "SWAP14",
	SWAP15:       "SWAP15",
	SWAP16:       "SWAP16",
	LOG0:         "LOG0",
	LOG1:         "LOG1",
	LOG2:         "LOG2",
	LOG3:         "LOG3",
	LOG4:         "LOG4",
	CREATE:       "CREATE",
	CALL:         "CALL",
	CALLCODE:     "CALLCODE",
	RETURN:       "RETURN",
	SELFDESTRUCT: "SELFDESTRUCT",
}

func (op OpCode) String() string {
	if name := opCodeNames[op]; name != "" {
		return name
	}
	return fmt.Sprintf("OpCode(%d)", op)
}

// Width returns the number of bytes occupied by the instruction in the
// code, including the immediate data of PUSH instructions.
func (op OpCode) Width() int {
	if PUSH1 <= op && op <= PUSH32 {
		return int(op-PUSH1) + 2
	} else {
		return 1
	}
}

// IsValid determines whether the given OpCode is defined in the Frontier
// revision.
func IsValid(op OpCode) bool {
	return opCodeNames[op] != ""
}

// ValidOpCodesNoPush returns a slice of valid op codes, but no PUSH instruction.
func ValidOpCodesNoPush() []OpCode {
	res := make([]OpCode, 0, NumOpCodes)
	for i := 0; i < 256; i++ {
		op := OpCode(i)
		if PUSH1 <= op && op <= PUSH32 {
			continue
		}
		if IsValid(op) {
			res = append(res, op)
		}
	}
	return res
}
