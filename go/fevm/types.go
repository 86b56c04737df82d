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
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"math/bits"
	"strings"

	"github.com/holiman/uint256"
)

// Address represents the 160-bit (20 bytes) address of an account.
type Address [20]byte

// Key represents the 256-bit (32 bytes) key of a storage slot.
type Key [32]byte

// Word represents an arbitrary 256-bit (32 byte) word in the EVM.
type Word [32]byte

// Value represents an amount of chain currency, typically wei.
type Value [32]byte

// Hash represents the 256-bit (32 bytes) hash of a code, a block, a topic
// or similar sequence of cryptographic summary information.
type Hash [32]byte

// Code represents the byte-code of a contract.
type Code []byte

// Data represents the input or output of contract invocations.
type Data []byte

// Gas represents the type used to represent the Gas values.
type Gas int64

// Log is the type summarizing a log message emitted as a side effect of a
// contract execution.
type Log struct {
	Address Address
	Topics  []Hash
	Data    Data
}

func (a Address) String() string {
	return fmt.Sprintf("0x%x", a[:])
}

// Bytes returns the address as a byte slice. It is the key format used
// by the account trie.
func (a Address) Bytes() []byte {
	return a[:]
}

func (a Address) MarshalText() ([]byte, error) {
	return bytesToText(a[:])
}

func (a *Address) UnmarshalText(data []byte) error {
	return textToBytes(a[:], data)
}

func (k Key) String() string {
	return fmt.Sprintf("0x%x", k[:])
}

// Bytes returns the key as a byte slice. It is the key format used by
// storage tries.
func (k Key) Bytes() []byte {
	return k[:]
}

func (k Key) MarshalText() ([]byte, error) {
	return bytesToText(k[:])
}

func (k *Key) UnmarshalText(data []byte) error {
	return textToBytes(k[:], data)
}

func (w Word) String() string {
	return fmt.Sprintf("0x%x", w[:])
}

func (w Word) ToUint256() *uint256.Int {
	return new(uint256.Int).SetBytes(w[:])
}

func (w Word) MarshalText() ([]byte, error) {
	return bytesToText(w[:])
}

func (w *Word) UnmarshalText(data []byte) error {
	return textToBytes(w[:], data)
}

// WordFromUint256 converts a *uint256.Int to a Word. A nil input is 0.
func WordFromUint256(value *uint256.Int) (result Word) {
	if value == nil {
		return result
	}
	return value.Bytes32()
}

func (h Hash) String() string {
	return fmt.Sprintf("0x%x", h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return bytesToText(h[:])
}

func (h *Hash) UnmarshalText(data []byte) error {
	return textToBytes(h[:], data)
}

func (v Value) ToBig() *big.Int {
	return new(big.Int).SetBytes(v[:])
}

func (v Value) ToUint256() *uint256.Int {
	return new(uint256.Int).SetBytes(v[:])
}

func (v Value) String() string {
	return v.ToUint256().String()
}

func (v Value) Cmp(o Value) int {
	return bytes.Compare(v[:], o[:])
}

func (v Value) IsZero() bool {
	return v == Value{}
}

// NewValue creates a new Value instance from up to 4 uint64 arguments. The
// arguments are given in the order from most significant to least significant
// by padding leading zeros as needed. No argument results in a value of zero.
func NewValue(args ...uint64) (result Value) {
	if len(args) > 4 {
		panic("Too many arguments")
	}
	offset := 4 - len(args)
	for i := 0; i < len(args) && i < 4; i++ {
		start := (offset * 8) + i*8
		end := start + 8
		binary.BigEndian.PutUint64(result[start:end], args[i])
	}
	return
}

// ValueFromUint256 converts a *uint256.Int to a Value.
// If the input is nil, it returns 0.
func ValueFromUint256(value *uint256.Int) (result Value) {
	if value == nil {
		return result
	}
	return value.Bytes32()
}

// Add computes a+b modulo 2^256.
func Add(a, b Value) (z Value) {
	res, carry := bits.Add64(a.getInternalUint64(0), b.getInternalUint64(0), 0)
	binary.BigEndian.PutUint64(z[24:32], res)

	res, carry = bits.Add64(a.getInternalUint64(1), b.getInternalUint64(1), carry)
	binary.BigEndian.PutUint64(z[16:24], res)

	res, carry = bits.Add64(a.getInternalUint64(2), b.getInternalUint64(2), carry)
	binary.BigEndian.PutUint64(z[8:16], res)

	res, _ = bits.Add64(a.getInternalUint64(3), b.getInternalUint64(3), carry)
	binary.BigEndian.PutUint64(z[0:8], res)

	return z
}

// Sub computes a-b modulo 2^256.
func Sub(a, b Value) (z Value) {
	res, carry := bits.Sub64(a.getInternalUint64(0), b.getInternalUint64(0), 0)
	binary.BigEndian.PutUint64(z[24:32], res)

	res, carry = bits.Sub64(a.getInternalUint64(1), b.getInternalUint64(1), carry)
	binary.BigEndian.PutUint64(z[16:24], res)

	res, carry = bits.Sub64(a.getInternalUint64(2), b.getInternalUint64(2), carry)
	binary.BigEndian.PutUint64(z[8:16], res)

	res, _ = bits.Sub64(a.getInternalUint64(3), b.getInternalUint64(3), carry)
	binary.BigEndian.PutUint64(z[0:8], res)

	return z
}

// Scale multiplies the value by s modulo 2^256.
func (v Value) Scale(s uint64) Value {
	sU256 := new(uint256.Int).SetUint64(s)
	return ValueFromUint256(new(uint256.Int).Mul(v.ToUint256(), sU256))
}

func (v Value) MarshalText() ([]byte, error) {
	return bytesToText(v[:])
}

func (v *Value) UnmarshalText(data []byte) error {
	return textToBytes(v[:], data)
}

func (v Value) getInternalUint64(index int) uint64 {
	start := 24 - index*8
	end := start + 8
	return binary.BigEndian.Uint64(v[start:end])
}

func bytesToText(data []byte) ([]byte, error) {
	return []byte(fmt.Sprintf("0x%x", data)), nil
}

func textToBytes(trg []byte, data []byte) error {
	s := string(data)
	if !strings.HasPrefix(s, "0x") {
		return fmt.Errorf("invalid format, does not start with 0x: %v", s)
	}
	data, err := hex.DecodeString(s[2:])
	if err != nil {
		return err
	}
	if want, got := len(trg), len(data); want != got {
		return fmt.Errorf("invalid format, wanted %d bytes, got %d", want, got)
	}
	copy(trg[:], data)
	return nil
}
