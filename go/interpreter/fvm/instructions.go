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
	"bytes"
	"math"

	"github.com/frontier-evm/fevm/go/fevm"
	"github.com/holiman/uint256"
)

func opPc(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(c.pc))
}

// checkJumpTarget validates the given destination and moves the program
// counter to the position before it, since the interpreter increments the
// counter after every instruction.
func checkJumpTarget(c *context, destination *uint256.Int) error {
	if !destination.IsUint64() || !c.jumpDests.contains(destination.Uint64()) {
		return fevm.ErrInvalidJumpDest
	}
	c.pc = int(destination.Uint64()) - 1
	return nil
}

func opJump(c *context) error {
	return checkJumpTarget(c, c.stack.pop())
}

func opJumpi(c *context) error {
	destination := c.stack.pop()
	condition := c.stack.pop()
	if condition.IsZero() {
		return nil
	}
	return checkJumpTarget(c, destination)
}

func opPop(c *context) {
	c.stack.pop()
}

// opPush pushes the n bytes following the current instruction. Data cut off
// by the end of the code is padded with zeros on the right.
func opPush(c *context, n int) {
	z := c.stack.pushUndefined()
	start := c.pc + 1
	end := min(start+n, len(c.code))
	var value [32]byte
	if start < end {
		copy(value[:], c.code[start:end])
	}
	z.SetBytes(value[:n])
	c.pc += n
}

func opPush1(c *context) {
	z := c.stack.pushUndefined()
	z[3], z[2], z[1], z[0] = 0, 0, 0, 0
	if c.pc+1 < len(c.code) {
		z[0] = uint64(c.code[c.pc+1])
	}
	c.pc++
}

func opPush2(c *context) {
	z := c.stack.pushUndefined()
	z[3], z[2], z[1], z[0] = 0, 0, 0, 0
	if c.pc+2 < len(c.code) {
		z[0] = uint64(c.code[c.pc+1])<<8 | uint64(c.code[c.pc+2])
	} else if c.pc+1 < len(c.code) {
		z[0] = uint64(c.code[c.pc+1]) << 8
	}
	c.pc += 2
}

func opDup(c *context, pos int) {
	c.stack.dup(pos - 1)
}

func opSwap(c *context, pos int) {
	c.stack.swap(pos)
}

func opMstore(c *context) error {
	var addr = c.stack.pop()
	var value = c.stack.pop()
	if err := c.useGasAndExpandMemory(0, memoryRange{addr, uint256.NewInt(32)}); err != nil {
		return err
	}
	c.memory.setWord(addr.Uint64(), value)
	return nil
}

func opMstore8(c *context) error {
	var addr = c.stack.pop()
	var value = c.stack.pop()
	if err := c.useGasAndExpandMemory(0, memoryRange{addr, uint256.NewInt(1)}); err != nil {
		return err
	}
	c.memory.set(addr.Uint64(), []byte{byte(value.Uint64())})
	return nil
}

func opMload(c *context) error {
	var trg = c.stack.peek()
	if err := c.useGasAndExpandMemory(0, memoryRange{trg, uint256.NewInt(32)}); err != nil {
		return err
	}
	c.memory.readWord(trg.Uint64(), trg)
	return nil
}

func opMsize(c *context) {
	c.stack.pushUndefined().SetUint64(c.memory.length())
}

func opSstore(c *context) error {
	var key = fevm.Key(c.stack.pop().Bytes32())
	var value = fevm.Word(c.stack.pop().Bytes32())

	current := c.context.GetStorage(c.params.Recipient, key)
	cost, refund := sstoreCosts(current, value)
	if err := c.useGas(cost); err != nil {
		return err
	}
	c.refund += refund
	c.context.SetStorage(c.params.Recipient, key, value)
	return nil
}

func opSload(c *context) {
	var top = c.stack.peek()
	value := c.context.GetStorage(c.params.Recipient, fevm.Key(top.Bytes32()))
	top.SetBytes32(value[:])
}

func opCaller(c *context) {
	c.stack.pushUndefined().SetBytes20(c.params.Sender[:])
}

func opCallvalue(c *context) {
	c.stack.pushUndefined().SetBytes32(c.params.Value[:])
}

func opCallDatasize(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(len(c.params.Input)))
}

func opCallDataload(c *context) {
	top := c.stack.peek()
	offset, overflow := top.Uint64WithOverflow()
	if overflow {
		offset = math.MaxUint64
	}
	data := getData(c.params.Input, offset, 32)
	top.SetBytes32(data)
}

func opAnd(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.And(a, b)
}

func opOr(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Or(a, b)
}

func opNot(c *context) {
	a := c.stack.peek()
	a.Not(a)
}

func opXor(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Xor(a, b)
}

func opIszero(c *context) {
	top := c.stack.peek()
	if top.IsZero() {
		top.SetOne()
	} else {
		top.Clear()
	}
}

func opEq(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.Eq(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
}

func opLt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.Lt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
}

func opGt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.Gt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
}

func opSlt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.Slt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
}

func opSgt(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	if a.Sgt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
}

func opSignExtend(c *context) {
	back, num := c.stack.pop(), c.stack.peek()
	num.ExtendSign(num, back)
}

func opByte(c *context) {
	th, val := c.stack.pop(), c.stack.peek()
	val.Byte(th)
}

func opAdd(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Add(a, b)
}

func opSub(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Sub(a, b)
}

func opMul(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Mul(a, b)
}

func opMulMod(c *context) {
	a := c.stack.pop()
	b := c.stack.pop()
	n := c.stack.peek()
	n.MulMod(a, b, n)
}

func opDiv(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Div(a, b)
}

// opSDiv divides as two's complement numbers, rounding towards zero. The
// quotient of the minimal value and -1 overflows back to the minimal value.
func opSDiv(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.SDiv(a, b)
}

func opMod(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.Mod(a, b)
}

func opAddMod(c *context) {
	a := c.stack.pop()
	b := c.stack.pop()
	n := c.stack.peek()
	n.AddMod(a, b, n)
}

// opSMod computes the remainder with the sign of the dividend.
func opSMod(c *context) {
	a := c.stack.pop()
	b := c.stack.peek()
	b.SMod(a, b)
}

func opExp(c *context) error {
	base, exponent := c.stack.pop(), c.stack.peek()
	if err := c.useGas(GasExponentiationPerByte * fevm.Gas(exponent.ByteLen())); err != nil {
		return err
	}
	exponent.Exp(base, exponent)
	return nil
}

// Evaluations show a 96% hit rate of this configuration.
var sha3Cache = newSha3HashCache(1<<16, 1<<18)

func opSha3(c *context) error {
	offset, size := c.stack.pop(), c.stack.peek()

	words := fevm.Gas(0)
	if size.IsUint64() {
		words = fevm.Gas(fevm.SizeInWords(size.Uint64()))
	}
	if err := c.useGasAndExpandMemory(GasKeccak256Word*words, memoryRange{offset, size}); err != nil {
		return err
	}

	data := c.memory.getSlice(offset.Uint64(), size.Uint64())
	var hash fevm.Hash
	if c.withShaCache {
		// Cache hashes since identical values are frequently re-hashed.
		hash = sha3Cache.hash(data)
	} else {
		hash = fevm.Keccak256(data)
	}

	size.SetBytes32(hash[:])
	return nil
}

func opGas(c *context) {
	c.stack.pushUndefined().SetUint64(uint64(c.gas))
}

func opDifficulty(c *context) {
	difficulty := c.params.Difficulty
	c.stack.pushUndefined().SetBytes32(difficulty[:])
}

func opTimestamp(c *context) {
	time := c.params.Timestamp
	c.stack.pushUndefined().SetUint64(uint64(time))
}

func opNumber(c *context) {
	number := c.params.BlockNumber
	c.stack.pushUndefined().SetUint64(uint64(number))
}

func opCoinbase(c *context) {
	coinbase := c.params.Coinbase
	c.stack.pushUndefined().SetBytes20(coinbase[:])
}

func opGasLimit(c *context) {
	limit := c.params.GasLimit
	c.stack.pushUndefined().SetUint64(uint64(limit))
}

func opGasPrice(c *context) {
	price := c.params.GasPrice
	c.stack.pushUndefined().SetBytes32(price[:])
}

func opBalance(c *context) {
	slot := c.stack.peek()
	address := fevm.Address(slot.Bytes20())
	balance := c.context.GetBalance(address)
	slot.SetBytes32(balance[:])
}

// opSelfdestruct moves the entire balance of the current account to the
// beneficiary and marks the account for deletion at the end of the
// transaction.
func opSelfdestruct(c *context) status {
	beneficiary := fevm.Address(c.stack.pop().Bytes20())
	originator := c.params.Recipient

	balance := c.context.GetBalance(originator)
	c.context.SetBalance(beneficiary, fevm.Add(c.context.GetBalance(beneficiary), balance))
	c.context.SetBalance(originator, fevm.Value{})

	c.accountsToDelete.Add(originator)
	return statusSelfDestructed
}

// opBlockhash pushes the hash of one of the 256 most recent blocks, or zero
// for any other block number.
func opBlockhash(c *context) {
	num := c.stack.peek()
	num64, overflow := num.Uint64WithOverflow()

	if overflow {
		num.Clear()
		return
	}
	var upper, lower uint64
	upper = uint64(c.params.BlockNumber)
	if upper < 257 {
		lower = 0
	} else {
		lower = upper - 256
	}
	if num64 >= lower && num64 < upper {
		hash := c.context.GetBlockHash(int64(num64))
		num.SetBytes32(hash[:])
	} else {
		num.Clear()
	}
}

func opAddress(c *context) {
	c.stack.pushUndefined().SetBytes20(c.params.Recipient[:])
}

func opOrigin(c *context) {
	origin := c.params.Origin
	c.stack.pushUndefined().SetBytes20(origin[:])
}

func opCodeSize(c *context) {
	size := len(c.code)
	c.stack.pushUndefined().SetUint64(uint64(size))
}

// genericDataCopy implements CALLDATACOPY and CODECOPY, copying a section
// of the given source to memory.
func genericDataCopy(c *context, source []byte) error {
	var (
		memOffset  = c.stack.pop()
		dataOffset = c.stack.pop()
		length     = c.stack.pop()
	)
	return copyToMemory(c, source, memOffset, dataOffset, length)
}

func copyToMemory(c *context, source []byte, memOffset, dataOffset, length *uint256.Int) error {
	cost := fevm.Gas(0)
	if length.IsUint64() {
		cost = copyCosts(length.Uint64())
	}
	if err := c.useGasAndExpandMemory(cost, memoryRange{memOffset, length}); err != nil {
		return err
	}
	if length.IsZero() {
		return nil
	}

	offset, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		offset = math.MaxUint64
	}
	c.memory.set(memOffset.Uint64(), getData(source, offset, length.Uint64()))
	return nil
}

func opExtcodesize(c *context) {
	top := c.stack.peek()
	address := fevm.Address(top.Bytes20())
	top.SetUint64(uint64(c.context.GetCodeSize(address)))
}

func opExtCodeCopy(c *context) error {
	var (
		stack      = c.stack
		a          = stack.pop()
		memOffset  = stack.pop()
		codeOffset = stack.pop()
		length     = stack.pop()
	)
	code := c.context.GetCode(fevm.Address(a.Bytes20()))
	return copyToMemory(c, code, memOffset, codeOffset, length)
}

// getData returns size bytes of data starting at the given offset. Bytes
// beyond the end of data are zero.
func getData(data []byte, start uint64, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length || end < start {
		end = length
	}
	res := make([]byte, int(size))
	copy(res, data[start:end])
	return res
}

func opReturn(c *context) error {
	offset := c.stack.pop()
	size := c.stack.pop()
	if err := c.useGasAndExpandMemory(0, memoryRange{offset, size}); err != nil {
		return err
	}
	c.output = c.memory.read(offset.Uint64(), size.Uint64())
	return nil
}

// opCreate runs the init code taken from memory in a new account. The entire
// remaining gas is handed to the creation; unused gas is returned.
func opCreate(c *context) error {
	var (
		value  = c.stack.pop()
		offset = c.stack.pop()
		size   = c.stack.pop()
	)

	if err := c.useGasAndExpandMemory(0, memoryRange{offset, size}); err != nil {
		return err
	}
	createGas := c.gas
	c.gas = 0

	endowment := fevm.Value(value.Bytes32())
	balance := c.context.GetBalance(c.params.Recipient)
	nonce := c.context.GetNonce(c.params.Recipient)
	if balance.Cmp(endowment) < 0 || nonce == math.MaxUint64 || c.params.Depth+1 > fevm.MaxCallDepth {
		c.stack.pushUndefined().Clear()
		c.gas += createGas
		return nil
	}

	res, err := c.context.Call(fevm.Create, fevm.CallParameters{
		Sender: c.params.Recipient,
		Value:  endowment,
		Input:  c.memory.read(offset.Uint64(), size.Uint64()),
		Gas:    createGas,
	})
	if err != nil {
		return err
	}

	c.gas += res.GasLeft
	success := c.stack.pushUndefined()
	if !res.Success {
		success.Clear()
		return nil
	}
	success.SetBytes20(res.CreatedAddress[:])
	incorporateChild(c, res)
	return nil
}

// genericCall implements CALL and CALLCODE. The gas requested for the
// nested call is charged together with the call costs; the part the nested
// call does not use is returned afterwards.
func genericCall(c *context, kind fevm.CallKind) error {
	stack := c.stack

	providedGas, addr, value := stack.pop(), stack.pop(), stack.pop()
	inOffset, inSize, retOffset, retSize := stack.pop(), stack.pop(), stack.pop(), stack.pop()

	// A request for more gas than available can never be paid for.
	if !providedGas.IsUint64() || providedGas.Uint64() > uint64(c.gas) {
		return fevm.ErrOutOfGas
	}

	codeAddress := fevm.Address(addr.Bytes20())
	recipient := codeAddress
	if kind == fevm.CallCode {
		recipient = c.params.Recipient
	}

	cost, stipend := messageCallGas(
		c.context.AccountExists(recipient),
		fevm.Gas(providedGas.Uint64()),
		!value.IsZero(),
	)
	err := c.useGasAndExpandMemory(cost,
		memoryRange{inOffset, inSize},
		memoryRange{retOffset, retSize},
	)
	if err != nil {
		return err
	}

	transfer := fevm.Value(value.Bytes32())
	balance := c.context.GetBalance(c.params.Recipient)
	if balance.Cmp(transfer) < 0 || c.params.Depth+1 > fevm.MaxCallDepth {
		c.stack.pushUndefined().Clear()
		c.gas += stipend
		return nil
	}

	res, err := c.context.Call(kind, fevm.CallParameters{
		Sender:      c.params.Recipient,
		Recipient:   recipient,
		Value:       transfer,
		Input:       c.memory.read(inOffset.Uint64(), inSize.Uint64()),
		Gas:         stipend,
		CodeAddress: codeAddress,
	})
	if err != nil {
		return err
	}

	// The operand slots are reused by the pushed status word.
	outOffset, outSize := retOffset.Uint64(), retSize.Uint64()

	c.gas += res.GasLeft
	success := stack.pushUndefined()
	if res.Success {
		success.SetOne()
		incorporateChild(c, res)
	} else {
		success.Clear()
	}

	if outSize != 0 {
		size := min(outSize, uint64(len(res.Output)))
		c.memory.set(outOffset, res.Output[:size])
	}
	return nil
}

// incorporateChild adds the effects of a successful nested call to the
// current frame.
func incorporateChild(c *context, res fevm.CallResult) {
	c.refund += res.GasRefund
	c.logs = append(c.logs, res.Logs...)
	c.accountsToDelete.AddAll(res.AccountsToDelete)
}

func opLog(c *context, size int) error {
	topics := make([]fevm.Hash, size)
	stack := c.stack
	mStart, mSize := stack.pop(), stack.pop()
	for i := 0; i < size; i++ {
		topics[i] = stack.pop().Bytes32()
	}

	cost := fevm.Gas(math.MaxInt64)
	if mSize.IsUint64() && mSize.Uint64() <= math.MaxInt64/uint64(GasLogData) {
		cost = GasLogData * fevm.Gas(mSize.Uint64())
	}
	if err := c.useGasAndExpandMemory(cost, memoryRange{mStart, mSize}); err != nil {
		return err
	}

	c.logs = append(c.logs, fevm.Log{
		Address: c.params.Recipient,
		Topics:  topics,
		Data:    bytes.Clone(c.memory.getSlice(mStart.Uint64(), mSize.Uint64())),
	})
	return nil
}
