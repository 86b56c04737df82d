// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package genesis loads the configuration of the first block of a chain,
// including the initial allocation of accounts, from JSON files.
package genesis

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/frontier-evm/fevm/go/fevm"
	"github.com/frontier-evm/fevm/go/state"
	"github.com/holiman/uint256"
)

// Configuration is the content of a genesis file.
type Configuration struct {
	ChainID    uint64
	Nonce      [8]byte
	Timestamp  int64
	ExtraData  []byte
	GasLimit   fevm.Gas
	Difficulty fevm.Word
	Coinbase   fevm.Address
	Alloc      map[fevm.Address]Account
}

// Account is the initial content of an account.
type Account struct {
	Balance fevm.Value
	Nonce   uint64
	Code    fevm.Code
	Storage map[fevm.Key]fevm.Word
}

type jsonConfiguration struct {
	Config struct {
		ChainID uint64 `json:"chainId"`
	} `json:"config"`
	Nonce      hexutil.Bytes          `json:"nonce"`
	Timestamp  math.HexOrDecimal64    `json:"timestamp"`
	ExtraData  hexutil.Bytes          `json:"extraData"`
	GasLimit   math.HexOrDecimal64    `json:"gasLimit"`
	Difficulty *math.HexOrDecimal256  `json:"difficulty"`
	Coinbase   *fevm.Address          `json:"coinbase"`
	Alloc      map[string]jsonAccount `json:"alloc"`
}

type jsonAccount struct {
	Balance *math.HexOrDecimal256  `json:"balance"`
	Nonce   math.HexOrDecimal64    `json:"nonce"`
	Code    hexutil.Bytes          `json:"code"`
	Storage map[fevm.Key]fevm.Word `json:"storage"`
}

// Load reads and parses the genesis file at the given path.
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a genesis configuration. Balances and numeric fields may be
// given in hexadecimal with 0x prefix or in decimal. Alloc addresses may
// omit the 0x prefix.
func Parse(data []byte) (*Configuration, error) {
	var in jsonConfiguration
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode genesis: %w", err)
	}

	res := &Configuration{
		ChainID:   in.Config.ChainID,
		ExtraData: in.ExtraData,
		Alloc:     make(map[fevm.Address]Account, len(in.Alloc)),
	}
	if len(in.Nonce) > len(res.Nonce) {
		return nil, fmt.Errorf("invalid genesis nonce, got %d bytes", len(in.Nonce))
	}
	copy(res.Nonce[len(res.Nonce)-len(in.Nonce):], in.Nonce)
	if int64(in.Timestamp) < 0 || int64(in.GasLimit) < 0 {
		return nil, fmt.Errorf("genesis timestamp or gas limit out of range")
	}
	res.Timestamp = int64(in.Timestamp)
	res.GasLimit = fevm.Gas(in.GasLimit)
	if in.Difficulty != nil {
		difficulty, err := toUint256((*big.Int)(in.Difficulty))
		if err != nil {
			return nil, fmt.Errorf("invalid difficulty: %w", err)
		}
		res.Difficulty = fevm.WordFromUint256(difficulty)
	}
	if in.Coinbase != nil {
		res.Coinbase = *in.Coinbase
	}

	for key, account := range in.Alloc {
		address, err := parseAddress(key)
		if err != nil {
			return nil, err
		}
		if _, found := res.Alloc[address]; found {
			return nil, fmt.Errorf("duplicate allocation for %v", address)
		}
		var balance fevm.Value
		if account.Balance != nil {
			value, err := toUint256((*big.Int)(account.Balance))
			if err != nil {
				return nil, fmt.Errorf("invalid balance of %v: %w", address, err)
			}
			balance = fevm.ValueFromUint256(value)
		}
		res.Alloc[address] = Account{
			Balance: balance,
			Nonce:   uint64(account.Nonce),
			Code:    fevm.Code(account.Code),
			Storage: account.Storage,
		}
	}
	return res, nil
}

func parseAddress(s string) (fevm.Address, error) {
	if !common.IsHexAddress(s) || strings.HasPrefix(s, "0X") {
		return fevm.Address{}, fmt.Errorf("invalid alloc address %q", s)
	}
	return fevm.Address(common.HexToAddress(s)), nil
}

func toUint256(value *big.Int) (*uint256.Int, error) {
	if value.Sign() < 0 {
		return nil, fmt.Errorf("negative value %v", value)
	}
	res, overflow := uint256.FromBig(value)
	if overflow {
		return nil, fmt.Errorf("value %v exceeds 256 bits", value)
	}
	return res, nil
}

// State creates the initial world state of the chain. Balances are minted
// through CreateEther, so every allocated account exists even if it is
// empty.
func (c *Configuration) State() *state.State {
	s := state.New()
	for address, account := range c.Alloc {
		s.CreateEther(address, account.Balance)
		if account.Nonce != 0 {
			s.SetNonce(address, account.Nonce)
		}
		if len(account.Code) > 0 {
			s.SetCode(address, account.Code)
		}
		for key, value := range account.Storage {
			s.SetStorage(address, key, value)
		}
	}
	return s
}

// BlockParameters describes the genesis block to the interpreter.
func (c *Configuration) BlockParameters() fevm.BlockParameters {
	return fevm.BlockParameters{
		BlockNumber: 0,
		Timestamp:   c.Timestamp,
		Coinbase:    c.Coinbase,
		GasLimit:    c.GasLimit,
		Difficulty:  c.Difficulty,
	}
}
