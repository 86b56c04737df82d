// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethmath "github.com/ethereum/go-ethereum/common/math"
	cliUtils "github.com/frontier-evm/fevm/go/driver/cli"
	"github.com/frontier-evm/fevm/go/examples"
	"github.com/frontier-evm/fevm/go/fevm"
	"github.com/frontier-evm/fevm/go/genesis"
	"github.com/frontier-evm/fevm/go/state"
	"github.com/holiman/uint256"
	"github.com/urfave/cli/v2"
)

var (
	fromFlag = &cli.StringFlag{
		Name:  "from",
		Usage: "sender of the transaction",
		Value: "0x00000000000000000000000000000000000000f0",
	}
	toFlag = &cli.StringFlag{
		Name:  "to",
		Usage: "recipient of the transaction, a contract is created if empty",
	}
	valueFlag = &cli.StringFlag{
		Name:  "value",
		Usage: "transferred value in wei, decimal or hex",
		Value: "0",
	}
	gasFlag = &cli.Int64Flag{
		Name:  "gas",
		Usage: "gas limit of the transaction",
		Value: 10_000_000,
	}
	gasPriceFlag = &cli.StringFlag{
		Name:  "gas-price",
		Usage: "price per unit of gas in wei, decimal or hex",
		Value: "0",
	}
	inputFlag = &cli.StringFlag{
		Name:  "input",
		Usage: "hex encoded input data or init code",
	}
	exampleFlag = &cli.StringFlag{
		Name:    "example",
		Aliases: []string{"e"},
		Usage:   "name of an example contract deployed at the recipient and called with the argument",
	}
)

// exampleAddress is the default location of example contracts.
var exampleAddress = fevm.Address{19: 0xcc}

var RunCmd = cliUtils.AddCommonFlags(cli.Command{
	Action: doRun,
	Name:   "run",
	Usage:  "Runs a single transaction on a genesis state and prints its receipt",
	Flags: []cli.Flag{
		cliUtils.GenesisFlag,
		cliUtils.InterpreterFlag,
		cliUtils.ArgumentFlag,
		fromFlag,
		toFlag,
		valueFlag,
		gasFlag,
		gasPriceFlag,
		inputFlag,
		exampleFlag,
	},
})

func doRun(context *cli.Context) error {
	transaction, err := parseTransaction(context)
	if err != nil {
		return err
	}

	s := state.New()
	block := fevm.BlockParameters{
		BlockNumber: 1,
		GasLimit:    transaction.GasLimit,
	}
	if path := cliUtils.GenesisFlag.Fetch(context); path != "" {
		config, err := genesis.Load(path)
		if err != nil {
			return err
		}
		s = config.State()
		block = config.BlockParameters()
		block.BlockNumber = 1
		block.GasLimit = max(block.GasLimit, transaction.GasLimit)
	} else {
		// Without genesis, the sender is funded to afford the transaction.
		cost := transaction.GasPrice.Scale(uint64(transaction.GasLimit))
		s.CreateEther(transaction.Sender, fevm.Add(cost, transaction.Value))
	}
	transaction.Nonce = s.GetNonce(transaction.Sender)

	var example *examples.Example
	if name := context.String(exampleFlag.Name); name != "" {
		e, err := examples.GetExample(name)
		if err != nil {
			return err
		}
		example = &e
		if transaction.Recipient == nil {
			transaction.Recipient = &exampleAddress
		}
		s.SetCode(*transaction.Recipient, e.Code)
		transaction.Input = e.EncodeInput(cliUtils.ArgumentFlag.Fetch(context))
	}

	interpreter, err := fevm.NewInterpreter(cliUtils.InterpreterFlag.Fetch(context))
	if err != nil {
		return err
	}
	processor, err := fevm.NewProcessor("frontier", interpreter)
	if err != nil {
		return err
	}

	receipt, err := processor.Run(fevm.BlockEnvironment{BlockParameters: block}, transaction, s)
	if err != nil {
		return err
	}

	out := context.App.Writer
	fmt.Fprintf(out, "success:    %t\n", receipt.Success)
	fmt.Fprintf(out, "gas used:   %d\n", receipt.GasUsed)
	fmt.Fprintf(out, "output:     %s\n", hexutil.Encode(receipt.Output))
	if receipt.ContractAddress != nil {
		fmt.Fprintf(out, "contract:   %v\n", *receipt.ContractAddress)
	}
	fmt.Fprintf(out, "logs:       %d\n", len(receipt.Logs))
	if example != nil && receipt.Success {
		result, err := examples.DecodeOutput(receipt.Output)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "result:     %d (expected %d)\n", result, example.RunReference(cliUtils.ArgumentFlag.Fetch(context)))
	}
	fmt.Fprintf(out, "state root: %v\n", s.StateRoot())
	return nil
}

func parseTransaction(context *cli.Context) (fevm.Transaction, error) {
	sender, err := parseAddress(context.String(fromFlag.Name))
	if err != nil {
		return fevm.Transaction{}, err
	}
	res := fevm.Transaction{Sender: sender}

	if to := context.String(toFlag.Name); to != "" {
		recipient, err := parseAddress(to)
		if err != nil {
			return fevm.Transaction{}, err
		}
		res.Recipient = &recipient
	}
	if res.Value, err = parseValue(context.String(valueFlag.Name)); err != nil {
		return fevm.Transaction{}, err
	}
	if res.GasPrice, err = parseValue(context.String(gasPriceFlag.Name)); err != nil {
		return fevm.Transaction{}, err
	}
	gas := context.Int64(gasFlag.Name)
	if gas < 0 || gas > math.MaxInt64/2 {
		return fevm.Transaction{}, fmt.Errorf("invalid gas limit %d", gas)
	}
	res.GasLimit = fevm.Gas(gas)
	if input := context.String(inputFlag.Name); input != "" {
		data, err := hexutil.Decode(input)
		if err != nil {
			return fevm.Transaction{}, fmt.Errorf("invalid input: %w", err)
		}
		res.Input = data
	}
	return res, nil
}

func parseAddress(s string) (fevm.Address, error) {
	if !common.IsHexAddress(s) {
		return fevm.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return fevm.Address(common.HexToAddress(s)), nil
}

func parseValue(s string) (fevm.Value, error) {
	value, ok := gethmath.ParseBig256(s)
	if !ok || value.Sign() < 0 {
		return fevm.Value{}, fmt.Errorf("invalid value %q", s)
	}
	res, _ := uint256.FromBig(value)
	return fevm.ValueFromUint256(res), nil
}
