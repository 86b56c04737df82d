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

	cliUtils "github.com/frontier-evm/fevm/go/driver/cli"
	"github.com/frontier-evm/fevm/go/genesis"
	"github.com/urfave/cli/v2"
)

var GenesisCmd = cli.Command{
	Action:    doGenesis,
	Name:      "genesis",
	Usage:     "Prints the state root of a genesis allocation",
	ArgsUsage: "<genesis.json>",
	Flags: []cli.Flag{
		cliUtils.GenesisFlag,
	},
}

func doGenesis(context *cli.Context) error {
	path := cliUtils.GenesisFlag.Fetch(context)
	if path == "" {
		path = context.Args().First()
	}
	if path == "" {
		return fmt.Errorf("missing genesis file")
	}
	config, err := genesis.Load(path)
	if err != nil {
		return err
	}
	s := config.State()
	fmt.Fprintf(context.App.Writer, "accounts:   %d\n", len(config.Alloc))
	fmt.Fprintf(context.App.Writer, "state root: %v\n", s.StateRoot())
	return nil
}
