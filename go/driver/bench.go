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
	"time"

	"github.com/dsnet/golib/unitconv"
	cliUtils "github.com/frontier-evm/fevm/go/driver/cli"
	"github.com/frontier-evm/fevm/go/examples"
	"github.com/frontier-evm/fevm/go/fevm"
	"github.com/urfave/cli/v2"
)

var runsFlag = &cli.IntFlag{
	Name:    "runs",
	Aliases: []string{"n"},
	Usage:   "number of executions per example",
	Value:   1000,
}

var profileFlag = &cli.BoolFlag{
	Name:  "profile",
	Usage: "print the instruction profile of profiling interpreters after each example",
}

var BenchCmd = cliUtils.AddCommonFlags(cli.Command{
	Action: doBench,
	Name:   "bench",
	Usage:  "Measures the throughput of an interpreter on the example contracts",
	Flags: []cli.Flag{
		cliUtils.InterpreterFlag,
		cliUtils.FilterFlag,
		cliUtils.ArgumentFlag,
		runsFlag,
		profileFlag,
	},
})

func doBench(context *cli.Context) error {
	filter, err := cliUtils.FilterFlag.Fetch(context)
	if err != nil {
		return err
	}
	runs := context.Int(runsFlag.Name)
	if runs <= 0 {
		return fmt.Errorf("invalid number of runs %d", runs)
	}
	argument := cliUtils.ArgumentFlag.Fetch(context)

	interpreter, err := fevm.NewInterpreter(cliUtils.InterpreterFlag.Fetch(context))
	if err != nil {
		return err
	}
	profiler, isProfiling := interpreter.(fevm.ProfilingInterpreter)
	isProfiling = isProfiling && context.Bool(profileFlag.Name)

	out := context.App.Writer
	for _, example := range examples.GetAllExamples() {
		if !filter.MatchString(example.Name) {
			continue
		}
		if isProfiling {
			profiler.ResetProfile()
		}

		var gas fevm.Gas
		start := time.Now()
		for i := 0; i < runs; i++ {
			res, err := example.RunOn(interpreter, argument)
			if err != nil {
				return fmt.Errorf("failed to run %s: %w", example.Name, err)
			}
			if want, got := example.RunReference(argument), res.Result; want != got {
				return fmt.Errorf("unexpected result of %s, wanted %d, got %d", example.Name, want, got)
			}
			gas += res.UsedGas
		}
		seconds := time.Since(start).Seconds()

		fmt.Fprintf(out, "%-16s %8s runs/s %10sgas/s\n",
			example.Name,
			unitconv.FormatPrefix(float64(runs)/seconds, unitconv.SI, 1),
			unitconv.FormatPrefix(float64(gas)/seconds, unitconv.SI, 1),
		)
		if isProfiling {
			profiler.DumpProfile()
		}
	}
	return nil
}
