// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cliUtils

import (
	"fmt"
	"os"
	"regexp"
	"runtime/pprof"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
)

type filterFlagType struct {
	cli.StringFlag
}

var FilterFlag = &filterFlagType{
	cli.StringFlag{
		Name:    "filter",
		Aliases: []string{"f"},
		Usage:   "use only examples which name matches the given regex",
		Value:   "",
	},
}

func (f *filterFlagType) Fetch(context *cli.Context) (*regexp.Regexp, error) {
	return regexp.Compile(context.String(f.Name))
}

type interpreterFlagType struct {
	cli.StringFlag
}

var InterpreterFlag = &interpreterFlagType{
	cli.StringFlag{
		Name:    "interpreter",
		Aliases: []string{"i"},
		Usage:   "name of the interpreter running contract code",
		Value:   "fvm",
	},
}

func (f *interpreterFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type genesisFlagType struct {
	cli.StringFlag
}

var GenesisFlag = &genesisFlagType{
	cli.StringFlag{
		Name:      "genesis",
		Aliases:   []string{"g"},
		Usage:     "JSON file with the genesis allocation",
		TakesFile: true,
	},
}

func (f *genesisFlagType) Fetch(context *cli.Context) string {
	return context.String(f.Name)
}

type argumentFlagType struct {
	cli.IntFlag
}

var ArgumentFlag = &argumentFlagType{
	cli.IntFlag{
		Name:    "argument",
		Aliases: []string{"a"},
		Usage:   "argument passed to example contracts",
		Value:   20,
	},
}

func (f *argumentFlagType) Fetch(context *cli.Context) int {
	return context.Int(f.Name)
}

type verbosityFlagType struct {
	cli.IntFlag
}

var VerbosityFlag = &verbosityFlagType{
	cli.IntFlag{
		Name:  "verbosity",
		Usage: "log level, 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	},
}

func (f *verbosityFlagType) Fetch(context *cli.Context) int {
	return context.Int(f.Name)
}

// SetupLogging installs a terminal log handler on stderr filtering by the
// level given through the verbosity flag.
func SetupLogging(context *cli.Context) error {
	verbosity := VerbosityFlag.Fetch(context)
	if verbosity < 0 || verbosity > 5 {
		return fmt.Errorf("invalid verbosity %d", verbosity)
	}
	level := log.FromLegacyLevel(verbosity)
	if verbosity == 0 {
		level = log.LevelCrit + 1
	}
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, level, false)
	log.SetDefault(log.NewLogger(handler))
	return nil
}

var commonFlags = []cli.Flag{
	cpuProfileFlag,
}

var cpuProfileFlag = &cli.StringFlag{
	Name:  "cpuprofile",
	Usage: "store CPU profile in the provided filename",
}

func AddCommonFlags(command cli.Command) cli.Command {
	command.Flags = append(command.Flags, commonFlags...)

	action := command.Action
	command.Action = func(ctx *cli.Context) (err error) {

		if cpuprofileFilename := ctx.String(cpuProfileFlag.Name); cpuprofileFilename != "" {
			f, err := os.Create(cpuprofileFilename)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %w", err)
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %w", err)
			}
			defer pprof.StopCPUProfile()
		}

		return action(ctx)
	}
	return command
}
