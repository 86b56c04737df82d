// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package fvm implements an interpreter for Frontier revision EVM code. The
// code is executed as it is; the only preprocessing is the analysis of valid
// jump destinations, which is cached by code hash.
package fvm

import (
	"fmt"
	"os"

	"github.com/frontier-evm/fevm/go/fevm"
)

// Registers the Frontier VM as a possible interpreter implementation.
func init() {
	configs := map[string]Config{
		// The configuration to be used for production purposes.
		"fvm": {
			WithShaCache: true,
		},
		"fvm-no-sha-cache": {},
		"fvm-no-code-cache": {
			WithShaCache:      true,
			AnalysisCacheSize: -1,
		},
		"fvm-logging": {
			WithShaCache: true,
			runner:       newLogger(os.Stderr),
		},
	}

	for name, config := range configs {
		config := config
		mustRegister(name, func(any) (fevm.Interpreter, error) {
			return NewInterpreter(config)
		})
	}

	// Statistics are accumulated across runs, thus every instance needs its
	// own collector.
	mustRegister("fvm-stats", func(any) (fevm.Interpreter, error) {
		return NewInterpreter(Config{
			WithShaCache: true,
			runner:       &statisticRunner{stats: newStatistics()},
		})
	})
}

func mustRegister(name string, factory fevm.InterpreterFactory) {
	if err := fevm.RegisterInterpreterFactory(name, factory); err != nil {
		panic(fmt.Sprintf("failed to register interpreter %q: %v", name, err))
	}
}

type Config struct {
	// WithShaCache enables caching of SHA3 results for 32 and 64 byte inputs.
	WithShaCache bool
	// AnalysisCacheSize is the number of jump destination analyses retained.
	// Zero selects a default size, negative values disable the cache.
	AnalysisCacheSize int
	runner            runner
}

type fvm struct {
	config   Config
	analyzer *analyzer
}

// NewInterpreter creates a Frontier interpreter with the given configuration.
func NewInterpreter(config Config) (*fvm, error) {
	analyzer, err := newAnalyzer(config.AnalysisCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create code analyzer: %w", err)
	}
	return &fvm{config: config, analyzer: analyzer}, nil
}

func (v *fvm) Run(params fevm.Parameters) (fevm.Result, error) {
	if params.Depth > fevm.MaxCallDepth {
		return fevm.Result{}, fmt.Errorf("call depth %d exceeds limit of %d", params.Depth, fevm.MaxCallDepth)
	}

	jumpDests := v.analyzer.analyze(params.Code, params.CodeHash)

	config := interpreterConfig{
		withShaCache: v.config.WithShaCache,
		runner:       v.config.runner,
	}

	return run(config, params, jumpDests)
}

func (v *fvm) DumpProfile() {
	if statsRunner, ok := v.config.runner.(*statisticRunner); ok {
		fmt.Print(statsRunner.getSummary())
	}
}

func (v *fvm) ResetProfile() {
	if statsRunner, ok := v.config.runner.(*statisticRunner); ok {
		statsRunner.reset()
	}
}

var _ fevm.ProfilingInterpreter = (*fvm)(nil)
