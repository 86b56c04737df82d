// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package processor

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/frontier-evm/fevm/go/fevm"
)

// Scenario represents a test scenario for a transaction processor. A scenario
// consists of a world state before and after the operation, a transaction to
// be executed, block chain parameters, and the expected receipt. Scenarios
// with an Error expect the transaction to be rejected.
type Scenario struct {
	Before      WorldState
	After       WorldState
	Parameters  fevm.BlockEnvironment
	Transaction fevm.Transaction
	Receipt     fevm.Receipt
	Error       error
}

func (s *Scenario) Run(t *testing.T, processor fevm.Processor) {
	t.Helper()
	context := s.Before.ToState()
	rootBefore := context.StateRoot()

	receipt, err := processor.Run(s.Parameters, s.Transaction, context)
	if context.InTransaction() {
		t.Fatalf("processor left a transaction open")
	}
	if s.Error != nil {
		if !errors.Is(err, s.Error) {
			t.Fatalf("unexpected error, wanted %v, got %v", s.Error, err)
		}
		if want, got := rootBefore, context.StateRoot(); want != got {
			t.Fatalf("rejected transaction modified the state")
		}
		return
	}
	if err != nil {
		t.Fatalf("failed to run transaction: %v", err)
	}

	// check the world state after the operation
	if want, got := s.After, FromState(context); !want.Equal(got) {
		diff := strings.Join(got.Diff(want), "\n\t")
		t.Fatalf("unexpected world state after the operation: \n\t%v", diff)
	}

	// check the receipt
	if want, got := s.Receipt.Success, receipt.Success; want != got {
		t.Errorf("unexpected success, want %v, got %v", want, got)
	}
	if want, got := s.Receipt.GasUsed, receipt.GasUsed; want != got {
		t.Errorf("unexpected gas used, want %v, got %v", want, got)
	}
	if want, got := s.Receipt.Output, receipt.Output; !bytes.Equal(want, got) {
		t.Errorf("unexpected output used, want %x, got %x", want, got)
	}

	wantedCreatedContract := s.Receipt.ContractAddress
	gotCreatedContract := receipt.ContractAddress
	if wantedCreatedContract == nil && gotCreatedContract != nil {
		t.Errorf("unexpected created contract address, want nil, got %v", gotCreatedContract)
	}
	if wantedCreatedContract != nil && gotCreatedContract == nil {
		t.Errorf("unexpected created contract address, want %v, got nil", wantedCreatedContract)
	}
	if wantedCreatedContract != nil && gotCreatedContract != nil {
		if want, got := *wantedCreatedContract, *gotCreatedContract; want != got {
			t.Errorf("unexpected created contract address, want %v, got %v", want, got)
		}
	}

	if len(receipt.Logs) != len(s.Receipt.Logs) {
		t.Fatalf("unexpected receipt logs: %v", receipt.Logs)
	} else {
		for i, want := range s.Receipt.Logs {
			got := receipt.Logs[i]
			if want, got := want.Address, got.Address; want != got {
				t.Errorf("unexpected receipt log address, want %v, got %v", want, got)
			}
			if want, got := want.Topics, got.Topics; !slices.Equal(want, got) {
				t.Errorf("unexpected receipt log topics, want %v, got %v", want, got)
			}
			if want, got := want.Data, got.Data; !bytes.Equal(want, got) {
				t.Errorf("unexpected receipt data, want %x, got %x", want, got)
			}
		}
	}
}

func (s *Scenario) Clone() Scenario {
	return Scenario{
		Before:      s.Before.Clone(),
		After:       s.After.Clone(),
		Parameters:  s.Parameters,
		Transaction: s.Transaction,
		Receipt:     s.Receipt,
		Error:       s.Error,
	}
}
