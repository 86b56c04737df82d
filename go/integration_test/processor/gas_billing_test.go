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
	"fmt"
	"testing"

	"github.com/frontier-evm/fevm/go/fevm"
	"github.com/frontier-evm/fevm/go/fevm/vm"
	"go.uber.org/mock/gomock"
)

func TestProcessor_GasBillingEndToEnd(t *testing.T) {
	senderBalance := fevm.NewValue(1000000)
	gasLimit := fevm.Gas(100000)
	gasPrice := fevm.NewValue(5)
	gasLeftSuccess := fevm.Gas(5000)
	coinbase := fevm.Address{0xc}

	tests := map[string]struct {
		result  fevm.Result
		gasUsed fevm.Gas
		success bool
	}{
		"success": {
			result: fevm.Result{
				GasLeft:   gasLeftSuccess,
				Success:   true,
				GasRefund: 3000,
			},
			gasUsed: gasLimit - gasLeftSuccess - 3000,
			success: true,
		},
		"refund capped at half of the gas used": {
			result: fevm.Result{
				GasLeft:   gasLeftSuccess,
				Success:   true,
				GasRefund: gasLimit,
			},
			gasUsed: (gasLimit - gasLeftSuccess) - (gasLimit-gasLeftSuccess)/2,
			success: true,
		},
		"failed": {
			result: fevm.Result{
				GasLeft:   gasLeftSuccess,
				Success:   false,
				GasRefund: 3000,
			},
			gasUsed: gasLimit,
			success: false,
		},
	}

	sender := fevm.Address{1}
	recipient := fevm.Address{2}
	code := fevm.Code{
		byte(vm.PUSH1), byte(0), // < push 0
		byte(vm.PUSH1), byte(0), // < push 0
		byte(vm.RETURN),
	}
	before := WorldState{
		sender:    Account{Balance: senderBalance, Nonce: 4},
		recipient: Account{Code: code},
	}

	transaction := fevm.Transaction{
		Sender:    sender,
		Recipient: &recipient,
		GasLimit:  gasLimit,
		GasPrice:  gasPrice,
		Nonce:     4,
	}

	for name, test := range tests {
		ctrl := gomock.NewController(t)
		interpreter := fevm.NewMockInterpreter(ctrl)
		for processorName, processor := range processorsWithInterpreter("mockInterpreter", interpreter) {
			t.Run(fmt.Sprintf("%s/%s", processorName, name), func(t *testing.T) {
				fee := gasPrice.Scale(uint64(test.gasUsed))
				after := before.Clone()
				after[sender] = Account{Balance: fevm.Sub(senderBalance, fee), Nonce: 5}
				after[coinbase] = Account{Balance: fee}

				scenario := Scenario{
					Before:      before,
					Parameters:  fevm.BlockEnvironment{BlockParameters: fevm.BlockParameters{Coinbase: coinbase}},
					Transaction: transaction,
					After:       after,
					Receipt: fevm.Receipt{
						Success: test.success,
						GasUsed: test.gasUsed,
					},
				}

				interpreter.EXPECT().Run(gomock.Any()).DoAndReturn(func(params fevm.Parameters) (fevm.Result, error) {
					if want, got := gasLimit-21_000, params.Gas; want != got {
						t.Errorf("unexpected gas handed to interpreter, wanted %d, got %d", want, got)
					}
					return test.result, nil
				})
				scenario.Run(t, processor)
			})
		}
	}
}

func processorsWithInterpreter(name string, interpreter fevm.Interpreter) map[string]fevm.Processor {
	factories := fevm.GetAllRegisteredProcessorFactories()
	res := map[string]fevm.Processor{}
	for processorName, factory := range factories {
		res[fmt.Sprintf("%s/%s", processorName, name)] = factory(interpreter)
	}
	return res
}
