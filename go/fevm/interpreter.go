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

//go:generate mockgen -source interpreter.go -destination interpreter_mock.go -package fevm

// MaxCallDepth is the maximum nesting depth of message calls. A message
// with a depth beyond this limit is never executed.
const MaxCallDepth = 1024

// Interpreter is a component capable of executing EVM byte-code. It is the main
// part of an EVM implementation, though a full EVM adds the ability to handle
// recursive contract calls and transaction handling.
// To obtain an Interpreter instance, client code should use NewInterpreter() provided
// by the registry file in this package.
type Interpreter interface {
	// Run executes the code provided by the parameters in the specified context
	// and returns the processing result. The resulting error is nil whenever the
	// code was correctly executed (even if the execution was aborted due do to
	// a code-internal issue). The error is not nil if some problem within the
	// interpreter caused the execution to fail to correctly process the provided
	// program. In such a case the result is undefined.
	// Interpreters are required to be thread-safe. Thus, multiple runs may be
	// conducted in parallel.
	Run(Parameters) (Result, error)
}

// Parameters summarizes the list of input parameters required for executing code.
type Parameters struct {
	BlockParameters
	TransactionParameters
	Context   RunContext
	Kind      CallKind
	Depth     int
	Gas       Gas
	Recipient Address // < the account whose storage and balance the code operates on
	Sender    Address
	Input     Data
	Value     Value
	CodeHash  *Hash // < optional, enables code analysis caching
	Code      Code
}

// BlockParameters contains information about the current block.
type BlockParameters struct {
	BlockNumber int64
	Timestamp   int64
	Coinbase    Address
	GasLimit    Gas
	Difficulty  Word
}

// TransactionParameters contains information about current transaction.
type TransactionParameters struct {
	Origin   Address
	GasPrice Value
}

// RunContext provides an interface to access and manipulate state and transaction
// properties as needed by individual EVM instructions.
type RunContext interface {
	WorldState

	// GetBlockHash returns the hash of the block with the given number. The
	// interpreter only requests hashes of the 256 most recent blocks.
	GetBlockHash(number int64) Hash

	// Call runs a nested message call or contract creation. The call depth
	// and balance preconditions are checked by the caller.
	Call(kind CallKind, parameter CallParameters) (CallResult, error)
}

// Result summarizes the result of a EVM code computation.
type Result struct {
	Success          bool // false if the execution ended with an error, true otherwise
	Output           Data
	GasLeft          Gas
	GasRefund        Gas
	Logs             []Log
	AccountsToDelete AddressSet
}

// CallKind is an enum enabling the differentiation of the different types
// of recursive contract calls supported in the EVM.
type CallKind int

const (
	Call CallKind = iota
	CallCode
	Create
)

type CallParameters struct {
	Sender      Address
	Recipient   Address // < not relevant for CREATE
	Value       Value
	Input       Data // < the init code for CREATE
	Gas         Gas
	CodeAddress Address // < the account providing the code for CALL and CALLCODE
}

type CallResult struct {
	Output           Data
	GasLeft          Gas
	GasRefund        Gas
	Logs             []Log
	AccountsToDelete AddressSet
	CreatedAddress   Address // < only meaningful for CREATE
	Success          bool    // false if the execution ended with an error, true otherwise
}

// ProfilingInterpreter is an optional extension to the Interpreter interface
// above which may be implemented by interpreters collecting statistical data
// on their executions.
type ProfilingInterpreter interface {
	Interpreter

	// ResetProfile resets the operation statistic collected by the underlying
	// Interpreter implementation. Use this, for instance, at the beginning of
	// a benchmark. It should not be called while running operations on the
	// Interpreter in parallel.
	ResetProfile()

	// DumpProfile prints a snapshot of the profiling data collected since the
	// last reset to stdout.
	DumpProfile()
}
