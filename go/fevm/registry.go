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

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/exp/maps"
)

// This file provides registries for Interpreter and Processor implementations.
//
// Implementations register themselves as part of the init code of the package
// providing them. Thus, by including the implementation package, they become
// available in these central registries.

// InterpreterFactory is the type of a function that creates a new Interpreter
// using a interpreter specific configuration.
type InterpreterFactory func(config any) (Interpreter, error)

// ProcessorFactory is the type of a function that creates a new Processor
// running contract code on the given Interpreter.
type ProcessorFactory func(interpreter Interpreter) Processor

// NewInterpreter performs a lookup for the given name (case-insensitive) in
// the registry and creates a new Interpreter using the given optional
// configuration. If no configuration is provided, the implementation uses
// its default configuration. An error is returned if no factory was
// registered under the given name.
func NewInterpreter(name string, config ...any) (Interpreter, error) {
	if len(config) > 1 {
		return nil, fmt.Errorf("invalid configuration: too many arguments")
	}
	factory := GetInterpreterFactory(name)
	if factory == nil {
		return nil, fmt.Errorf("interpreter not found: %s", name)
	}
	c := any(nil)
	if len(config) > 0 {
		c = config[0]
	}
	return factory(c)
}

// GetInterpreterFactory performs a lookup for the given name (case-insensitive)
// in the registry. The result is nil if no factory was registered under the
// given name.
func GetInterpreterFactory(name string) InterpreterFactory {
	registryLock.Lock()
	defer registryLock.Unlock()
	return interpreterRegistry[strings.ToLower(name)]
}

// GetAllRegisteredInterpreters obtains all registered implementations.
func GetAllRegisteredInterpreters() map[string]InterpreterFactory {
	registryLock.Lock()
	defer registryLock.Unlock()
	return maps.Clone(interpreterRegistry)
}

// RegisterInterpreterFactory registers a new Interpreter implementation
// to be exported for general use in the binary. The name is not case-sensitive,
// and an error is returned if a factory was bound to the same name before, or
// the factory is nil.
func RegisterInterpreterFactory(name string, factory InterpreterFactory) error {
	key := strings.ToLower(name)
	if factory == nil {
		return fmt.Errorf("invalid initialization: cannot register nil-factory using `%s`", key)
	}
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, found := interpreterRegistry[key]; found {
		return fmt.Errorf("invalid initialization: multiple factories registered for `%s`", key)
	}
	interpreterRegistry[key] = factory
	return nil
}

// NewProcessor creates a processor registered under the given name
// (case-insensitive) running code on the given interpreter. An error is
// returned if no such processor is known.
func NewProcessor(name string, interpreter Interpreter) (Processor, error) {
	factory := GetProcessorFactory(name)
	if factory == nil {
		return nil, fmt.Errorf("processor not found: %s", name)
	}
	return factory(interpreter), nil
}

// GetProcessorFactory performs a lookup for the given name (case-insensitive)
// in the registry. The result is nil if no factory was registered under the
// given name.
func GetProcessorFactory(name string) ProcessorFactory {
	registryLock.Lock()
	defer registryLock.Unlock()
	return processorRegistry[strings.ToLower(name)]
}

// GetAllRegisteredProcessorFactories obtains all registered processors.
func GetAllRegisteredProcessorFactories() map[string]ProcessorFactory {
	registryLock.Lock()
	defer registryLock.Unlock()
	return maps.Clone(processorRegistry)
}

// RegisterProcessorFactory registers a new Processor implementation. A panic
// is triggered if a factory was bound to the same name before, or the factory
// is nil. This function is intended to be used by package initialization code.
func RegisterProcessorFactory(name string, factory ProcessorFactory) {
	key := strings.ToLower(name)
	if factory == nil {
		panic(fmt.Sprintf("invalid initialization: cannot register nil-factory using `%s`", key))
	}
	registryLock.Lock()
	defer registryLock.Unlock()
	if _, found := processorRegistry[key]; found {
		panic(fmt.Sprintf("invalid initialization: multiple factories registered for `%s`", key))
	}
	processorRegistry[key] = factory
}

var (
	interpreterRegistry = map[string]InterpreterFactory{}
	processorRegistry   = map[string]ProcessorFactory{}

	// registryLock protects access to both registries.
	registryLock sync.Mutex
)
