package tivity

import (
	"fmt"
	"strings"
	"sync"
)

// Function is a helper callable from expression selectors.
type Function func(args ...any) (any, error)

// FunctionRegistry stores selector helpers keyed by lower cased name.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry constructs an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register stores fn under name guarding against duplicates.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return &ConfigError{Field: name, Err: fmt.Errorf("function is nil")}
	}
	if name == "" {
		return &ConfigError{Field: "function", Err: fmt.Errorf("name must not be empty")}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return &ConfigError{Field: name, Err: ErrDuplicateKey}
	}
	r.functions[key] = fn
	return nil
}

// MustRegister is Register for package level setup.
func (r *FunctionRegistry) MustRegister(name string, fn Function) *FunctionRegistry {
	if err := r.Register(name, fn); err != nil {
		panic(err)
	}
	return r
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := &FunctionRegistry{
		functions: make(map[string]Function, len(r.functions)),
	}
	for name, fn := range r.functions {
		out.functions[name] = fn
	}
	return out
}

// Has reports whether name is registered.
func (r *FunctionRegistry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.functions[strings.ToLower(name)]
	return ok
}

// Call executes the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("%s function registry is nil", ErrorPrefix)
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("%s function %q not registered", ErrorPrefix, name)
	}
	return fn(args...)
}

// Names returns registered function names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.functions)
}

func (r *FunctionRegistry) caller() func(args ...any) (any, error) {
	return func(args ...any) (any, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("%s call requires function name", ErrorPrefix)
		}
		name, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("%s call name must be string", ErrorPrefix)
		}
		return r.Call(name, args[1:]...)
	}
}

