package tivity

import (
	"fmt"
	"strings"

	"github.com/dop251/goja"
)

// JSSelector compiles expression with goja. Snapshot fields are visible as
// globals through a read-only state object and are tracked when read.
func JSSelector(expression string, opts ...SelectorOption) (Selector, error) {
	if expression == "" {
		return nil, wrapSelectorError("js", expression, ErrEmptyExpression)
	}
	cfg := applySelectorOptions(opts)
	program, err := loadOrCompileJS(cfg, expression)
	if err != nil {
		return nil, err
	}
	return func(a *Accessor) (any, error) {
		vm := goja.New()
		state := &jsState{vm: vm, accessor: a}
		if err := vm.Set("state", vm.NewDynamicObject(state)); err != nil {
			return nil, wrapSelectorError("js", expression, err)
		}
		if err := injectJSFunctions(vm, cfg.registry); err != nil {
			return nil, wrapSelectorError("js", expression, err)
		}
		value, err := vm.RunProgram(program)
		if err != nil {
			return nil, wrapSelectorError("js", expression, err)
		}
		return value.Export(), nil
	}, nil
}

func loadOrCompileJS(cfg selectorConfig, expression string) (*goja.Program, error) {
	cacheKey := "js:" + expression
	if cfg.cache != nil {
		if cached, ok := cfg.cache.Get(cacheKey); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("selector", wrapJSExpression(expression), false)
	if err != nil {
		return nil, wrapSelectorError("js", expression, err)
	}
	if cfg.cache != nil {
		cfg.cache.Set(cacheKey, program)
	}
	return program, nil
}

func wrapJSExpression(expression string) string {
	return fmt.Sprintf("(function(){ with (state) { return (%s); } })()", strings.TrimSpace(expression))
}

func injectJSFunctions(vm *goja.Runtime, registry *FunctionRegistry) error {
	if err := vm.Set("call", registry.caller()); err != nil {
		return err
	}
	for _, name := range registry.Names() {
		fn := name
		if err := vm.Set(fn, func(arguments ...any) (any, error) {
			return registry.Call(fn, arguments...)
		}); err != nil {
			return err
		}
	}
	return nil
}

// jsState exposes snapshot fields to scripts. Writes are rejected.
type jsState struct {
	vm       *goja.Runtime
	accessor *Accessor
}

func (s *jsState) Get(key string) goja.Value {
	value, ok := s.accessor.Lookup(key)
	if !ok {
		return goja.Undefined()
	}
	return s.vm.ToValue(value)
}

func (s *jsState) Set(string, goja.Value) bool {
	return false
}

func (s *jsState) Has(key string) bool {
	return s.accessor.Snapshot().Has(key)
}

func (s *jsState) Delete(string) bool {
	return false
}

func (s *jsState) Keys() []string {
	return s.accessor.Keys()
}
