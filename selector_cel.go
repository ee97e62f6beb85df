package tivity

import (
	"fmt"
	"reflect"
	"strings"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	"github.com/google/cel-go/interpreter"
)

const celMaxCallArgs = 4

// CELSelector compiles expression with cel-go. Every snapshot key is declared
// as a dyn variable, so programs are compiled per key set and cached.
func CELSelector(expression string, opts ...SelectorOption) (Selector, error) {
	if expression == "" {
		return nil, wrapSelectorError("cel", expression, ErrEmptyExpression)
	}
	cfg := applySelectorOptions(opts)
	if cfg.cache == nil {
		cfg.cache = NewLRUProgramCache(32)
	}
	base, err := celgo.NewEnv()
	if err != nil {
		return nil, wrapSelectorError("cel", expression, err)
	}
	if _, issues := base.Parse(expression); issues != nil && issues.Err() != nil {
		return nil, wrapSelectorError("cel", expression, issues.Err())
	}
	return func(a *Accessor) (any, error) {
		keys := a.Keys()
		program, err := loadOrCompileCEL(cfg, expression, keys)
		if err != nil {
			return nil, err
		}
		declared := make(map[string]struct{}, len(keys))
		for _, key := range keys {
			declared[key] = struct{}{}
		}
		out, _, err := program.Eval(&celActivation{accessor: a, declared: declared})
		if err != nil {
			return nil, wrapSelectorError("cel", expression, err)
		}
		return celToNative(out)
	}, nil
}

func loadOrCompileCEL(cfg selectorConfig, expression string, keys []string) (celgo.Program, error) {
	cacheKey := "cel:" + strings.Join(cfg.registry.Names(), ",") + ":" + strings.Join(keys, ",") + ":" + expression
	if cached, ok := cfg.cache.Get(cacheKey); ok {
		if program, ok := cached.(celgo.Program); ok {
			return program, nil
		}
	}
	env, err := celgo.NewEnv(celEnvOptions(cfg.registry, keys)...)
	if err != nil {
		return nil, wrapSelectorError("cel", expression, err)
	}
	checked, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapSelectorError("cel", expression, issues.Err())
	}
	program, err := env.Program(checked)
	if err != nil {
		return nil, wrapSelectorError("cel", expression, err)
	}
	cfg.cache.Set(cacheKey, program)
	return program, nil
}

func celEnvOptions(registry *FunctionRegistry, keys []string) []celgo.EnvOption {
	opts := make([]celgo.EnvOption, 0, len(keys)+2)
	for _, key := range keys {
		opts = append(opts, celgo.Variable(key, celgo.DynType))
	}
	opts = append(opts, celgo.Function("call", celOverloads("call", true, registry.caller())...))
	for _, name := range registry.Names() {
		fn := name
		opts = append(opts, celgo.Function(fn, celOverloads(fn, false, func(arguments ...any) (any, error) {
			return registry.Call(fn, arguments...)
		})...))
	}
	return opts
}

// celOverloads declares fixed arities up to celMaxCallArgs since CEL has no
// variadic functions.
func celOverloads(name string, named bool, fn Function) []celgo.FunctionOpt {
	binding := celgo.FunctionBinding(func(values ...ref.Val) ref.Val {
		args := make([]any, 0, len(values))
		for _, val := range values {
			native, err := celToNative(val)
			if err != nil {
				return types.NewErr("%v", err)
			}
			args = append(args, native)
		}
		result, err := fn(args...)
		if err != nil {
			return types.NewErr("%v", err)
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	})
	var overloads []celgo.FunctionOpt
	for arity := 0; arity <= celMaxCallArgs; arity++ {
		params := make([]*celgo.Type, 0, arity+1)
		if named {
			params = append(params, celgo.StringType)
		}
		for i := 0; i < arity; i++ {
			params = append(params, celgo.DynType)
		}
		if len(params) == 0 {
			continue
		}
		id := fmt.Sprintf("%s_dyn_%d", name, arity)
		overloads = append(overloads, celgo.Overload(id, params, celgo.DynType, binding))
	}
	return overloads
}

type celActivation struct {
	accessor *Accessor
	declared map[string]struct{}
}

func (c *celActivation) ResolveName(name string) (any, bool) {
	if _, ok := c.declared[name]; !ok {
		return nil, false
	}
	return c.accessor.Lookup(name)
}

func (c *celActivation) Parent() interpreter.Activation {
	return nil
}

var (
	nativeMapType  = reflect.TypeOf(map[string]any{})
	nativeListType = reflect.TypeOf([]any{})
)

func celToNative(val ref.Val) (any, error) {
	if val == nil || val == types.NullValue {
		return nil, nil
	}
	switch val.(type) {
	case traits.Mapper:
		return val.ConvertToNative(nativeMapType)
	case traits.Lister:
		return val.ConvertToNative(nativeListType)
	default:
		return val.Value(), nil
	}
}
