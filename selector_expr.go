package tivity

import (
	"strings"

	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	exprvm "github.com/expr-lang/expr/vm"
)

type exprProgram struct {
	program *exprvm.Program
	idents  []string
}

// ExprSelector compiles expression with expr-lang/expr. Identifiers in the
// expression resolve to snapshot fields and are tracked on every run.
func ExprSelector(expression string, opts ...SelectorOption) (Selector, error) {
	if expression == "" {
		return nil, wrapSelectorError("expr", expression, ErrEmptyExpression)
	}
	cfg := applySelectorOptions(opts)
	compiled, err := loadOrCompileExpr(cfg, expression)
	if err != nil {
		return nil, err
	}
	return func(a *Accessor) (any, error) {
		env := make(map[string]any, len(compiled.idents))
		for _, ident := range compiled.idents {
			if value, ok := a.Lookup(ident); ok {
				env[ident] = value
			}
		}
		result, err := exprlang.Run(compiled.program, env)
		if err != nil {
			return nil, wrapSelectorError("expr", expression, err)
		}
		return result, nil
	}, nil
}

func loadOrCompileExpr(cfg selectorConfig, expression string) (*exprProgram, error) {
	cacheKey := "expr:" + strings.Join(cfg.registry.Names(), ",") + ":" + expression
	if cfg.cache != nil {
		if cached, ok := cfg.cache.Get(cacheKey); ok {
			if program, ok := cached.(*exprProgram); ok {
				return program, nil
			}
		}
	}

	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, wrapSelectorError("expr", expression, err)
	}
	collector := &identCollector{skip: map[string]struct{}{"call": {}}}
	for _, name := range cfg.registry.Names() {
		collector.skip[name] = struct{}{}
	}
	ast.Walk(&tree.Node, collector)

	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
		exprlang.Function("call", cfg.registry.caller()),
	}
	for _, name := range cfg.registry.Names() {
		fn := name
		options = append(options, exprlang.Function(fn, func(arguments ...any) (any, error) {
			return cfg.registry.Call(fn, arguments...)
		}))
	}
	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, wrapSelectorError("expr", expression, err)
	}

	compiled := &exprProgram{program: program, idents: collector.names()}
	if cfg.cache != nil {
		cfg.cache.Set(cacheKey, compiled)
	}
	return compiled, nil
}

type identCollector struct {
	skip     map[string]struct{}
	declared map[string]struct{}
	seen     map[string]struct{}
	order    []string
}

func (c *identCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.VariableDeclaratorNode:
		if c.declared == nil {
			c.declared = make(map[string]struct{})
		}
		c.declared[n.Name] = struct{}{}
	case *ast.IdentifierNode:
		if _, ok := c.skip[n.Value]; ok {
			return
		}
		if c.seen == nil {
			c.seen = make(map[string]struct{})
		}
		if _, ok := c.seen[n.Value]; ok {
			return
		}
		c.seen[n.Value] = struct{}{}
		c.order = append(c.order, n.Value)
	}
}

func (c *identCollector) names() []string {
	out := make([]string, 0, len(c.order))
	for _, name := range c.order {
		if _, ok := c.declared[name]; ok {
			continue
		}
		out = append(out, name)
	}
	return out
}
