// Package dsl 用 CEL (Common Expression Language) 对查询结果求值。
//
// 可用变量：
//   - entry.key / entry.score / entry.labels
//   - label.<name>：等价于 entry.labels.<name>.value
//   - rctx.target / rctx.metric / rctx.model / rctx.limit / rctx.params
//
// 示例：
//   - `entry.score > 40.0`
//   - `entry.key.startsWith("Bar")`
//   - `label.cf_metric == "pearson" && entry.score > 0.5`
//   - `!(entry.key in ["Fast_Food", "Cafeteria"])`
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/cuisinekit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("entry", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译好的布尔表达式，可并发复用。
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式；语法错误或返回类型不是 bool 时报错。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must return bool, got %s", out)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

func (p *Program) String() string { return p.expr }

// Evaluate 对单个结果求值。
// 访问不存在的 label 会报错，应写成 label.x != null 或 "x" in entry.labels。
func (p *Program) Evaluate(entry *core.Entry, q *core.Query) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(entry, q))
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

func buildInput(entry *core.Entry, q *core.Query) map[string]any {
	labels := make(map[string]any, len(entry.Labels))
	labelValues := make(map[string]any, len(entry.Labels))
	for k, v := range entry.Labels {
		labels[k] = map[string]any{"value": v.Value, "source": v.Source}
		labelValues[k] = v.Value
	}

	rctx := map[string]any{
		"target": "",
		"metric": "",
		"model":  "",
		"limit":  int64(0),
		"params": map[string]any{},
	}
	if q != nil {
		rctx["target"] = q.Target
		rctx["metric"] = q.Metric
		rctx["model"] = q.Model
		rctx["limit"] = int64(q.Limit)
		if q.Params != nil {
			rctx["params"] = q.Params
		}
	}

	return map[string]any{
		"entry": map[string]any{
			"key":    entry.Key,
			"score":  entry.Score,
			"labels": labels,
		},
		"label": labelValues,
		"rctx":  rctx,
	}
}
