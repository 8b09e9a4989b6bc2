package filter

import (
	"context"

	"github.com/rushteam/cuisinekit/core"
	"github.com/rushteam/cuisinekit/pkg/dsl"
)

// ExprFilter 用 CEL 表达式过滤结果。
// 表达式为 true 表示保留；Invert 为 true 时语义反转（true 表示剔除）。
type ExprFilter struct {
	program *dsl.Program
	Invert  bool
}

// NewExprFilter 编译表达式，编译失败返回 core.ErrInvalidFilter。
func NewExprFilter(expr string, invert bool) (*ExprFilter, error) {
	p, err := dsl.Compile(expr)
	if err != nil {
		return nil, core.ErrInvalidFilter.Wrapf(err, "invalid filter expression %q", expr)
	}
	return &ExprFilter{program: p, Invert: invert}, nil
}

func (f *ExprFilter) Name() string {
	return "filter.expr"
}

// Expr 返回原始表达式。
func (f *ExprFilter) Expr() string {
	return f.program.String()
}

func (f *ExprFilter) ShouldFilter(
	_ context.Context,
	q *core.Query,
	entry *core.Entry,
) (bool, error) {
	if entry == nil {
		return true, nil
	}
	keep, err := f.program.Evaluate(entry, q)
	if err != nil {
		return false, err
	}
	if f.Invert {
		return keep, nil
	}
	return !keep, nil
}
