package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/cuisinekit/core"
)

// Pipeline 把一次查询拆成可组合的 Node 链：Recall → Filter → ReRank。
type Pipeline struct {
	Nodes []Node

	Logger zerolog.Logger
}

// Run 依次执行各 Node，任一 Node 出错立即返回。
func (p *Pipeline) Run(
	ctx context.Context,
	q *core.Query,
	entries []*core.Entry,
) ([]*core.Entry, error) {
	cur := entries
	for _, node := range p.Nodes {
		start := time.Now()
		next, err := node.Process(ctx, q, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		p.Logger.Debug().
			Str("node", node.Name()).
			Str("kind", string(node.Kind())).
			Int("in", len(cur)).
			Int("out", len(next)).
			Dur("elapsed", time.Since(start)).
			Msg("node done")
		cur = next
	}
	return cur, nil
}

// With 返回在末尾追加 nodes 的新 Pipeline，原 Pipeline 不变。
func (p *Pipeline) With(nodes ...Node) *Pipeline {
	all := make([]Node, 0, len(p.Nodes)+len(nodes))
	all = append(all, p.Nodes...)
	all = append(all, nodes...)
	return &Pipeline{Nodes: all, Logger: p.Logger}
}
