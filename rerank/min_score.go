package rerank

import (
	"context"

	"github.com/rushteam/cuisinekit/core"
	"github.com/rushteam/cuisinekit/pipeline"
)

// MinScoreNode 丢弃分数低于 Min 的结果，保持原有顺序。
type MinScoreNode struct {
	Min float64

	// Exclusive 为 true 时分数必须严格大于 Min
	Exclusive bool
}

func (n *MinScoreNode) Name() string {
	return "rerank.min_score"
}

func (n *MinScoreNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *MinScoreNode) Process(
	_ context.Context,
	_ *core.Query,
	entries []*core.Entry,
) ([]*core.Entry, error) {
	out := make([]*core.Entry, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		if e.Score < n.Min || (n.Exclusive && e.Score == n.Min) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
