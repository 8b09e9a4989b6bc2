package rerank

import (
	"context"

	"github.com/rushteam/cuisinekit/core"
	"github.com/rushteam/cuisinekit/pipeline"
)

// TopNNode 截取前 N 个结果，通常放在 Pipeline 最后。
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.UserBasedCF{Users: view},
//	        &rerank.MinScoreNode{Min: 0.1},
//	        &rerank.TopNNode{},          // 使用 Query.Limit
//	    },
//	}
type TopNNode struct {
	// N 要保留的数量；N <= 0 时使用 Query.Limit，两者都 <= 0 则不截断
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	q *core.Query,
	entries []*core.Entry,
) ([]*core.Entry, error) {
	limit := n.N
	if limit <= 0 && q != nil {
		limit = q.Limit
	}
	if limit <= 0 || len(entries) <= limit {
		return entries, nil
	}
	return entries[:limit], nil
}
