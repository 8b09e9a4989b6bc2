package recall

import (
	"context"
	"sort"

	"github.com/rushteam/cuisinekit/core"
	"github.com/rushteam/cuisinekit/pipeline"
	"github.com/rushteam/cuisinekit/similarity"
)

// sortByScoreDesc 按分数降序稳定排序，并列项保持原有（视图）顺序。
func sortByScoreDesc(entries []*core.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
}

// RankNeighbors 计算 target 与视图中其它所有实体的相似度并降序排列，不截断，不含 target 自身。
func RankNeighbors(view *core.Table, target string, metric similarity.Metric) ([]*core.Entry, error) {
	targetRow, ok := view.Row(target)
	if !ok {
		return nil, core.ErrEntityNotFound.Wrapf(nil, "%q", target)
	}
	out := make([]*core.Entry, 0, view.Len())
	for _, key := range view.Keys() {
		if key == target {
			continue
		}
		other, _ := view.Row(key)
		out = append(out, core.NewEntry(key, metric.Func(targetRow, other)))
	}
	sortByScoreDesc(out)
	return out, nil
}

// TopMatches 返回与 target 最相似的前 n 个实体。
// n <= 0 直接返回 ErrInvalidLimit，不做任何计算；target 不存在返回 ErrEntityNotFound。
func TopMatches(view *core.Table, target string, metric similarity.Metric, n int) ([]*core.Entry, error) {
	if n <= 0 {
		return nil, core.ErrInvalidLimit.Wrapf(nil, "got %d", n)
	}
	ranked, err := RankNeighbors(view, target, metric)
	if err != nil {
		return nil, err
	}
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// Neighbors 是近邻召回 Node（u2u）：输出与 q.Target 相似的实体，由后续 Node 截断。
type Neighbors struct {
	View *core.Table
}

func (n *Neighbors) Name() string        { return "recall.u2u" }
func (n *Neighbors) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Neighbors) Process(
	_ context.Context,
	q *core.Query,
	_ []*core.Entry,
) ([]*core.Entry, error) {
	metric, err := similarity.ByName(q.Metric)
	if err != nil {
		return nil, err
	}
	out, err := RankNeighbors(n.View, q.Target, metric)
	if err != nil {
		return nil, err
	}
	for _, e := range out {
		e.PutLabel("recall_source", core.Label{Value: "u2u", Source: "recall"})
		e.PutLabel("cf_metric", core.Label{Value: metric.Name, Source: "recall"})
	}
	return out, nil
}
