// Package recall 实现协同过滤的召回算法：近邻排序（u2u）、
// 基于用户的推荐（u2i）和基于物品（菜系）的推荐（i2i）。
package recall

import (
	"context"
	"strings"

	"github.com/rushteam/cuisinekit/core"
	"github.com/rushteam/cuisinekit/pipeline"
	"github.com/rushteam/cuisinekit/similarity"
)

// Model 是推荐模型。
type Model string

const (
	ModelUserBased Model = "user-based"
	ModelItemBased Model = "item-based"
)

// ParseModel 解析模型名，只接受 user-based / item-based（大小写不敏感，忽略首尾空白）。
func ParseModel(s string) (Model, error) {
	switch m := Model(strings.ToLower(strings.TrimSpace(s))); m {
	case ModelUserBased, ModelItemBased:
		return m, nil
	default:
		return "", core.ErrUnknownModel.Wrapf(nil, "%q", s)
	}
}

// Title 返回用于展示的模型名，例如 "User Based"。
func (m Model) Title() string {
	switch m {
	case ModelUserBased:
		return "User Based"
	case ModelItemBased:
		return "Item Based"
	default:
		return string(m)
	}
}

// predictions 累加 Σ(sim*score) 与 Σsim，保持候选首次出现顺序。
type predictions struct {
	totals  *core.Row
	simSums *core.Row
}

func newPredictions() *predictions {
	return &predictions{totals: core.NewRow(), simSums: core.NewRow()}
}

func (p *predictions) add(key string, sim, score float64) {
	p.totals.Add(key, sim*score)
	p.simSums.Add(key, sim)
}

// ranked 返回 Σ(sim*score)/Σsim 的降序结果；Σsim 为 0 的候选被丢弃。
func (p *predictions) ranked() []*core.Entry {
	out := make([]*core.Entry, 0, p.totals.Len())
	p.totals.Each(func(key string, total float64) {
		simSum, _ := p.simSums.Get(key)
		if simSum == 0 {
			return
		}
		out = append(out, core.NewEntry(key, total/simSum))
	})
	sortByScoreDesc(out)
	return out
}

// Recommend 是基于用户的协同过滤（u2i）。
//
// 对每个与 target 相似度为正的其他用户，取其评价过而 target 没有评价的菜系，
// 预测分 = Σ(sim × 该用户分数) / Σsim。非正相似度的用户既不进分子也不进分母。
// 返回完整的降序列表，截断由调用方负责。
func Recommend(view *core.Table, target string, metric similarity.Metric) ([]*core.Entry, error) {
	targetRow, ok := view.Row(target)
	if !ok {
		return nil, core.ErrEntityNotFound.Wrapf(nil, "%q", target)
	}

	preds := newPredictions()
	for _, other := range view.Keys() {
		if other == target {
			continue
		}
		otherRow, _ := view.Row(other)
		sim := metric.Func(targetRow, otherRow)
		if sim <= 0 {
			continue
		}
		otherRow.Each(func(item string, score float64) {
			if targetRow.Has(item) {
				return
			}
			preds.add(item, sim, score)
		})
	}
	return preds.ranked(), nil
}

// RecommendItemBased 是基于物品（菜系）的协同过滤（i2i）。
//
// 先在菜系视图上求菜系相似度矩阵，再对 target 评价过的每个菜系 c（分数 r）
// 和每个未评价菜系 c2（sim(c, c2) > 0）累加 sim × r 与 sim，最后归一化。
func RecommendItemBased(
	ctx context.Context,
	users *core.Table,
	items *core.Table,
	target string,
	metric similarity.Metric,
	matrices similarity.Source,
) ([]*core.Entry, error) {
	targetRow, ok := users.Row(target)
	if !ok {
		return nil, core.ErrEntityNotFound.Wrapf(nil, "%q", target)
	}
	if targetRow.Len() == 0 {
		return []*core.Entry{}, nil
	}

	m, err := matrices.Matrix(ctx, items, metric)
	if err != nil {
		return nil, err
	}

	preds := newPredictions()
	targetRow.Each(func(item string, rating float64) {
		for _, n := range m.Neighbors(item) {
			if n.Score <= 0 || targetRow.Has(n.Key) {
				continue
			}
			preds.add(n.Key, n.Score, rating)
		}
	})
	return preds.ranked(), nil
}

// UserBasedCF 是 u2i 召回 Node。
type UserBasedCF struct {
	Users *core.Table
}

func (r *UserBasedCF) Name() string        { return "recall.u2i" }
func (r *UserBasedCF) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *UserBasedCF) Process(
	_ context.Context,
	q *core.Query,
	_ []*core.Entry,
) ([]*core.Entry, error) {
	metric, err := similarity.ByName(q.Metric)
	if err != nil {
		return nil, err
	}
	out, err := Recommend(r.Users, q.Target, metric)
	if err != nil {
		return nil, err
	}
	label(out, "u2i", metric.Name)
	return out, nil
}

// ItemBasedCF 是 i2i 召回 Node。Items 是 Users 的转置（菜系 -> 用户）。
type ItemBasedCF struct {
	Users    *core.Table
	Items    *core.Table
	Matrices similarity.Source
}

func (r *ItemBasedCF) Name() string        { return "recall.i2i" }
func (r *ItemBasedCF) Kind() pipeline.Kind { return pipeline.KindRecall }

func (r *ItemBasedCF) Process(
	ctx context.Context,
	q *core.Query,
	_ []*core.Entry,
) ([]*core.Entry, error) {
	metric, err := similarity.ByName(q.Metric)
	if err != nil {
		return nil, err
	}
	matrices := r.Matrices
	if matrices == nil {
		matrices = &similarity.Builder{}
	}
	out, err := RecommendItemBased(ctx, r.Users, r.Items, q.Target, metric, matrices)
	if err != nil {
		return nil, err
	}
	label(out, "i2i", metric.Name)
	return out, nil
}

// NewRecommendNode 按模型构建召回 Node。
func NewRecommendNode(model Model, users, items *core.Table, matrices similarity.Source) (pipeline.Node, error) {
	switch model {
	case ModelUserBased:
		return &UserBasedCF{Users: users}, nil
	case ModelItemBased:
		return &ItemBasedCF{Users: users, Items: items, Matrices: matrices}, nil
	default:
		return nil, core.ErrUnknownModel.Wrapf(nil, "%q", model)
	}
}

func label(entries []*core.Entry, source, metric string) {
	for _, e := range entries {
		e.PutLabel("recall_source", core.Label{Value: source, Source: "recall"})
		e.PutLabel("cf_metric", core.Label{Value: metric, Source: "recall"})
	}
}

var (
	_ pipeline.Node = (*Neighbors)(nil)
	_ pipeline.Node = (*UserBasedCF)(nil)
	_ pipeline.Node = (*ItemBasedCF)(nil)
)
