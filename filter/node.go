package filter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/cuisinekit/core"
	"github.com/rushteam/cuisinekit/pipeline"
)

// FilterNode 组合多个过滤器，任何一个返回 true 即剔除该结果。
type FilterNode struct {
	Filters []Filter
	Logger  zerolog.Logger
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	q *core.Query,
	entries []*core.Entry,
) ([]*core.Entry, error) {
	if len(n.Filters) == 0 || len(entries) == 0 {
		return entries, nil
	}

	out := make([]*core.Entry, 0, len(entries))
	filtered := 0

	for _, e := range entries {
		if e == nil {
			continue
		}

		reason := ""
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, q, e)
			if err != nil {
				// 过滤器错误时记录但不中断流程
				n.Logger.Warn().Err(err).Str("filter", f.Name()).Str("key", e.Key).Msg("filter failed, entry kept")
				continue
			}
			if ok {
				reason = f.Name()
				break
			}
		}

		if reason != "" {
			filtered++
			e.PutLabel("filtered", core.Label{Value: "true", Source: reason})
			continue
		}
		out = append(out, e)
	}

	n.Logger.Debug().Int("in", len(entries)).Int("filtered", filtered).Msg("filter node done")
	return out, nil
}
