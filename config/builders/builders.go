// Package builders 注册内置的后处理 Node，供 pipeline 配置文件使用。
package builders

import (
	"fmt"

	"github.com/rushteam/cuisinekit/config"
	"github.com/rushteam/cuisinekit/filter"
	"github.com/rushteam/cuisinekit/pipeline"
	"github.com/rushteam/cuisinekit/pkg/conv"
	"github.com/rushteam/cuisinekit/rerank"
)

func init() {
	config.Register("filter.expr", BuildExprFilterNode)
	config.Register("filter.blacklist", BuildBlacklistNode)
	config.Register("filter", BuildFilterNode)
	config.Register("rerank.topn", BuildTopNNode)
	config.Register("rerank.min_score", BuildMinScoreNode)
}

// BuildExprFilterNode: {expr: "entry.score > 10.0", invert: false}
func BuildExprFilterNode(cfg map[string]any) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("expr not found")
	}
	f, err := filter.NewExprFilter(expr, conv.ConfigGet(cfg, "invert", false))
	if err != nil {
		return nil, err
	}
	return &filter.FilterNode{Filters: []filter.Filter{f}}, nil
}

// BuildBlacklistNode: {keys: [Fast_Food, Cafeteria]}
func BuildBlacklistNode(cfg map[string]any) (pipeline.Node, error) {
	keys := conv.SliceAnyToString(cfg["keys"])
	if len(keys) == 0 {
		return nil, fmt.Errorf("keys not found or empty")
	}
	return &filter.FilterNode{Filters: []filter.Filter{filter.NewBlacklistFilter(keys, nil, "")}}, nil
}

// BuildFilterNode 组合多个过滤器：{filters: [{type: expr, expr: ...}, {type: blacklist, keys: [...]}]}
func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}
	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		switch filterType := conv.ConfigGet(filterMap, "type", ""); filterType {
		case "expr":
			f, err := filter.NewExprFilter(conv.ConfigGet(filterMap, "expr", ""), conv.ConfigGet(filterMap, "invert", false))
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)
		case "blacklist":
			keys := conv.SliceAnyToString(filterMap["keys"])
			filters = append(filters, filter.NewBlacklistFilter(keys, nil, ""))
		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}
	return &filter.FilterNode{Filters: filters}, nil
}

// BuildTopNNode: {n: 5}，n 省略时使用查询的 Limit。
func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt(cfg, "n", 0)
	if n < 0 {
		return nil, fmt.Errorf("n must be >= 0, got %d", n)
	}
	return &rerank.TopNNode{N: n}, nil
}

// BuildMinScoreNode: {min: 0.2, exclusive: false}
func BuildMinScoreNode(cfg map[string]any) (pipeline.Node, error) {
	if _, ok := cfg["min"]; !ok {
		return nil, fmt.Errorf("min not found")
	}
	return &rerank.MinScoreNode{
		Min:       conv.ConfigGetFloat64(cfg, "min", 0),
		Exclusive: conv.ConfigGet(cfg, "exclusive", false),
	}, nil
}
