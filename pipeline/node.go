package pipeline

import (
	"context"

	"github.com/rushteam/cuisinekit/core"
)

// Kind 用于标记 Node 类型，方便日志按阶段打点。
type Kind string

const (
	KindRecall Kind = "recall" // 召回阶段：近邻 / 推荐打分
	KindFilter Kind = "filter" // 过滤阶段：剔除不满足表达式的结果
	KindReRank Kind = "rerank" // 重排阶段：截断、阈值
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 entries -> 输出 entries”的形态：Recall 生成、Filter 剔除、ReRank 截断。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		q *core.Query,
		entries []*core.Entry,
	) ([]*core.Entry, error)
}

// NodeBuilder 根据 map 形式的配置构建 Node。
type NodeBuilder func(map[string]any) (Node, error)
