package core

// Query 承载一次查询的上下文，贯穿整个 Pipeline 透传。
type Query struct {
	// Target 是查询目标（用户显示名）
	Target string

	// Metric 是相似度度量名称（euclidean / pearson）
	Metric string

	// Model 是推荐模型名称（user-based / item-based）
	Model string

	// Limit 是最终返回数量上限，<= 0 表示不截断
	Limit int

	// Params 是请求级参数，透传给过滤表达式（rctx.params）
	Params map[string]any
}
