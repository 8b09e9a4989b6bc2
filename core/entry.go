package core

import "strings"

// Label 用于解释结果来源：来自哪个模型、哪种度量、经过了哪些节点。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / rerank ...
}

// MergeLabel 合并同名 Label：Value 以 '|' 累积，Source 以 ',' 累积。
func MergeLabel(existing, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}
	merged := Label{Value: existing.Value + "|" + incoming.Value}
	sources := make([]string, 0, 2)
	for _, s := range []string{existing.Source, incoming.Source} {
		if s != "" {
			sources = append(sources, s)
		}
	}
	merged.Source = strings.Join(sources, ",")
	return merged
}

// Entry 是查询结果的统一承载结构：近邻返回实体 key + 相似度，
// 推荐返回菜系 key + 预测分数。
type Entry struct {
	Key    string
	Score  float64
	Labels map[string]Label
}

func NewEntry(key string, score float64) *Entry {
	return &Entry{
		Key:    key,
		Score:  score,
		Labels: make(map[string]Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按 MergeLabel 累积。
func (e *Entry) PutLabel(key string, lbl Label) {
	if e.Labels == nil {
		e.Labels = make(map[string]Label)
	}
	if old, ok := e.Labels[key]; ok {
		e.Labels[key] = MergeLabel(old, lbl)
		return
	}
	e.Labels[key] = lbl
}
