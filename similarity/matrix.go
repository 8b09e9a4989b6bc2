package similarity

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/cuisinekit/core"
)

// Matrix 是对称的相似度矩阵，key 顺序与评分视图的行顺序一致，对角线为 1。
type Matrix struct {
	metric string
	keys   []string
	index  map[string]int
	values [][]float64
}

func newMatrix(metric string, keys []string) *Matrix {
	m := &Matrix{
		metric: metric,
		keys:   keys,
		index:  make(map[string]int, len(keys)),
		values: make([][]float64, len(keys)),
	}
	for i, k := range keys {
		m.index[k] = i
		m.values[i] = make([]float64, len(keys))
	}
	return m
}

// Metric 返回构建矩阵所用的度量名称
func (m *Matrix) Metric() string { return m.metric }

// Keys 按视图顺序返回实体 key。返回值不可修改。
func (m *Matrix) Keys() []string { return m.keys }

func (m *Matrix) Len() int { return len(m.keys) }

// Get 读取 sim(a, b)
func (m *Matrix) Get(a, b string) (float64, bool) {
	i, ok := m.index[a]
	if !ok {
		return 0, false
	}
	j, ok := m.index[b]
	if !ok {
		return 0, false
	}
	return m.values[i][j], true
}

// Each 按行、列顺序遍历所有单元格（含对角线）。
func (m *Matrix) Each(fn func(a, b string, sim float64)) {
	for i, a := range m.keys {
		for j, b := range m.keys {
			fn(a, b, m.values[i][j])
		}
	}
}

// Neighbors 返回 key 所在行除自身外的 (key, sim)，按视图顺序。
func (m *Matrix) Neighbors(key string) []*core.Entry {
	i, ok := m.index[key]
	if !ok {
		return nil
	}
	out := make([]*core.Entry, 0, len(m.keys)-1)
	for j, other := range m.keys {
		if j == i {
			continue
		}
		out = append(out, core.NewEntry(other, m.values[i][j]))
	}
	return out
}

type matrixJSON struct {
	Metric string      `json:"metric"`
	Keys   []string    `json:"keys"`
	Values [][]float64 `json:"values"`
}

func (m *Matrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(matrixJSON{Metric: m.metric, Keys: m.keys, Values: m.values})
}

func (m *Matrix) UnmarshalJSON(data []byte) error {
	var raw matrixJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := newMatrix(raw.Metric, raw.Keys)
	if len(raw.Values) != len(raw.Keys) {
		return core.NewDomainError(core.ModuleSimilarity, core.ErrorCodeInternalError, "similarity: matrix shape mismatch")
	}
	for i := range raw.Values {
		if len(raw.Values[i]) != len(raw.Keys) {
			return core.NewDomainError(core.ModuleSimilarity, core.ErrorCodeInternalError, "similarity: matrix shape mismatch")
		}
		copy(out.values[i], raw.Values[i])
	}
	*m = *out
	return nil
}

// Source 提供相似度矩阵，可以直接计算，也可以带缓存。
type Source interface {
	Matrix(ctx context.Context, view *core.Table, metric Metric) (*Matrix, error)
}

// Builder 直接计算矩阵。
type Builder struct {
	// Workers 并行计算的行数上限，<= 0 时取默认值
	Workers int

	Logger zerolog.Logger
}

func (b *Builder) Matrix(ctx context.Context, view *core.Table, metric Metric) (*Matrix, error) {
	start := time.Now()
	m, err := BuildMatrix(ctx, view, metric, b.Workers)
	if err != nil {
		return nil, err
	}
	b.Logger.Debug().
		Str("metric", metric.Name).
		Int("keys", m.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("similarity matrix built")
	return m, nil
}

// BuildMatrix 计算视图中所有实体两两之间的相似度。
// 每个 goroutine 负责一行的上三角，写入互不重叠；对角线固定为 1。
func BuildMatrix(ctx context.Context, view *core.Table, metric Metric, workers int) (*Matrix, error) {
	keys := append([]string(nil), view.Keys()...)
	m := newMatrix(metric.Name, keys)
	if workers <= 0 {
		workers = (&core.DefaultEngineConfig{}).DefaultWorkers()
	}

	rows := make([]*core.Row, len(keys))
	for i, k := range keys {
		rows[i], _ = view.Row(k)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range keys {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			m.values[i][i] = 1
			for j := i + 1; j < len(keys); j++ {
				m.values[i][j] = metric.Func(rows[i], rows[j])
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for i := range keys {
		for j := i + 1; j < len(keys); j++ {
			m.values[j][i] = m.values[i][j]
		}
	}
	return m, nil
}
