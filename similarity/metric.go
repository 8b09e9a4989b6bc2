// Package similarity 提供两种可互换的两两相似度度量，以及基于它们的相似度矩阵。
//
// 度量只在两个实体的共享 key（score map 的交集）上计算；
// 共享 key 按字典序遍历，保证 sim(a, b) 与 sim(b, a) 逐位相等。
package similarity

import (
	"math"
	"sort"
	"strings"

	"github.com/rushteam/cuisinekit/core"
)

// Func 是两两相似度函数。
type Func func(a, b *core.Row) float64

// Metric 是带名字的相似度度量，由配置/菜单按名字选择。
type Metric struct {
	Name string
	Func Func
}

var (
	// EuclideanMetric 基于欧氏距离：1 / (1 + sqrt(Σ(a-b)²))，取值 (0, 1]；无共享 key 时为 0
	EuclideanMetric = Metric{Name: "euclidean", Func: Distance}

	// PearsonMetric 皮尔逊相关系数，取值 [-1, 1]；共享 key 少于 2 个或方差为 0 时为 0
	PearsonMetric = Metric{Name: "pearson", Func: Pearson}
)

// ByName 按名字查找度量（大小写不敏感）。distance 是 euclidean 的别名。
func ByName(name string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "euclidean", "distance":
		return EuclideanMetric, nil
	case "pearson":
		return PearsonMetric, nil
	default:
		return Metric{}, core.ErrUnknownMetric.Wrapf(nil, "%q", name)
	}
}

func sharedKeys(a, b *core.Row) []string {
	small, large := a, b
	if small.Len() > large.Len() {
		small, large = large, small
	}
	keys := make([]string, 0, small.Len())
	for _, k := range small.Keys() {
		if large.Has(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Distance 是基于欧氏距离的相似度。
func Distance(a, b *core.Row) float64 {
	keys := sharedKeys(a, b)
	if len(keys) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, k := range keys {
		x, _ := a.Get(k)
		y, _ := b.Get(k)
		d := x - y
		sumSquares += d * d
	}
	return 1 / (1 + math.Sqrt(sumSquares))
}

// Pearson 是共享 key 上的皮尔逊相关系数。
func Pearson(a, b *core.Row) float64 {
	keys := sharedKeys(a, b)
	n := len(keys)
	if n < 2 {
		return 0
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	var meanX, meanY float64
	for i, k := range keys {
		xs[i], _ = a.Get(k)
		ys[i], _ = b.Get(k)
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	den := math.Sqrt(varX * varY)
	if den == 0 {
		return 0
	}
	return math.Max(-1, math.Min(1, cov/den))
}
