package similarity

import (
	"context"
	"encoding/binary"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/cuisinekit/core"
)

// Fingerprint 是评分视图内容（含顺序）的 xxhash 摘要。
// 评分带随机扰动，每次运行的表不同，缓存 key 必须随内容变化。
func Fingerprint(view *core.Table) uint64 {
	d := xxhash.New()
	var buf [8]byte
	view.Each(func(rowKey, colKey string, score float64) {
		_, _ = d.WriteString(rowKey)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(colKey)
		_, _ = d.Write([]byte{0})
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(score))
		_, _ = d.Write(buf[:])
	})
	// 空行也参与摘要，保证行集合不同的视图不会撞 key
	for _, k := range view.Keys() {
		_, _ = d.WriteString(k)
		_, _ = d.Write([]byte{1})
	}
	return d.Sum64()
}

// MatrixCache 把计算好的矩阵缓存到 core.Store（内存或 Redis）。
// 缓存未命中或读取失败时回退到 Source 重新计算，读写错误只记日志。
type MatrixCache struct {
	Store  core.Store
	Source Source

	// TTL 缓存过期时间（秒），<= 0 表示不过期
	TTL int

	// KeyPrefix 默认 "simmatrix"
	KeyPrefix string

	Logger zerolog.Logger
}

// CacheKey 返回 {KeyPrefix}:{fingerprint}:{metric}
func (c *MatrixCache) CacheKey(view *core.Table, metric Metric) string {
	prefix := c.KeyPrefix
	if prefix == "" {
		prefix = "simmatrix"
	}
	return prefix + ":" + strconv.FormatUint(Fingerprint(view), 16) + ":" + metric.Name
}

func (c *MatrixCache) Matrix(ctx context.Context, view *core.Table, metric Metric) (*Matrix, error) {
	key := c.CacheKey(view, metric)

	data, err := c.Store.Get(ctx, key)
	switch {
	case err == nil:
		var m Matrix
		uerr := json.Unmarshal(data, &m)
		if uerr == nil {
			c.Logger.Debug().Str("key", key).Str("store", c.Store.Name()).Msg("similarity matrix cache hit")
			return &m, nil
		}
		c.Logger.Warn().Err(uerr).Str("key", key).Msg("drop undecodable cached matrix")
	case core.IsStoreNotFound(err):
	default:
		c.Logger.Warn().Err(err).Str("key", key).Str("store", c.Store.Name()).Msg("similarity matrix cache read failed")
	}

	m, err := c.Source.Matrix(ctx, view, metric)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(m)
	if err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Msg("encode similarity matrix")
		return m, nil
	}
	if err := c.Store.Set(ctx, key, payload, c.TTL); err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Str("store", c.Store.Name()).Msg("similarity matrix cache write failed")
	}
	return m, nil
}

var (
	_ Source = (*Builder)(nil)
	_ Source = (*MatrixCache)(nil)
)
