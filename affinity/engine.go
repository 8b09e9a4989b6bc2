package affinity

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/rushteam/cuisinekit/core"
)

// Input 是引擎的输入表，由数据加载层提供。
type Input struct {
	Users    []core.UserProfile
	Ratings  []core.RatingRecord
	Cuisines []core.CuisineAssignment
}

// Stats 是构建结果的统计信息，供菜单和日志展示。
type Stats struct {
	Users       int
	RatedUsers  int
	Ratings     int
	Places      int
	Cuisines    int
	AffinityCnt int
}

// Engine 持有一次运行的亲和度表。表只构建一次，之后只读。
type Engine struct {
	table   *core.Table
	ranks   *RankTable
	stats   Stats
	jitter  JitterSource
	workers int
	logger  zerolog.Logger

	viewOnce    sync.Once
	cuisineView *core.Table
}

// Option 配置 Engine
type Option func(*Engine)

// WithJitter 替换随机扰动源
func WithJitter(j JitterSource) Option {
	return func(e *Engine) { e.jitter = j }
}

// WithWorkers 设置并行聚合的并发数
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine 执行 聚合 -> 排名 -> 构建 全流程。评分表中任何一条坏数据都会导致失败。
func NewEngine(ctx context.Context, in Input, opts ...Option) (*Engine, error) {
	e := &Engine{jitter: ProcessJitter, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(e)
	}

	agg := &Aggregator{Jitter: e.jitter}
	combined, err := agg.Aggregate(in.Ratings)
	if err != nil {
		return nil, fmt.Errorf("aggregate ratings: %w", err)
	}
	e.ranks = BuildRankTable(in.Cuisines)

	b := &Builder{Workers: e.workers, Logger: e.logger}
	table, err := b.Build(ctx, in.Users, combined, e.ranks)
	if err != nil {
		return nil, fmt.Errorf("build affinity table: %w", err)
	}
	e.table = table
	e.stats = Stats{
		Users:      table.Len(),
		RatedUsers: len(combined.Users()),
		Ratings:    combined.Len(),
		Places:     e.ranks.Len(),
	}
	seen := make(map[string]struct{})
	table.Each(func(_, cuisine string, _ float64) {
		seen[cuisine] = struct{}{}
		e.stats.AffinityCnt++
	})
	e.stats.Cuisines = len(seen)

	e.logger.Info().
		Int("users", e.stats.Users).
		Int("ratings", e.stats.Ratings).
		Int("cuisines", e.stats.Cuisines).
		Msg("affinity engine ready")
	return e, nil
}

// Table 返回 用户 -> 菜系 亲和度表（只读）
func (e *Engine) Table() *core.Table { return e.table }

// CuisineView 返回 菜系 -> 用户 的转置视图，首次调用时构建。
func (e *Engine) CuisineView() *core.Table {
	e.viewOnce.Do(func() {
		e.cuisineView = e.table.Transpose()
	})
	return e.cuisineView
}

// Ranks 返回菜系排名表
func (e *Engine) Ranks() *RankTable { return e.ranks }

func (e *Engine) Stats() Stats { return e.stats }
