// Package affinity 把原始评分行加工成 用户 -> 菜系 -> 亲和度 表。
//
// 流程：
//  1. Aggregator：每条评分 = general*1.4 + food*2.5 + service*1.8 + jitter
//  2. RankTable：按餐厅内菜系顺序给出 [1.0, 2.0] 的排名权重
//  3. Builder：按位置把评分与排名权重相乘、求均值，累加到该餐厅的每个菜系上
package affinity

import (
	"fmt"
	"math/rand/v2"

	"github.com/rushteam/cuisinekit/core"
	"github.com/rushteam/cuisinekit/pkg/conv"
)

// 三个评分维度的固定权重
const (
	GeneralWeight = 1.4
	FoodWeight    = 2.5
	ServiceWeight = 1.8
)

// JitterSource 提供 [0.0, 1.0) 的均匀随机数。*rand.Rand 直接满足该接口。
type JitterSource interface {
	Float64() float64
}

type processJitter struct{}

func (processJitter) Float64() float64 { return rand.Float64() }

type noJitter struct{}

func (noJitter) Float64() float64 { return 0 }

var (
	// ProcessJitter 使用进程级随机源，不可复现。
	ProcessJitter JitterSource = processJitter{}

	// NoJitter 恒为 0，用于测试和确定性计算。
	NoJitter JitterSource = noJitter{}
)

// SeededJitter 返回可复现的随机源。
func SeededJitter(seed uint64) JitterSource {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Aggregator 把一条评分记录合成为一个分数。
type Aggregator struct {
	// Jitter 为空时使用 ProcessJitter
	Jitter JitterSource
}

// Combine 计算单条记录的合成评分。任一字段无法解析都返回 ErrMalformedRating。
func (a *Aggregator) Combine(r core.RatingRecord) (float64, error) {
	general, err := parseField(r, "general", r.General)
	if err != nil {
		return 0, err
	}
	food, err := parseField(r, "food", r.Food)
	if err != nil {
		return 0, err
	}
	service, err := parseField(r, "service", r.Service)
	if err != nil {
		return 0, err
	}
	return general*GeneralWeight + food*FoodWeight + service*ServiceWeight + a.jitter().Float64(), nil
}

func (a *Aggregator) jitter() JitterSource {
	if a == nil || a.Jitter == nil {
		return ProcessJitter
	}
	return a.Jitter
}

func parseField(r core.RatingRecord, field, raw string) (float64, error) {
	v, err := conv.ParseScore(raw)
	if err != nil {
		return 0, core.ErrMalformedRating.Wrapf(err, "user %s place %s field %s=%q", r.UserID, r.PlaceID, field, raw)
	}
	return v, nil
}

// CombinedRatings 是 用户 -> 餐厅 -> 合成评分列表，两级都保持首次出现顺序。
type CombinedRatings struct {
	users  []string
	places map[string][]string
	lists  map[string]map[string][]float64
}

func newCombinedRatings() *CombinedRatings {
	return &CombinedRatings{
		places: make(map[string][]string),
		lists:  make(map[string]map[string][]float64),
	}
}

func (c *CombinedRatings) append(userID, placeID string, v float64) {
	byPlace, ok := c.lists[userID]
	if !ok {
		byPlace = make(map[string][]float64)
		c.lists[userID] = byPlace
		c.users = append(c.users, userID)
	}
	if _, ok := byPlace[placeID]; !ok {
		c.places[userID] = append(c.places[userID], placeID)
	}
	byPlace[placeID] = append(byPlace[placeID], v)
}

// Users 按首次出现顺序返回用户 ID
func (c *CombinedRatings) Users() []string { return c.users }

// Places 按首次出现顺序返回该用户评价过的餐厅
func (c *CombinedRatings) Places(userID string) []string { return c.places[userID] }

// Ratings 返回 (user, place) 的评分列表。返回值不可修改。
func (c *CombinedRatings) Ratings(userID, placeID string) []float64 {
	return c.lists[userID][placeID]
}

// Len 返回评分总条数
func (c *CombinedRatings) Len() int {
	n := 0
	for _, byPlace := range c.lists {
		for _, l := range byPlace {
			n += len(l)
		}
	}
	return n
}

// Aggregate 处理整张评分表。遇到第一条坏数据立即返回错误，不产出部分结果。
func (a *Aggregator) Aggregate(rows []core.RatingRecord) (*CombinedRatings, error) {
	out := newCombinedRatings()
	for i, r := range rows {
		v, err := a.Combine(r)
		if err != nil {
			return nil, fmt.Errorf("rating row %d: %w", i+1, err)
		}
		out.append(r.UserID, r.PlaceID, v)
	}
	return out, nil
}
