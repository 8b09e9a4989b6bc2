package affinity

import "github.com/rushteam/cuisinekit/core"

// RankedCuisine 是餐厅内某个菜系及其排名权重。
type RankedCuisine struct {
	Cuisine string
	Weight  float64
}

// RankWeight 返回 k 个菜系中第 i 个（从 0 开始）的权重：
// k == 1 时恒为 2.0，否则从 2.0 线性递减到 1.0。
func RankWeight(i, k int) float64 {
	if k <= 1 {
		return 2.0
	}
	return 2.0 - float64(i)/float64(k-1)
}

// RankTable 是 餐厅 -> 有序菜系排名 的映射。
// 同一餐厅重复出现的菜系名按位置各自保留，不去重。
type RankTable struct {
	places []string
	ranks  map[string][]RankedCuisine
}

// BuildRankTable 按源顺序分组并计算权重。
func BuildRankTable(rows []core.CuisineAssignment) *RankTable {
	grouped := make(map[string][]string)
	var places []string
	for _, r := range rows {
		if _, ok := grouped[r.PlaceID]; !ok {
			places = append(places, r.PlaceID)
		}
		grouped[r.PlaceID] = append(grouped[r.PlaceID], r.Cuisine)
	}

	t := &RankTable{places: places, ranks: make(map[string][]RankedCuisine, len(grouped))}
	for _, placeID := range places {
		cuisines := grouped[placeID]
		ranked := make([]RankedCuisine, len(cuisines))
		for i, c := range cuisines {
			ranked[i] = RankedCuisine{Cuisine: c, Weight: RankWeight(i, len(cuisines))}
		}
		t.ranks[placeID] = ranked
	}
	return t
}

// Ranks 返回餐厅的菜系排名；ok 为 false 表示该餐厅没有菜系记录。
func (t *RankTable) Ranks(placeID string) ([]RankedCuisine, bool) {
	r, ok := t.ranks[placeID]
	return r, ok
}

// Places 按首次出现顺序返回餐厅 ID
func (t *RankTable) Places() []string { return t.places }

func (t *RankTable) Len() int { return len(t.places) }
