package affinity

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/cuisinekit/core"
)

// Builder 由合成评分和菜系排名构建亲和度表。
type Builder struct {
	// Workers 是并行聚合用户的最大并发数，<= 0 时取默认值
	Workers int

	Logger zerolog.Logger
}

type userJob struct {
	userID string
	row    *core.Row
}

// Build 为每个画像用户生成一行（按显示名），没有评分的用户得到空行。
//
// 显示名重复时，后出现的用户覆盖先出现者的内容，但行位置不变。
// 各用户互不依赖，按 Workers 并发累加；单个用户内部按餐厅首次出现顺序累加，结果确定。
func (b *Builder) Build(
	ctx context.Context,
	users []core.UserProfile,
	ratings *CombinedRatings,
	ranks *RankTable,
) (*core.Table, error) {
	start := time.Now()

	idToName := make(map[string]string, len(users))
	for _, u := range users {
		idToName[u.UserID] = u.DisplayName
	}

	table := core.NewTable()
	jobIdx := make(map[string]int, len(users))
	jobs := make([]userJob, 0, len(users))
	for _, u := range users {
		name := idToName[u.UserID]
		row := table.ResetRow(name)
		if i, ok := jobIdx[name]; ok {
			jobs[i].userID = u.UserID
			continue
		}
		jobIdx[name] = len(jobs)
		jobs = append(jobs, userJob{userID: u.UserID, row: row})
	}

	workers := b.Workers
	if workers <= 0 {
		workers = (&core.DefaultEngineConfig{}).DefaultWorkers()
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, job := range jobs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			accumulateUser(job.row, job.userID, ratings, ranks)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	b.Logger.Debug().
		Int("users", table.Len()).
		Int("places", ranks.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("affinity table built")
	return table, nil
}

func accumulateUser(row *core.Row, userID string, ratings *CombinedRatings, ranks *RankTable) {
	if ratings == nil || ranks == nil {
		return
	}
	for _, placeID := range ratings.Places(userID) {
		ranked, ok := ranks.Ranks(placeID)
		if !ok {
			continue
		}
		avg := WeightedMean(ratings.Ratings(userID, placeID), ranked)
		for _, rc := range ranked {
			row.Add(rc.Cuisine, avg)
		}
	}
}

// WeightedMean 把第 i 个评分乘以第 i 个菜系的权重后求均值。
//
// 配对是纯位置性的：两个列表长度不同时，只有重叠前缀被加权，
// 多出的评分以原值参与均值。空列表的均值为 0。入参不会被修改。
func WeightedMean(ratings []float64, ranked []RankedCuisine) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0.0
	for i, v := range ratings {
		if i < len(ranked) {
			v *= ranked[i].Weight
		}
		sum += v
	}
	return sum / float64(len(ratings))
}
