package filter

import (
	"context"

	"github.com/rushteam/cuisinekit/core"
)

// TargetBlockFilter 过滤掉查询目标自己屏蔽的 key，
// 例如某个用户不想再看到的菜系。
type TargetBlockFilter struct {
	Store TargetBlockStore

	// KeyPrefix 是 Store 中的 key 前缀，实际 key 为 {KeyPrefix}:{Target}
	KeyPrefix string
}

// TargetBlockStore 是屏蔽列表存储接口。
type TargetBlockStore interface {
	GetTargetBlocks(ctx context.Context, target, keyPrefix string) ([]string, error)
}

func NewTargetBlockFilter(adapter *StoreAdapter, keyPrefix string) *TargetBlockFilter {
	f := &TargetBlockFilter{KeyPrefix: keyPrefix}
	if adapter != nil {
		f.Store = adapter
	}
	return f
}

func (f *TargetBlockFilter) Name() string {
	return "filter.target_block"
}

func (f *TargetBlockFilter) ShouldFilter(
	ctx context.Context,
	q *core.Query,
	entry *core.Entry,
) (bool, error) {
	if entry == nil || q == nil || q.Target == "" || f.Store == nil {
		return false, nil
	}

	prefix := f.KeyPrefix
	if prefix == "" {
		prefix = "target:block"
	}

	blocked, err := f.Store.GetTargetBlocks(ctx, q.Target, prefix)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return false, nil
		}
		return false, err
	}
	for _, k := range blocked {
		if entry.Key == k {
			return true, nil
		}
	}
	return false, nil
}
