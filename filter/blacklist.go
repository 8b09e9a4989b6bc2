package filter

import (
	"context"

	"github.com/rushteam/cuisinekit/core"
)

// BlacklistFilter 过滤掉黑名单中的 key（用户名或菜系名）。
type BlacklistFilter struct {
	// Keys 是内存中的黑名单
	Keys []string

	// Store 用于从存储中读取黑名单（可选）
	Store BlacklistStore

	// StoreKey 是 Store 中的黑名单 key（可选）
	StoreKey string
}

// BlacklistStore 是黑名单存储接口。
type BlacklistStore interface {
	GetBlacklist(ctx context.Context, key string) ([]string, error)
}

// NewBlacklistFilter 创建一个黑名单过滤器，adapter 可以为 nil。
func NewBlacklistFilter(keys []string, adapter *StoreAdapter, storeKey string) *BlacklistFilter {
	f := &BlacklistFilter{Keys: keys, StoreKey: storeKey}
	if adapter != nil {
		f.Store = adapter
	}
	return f
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	_ *core.Query,
	entry *core.Entry,
) (bool, error) {
	if entry == nil {
		return true, nil
	}

	for _, k := range f.Keys {
		if entry.Key == k {
			return true, nil
		}
	}

	if f.Store != nil && f.StoreKey != "" {
		keys, err := f.Store.GetBlacklist(ctx, f.StoreKey)
		if err != nil {
			if core.IsStoreNotFound(err) {
				return false, nil
			}
			return false, err
		}
		for _, k := range keys {
			if entry.Key == k {
				return true, nil
			}
		}
	}

	return false, nil
}
