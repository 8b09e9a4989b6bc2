package filter

import (
	"context"

	"github.com/goccy/go-json"

	"github.com/rushteam/cuisinekit/core"
)

// StoreAdapter 将 core.Store 适配为过滤器所需的存储接口。
// 列表以 JSON 字符串数组的形式存放。
type StoreAdapter struct {
	store core.Store
}

func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

// GetBlacklist 从 Store 读取黑名单。
func (a *StoreAdapter) GetBlacklist(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// GetTargetBlocks 读取查询目标自己的屏蔽列表，key 为 {keyPrefix}:{target}。
func (a *StoreAdapter) GetTargetBlocks(ctx context.Context, target, keyPrefix string) ([]string, error) {
	return a.GetBlacklist(ctx, keyPrefix+":"+target)
}

// PutList 以 JSON 写入列表，ttl 单位为秒。
func (a *StoreAdapter) PutList(ctx context.Context, key string, keys []string, ttl ...int) error {
	data, err := json.Marshal(keys)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, key, data, ttl...)
}
