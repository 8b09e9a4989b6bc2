package core

// EngineDefaults 提供引擎缺省参数。
type EngineDefaults interface {
	// DefaultWorkers 返回并行聚合/相似度计算的默认并发数
	DefaultWorkers() int

	// DefaultMetric 返回默认相似度度量
	DefaultMetric() string

	// DefaultModel 返回默认推荐模型
	DefaultModel() string
}

// DefaultEngineConfig 是默认实现。
type DefaultEngineConfig struct{}

func (c *DefaultEngineConfig) DefaultWorkers() int { return 4 }

func (c *DefaultEngineConfig) DefaultMetric() string { return "euclidean" }

func (c *DefaultEngineConfig) DefaultModel() string { return "user-based" }
