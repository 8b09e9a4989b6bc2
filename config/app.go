package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix 是环境变量前缀，例如 CUISINEKIT_CACHE_BACKEND -> cache.backend。
const EnvPrefix = "CUISINEKIT_"

// PathEnvVar 可覆盖配置文件路径。
const PathEnvVar = EnvPrefix + "CONFIG"

// DefaultPaths 是未显式指定时依次查找的配置文件。
var DefaultPaths = []string{
	"cuisinekit.yaml",
	"cuisinekit.yml",
	"config.yaml",
}

// Config 是应用配置。
type Config struct {
	Data     DataConfig     `koanf:"data"`
	Engine   EngineConfig   `koanf:"engine"`
	Cache    CacheConfig    `koanf:"cache"`
	Filter   FilterConfig   `koanf:"filter"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Log      LogConfig      `koanf:"log"`
}

// DataConfig 描述四个输入 CSV 文件。
type DataConfig struct {
	Dir       string `koanf:"dir" validate:"required"`
	Users     string `koanf:"users" validate:"required"`
	Places    string `koanf:"places" validate:"required"`
	Cuisines  string `koanf:"cuisines" validate:"required"`
	Ratings   string `koanf:"ratings" validate:"required"`
	Delimiter string `koanf:"delimiter" validate:"len=1"`
}

// Path 返回 Dir 下的文件路径；name 为绝对路径时原样返回。
func (d DataConfig) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(d.Dir, name)
}

// Comma 返回 CSV 分隔符。
func (d DataConfig) Comma() rune {
	if d.Delimiter == "" {
		return ';'
	}
	return []rune(d.Delimiter)[0]
}

type EngineConfig struct {
	Workers int `koanf:"workers" validate:"min=1,max=256"`
	// Jitter 为 false 时不加随机扰动，结果可复现
	Jitter bool `koanf:"jitter"`
	// Seed 非 0 时使用固定种子的扰动源
	Seed uint64 `koanf:"seed"`
}

type CacheConfig struct {
	Backend    string `koanf:"backend" validate:"oneof=none memory redis"`
	RedisAddr  string `koanf:"redis_addr" validate:"required_if=Backend redis"`
	RedisDB    int    `koanf:"redis_db" validate:"min=0"`
	TTLSeconds int    `koanf:"ttl_seconds" validate:"min=0"`
	KeyPrefix  string `koanf:"key_prefix"`
}

// FilterConfig 是查询结果的默认过滤配置。
type FilterConfig struct {
	// Expr 是默认的 CEL 过滤表达式，菜单中可覆盖
	Expr string `koanf:"expr"`
	// BlacklistKey 是 Store 中全局黑名单的 key，需要启用 cache
	BlacklistKey string `koanf:"blacklist_key"`
	// BlockPrefix 是按查询目标屏蔽的 key 前缀，需要启用 cache
	BlockPrefix string `koanf:"block_prefix"`
}

type PipelineConfig struct {
	File string `koanf:"file"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

// Default 返回默认配置。
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir:       ".",
			Users:     "userprofile.csv",
			Places:    "places.csv",
			Cuisines:  "place_cuisine.csv",
			Ratings:   "ratings.csv",
			Delimiter: ";",
		},
		Engine: EngineConfig{
			Workers: 4,
			Jitter:  true,
		},
		Cache: CacheConfig{
			Backend:    "memory",
			RedisAddr:  "",
			TTLSeconds: 3600,
			KeyPrefix:  "cuisinekit:matrix",
		},
		Filter: FilterConfig{
			BlockPrefix: "target:block",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

var validate = validator.New()

// Validate 按 struct tag 校验配置。
func (c *Config) Validate() error {
	return validate.Struct(c)
}

// Load 按 默认值 -> 配置文件 -> 环境变量 的顺序加载配置。
// path 为空时依次尝试 CUISINEKIT_CONFIG 与 DefaultPaths，都不存在则只用默认值和环境变量。
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc 把 CUISINEKIT_CACHE_REDIS_ADDR 转成 cache.redis_addr：
// 第一个下划线分隔 section，其余保留。
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + rest
}
