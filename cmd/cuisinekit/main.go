// Command cuisinekit 加载评分数据并启动交互式菜系推荐菜单。
//
//	cuisinekit -config cuisinekit.yaml
//	CUISINEKIT_DATA_DIR=./data CUISINEKIT_CACHE_BACKEND=none cuisinekit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rushteam/cuisinekit/affinity"
	"github.com/rushteam/cuisinekit/config"
	_ "github.com/rushteam/cuisinekit/config/builders"
	"github.com/rushteam/cuisinekit/core"
	"github.com/rushteam/cuisinekit/dataset"
	"github.com/rushteam/cuisinekit/filter"
	"github.com/rushteam/cuisinekit/menu"
	"github.com/rushteam/cuisinekit/pipeline"
	"github.com/rushteam/cuisinekit/pkg/logging"
	"github.com/rushteam/cuisinekit/similarity"
	"github.com/rushteam/cuisinekit/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: $CUISINEKIT_CONFIG or ./cuisinekit.yaml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println()
			return
		}
		fmt.Fprintf(os.Stderr, "cuisinekit: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log := logging.Component("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ds, err := dataset.Load(ctx, cfg.Data)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	log.Info().
		Int("users", len(ds.Users)).
		Int("places", len(ds.Places)).
		Int("ratings", len(ds.Ratings)).
		Int("cuisine_rows", len(ds.Cuisines)).
		Msg("dataset loaded")

	engine, err := affinity.NewEngine(ctx, ds.Input(),
		affinity.WithJitter(jitterSource(cfg.Engine)),
		affinity.WithWorkers(cfg.Engine.Workers),
		affinity.WithLogger(logging.Component("affinity")),
	)
	if err != nil {
		return err
	}

	st, err := openStore(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	var matrices similarity.Source = &similarity.Builder{
		Workers: cfg.Engine.Workers,
		Logger:  logging.Component("similarity"),
	}
	var filters []filter.Filter
	if st != nil {
		matrices = &similarity.MatrixCache{
			Store:     st,
			Source:    matrices,
			TTL:       cfg.Cache.TTLSeconds,
			KeyPrefix: cfg.Cache.KeyPrefix,
			Logger:    logging.Component("cache"),
		}
		filters = storeFilters(st, cfg.Filter)
	}

	var extras *pipeline.Pipeline
	if cfg.Pipeline.File != "" {
		extras, err = config.LoadPipeline(cfg.Pipeline.File)
		if err != nil {
			return fmt.Errorf("load pipeline %s: %w", cfg.Pipeline.File, err)
		}
		log.Info().Str("file", cfg.Pipeline.File).Int("nodes", len(extras.Nodes)).Msg("pipeline loaded")
	}

	session := &menu.Session{
		In:       os.Stdin,
		Out:      os.Stdout,
		Engine:   engine,
		Matrices: matrices,
		Extras:   extras,
		Filters:  filters,
		Expr:     cfg.Filter.Expr,
		Logger:   logging.Component("menu"),
	}
	return session.Run(ctx)
}

func jitterSource(cfg config.EngineConfig) affinity.JitterSource {
	switch {
	case !cfg.Jitter:
		return affinity.NoJitter
	case cfg.Seed != 0:
		return affinity.SeededJitter(cfg.Seed)
	default:
		return affinity.ProcessJitter
	}
}

func openStore(ctx context.Context, cfg config.CacheConfig) (core.Store, error) {
	switch cfg.Backend {
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		rs, err := store.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		return rs, nil
	default:
		return nil, nil
	}
}

func storeFilters(st core.Store, cfg config.FilterConfig) []filter.Filter {
	adapter := filter.NewStoreAdapter(st)
	var out []filter.Filter
	if cfg.BlacklistKey != "" {
		out = append(out, filter.NewBlacklistFilter(nil, adapter, cfg.BlacklistKey))
	}
	if cfg.BlockPrefix != "" {
		out = append(out, filter.NewTargetBlockFilter(adapter, cfg.BlockPrefix))
	}
	return out
}

