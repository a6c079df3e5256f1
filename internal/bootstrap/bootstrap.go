// Package bootstrap connects the infrastructure enabled in the configuration
// and assembles the extraction services on top of it.  It is shared by every
// binary under cmd/.
package bootstrap

import (
	"context"
	stderrors "errors"

	"github.com/turtacn/OpinionGraph/internal/application/extraction"
	"github.com/turtacn/OpinionGraph/internal/config"
	neo4jdriver "github.com/turtacn/OpinionGraph/internal/infrastructure/database/neo4j"
	neo4jrepo "github.com/turtacn/OpinionGraph/internal/infrastructure/database/neo4j/repositories"
	redisclient "github.com/turtacn/OpinionGraph/internal/infrastructure/database/redis"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/nlp"
	minioclient "github.com/turtacn/OpinionGraph/internal/infrastructure/storage/minio"
)

// HealthChecker is implemented by every connected backend.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// Infrastructure holds the connected backends.  Disabled backends are nil.
type Infrastructure struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics
	Neo4j     *neo4jdriver.Driver
	Redis     *redisclient.Client
	MinIO     *minioclient.Client
	Corpora   *minioclient.CorpusRepository

	closers []func(context.Context) error
}

// Connect opens each enabled backend.  When one fails, the ones already
// opened are closed before the error is returned.
func Connect(ctx context.Context, cfg *config.Config, log logging.Logger) (*Infrastructure, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if log == nil {
		log = logging.NewNopLogger()
	}
	infra := &Infrastructure{Config: cfg, Logger: log}

	if err := infra.connect(ctx); err != nil {
		_ = infra.Close(context.WithoutCancel(ctx))
		return nil, err
	}
	return infra, nil
}

func (i *Infrastructure) connect(ctx context.Context) error {
	cfg := i.Config

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, i.Logger)
		if err != nil {
			return err
		}
		i.Collector = collector
		i.Metrics = prometheus.NewAppMetrics(collector)
	}

	if cfg.Neo4j.Enabled {
		d, err := neo4jdriver.NewDriver(ctx, cfg.Neo4j, i.Logger.Named("neo4j"))
		if err != nil {
			return err
		}
		i.Neo4j = d
		i.closers = append(i.closers, d.Close)
		if err := i.graphRepository().EnsureSchema(ctx); err != nil {
			return err
		}
	}

	if cfg.Redis.Enabled {
		c, err := redisclient.NewClient(ctx, cfg.Redis, i.Logger.Named("redis"))
		if err != nil {
			return err
		}
		i.Redis = c
		i.closers = append(i.closers, func(context.Context) error { return c.Close() })
	}

	if cfg.MinIO.Enabled {
		c, err := minioclient.NewClient(ctx, cfg.MinIO, i.Logger.Named("minio"))
		if err != nil {
			return err
		}
		i.MinIO = c
		i.Corpora = minioclient.NewCorpusRepository(c, i.Logger.Named("minio"))
		i.closers = append(i.closers, func(context.Context) error { return c.Close() })
	}
	return nil
}

func (i *Infrastructure) graphRepository() *neo4jrepo.CooccurrenceRepository {
	return neo4jrepo.NewCooccurrenceRepository(i.Neo4j, i.Config.Neo4j.BatchSize, i.Logger.Named("graph"))
}

// Pipeline assembles an extraction pipeline over the connected backends.
func (i *Infrastructure) Pipeline() (*extraction.Pipeline, error) {
	deps := extraction.Deps{
		Tagger:     nlp.New(i.Config.Tagger.Kind),
		TaggerName: i.Config.Tagger.Kind,
		Logger:     i.Logger,
	}
	if i.Neo4j != nil {
		deps.Store = i.graphRepository()
	}
	if i.Redis != nil {
		deps.Cache = redisclient.NewRedisCache(i.Redis, i.Logger.Named("cache"),
			redisclient.WithPrefix(i.Config.Redis.KeyPrefix),
			redisclient.WithDefaultTTL(i.Config.Redis.DefaultTTL))
		deps.CacheTTL = i.Config.Redis.DefaultTTL
		if deps.Store != nil {
			deps.Lock = redisclient.NewLockFactory(i.Redis, i.Config.Redis.KeyPrefix, i.Logger.Named("lock"))
		}
	}
	if i.Metrics != nil {
		deps.Metrics = prometheus.NewPipelineMetrics(i.Metrics)
	}
	return extraction.NewPipeline(i.Config.Extraction, deps)
}

// HealthCheckers lists the connected backends.
func (i *Infrastructure) HealthCheckers() []HealthChecker {
	var out []HealthChecker
	if i.Neo4j != nil {
		out = append(out, i.Neo4j)
	}
	if i.Redis != nil {
		out = append(out, i.Redis)
	}
	if i.MinIO != nil {
		out = append(out, i.MinIO)
	}
	return out
}

// Close releases the backends in reverse order of opening.
func (i *Infrastructure) Close(ctx context.Context) error {
	var errs []error
	for n := len(i.closers) - 1; n >= 0; n-- {
		if err := i.closers[n](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	i.closers = nil
	return stderrors.Join(errs...)
}

//Personal.AI order the ending
