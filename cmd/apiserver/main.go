// Command apiserver serves the OpinionGraph extraction API over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/OpinionGraph/internal/bootstrap"
	"github.com/turtacn/OpinionGraph/internal/config"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/OpinionGraph/internal/interfaces/http"
)

const defaultConfigPath = "configs/config.yaml"

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.Server.Port = *httpPort
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: cfg.Log.OutputPaths,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, *configPath, logger); err != nil {
		logger.Error("apiserver stopped with error", logging.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, configPath string, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting OpinionGraph API server",
		logging.String("version", Version),
		logging.Int("port", cfg.Server.Port),
		logging.String("tagger", cfg.Tagger.Kind),
		logging.String("profile", cfg.Extraction.Profile))

	infra, err := bootstrap.Connect(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("connect infrastructure: %w", err)
	}
	defer func() {
		if err := infra.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("infrastructure close reported errors", logging.Err(err))
		}
	}()

	pipeline, err := infra.Pipeline()
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	routerCfg := httpserver.RouterConfig{
		Service:     pipeline,
		Checkers:    httpserver.HealthCheckers(infra.HealthCheckers()),
		Collector:   infra.Collector,
		Metrics:     infra.Metrics,
		MetricsPath: cfg.Metrics.Path,
		CORSOrigins: cfg.Server.CORSOrigins,
		MaxBodySize: cfg.Server.MaxBodySize,
		Version:     Version,
		Logger:      logger,
	}
	if infra.Corpora != nil {
		routerCfg.Reports = infra.Corpora
	}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(kafka.ProducerConfigFrom(cfg.Kafka), logger.Named("kafka"))
		if err != nil {
			return fmt.Errorf("create job producer: %w", err)
		}
		defer func() { _ = producer.Close() }()
		routerCfg.Jobs = producer
		routerCfg.JobTopic = cfg.Kafka.SubmitTopic
	}

	watchConfig(configPath, logger)

	srv := httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}
	return srv.Stop(context.WithoutCancel(ctx))
}

// loadConfig reads configPath when it exists and falls back to the
// environment otherwise.
func loadConfig(configPath string) (*config.Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		return config.Load(configPath)
	}
	return config.LoadFromEnv()
}

// watchConfig reports on-disk configuration changes.  They take effect on the
// next restart.
func watchConfig(configPath string, logger logging.Logger) {
	if _, err := os.Stat(configPath); err != nil {
		return
	}
	err := config.Watch(configPath,
		func(c *config.Config) {
			logger.Warn("configuration file changed; restart to apply",
				logging.String("path", configPath),
				logging.String("log_level", c.Log.Level),
				logging.String("profile", c.Extraction.Profile))
		},
		func(err error) {
			logger.Error("changed configuration is invalid", logging.String("path", configPath), logging.Err(err))
		})
	if err != nil {
		logger.Warn("configuration watch disabled", logging.Err(err))
	}
}

//Personal.AI order the ending
