// Command worker consumes corpus.submitted jobs from Kafka, runs the
// extraction pipeline on each, and publishes phrases.ranked results.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/OpinionGraph/internal/application/extraction"
	"github.com/turtacn/OpinionGraph/internal/bootstrap"
	"github.com/turtacn/OpinionGraph/internal/config"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/turtacn/OpinionGraph/internal/interfaces/http"
)

const (
	defaultWorkerConfigPath = "configs/config.yaml"
	defaultHealthPort       = 8081
	topicSetupTimeout       = 30 * time.Second
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	configPath := flag.String("config", defaultWorkerConfigPath, "path to configuration file")
	workerCount := flag.Int("workers", 0, "number of concurrent consumers (overrides worker.concurrency)")
	healthPort := flag.Int("health-port", defaultHealthPort, "port of the health and metrics endpoint")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *workerCount > 0 {
		cfg.Worker.Concurrency = *workerCount
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

	if !cfg.Kafka.Enabled {
		logger.Error("worker requires kafka.enabled")
		os.Exit(1)
	}

	if err := run(cfg, *healthPort, logger); err != nil {
		logger.Error("worker stopped with error", logging.Err(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, healthPort int, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting OpinionGraph worker",
		logging.String("version", Version),
		logging.Int("workers", cfg.Worker.Concurrency),
		logging.String("topic", cfg.Kafka.SubmitTopic))

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

	ensureTopics(ctx, cfg.Kafka, logger)

	producer, err := kafka.NewProducer(kafka.ProducerConfigFrom(cfg.Kafka), logger.Named("kafka"))
	if err != nil {
		return fmt.Errorf("create result producer: %w", err)
	}
	defer func() { _ = producer.Close() }()

	processor, err := newProcessor(pipeline, infra, producer, cfg.Kafka.ResultTopic, logger)
	if err != nil {
		return err
	}
	handle := instrument(processor.Handle, infra.Metrics)

	consumers := make([]*kafka.Consumer, 0, cfg.Worker.Concurrency)
	defer func() {
		for _, c := range consumers {
			_ = c.Close()
		}
	}()
	for i := 0; i < cfg.Worker.Concurrency; i++ {
		c, err := kafka.NewConsumer(kafka.ConsumerConfigFrom(cfg.Kafka, cfg.Worker.RetryBackoff), producer,
			logger.Named("consumer").With(logging.Int("consumer", i)))
		if err != nil {
			return fmt.Errorf("create consumer %d: %w", i, err)
		}
		c.Subscribe(cfg.Kafka.SubmitTopic, handle)
		if err := c.Start(ctx); err != nil {
			_ = c.Close()
			return fmt.Errorf("start consumer %d: %w", i, err)
		}
		consumers = append(consumers, c)
	}
	logger.Info("worker pool started", logging.Int("workers", len(consumers)))

	health := httpserver.NewServer(config.ServerConfig{
		Port:            healthPort,
		Mode:            cfg.Server.Mode,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, httpserver.NewRouter(httpserver.RouterConfig{
		Checkers:    httpserver.HealthCheckers(infra.HealthCheckers()),
		Collector:   infra.Collector,
		Metrics:     infra.Metrics,
		MetricsPath: cfg.Metrics.Path,
		Version:     Version,
		Logger:      logger,
	}), logger.Named("health"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(health.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down worker")
		for _, c := range consumers {
			st := c.Stats()
			logger.Info("consumer drained",
				logging.Int64("processed", st.Processed),
				logging.Int64("failed", st.Failed),
				logging.Int64("dead_lettered", st.DeadLettered))
			_ = c.Close()
		}
		return health.Stop(context.WithoutCancel(gctx))
	})
	return g.Wait()
}

// newProcessor wires the job processor.  Stored corpora and the report
// archive are only available when MinIO is enabled.
func newProcessor(svc extraction.Service, infra *bootstrap.Infrastructure, pub extraction.EventPublisher, topic string, logger logging.Logger) (*extraction.JobProcessor, error) {
	pcfg := extraction.JobProcessorConfig{
		Service:     svc,
		Publisher:   pub,
		ResultTopic: topic,
		Logger:      logger.Named("jobs"),
	}
	if infra.Corpora != nil {
		pcfg.Corpora = infra.Corpora
		pcfg.Archive = infra.Corpora
	}
	return extraction.NewJobProcessor(pcfg)
}

// instrument counts handled messages per topic and outcome.
func instrument(next kafka.MessageHandler, m *prometheus.AppMetrics) kafka.MessageHandler {
	if m == nil {
		return next
	}
	return func(ctx context.Context, msg *kafka.Message) error {
		err := next(ctx, msg)
		status := "ok"
		if err != nil {
			status = "error"
		}
		prometheus.RecordMessage(m, msg.Topic, status)
		return err
	}
}

// ensureTopics creates missing topics.  Failures are logged because brokers
// with auto-creation or restricted ACLs still work.
func ensureTopics(ctx context.Context, cfg config.KafkaConfig, logger logging.Logger) {
	ctx, cancel := context.WithTimeout(ctx, topicSetupTimeout)
	defer cancel()

	tm, err := kafka.NewTopicManager(cfg.Brokers, logger.Named("topics"))
	if err != nil {
		logger.Warn("topic manager unavailable", logging.Err(err))
		return
	}
	defer func() { _ = tm.Close() }()

	if err := tm.EnsureTopics(ctx, kafka.DefaultTopics(cfg)); err != nil {
		logger.Warn("failed to ensure topics", logging.Err(err))
	}
}

func loadConfig(configPath string) (*config.Config, error) {
	if _, err := os.Stat(configPath); err == nil {
		return config.Load(configPath)
	}
	return config.LoadFromEnv()
}

//Personal.AI order the ending
