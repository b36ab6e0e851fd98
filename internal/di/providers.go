package di

import (
	"context"
	"fmt"
	"time"

	"ChainSight/internal/domain/models"
	"ChainSight/internal/domain/repository"
	domsvc "ChainSight/internal/domain/service"
	"ChainSight/internal/handler/api"
	internalrepo "ChainSight/internal/repository"
	"ChainSight/internal/service/cache"
	"ChainSight/internal/service/nse"
	"ChainSight/internal/service/ratelimit"
	"ChainSight/internal/services/safety"
	"ChainSight/internal/usecase"
	pkgch "ChainSight/pkg/clickhouse"
	"ChainSight/pkg/config"
	xhttp "ChainSight/pkg/http"
	pkgkafka "ChainSight/pkg/kafka"
	applogger "ChainSight/pkg/logger"
	"ChainSight/pkg/metrics"
	"ChainSight/pkg/server"
)

// ProvideLogger creates the application logger. Production gets JSON on
// stdout, everything else a console writer.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "console"
	if cfg.Environment == "production" {
		format = "json"
	}
	l, err := applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRateLimiter creates the shared token-bucket limiter for outbound
// exchange calls.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvideChainFetcher creates the NSE option-chain client.
func ProvideChainFetcher(cfg *config.Config, limiter *ratelimit.Limiter, log *applogger.Logger) (domsvc.ChainFetcher, error) {
	client, err := nse.New(cfg.NSE.Timeout, limiter, log)
	if err != nil {
		return nil, fmt.Errorf("nse client: %w", err)
	}
	return client, nil
}

// ProvideAnalysisCache picks Redis when configured, falling back to the
// in-process TTL cache.
func ProvideAnalysisCache(cfg *config.Config) repository.AnalysisCache {
	if cfg.Analysis.Redis.Enabled {
		return cache.NewAnalysisCache(cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Analysis.Redis.Addr,
			Password: cfg.Analysis.Redis.Password,
			DB:       cfg.Analysis.Redis.DB,
		}))
	}
	return cache.NewAnalysisCache(cache.NewTTLCache())
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// snapshot store is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideSnapshotStore creates the ClickHouse snapshot store and ensures its
// schema exists. Returns nil when ClickHouse is disabled; backtests then run
// only on inline snapshots.
func ProvideSnapshotStore(chClient *pkgch.Client, log *applogger.Logger) (repository.SnapshotStore, error) {
	if chClient == nil {
		return nil, nil
	}

	store := internalrepo.NewCHSnapshotStore(chClient, log)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = chClient.Close()
		return nil, fmt.Errorf("snapshot store schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is
// disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates the snapshot consumer, or nil when Kafka is
// disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.SnapshotsIn == "" {
		return nil, nil
	}

	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideSnapshotIngestHandler registers the handler for the snapshots topic.
// Returns nil when there is nowhere to store incoming snapshots.
func ProvideSnapshotIngestHandler(cfg *config.Config, store repository.SnapshotStore, m repository.Metrics) pkgkafka.MessageHandler {
	if store == nil || cfg.Kafka.SnapshotsIn == "" {
		return nil
	}
	return usecase.NewSnapshotIngestHandler(cfg.Kafka.SnapshotsIn, store, m)
}

// ProvideLiveHandler creates the WebSocket fan-out hub.
func ProvideLiveHandler(log *applogger.Logger) *api.LiveHandler {
	return api.NewLiveHandler(log)
}

// ProvideSignalPublisher fans completed analyses out to every configured
// sink: always the live WebSocket hub, plus Kafka when enabled.
func ProvideSignalPublisher(cfg *config.Config, producer *pkgkafka.Producer, live *api.LiveHandler) repository.SignalPublisher {
	sinks := []repository.SignalPublisher{live}
	if producer != nil && cfg.Kafka.SignalsOut != "" {
		sinks = append(sinks, internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalsOut))
	}
	return internalrepo.NewMultiPublisher(sinks...)
}

// ProvideAnalyzer assembles the analysis pipeline from configured weights
// and safety thresholds.
func ProvideAnalyzer(
	cfg *config.Config,
	log *applogger.Logger,
	fetcher domsvc.ChainFetcher,
	analysisCache repository.AnalysisCache,
	publisher repository.SignalPublisher,
	m repository.Metrics,
) (*usecase.Analyzer, error) {
	thresholds := safety.Thresholds{
		WeeklyExpiryDays: cfg.Analysis.Safety.WeeklyExpiryDays,
		VeryLowIV:        cfg.Analysis.Safety.VeryLowIV,
		LowIV:            cfg.Analysis.Safety.LowIV,
		FarOTMPct:        cfg.Analysis.Safety.FarOTMPct,
	}
	if thresholds == (safety.Thresholds{}) {
		thresholds = safety.DefaultThresholds()
	}

	cacheTTL := cfg.Analysis.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	return usecase.NewAnalyzer(
		models.WeightConfig(cfg.Analysis.Weights),
		thresholds,
		log,
		usecase.WithChainFetcher(fetcher),
		usecase.WithCache(analysisCache, cacheTTL),
		usecase.WithPublisher(publisher),
		usecase.WithMetrics(m),
	)
}

// ProvideBacktester creates the backtest use case.
func ProvideBacktester(analyzer *usecase.Analyzer, store repository.SnapshotStore, m repository.Metrics, log *applogger.Logger) *usecase.Backtester {
	return usecase.NewBacktester(analyzer, store, m, log)
}

// ProvideHandlers collects all HTTP handlers behind a single registration
// point.
func ProvideHandlers(
	log *applogger.Logger,
	analyzer *usecase.Analyzer,
	backtester *usecase.Backtester,
	live *api.LiveHandler,
	store repository.SnapshotStore,
) xhttp.Handler {
	checks := map[string]api.HealthCheck{}
	if store != nil {
		checks["clickhouse"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return store.Health(ctx)
		}
	}

	return xhttp.Handlers{
		api.NewAnalysisEchoHandler(log, analyzer, backtester, store),
		live,
		api.NewHealthHandler(checks),
	}
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	consumer *pkgkafka.Consumer,
	ingest pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	publisher repository.SignalPublisher,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, log, handler, consumer, ingest, chClient, publisher)
}
