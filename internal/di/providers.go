package di

import (
	"context"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	drepo "github.com/davidromeo/tradeblocks-sub006/internal/domain/repository"
	"github.com/davidromeo/tradeblocks-sub006/internal/handler/api"
	"github.com/davidromeo/tradeblocks-sub006/internal/handler/ws"
	internalrepo "github.com/davidromeo/tradeblocks-sub006/internal/repository"
	"github.com/davidromeo/tradeblocks-sub006/internal/service/ratelimit"
	"github.com/davidromeo/tradeblocks-sub006/internal/services/timing"
	"github.com/davidromeo/tradeblocks-sub006/internal/usecase"
	pkgcache "github.com/davidromeo/tradeblocks-sub006/pkg/cache"
	"github.com/davidromeo/tradeblocks-sub006/pkg/config"
	pkgduck "github.com/davidromeo/tradeblocks-sub006/pkg/duckdb"
	xhttp "github.com/davidromeo/tradeblocks-sub006/pkg/http"
	pkgkafka "github.com/davidromeo/tradeblocks-sub006/pkg/kafka"
	applogger "github.com/davidromeo/tradeblocks-sub006/pkg/logger"
	"github.com/davidromeo/tradeblocks-sub006/pkg/metrics"
	"github.com/davidromeo/tradeblocks-sub006/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Format == "" {
		lc.Format = "console"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	l, err := applogger.New(lc)
	if err != nil {
		return nil, err
	}
	// Buffer aggregated errors for the logs endpoint.
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   time.Minute,
		CountThreshold: 256,
	})
	return l, nil
}

// ProvideDuckDB opens the embedded store and ensures the schema exists.
func ProvideDuckDB(cfg *config.Config) (*pkgduck.Client, error) {
	client, err := pkgduck.NewClient(
		pkgduck.WithPath(cfg.Store.Path),
		pkgduck.WithMemoryLimit(cfg.Store.MemoryLimit),
		pkgduck.WithThreads(cfg.Store.Threads),
	)
	if err != nil {
		return nil, fmt.Errorf("duckdb client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.Schema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("store schema: %w", err)
	}
	return client, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideMarketStore creates the market data repository.
func ProvideMarketStore(duck *pkgduck.Client) drepo.MarketStore {
	return internalrepo.NewDuckMarketStore(duck)
}

// ProvideBlockStore creates the trade block repository.
func ProvideBlockStore(duck *pkgduck.Client) drepo.BlockStore {
	return internalrepo.NewDuckBlockStore(duck)
}

// ProvideProvenanceStore creates the import log repository.
func ProvideProvenanceStore(duck *pkgduck.Client) drepo.ProvenanceStore {
	return internalrepo.NewDuckProvenanceStore(duck)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka
// is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideStatusHub creates the websocket status feed.
func ProvideStatusHub(l *applogger.Logger) *ws.Hub {
	return ws.NewHub(l)
}

// ProvideEventPublisher fans pipeline events out to Kafka, the websocket
// status feed, and the query-cache invalidator.
func ProvideEventPublisher(
	producer *pkgkafka.Producer,
	hub *ws.Hub,
	c pkgcache.Service,
	cfg *config.Config,
	l *applogger.Logger,
) drepo.EventPublisher {
	sinks := []drepo.EventPublisher{hub}
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic, l))
	}
	if c != nil {
		sinks = append(sinks, internalrepo.NewCacheInvalidator(c, l))
	}
	return internalrepo.NewMultiPublisher(sinks...)
}

// ProvideCache creates the query cache, or nil when disabled. With Redis
// configured the cache is layered (memory in front of Redis); without it
// the in-process cache serves alone.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Redis.Host == "" {
		return pkgcache.NewMemoryCache(), nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return pkgcache.NewLayeredCache(rc), nil
}

// ProvideEnricher creates the enrichment engine.
func ProvideEnricher(
	store drepo.MarketStore,
	prov drepo.ProvenanceStore,
	events drepo.EventPublisher,
	m drepo.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.Enricher {
	return usecase.NewEnricher(store, prov, events, m, cfg.Enrichment.VIXTicker, l)
}

// ProvideImporter creates the import pipeline.
func ProvideImporter(
	store drepo.MarketStore,
	prov drepo.ProvenanceStore,
	events drepo.EventPublisher,
	m drepo.Metrics,
	duck *pkgduck.Client,
	enricher *usecase.Enricher,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.Importer {
	httpc := xhttp.NewClient()
	return usecase.NewImporter(store, prov, events, m, duck, httpc, enricher, cfg.Importer.AsyncEnrichment, l)
}

// ProvideBlockSyncer creates the block sync layer.
func ProvideBlockSyncer(
	blocks drepo.BlockStore,
	events drepo.EventPublisher,
	m drepo.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.BlockSyncer {
	return usecase.NewBlockSyncer(blocks, events, m, cfg.Sync.Root, cfg.Sync.TradeFile, l)
}

// ProvideSchedules validates the per-source checkpoint schedules.
func ProvideSchedules(cfg *config.Config) (timing.Schedules, error) {
	return timing.NewSchedules(cfg.Checkpoints)
}

// ProvideQueryService creates the read side.
func ProvideQueryService(
	store drepo.MarketStore,
	c pkgcache.Service,
	schedules timing.Schedules,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.QueryService {
	return usecase.NewQueryService(store, c, schedules, cfg.Cache.TTL, l)
}

// ProvideRateLimiter creates the per-client write limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvidePipelineHandler creates the HTTP handler.
func ProvidePipelineHandler(
	l *applogger.Logger,
	importer *usecase.Importer,
	syncer *usecase.BlockSyncer,
	enricher *usecase.Enricher,
	queries *usecase.QueryService,
	limiter *ratelimit.Limiter,
) *api.PipelineHandler {
	return api.NewPipelineHandler(l, importer, syncer, enricher, queries, limiter)
}

// ProvideKafkaConsumer creates a Kafka consumer, or nil when Kafka
// is disabled.
func ProvideKafkaConsumer(cfg *config.Config, m drepo.Metrics) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.HookFuncs{
		Before: func(ctx context.Context, _ string, km kafkago.Message, data []byte) (context.Context, kafkago.Message, []byte, error) {
			return pkgkafka.WithStartTime(ctx, time.Now()), km, data, nil
		},
		After: func(ctx context.Context, topic string, _ kafkago.Message, _ []byte, _ error) {
			if start, ok := ctx.Value(pkgkafka.CtxStartTime).(time.Time); ok {
				m.RecordLatency("consume_"+topic, time.Since(start).Seconds())
			}
		},
	})
	return consumer, nil
}

// ProvideEnrichmentHandler creates the async enrichment request handler.
func ProvideEnrichmentHandler(enricher *usecase.Enricher, cfg *config.Config, l *applogger.Logger) *usecase.EnrichmentRequestHandler {
	return usecase.NewEnrichmentRequestHandler(enricher, cfg.Kafka.EventsTopic, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	duck *pkgduck.Client,
	events drepo.EventPublisher,
	hub *ws.Hub,
	consumer *pkgkafka.Consumer,
	kh *usecase.EnrichmentRequestHandler,
	handler *api.PipelineHandler,
) *server.App {
	var mh pkgkafka.MessageHandler
	if consumer != nil {
		mh = kh
	}
	app := server.New(cfg, l, duck, events, hub, consumer, mh)
	app.SetHTTPHandler(handler)
	return app
}
