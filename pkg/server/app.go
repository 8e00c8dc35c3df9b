package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	drepo "github.com/davidromeo/tradeblocks-sub006/internal/domain/repository"
	"github.com/davidromeo/tradeblocks-sub006/internal/handler/ws"
	"github.com/davidromeo/tradeblocks-sub006/pkg/config"
	pkgduck "github.com/davidromeo/tradeblocks-sub006/pkg/duckdb"
	xhttp "github.com/davidromeo/tradeblocks-sub006/pkg/http"
	pkgkafka "github.com/davidromeo/tradeblocks-sub006/pkg/kafka"
	applogger "github.com/davidromeo/tradeblocks-sub006/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg      *config.Config
	logger   *applogger.Logger
	duck     *pkgduck.Client
	events   drepo.EventPublisher
	hub      *ws.Hub
	consumer *pkgkafka.Consumer
	kh       pkgkafka.MessageHandler

	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies. The consumer and
// handler may be nil when Kafka is disabled.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	duck *pkgduck.Client,
	events drepo.EventPublisher,
	hub *ws.Hub,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
) *App {
	return &App{
		cfg:      cfg,
		logger:   l,
		duck:     duck,
		events:   events,
		hub:      hub,
		consumer: consumer,
		kh:       kh,
	}
}

// SetHTTPHandler allows DI to inject the HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if a.hub != nil {
		a.hub.RegisterRoutes(a.httpServer.Echo())
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.logger.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.logger.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("pipeline ready",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("store", a.cfg.Store.Path),
		applogger.String("sync_root", a.cfg.Sync.Root),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Closes every event sink: the Kafka producer and the websocket hub.
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Warn("event publisher close error", applogger.Error(err))
		}
	}

	if err := a.duck.Close(); err != nil {
		a.logger.Warn("store close error", applogger.Error(err))
	}

	a.logger.Info("shutdown complete")
	return nil
}
