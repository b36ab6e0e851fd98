package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domainrepo "ChainSight/internal/domain/repository"
	pkgch "ChainSight/pkg/clickhouse"
	"ChainSight/pkg/config"
	xhttp "ChainSight/pkg/http"
	pkgkafka "ChainSight/pkg/kafka"
	applogger "ChainSight/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	consumer   *pkgkafka.Consumer
	ingest     pkgkafka.MessageHandler
	chClient   *pkgch.Client
	publisher  domainrepo.SignalPublisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	consumer *pkgkafka.Consumer,
	ingest pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	publisher domainrepo.SignalPublisher,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		handler:   handler,
		consumer:  consumer,
		ingest:    ingest,
		chClient:  chClient,
		publisher: publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestMetrics(a.log, time.Second),
	)

	// Start snapshot consumer if configured
	if a.consumer != nil && a.ingest != nil {
		a.consumer.RegisterHandler(a.ingest)
		go func() {
			if err := a.consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.ingest.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("analysis server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Strings("symbols", a.cfg.NSE.Symbols),
	)

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
