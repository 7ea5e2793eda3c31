package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	api "alugaai-backend/internal/api/grpc"
	httpapi "alugaai-backend/internal/api/http"
	"alugaai-backend/internal/app"
	"alugaai-backend/internal/config"
	"alugaai-backend/internal/events"
	"alugaai-backend/internal/jobs"
	"alugaai-backend/internal/logger"
	"alugaai-backend/internal/metrics"
	"alugaai-backend/internal/scheduler"
	"alugaai-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting aluga.ai backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetGRPCAddress(), "http_address", cfg.GetHTTPAddress())
	logger.Info("Backends", "store", cfg.Store.Type, "auth", cfg.Auth.Provider, "storage", cfg.Storage.Type, "events", cfg.Events.Type)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("Server stopped with error", "error", err)
		log.Fatalf("Server error: %v", err)
	}
	logger.Info("Server stopped. Goodbye!")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Initialize Backends
	fb, err := app.NewFirebaseApp(ctx, cfg)
	if err != nil {
		return err
	}
	store, ready, err := app.OpenStore(ctx, cfg, fb)
	if err != nil {
		return err
	}
	defer store.Close()

	blobs, files, err := app.NewBlobStore(ctx, cfg, fb)
	if err != nil {
		return err
	}

	tokens := app.NewTokenManager(cfg)
	verifier, err := app.NewVerifier(ctx, cfg, tokens, fb)
	if err != nil {
		return err
	}

	m := metrics.New()

	// Initialize Change Feed
	g, gctx := errgroup.WithContext(ctx)

	local := events.NewBroker(cfg.Events.SubscriberBuffer)
	m.RegisterBroker(local)
	var (
		feed      events.Subscriber = local
		publisher events.Publisher  = local
	)
	if cfg.Events.Type == "redis" {
		client, err := events.NewRedisClient(ctx, cfg.Events.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		rb := events.NewRedisBroker(client, cfg.Events.Channel, local)
		feed, publisher = rb, rb
		g.Go(func() error { return rb.Run(gctx) })
		logger.Info("Relaying change feed through Redis", "channel", cfg.Events.Channel)
	}

	// Rental events come from the store's own listener when it has one.
	rentalPublisher := publisher
	if store.Watcher != nil {
		rentalPublisher = events.Discard
		g.Go(func() error { return local.Relay(gctx, store.Watcher) })
		logger.Info("Rental change feed driven by store listener")
	}

	// Initialize Services
	notifier := service.NewEmailNotifier(app.NewMailer(cfg), store.Users)
	authSvc := service.NewAuthService(store.Users, tokens)
	catalogSvc := service.NewCatalogService(store.Items, blobs, publisher, service.ImagePolicy{
		AllowedTypes: cfg.Storage.AllowedTypes,
		MaxBytes:     cfg.MaxUploadBytes(),
	})
	rentalSvc := service.NewRentalService(store.Rentals, store.Items, notifier, rentalPublisher,
		service.WithTransitionRecorder(m))

	// Set up gRPC server
	grpcServer, healthSrv := api.NewServer(api.Services{
		Auth:    authSvc,
		Catalog: catalogSvc,
		Rentals: rentalSvc,
		Feed:    feed,
	}, verifier, m)

	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		return err
	}

	// Set up HTTP server for uploads, files, websocket feed, health and metrics
	httpServer := &http.Server{
		Addr: cfg.GetHTTPAddress(),
		Handler: httpapi.NewRouter(httpapi.RouterConfig{
			Catalog:        catalogSvc,
			Rentals:        rentalSvc,
			Feed:           feed,
			Verifier:       verifier,
			Metrics:        m,
			Files:          files,
			MaxUploadBytes: cfg.MaxUploadBytes(),
			Ready:          ready,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info("gRPC server listening", "address", cfg.GetGRPCAddress())
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		logger.Info("HTTP server listening", "address", cfg.GetHTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.Scheduler.InProcess {
		runner := jobs.NewJobRunner(rentalSvc, cfg, metrics.NewCronJobMetrics(m.Registry()))
		cronScheduler, err := scheduler.NewScheduler(runner)
		if err != nil {
			return err
		}
		cronScheduler.Start()
		defer cronScheduler.Stop()
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down servers...")
		healthSrv.Shutdown()

		timeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		err := httpServer.Shutdown(shutdownCtx)
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			logger.Warn("gRPC graceful stop timed out, forcing")
			grpcServer.Stop()
		}
		return err
	})

	return g.Wait()
}
