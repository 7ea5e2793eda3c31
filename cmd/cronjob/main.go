package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

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
	runOnce := flag.String("run-once", "", "Run a specific job once and exit ('activate-started-rentals', 'complete-ended-rentals', 'all')")
	metricsAddr := flag.String("metrics-addr", "", "Serve job metrics on this address (e.g. ':9102'); empty disables")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting aluga.ai cronjob runner...", "log_level", cfg.Log.Level, "store", cfg.Store.Type)
	if cfg.Store.Type == "memory" {
		logger.Warn("The memory store is private to this process; enable scheduler.in_process on the server instead")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Backends
	fb, err := app.NewFirebaseApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize firebase: %v", err)
	}
	store, _, err := app.OpenStore(ctx, cfg, fb)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	// Transitions reach API replicas through Redis or the store listener;
	// a process-local broker would have no subscribers here.
	publisher := events.Discard
	if cfg.Events.Type == "redis" && store.Watcher == nil {
		client, err := events.NewRedisClient(ctx, cfg.Events.Redis)
		if err != nil {
			logger.Error("Failed to connect to redis", "error", err)
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer client.Close()
		publisher = events.NewRedisBroker(client, cfg.Events.Channel, events.NewBroker(cfg.Events.SubscriberBuffer))
	}

	// Initialize Services
	m := metrics.New()
	notifier := service.NewEmailNotifier(app.NewMailer(cfg), store.Users)
	rentalService := service.NewRentalService(store.Rentals, store.Items, notifier, publisher,
		service.WithTransitionRecorder(m))

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(rentalService, cfg, metrics.NewCronJobMetrics(m.Registry()))

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if !runJobOnce(jobRunner, *runOnce) {
			log.Fatalf("Unknown job name: %s", *runOnce)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	if *metricsAddr != "" {
		srv := &http.Server{Addr: *metricsAddr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("Serving job metrics", "address", *metricsAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server error", "error", err)
			}
		}()
		defer srv.Close()
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to schedule jobs: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.", "next_run", cronScheduler.Next())

	// Wait for interrupt signal
	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once. It reports false for an unknown name.
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) bool {
	switch jobName {
	case "activate-started-rentals":
		jobRunner.ActivateStartedRentals()
	case "complete-ended-rentals":
		jobRunner.CompleteEndedRentals()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		return false
	}
	return true
}
