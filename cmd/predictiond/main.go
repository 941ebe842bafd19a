package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"github.com/acadrisk/acadrisk/internal/application/dto"
	"github.com/acadrisk/acadrisk/internal/application/usecase"
	"github.com/acadrisk/acadrisk/internal/domain/port"
	"github.com/acadrisk/acadrisk/internal/domain/service"
	"github.com/acadrisk/acadrisk/internal/infrastructure/cache"
	"github.com/acadrisk/acadrisk/internal/infrastructure/config"
	"github.com/acadrisk/acadrisk/internal/infrastructure/kafka"
	"github.com/acadrisk/acadrisk/internal/infrastructure/ml"
	"github.com/acadrisk/acadrisk/internal/infrastructure/postgres"
	grpcpresentation "github.com/acadrisk/acadrisk/internal/presentation/grpc"
	"github.com/acadrisk/acadrisk/internal/presentation/rest"
	"github.com/acadrisk/acadrisk/migrations"
	"github.com/acadrisk/acadrisk/pkg/auth"
	pkgkafka "github.com/acadrisk/acadrisk/pkg/kafka"
	"github.com/acadrisk/acadrisk/pkg/observability"
	pgutil "github.com/acadrisk/acadrisk/pkg/postgres"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("prediction-service failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting prediction-service",
		"version", version,
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"model_path", cfg.Model.Path,
	)

	// Initialize tracing.
	tracerProvider, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:  config.ServiceName,
		Version:      version,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		Insecure:     cfg.Telemetry.Insecure,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer func() { _ = tracerProvider.Shutdown(context.Background()) }()
	}

	// Initialize metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: config.ServiceName})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	metrics, err := observability.NewPredictionMetrics(otel.Meter(config.ServiceName))
	if err != nil {
		return fmt.Errorf("failed to create prediction metrics: %w", err)
	}

	// Load the oracle once for the process lifetime.
	source, err := ml.OpenSource(ctx, cfg.Model.Path, ml.S3Config{Region: cfg.Model.S3Region, Endpoint: cfg.Model.S3Endpoint})
	if err != nil {
		return fmt.Errorf("failed to open model source: %w", err)
	}
	provider := ml.NewProvider(source, logger)
	oracle := provider.Oracle(ctx)
	load := provider.Status(ctx)

	predictor := service.NewPredictor(oracle, logger)
	if _, err := predictor.FailIndex(); err != nil {
		logger.Error("model class ordering has no fail class, predictions will be refused", "error", err)
	}

	modelLoad := dto.ModelLoad{
		Location:       load.Location,
		ArtifactExists: load.ArtifactExists,
		LoadedAt:       load.LoadedAt,
	}
	if load.Err != nil {
		modelLoad.Error = load.Err.Error()
	}

	readiness := map[string]rest.ReadinessCheck{}
	modelStatusUC := usecase.NewModelStatus(predictor, modelLoad)
	readiness["model"] = modelStatusUC.Ready

	// Database connection.
	var repo port.PredictionRepository
	if cfg.PersistenceEnabled() {
		pool, err := openDatabase(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		repo = postgres.NewPredictionRepository(pool)
		readiness["database"] = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pgutil.HealthCheck(pingCtx, pool)
		}
	} else {
		logger.Info("DATABASE_URL not set, predictions will not be stored")
	}

	// Event publishing.
	var (
		eventPublisher   port.EventPublisher = kafka.NewLogPublisher(logger)
		resultsPublisher port.EventPublisher = eventPublisher
		producer         *pkgkafka.Producer
	)
	if cfg.Kafka.Enabled() {
		producer, err = pkgkafka.NewProducer(cfg.Kafka.Config)
		if err != nil {
			return fmt.Errorf("failed to create kafka producer: %w", err)
		}
		defer producer.Close()

		eventPublisher = kafka.NewPublisher(producer, cfg.Kafka.EventsTopic, logger)
		resultsPublisher = kafka.NewPublisher(producer, cfg.Kafka.ResultsTopic, logger)
		logger.Info("publishing events to kafka", "brokers", producer.Brokers(), "topic", cfg.Kafka.EventsTopic)
	} else {
		logger.Info("KAFKA_BROKERS not set, events will be logged only")
	}

	// Prediction cache.
	opts := []usecase.PredictOption{usecase.WithMetrics(metrics)}
	if cfg.Cache.Addr != "" {
		client, err := cache.NewClient(ctx, cache.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Warn("redis unavailable, continuing without prediction cache", "error", err)
		} else {
			defer client.Close()
			opts = append(opts, usecase.WithCache(cache.NewRedisCache(client), cache.Key, cfg.Cache.TTL))
			logger.Info("prediction cache enabled", "addr", cfg.Cache.Addr, "ttl", cfg.Cache.TTL)
		}
	}

	// Wire use cases.
	predictSingleUC := usecase.NewPredictSingle(predictor, repo, eventPublisher, logger, opts...)
	predictBatchUC := usecase.NewPredictBatch(predictor, repo, eventPublisher, cfg.MaxBatchSize, logger, opts...)
	getPredictionUC := usecase.NewGetPrediction(repo)
	listStudentUC := usecase.NewListStudentPredictions(repo)
	listPredictionsUC := usecase.NewListPredictions(repo)
	getBatchUC := usecase.NewGetBatch(repo)
	listBatchesUC := usecase.NewListBatches(repo)
	deleteBatchUC := usecase.NewDeleteBatch(repo, logger)
	testPredictionUC := usecase.NewTestPrediction(predictor)
	analyzeModelUC := usecase.NewAnalyzeModel(predictor)

	// Authentication.
	var jwtService *auth.JWTService
	if cfg.JWT.Enabled() {
		jwtService, err = auth.NewJWTService(cfg.JWT)
		if err != nil {
			return fmt.Errorf("failed to configure JWT: %w", err)
		}
		logger.Info("JWT authentication enabled", "issuer", cfg.JWT.Issuer)
	} else {
		logger.Warn("JWT_SECRET not set, endpoints are unauthenticated")
	}

	// gRPC server.
	grpcHandler := grpcpresentation.NewPredictionServiceHandler(predictSingleUC, predictBatchUC, modelStatusUC, logger)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerConfig{
		Address:    cfg.GRPCAddress(),
		JWT:        jwtService,
		TLS:        cfg.TLS,
		Reflection: os.Getenv("GRPC_REFLECTION") == "true",
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create gRPC server: %w", err)
	}
	grpcServer.SetServing(modelStatusUC.Ready() == nil)

	// HTTP server.
	validator, err := rest.NewValidator()
	if err != nil {
		return fmt.Errorf("failed to compile request schemas: %w", err)
	}

	var limiter *rest.RateLimiter
	if cfg.RateLimit > 0 {
		limiter = rest.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
		go limiter.Run(ctx)
	}

	router := rest.NewRouter(rest.RouterConfig{
		Metrics:        metricsHandler,
		JWT:            jwtService,
		Limiter:        limiter,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	}, logger,
		rest.NewHealthHandler(config.ServiceName, readiness, logger),
		rest.NewPredictionHandler(predictSingleUC, predictBatchUC, getPredictionUC, listStudentUC, listPredictionsUC, validator, logger),
		rest.NewBatchHandler(getBatchUC, listBatchesUC, deleteBatchUC, logger),
		rest.NewDiagnosticHandler(modelStatusUC, testPredictionUC, analyzeModelUC, logger),
	)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 3)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Batch requests from the message bus.
	if cfg.Kafka.Enabled() && cfg.Kafka.RequestsTopic != "" {
		processBatchUC := usecase.NewProcessBatchRequest(predictBatchUC, resultsPublisher, logger)
		consumer, err := pkgkafka.NewConsumer(cfg.Kafka.Config, cfg.Kafka.RequestsTopic,
			func(ctx context.Context, msg pkgkafka.Message) error {
				return processBatchUC.Execute(ctx, msg.Value)
			}, logger)
		if err != nil {
			return fmt.Errorf("failed to create kafka consumer: %w", err)
		}
		defer consumer.Close()

		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("kafka consumer error: %w", err)
			}
		}()
		logger.Info("consuming batch requests", "topic", cfg.Kafka.RequestsTopic)
	}

	logger.Info("prediction-service started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
		"model_kind", oracle.Describe().Kind,
		"is_fallback", oracle.IsFallback(),
	)

	// Wait for shutdown signal.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	// Graceful shutdown.
	logger.Info("shutting down prediction-service")

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("prediction-service stopped")
	return runErr
}

func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, error) {
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pgutil.NewPool(dbCtx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info("connected to database")

	if cfg.MigrationsDir != "" {
		err = pgutil.RunMigrations(cfg.DB.DSN(), "file://"+cfg.MigrationsDir)
	} else {
		err = pgutil.RunMigrationsFS(cfg.DB.DSN(), migrations.FS, migrations.Dir)
	}
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("database migrations applied")

	return pool, nil
}
