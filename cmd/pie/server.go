package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/fairslice/pie/config"
	"github.com/fairslice/pie/internal/repositories/activity"
	"github.com/fairslice/pie/internal/repositories/contribution"
	"github.com/fairslice/pie/internal/repositories/contributor"
	ledgerservice "github.com/fairslice/pie/internal/services/ledger"
	"github.com/fairslice/pie/pkg/cache"
	"github.com/fairslice/pie/pkg/database"
	"github.com/fairslice/pie/pkg/events"
	"github.com/fairslice/pie/pkg/kafka"
	"github.com/fairslice/pie/pkg/middleware"
	"github.com/fairslice/pie/pkg/redis"
	activityroutes "github.com/fairslice/pie/pkg/routes/activity"
	contributionroutes "github.com/fairslice/pie/pkg/routes/contribution"
	contributorroutes "github.com/fairslice/pie/pkg/routes/contributor"
	equityroutes "github.com/fairslice/pie/pkg/routes/equity"
	"github.com/fairslice/pie/pkg/routes/health"
	workspaceroutes "github.com/fairslice/pie/pkg/routes/workspace"
	"github.com/fairslice/pie/pkg/startup"
	"github.com/fairslice/pie/pkg/tracing"
	"github.com/fairslice/pie/pkg/tracing/exporters"
)

func run(cfg *config.Config, logger ectologger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := initTracing(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	postgres := &postgresDependency{cfg: cfg, logger: logger}
	redisDep := &redisDependency{cfg: cfg, logger: logger}
	kafkaDep := &kafkaDependency{cfg: cfg, logger: logger}
	httpDep := &httpDependency{
		cfg:      cfg,
		logger:   logger,
		postgres: postgres,
		redis:    redisDep,
		kafka:    kafkaDep,
	}

	boot := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	boot.AddDependency(postgres)
	boot.AddDependency(redisDep)
	boot.AddDependency(kafkaDep)
	boot.AddDependency(httpDep)

	if err := boot.Start(ctx); err != nil {
		return err
	}

	logger.Infof("%s listening on port %d", cfg.AppName, cfg.Port)

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := boot.Stop(shutdownCtx); err != nil {
		logger.WithError(err).Error("Failed to stop all dependencies cleanly")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Failed to flush tracer on shutdown")
	}

	return nil
}

// initTracing wires the global tracer provider. Without a collector the
// spans go to a no-op exporter so span creation still works everywhere.
func initTracing(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	if cfg.OTLPEnabled {
		otlpExporter, err := exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: cfg.OTLPEndpoint,
			Protocol: cfg.OTLPProtocol,
			Insecure: cfg.OTLPInsecure,
			Timeout:  10 * time.Second,
		})
		if err != nil {
			return nil, err
		}
		exporter = otlpExporter
	} else {
		exporter = &exporters.ConsoleExporter{}
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(sdkresource.NewSchemaless(
			attribute.String("service.name", cfg.AppName),
			attribute.String("service.version", version),
		)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	tracing.SetTracer(provider.Tracer(cfg.AppName))

	return provider.Shutdown, nil
}

// postgresDependency owns the connection pool and runs migrations on start.
type postgresDependency struct {
	cfg    *config.Config
	logger ectologger.Logger
	db     database.DB
}

func (d *postgresDependency) GetName() string {
	return "postgres"
}

func (d *postgresDependency) DependsOn() []string {
	return nil
}

func (d *postgresDependency) Start(ctx context.Context) error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.cfg.DatabaseHost,
		d.cfg.DatabasePort,
		d.cfg.DatabaseUserName,
		d.cfg.DatabasePassword,
		d.cfg.DatabaseName,
		d.cfg.DatabaseSSLMode,
	)

	sqlxDB, err := sqlx.ConnectContext(ctx, d.cfg.DatabaseDriver, dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	sqlxDB.SetMaxOpenConns(d.cfg.DatabaseMaxOpenConns)
	sqlxDB.SetMaxIdleConns(d.cfg.DatabaseMaxIdleConns)
	sqlxDB.SetConnMaxLifetime(d.cfg.DatabaseConnMaxLifetime)

	driver, err := migratepg.WithInstance(sqlxDB.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrations := database.NewMigrationService(d.logger, &database.MigrationConfig{
		MigrationFolderPath: d.cfg.DatabaseMigrationFolderPath,
		Version:             uint(d.cfg.DatabaseMigrationVersion),
		Force:               d.cfg.DatabaseMigrationForce,
		AutoRollback:        d.cfg.DatabaseMigrationAutoRollback,
	})
	if err := migrations.Migrate(d.cfg.DatabaseName, driver); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.db = database.NewDatabaseInstance(sqlxDB, d.logger)
	return nil
}

func (d *postgresDependency) Stop(ctx context.Context) error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

type redisDependency struct {
	cfg    *config.Config
	logger ectologger.Logger
	client *redis.Client
}

func (d *redisDependency) GetName() string {
	return "redis"
}

func (d *redisDependency) DependsOn() []string {
	return nil
}

func (d *redisDependency) Start(ctx context.Context) error {
	client, err := redis.NewClient(redis.Config{
		Host:     d.cfg.RedisHost,
		Port:     d.cfg.RedisPort,
		Password: d.cfg.RedisPassword,
		DB:       d.cfg.RedisDB,
	}, d.logger)
	if err != nil {
		return err
	}

	d.client = client
	return nil
}

func (d *redisDependency) Stop(ctx context.Context) error {
	if d.client == nil {
		return nil
	}
	return d.client.Close()
}

// kafkaDependency builds the producer. The writer dials lazily, so Start
// cannot fail on an unreachable broker; the first publish surfaces that.
type kafkaDependency struct {
	cfg      *config.Config
	logger   ectologger.Logger
	producer *kafka.Producer
}

func (d *kafkaDependency) GetName() string {
	return "kafka"
}

func (d *kafkaDependency) DependsOn() []string {
	return nil
}

func (d *kafkaDependency) Start(ctx context.Context) error {
	d.producer = kafka.NewProducer(kafka.ParseConfig(d.cfg.KafkaBrokers, d.cfg.KafkaActivityTopic), d.logger)
	return nil
}

func (d *kafkaDependency) Stop(ctx context.Context) error {
	if d.producer == nil {
		return nil
	}
	return d.producer.Close()
}

// httpDependency assembles the service graph and serves the API.
type httpDependency struct {
	cfg      *config.Config
	logger   ectologger.Logger
	postgres *postgresDependency
	redis    *redisDependency
	kafka    *kafkaDependency

	echo    *echo.Echo
	checker *health.Checker
}

func (d *httpDependency) GetName() string {
	return "http"
}

func (d *httpDependency) DependsOn() []string {
	return []string{"postgres", "redis", "kafka"}
}

func (d *httpDependency) Start(ctx context.Context) error {
	db := d.postgres.db
	redisClient := d.redis.client

	locker := redis.NewLocker(redisClient, "pie:lock:")
	equityCache := cache.NewEquityCache(redisClient, d.cfg.EquityCacheTTL, d.logger)
	emitter := events.NewEmitter(d.kafka.producer, d.logger)

	contributorRepo := contributor.NewRepository(db, d.logger)
	contributionRepo := contribution.NewRepository(db, d.logger)
	activityRepo := activity.NewRepository(db, d.logger)

	service := ledgerservice.NewService(
		d.logger,
		db,
		contributorRepo,
		contributionRepo,
		activityRepo,
		locker,
		emitter,
		equityCache,
		d.cfg.WorkspaceLockTTL,
		d.cfg.WorkspaceLockTimeout,
	)

	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		return fmt.Errorf("failed to create DI container: %w", err)
	}
	if err := ectoinject.RegisterInstance[ectologger.Logger](container, d.logger); err != nil {
		return fmt.Errorf("failed to register logger: %w", err)
	}
	if err := ectoinject.RegisterInstance[database.DB](container, db); err != nil {
		return fmt.Errorf("failed to register database: %w", err)
	}
	if err := ectoinject.RegisterInstance[*ledgerservice.Service](container, service); err != nil {
		return fmt.Errorf("failed to register workspace service: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Server.ReadTimeout = time.Duration(d.cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(d.cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(d.cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.Server.ReadHeaderTimeout = time.Duration(d.cfg.ReadHeaderTimeoutSeconds) * time.Second
	e.Server.MaxHeaderBytes = d.cfg.MaxHeaderBytes

	e.HTTPErrorHandler = middleware.Error(d.logger)

	e.Use(echomiddleware.Recover())
	e.Use(otelecho.Middleware(d.cfg.AppName))
	e.Use(middleware.Context())
	if !d.cfg.AuthEnabled {
		e.Use(middleware.TestAuth())
	}
	e.Use(middleware.Logger(d.logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: d.cfg.AllowOrigins,
		AllowMethods: d.cfg.AllowMethods,
	}))

	d.checker = health.NewChecker(db, redisClient, version)
	d.checker.RegisterRoutes(e)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	contributorroutes.Register(api.Group("/contributors"))
	contributionroutes.Register(api.Group("/contributions"))
	equityroutes.Register(api.Group("/equity"))
	activityroutes.Register(api.Group("/activity"))
	workspaceroutes.Register(api.Group("/workspace"))

	d.echo = e

	go func() {
		if err := e.Start(fmt.Sprintf(":%d", d.cfg.Port)); err != nil && err != http.ErrServerClosed {
			d.logger.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}()

	d.checker.SetReady(true)
	return nil
}

func (d *httpDependency) Stop(ctx context.Context) error {
	if d.checker != nil {
		d.checker.SetReady(false)
	}
	if d.echo == nil {
		return nil
	}
	return d.echo.Shutdown(ctx)
}
