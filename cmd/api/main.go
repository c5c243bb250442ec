package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/LazyDev-01/dayliz-allocation/config"
	allocationrulerepo "github.com/LazyDev-01/dayliz-allocation/internal/repositories/allocationrule"
	assignmentrepo "github.com/LazyDev-01/dayliz-allocation/internal/repositories/assignment"
	inventoryrepo "github.com/LazyDev-01/dayliz-allocation/internal/repositories/inventory"
	productrepo "github.com/LazyDev-01/dayliz-allocation/internal/repositories/product"
	systemconfigrepo "github.com/LazyDev-01/dayliz-allocation/internal/repositories/systemconfig"
	vendorrepo "github.com/LazyDev-01/dayliz-allocation/internal/repositories/vendor"
	zonevendorrepo "github.com/LazyDev-01/dayliz-allocation/internal/repositories/zonevendor"
	allocationengine "github.com/LazyDev-01/dayliz-allocation/pkg/allocation"
	"github.com/LazyDev-01/dayliz-allocation/pkg/database"
	"github.com/LazyDev-01/dayliz-allocation/pkg/events"
	"github.com/LazyDev-01/dayliz-allocation/pkg/kafka"
	"github.com/LazyDev-01/dayliz-allocation/pkg/middleware"
	allocationroutes "github.com/LazyDev-01/dayliz-allocation/pkg/routes/allocation"
	allocationruleroutes "github.com/LazyDev-01/dayliz-allocation/pkg/routes/allocationrule"
	assignmentroutes "github.com/LazyDev-01/dayliz-allocation/pkg/routes/assignment"
	"github.com/LazyDev-01/dayliz-allocation/pkg/routes/health"
	inventoryroutes "github.com/LazyDev-01/dayliz-allocation/pkg/routes/inventory"
	systemconfigroutes "github.com/LazyDev-01/dayliz-allocation/pkg/routes/systemconfig"
	vendorroutes "github.com/LazyDev-01/dayliz-allocation/pkg/routes/vendor"
	zonevendorroutes "github.com/LazyDev-01/dayliz-allocation/pkg/routes/zonevendor"
	"github.com/LazyDev-01/dayliz-allocation/pkg/startup"
	"github.com/LazyDev-01/dayliz-allocation/pkg/tracing"
	"github.com/LazyDev-01/dayliz-allocation/pkg/tracing/exporters"
)

const version = "1.0.0"

func main() {
	_ = godotenv.Load()

	var cfg config.Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	log := logger.WithField("app", cfg.AppName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := setupTracing(ctx, cfg)
		if err != nil {
			log.WithError(err).Error("Failed to set up tracing")
			os.Exit(1)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.WithError(err).Error("Failed to shut down tracing")
			}
		}()
	}

	app := &application{cfg: cfg, logger: logger}

	boot := startup.NewStartup(logger, cfg.StartupMaxAttempts)
	boot.AddDependency(&databaseDependency{app: app})
	boot.AddDependency(&migrationDependency{app: app})
	if cfg.KafkaProducerEnabled {
		boot.AddDependency(&kafkaDependency{app: app})
	}
	boot.AddDependency(&serverDependency{app: app})

	if err := boot.Start(ctx); err != nil {
		log.WithError(err).Error("Startup failed")
		os.Exit(1)
	}

	<-ctx.Done()
	log.Info("Shutdown signal received")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := boot.Stop(stopCtx); err != nil {
		log.WithError(err).Error("Shutdown did not complete cleanly")
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) ectologger.Logger {
	var zapLogger *zap.Logger
	if cfg.PrettyLogs {
		zapLogger, _ = zap.NewDevelopment()
	} else {
		zapLogger, _ = zap.NewProduction()
	}
	return zapadapter.NewZapEctoLogger(zapLogger, nil)
}

func setupTracing(ctx context.Context, cfg config.Config) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	switch cfg.TracingExporter {
	case "otlp":
		otlpCfg := exporters.DefaultOTLPConfig()
		otlpCfg.Endpoint = cfg.OTLPEndpoint
		otlpCfg.Protocol = cfg.OTLPProtocol
		otlpExporter, err := exporters.NewOTLPExporter(ctx, otlpCfg)
		if err != nil {
			return nil, err
		}
		exporter = otlpExporter
	default:
		exporter = &exporters.ConsoleExporter{}
	}

	return tracing.Setup(cfg.AppName, exporter), nil
}

// application holds what the startup dependencies build and share
type application struct {
	cfg      config.Config
	logger   ectologger.Logger
	db       database.DB
	producer *kafka.Producer
	echo     *echo.Echo
	checker  *health.Checker
}

type databaseDependency struct {
	app *application
}

func (d *databaseDependency) GetName() string { return "database" }
func (d *databaseDependency) DependsOn() []string { return nil }

func (d *databaseDependency) Start(ctx context.Context) error {
	db, err := database.Connect(ctx, database.ConnectionConfig{
		Host:            d.app.cfg.DatabaseHost,
		Port:            d.app.cfg.DatabasePort,
		UserName:        d.app.cfg.DatabaseUserName,
		Password:        d.app.cfg.DatabasePassword,
		Name:            d.app.cfg.DatabaseName,
		SSLMode:         d.app.cfg.DatabaseSSLMode,
		MaxOpenConns:    d.app.cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    d.app.cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: d.app.cfg.DatabaseConnMaxLifetime,
	}, d.app.logger)
	if err != nil {
		return err
	}

	d.app.db = db
	return nil
}

func (d *databaseDependency) Stop(ctx context.Context) error {
	return nil
}

type migrationDependency struct {
	app *application
}

func (d *migrationDependency) GetName() string { return "migrations" }
func (d *migrationDependency) DependsOn() []string { return []string{"database"} }

func (d *migrationDependency) Start(ctx context.Context) error {
	instance, ok := d.app.db.(*database.DatabaseInstance)
	if !ok {
		return fmt.Errorf("database is not a migratable instance")
	}

	driver, err := postgres.WithInstance(instance.DB.DB, &postgres.Config{})
	if err != nil {
		return err
	}

	service := database.NewMigrationService(d.app.logger, &database.MigrationConfig{
		MigrationFolderPath: d.app.cfg.DatabaseMigrationFolderPath,
		Version:             uint(d.app.cfg.DatabaseMigrationVersion),
		Force:               d.app.cfg.DatabaseMigrationForce,
		AutoRollback:        d.app.cfg.DatabaseMigrationAutoRollback,
	})

	return service.Migrate(d.app.cfg.DatabaseName, driver)
}

func (d *migrationDependency) Stop(ctx context.Context) error {
	return nil
}

type kafkaDependency struct {
	app *application
}

func (d *kafkaDependency) GetName() string { return "kafka" }
func (d *kafkaDependency) DependsOn() []string { return nil }

func (d *kafkaDependency) Start(ctx context.Context) error {
	d.app.producer = kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      d.app.cfg.KafkaBrokers,
		Topic:        d.app.cfg.KafkaOutputTopic,
		BatchSize:    d.app.cfg.KafkaBatchSize,
		BatchTimeout: time.Duration(d.app.cfg.KafkaBatchTimeout) * time.Millisecond,
		RequiredAcks: d.app.cfg.KafkaRequiredAcks,
		Compression:  d.app.cfg.KafkaCompression,
	}, d.app.logger)

	return nil
}

func (d *kafkaDependency) Stop(ctx context.Context) error {
	if d.app.producer == nil {
		return nil
	}
	return d.app.producer.Close()
}

type serverDependency struct {
	app *application
}

func (d *serverDependency) GetName() string { return "server" }

func (d *serverDependency) DependsOn() []string {
	deps := []string{"database", "migrations"}
	if d.app.cfg.KafkaProducerEnabled {
		deps = append(deps, "kafka")
	}
	return deps
}

func (d *serverDependency) Start(ctx context.Context) error {
	if err := d.registerDependencies(); err != nil {
		return err
	}

	cfg := d.app.cfg
	logger := d.app.logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.Error(logger)

	if cfg.TracingEnabled {
		e.Use(otelecho.Middleware(cfg.AppName))
	}
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(echomiddleware.Recover())

	d.app.checker = health.NewChecker(d.app.db, version)
	d.app.checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	if cfg.AuthEnabled {
		auth, err := middleware.Authentication(logger, cfg.AuthIssuerURL, cfg.AuthClientID)
		if err != nil {
			return err
		}
		api.Use(auth)
	}

	vendorroutes.Register(api.Group("/vendors"))
	zonevendorroutes.Register(api.Group("/zone-vendors"))
	assignmentroutes.Register(api.Group("/assignments"))
	inventoryroutes.Register(api.Group("/inventory"))
	allocationruleroutes.Register(api.Group("/allocation-rules"))
	systemconfigroutes.Register(api.Group("/config"))
	allocationroutes.Register(api.Group("/allocation"))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		ReadTimeout:       time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	d.app.echo = e

	go func() {
		logger.WithField("port", cfg.Port).Info("Starting HTTP server")
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}()

	d.app.checker.SetReady(true)
	return nil
}

func (d *serverDependency) Stop(ctx context.Context) error {
	if d.app.checker != nil {
		d.app.checker.SetReady(false)
	}
	if d.app.echo == nil {
		return nil
	}
	return d.app.echo.Shutdown(ctx)
}

// registerDependencies builds the repositories, engine, and emitter and
// registers them on the default DI container consumed by the route handlers.
func (d *serverDependency) registerDependencies() error {
	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		return err
	}

	logger := d.app.logger
	db := d.app.db

	vendors := vendorrepo.NewRepository(db, logger)
	zoneVendors := zonevendorrepo.NewRepository(db, logger)
	assignments := assignmentrepo.NewRepository(db, logger)
	inventory := inventoryrepo.NewRepository(db, logger)
	rules := allocationrulerepo.NewRepository(db, logger)
	systemConfig := systemconfigrepo.NewRepository(db, logger)
	products := productrepo.NewRepository(db, logger)

	engine := allocationengine.NewEngine(
		logger,
		systemConfig,
		products,
		vendors,
		zoneVendors,
		assignments,
		inventory,
		rules,
		allocationengine.EngineConfig{
			FallbackPriority: d.app.cfg.HybridFallbackPriority,
			MaxCandidates:    d.app.cfg.MaxCandidates,
		},
	)

	if err := ectoinject.RegisterInstance[ectologger.Logger](container, logger); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[database.DB](container, db); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*vendorrepo.Repository](container, vendors); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*zonevendorrepo.Repository](container, zoneVendors); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*assignmentrepo.Repository](container, assignments); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*inventoryrepo.Repository](container, inventory); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*allocationrulerepo.Repository](container, rules); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*systemconfigrepo.Repository](container, systemConfig); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*productrepo.Repository](container, products); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*allocationengine.Engine](container, engine); err != nil {
		return err
	}

	if d.app.producer != nil {
		emitter := events.NewEmitter(d.app.producer, logger)
		if err := ectoinject.RegisterInstance[*events.Emitter](container, emitter); err != nil {
			return err
		}
	}

	return nil
}
