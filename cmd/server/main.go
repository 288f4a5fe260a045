package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spendtrail/internal/aggregation"
	"spendtrail/internal/config"
	"spendtrail/internal/database"
	"spendtrail/internal/handlers"
	"spendtrail/internal/middleware"
	"spendtrail/internal/pipeline"
	"spendtrail/internal/repositories"
	"spendtrail/internal/rules"
	"spendtrail/internal/services"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()
	setupLogger(cfg)

	db, err := database.Initialize(cfg)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	txnRepo := repositories.NewTransactionRepository(db.DB)
	ruleRepo := repositories.NewRuleRepository(db.DB)
	categoryRepo := repositories.NewCategoryRepository(db.DB)
	overrideRepo := repositories.NewOverrideRepository(db.DB)

	ledgerService, err := services.NewLedgerService(
		txnRepo, ruleRepo, categoryRepo, overrideRepo,
		rules.NewEngine(),
		aggregation.NewAggregator(),
		importFormat(cfg.Import),
		services.NewPrometheusMetrics(),
	)
	if err != nil {
		slog.Error("failed to initialize ledger service", "error", err)
		os.Exit(1)
	}

	sampleData := services.NewSampleDataGenerator(0)

	// Optionally seed the ledger from a CSV export on disk.
	if cfg.Import.SeedFile != "" {
		if _, progress, err := ledgerService.ImportFile(context.Background(), cfg.Import.SeedFile); err != nil {
			slog.Error("seed import failed to start", "file", cfg.Import.SeedFile, "error", err)
		} else {
			go func() {
				for range progress {
				}
			}()
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.RateLimiterWithConfig(
		cfg.Security.RateLimitPerSecond,
		cfg.Security.RateLimitBurst,
	))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
	}))

	registerRoutes(e, db, ledgerService, categoryRepo, sampleData)

	// Start server in a goroutine for graceful shutdown
	go func() {
		address := cfg.Server.Host + ":" + cfg.Server.Port
		slog.Info("starting server", "address", address, "environment", cfg.Server.Environment)
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}
}

func registerRoutes(
	e *echo.Echo,
	db *database.DB,
	ledgerService services.LedgerServiceInterface,
	categoryRepo repositories.CategoryRepositoryInterface,
	sampleData services.SampleDataGeneratorInterface,
) {
	healthHandler := handlers.NewHealthCheckHandler(db.DB)
	importHandler := handlers.NewImportHandler(ledgerService, sampleData)
	transactionHandler := handlers.NewTransactionHandler(ledgerService)
	ruleHandler := handlers.NewRuleHandler(ledgerService)
	totalsHandler := handlers.NewTotalsHandler(ledgerService)
	categoryHandler := handlers.NewCategoryHandler(ledgerService, categoryRepo)

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	api.POST("/imports", importHandler.StartImport)
	api.GET("/imports/current", importHandler.GetCurrentImport)
	api.DELETE("/imports/current", importHandler.CancelImport)
	api.POST("/imports/sample", importHandler.GenerateSample)

	api.GET("/transactions", transactionHandler.ListTransactions)
	api.GET("/transactions/:id", transactionHandler.GetTransaction)
	api.PUT("/transactions/:id/category", transactionHandler.ReassignCategory)
	api.PUT("/transactions/:id/note", transactionHandler.UpdateNote)

	api.GET("/rules", ruleHandler.ListRules)
	api.POST("/rules", ruleHandler.CreateRule)
	api.DELETE("/rules/:id", ruleHandler.DeleteRule)

	api.GET("/categories", categoryHandler.ListCategories)
	api.POST("/categories", categoryHandler.CreateCategory)
	api.POST("/categories/:name/rename", categoryHandler.RenameCategory)
	api.GET("/categories/totals", totalsHandler.GetTotals)
}

// importFormat builds the pipeline format from configuration
func importFormat(cfg config.ImportConfig) pipeline.Format {
	format := pipeline.Format{
		Delimiter:         ';',
		DateColumn:        cfg.DateColumn,
		MerchantColumn:    cfg.MerchantColumn,
		DescriptionColumn: cfg.DescriptionColumn,
		AmountColumn:      cfg.AmountColumn,
		DirectionColumn:   cfg.DirectionColumn,
		DateLayouts:       cfg.DateLayouts,
		DecimalComma:      cfg.DecimalComma,
		DebitMarkers:      cfg.DebitMarkers,
	}
	if cfg.Delimiter != "" {
		format.Delimiter = rune(cfg.Delimiter[0])
	}
	return format
}

func setupLogger(cfg *config.Config) {
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
}
