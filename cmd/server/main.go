package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/retailpos/backend/internal/application/catalog"
	identityapp "github.com/retailpos/backend/internal/application/identity"
	inventoryapp "github.com/retailpos/backend/internal/application/inventory"
	partnerapp "github.com/retailpos/backend/internal/application/partner"
	salesapp "github.com/retailpos/backend/internal/application/sales"
	"github.com/retailpos/backend/internal/domain/inventory"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/auth"
	"github.com/retailpos/backend/internal/infrastructure/cache"
	"github.com/retailpos/backend/internal/infrastructure/config"
	"github.com/retailpos/backend/internal/infrastructure/directory"
	"github.com/retailpos/backend/internal/infrastructure/logger"
	"github.com/retailpos/backend/internal/infrastructure/persistence"
	"github.com/retailpos/backend/internal/infrastructure/telemetry"
	"github.com/retailpos/backend/internal/interfaces/http/handler"
	"github.com/retailpos/backend/internal/interfaces/http/middleware"
	"github.com/retailpos/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

const (
	maxRequestBodyBytes = 1 << 20 // 1 MiB
	shutdownTimeout     = 30 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", zap.Error(err))
		}
	}()

	// Tracing
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("failed to initialize tracer provider", zap.Error(err))
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbPlugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			SlowQueryThresh: 200 * time.Millisecond,
			DBSystem:        cfg.Database.Driver,
		}, log)
		if err := dbPlugin.RegisterOtelGorm(db.DB); err != nil {
			log.Fatal("failed to register database tracing", zap.Error(err))
		}
	}

	// Repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	stockRepo := persistence.NewGormProductStockRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)

	ledger := inventory.NewLedgerService()
	salesScope := persistence.NewGormSalesTransactionScope(db.DB)
	inventoryScope := persistence.NewGormInventoryTransactionScope(db.DB)

	// Auth
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	if redisBlacklist, err := auth.NewRedisTokenBlacklist(cfg.Redis); err != nil {
		log.Warn("redis unavailable, using in-memory token blacklist", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		blacklist = redisBlacklist
	}

	// Application services
	orderService := salesapp.NewOrderService(saleRepo, productRepo, stockRepo, ledger, salesScope, log)
	stockService := inventoryapp.NewStockService(stockRepo, movementRepo, productRepo, ledger, inventoryScope, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, ledger, inventoryScope, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo, productRepo, log)
	customerService := partnerapp.NewCustomerService(customerRepo, log)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, log)

	// Duplicate-submission protection for sale creation
	if cfg.Idempotency.Enabled {
		store, err := cache.NewIdempotencyStore(cfg.Idempotency, cfg.Redis, log)
		if err != nil {
			log.Fatal("failed to initialize idempotency store", zap.Error(err))
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("failed to close idempotency store", zap.Error(err))
			}
		}()
		orderService.SetIdempotencyStore(store, shared.IdempotencyConfig{
			Enabled: true,
			TTL:     cfg.Idempotency.TTL,
		})
	}

	// External customer directory sync
	var syncService *partnerapp.DirectorySyncService
	syncCtx, stopSync := context.WithCancel(ctx)
	defer stopSync()
	if cfg.Directory.Enabled {
		client, err := directory.NewClient(cfg.Directory)
		if err != nil {
			log.Fatal("failed to initialize directory client", zap.Error(err))
		}
		syncService = partnerapp.NewDirectorySyncService(customerRepo, client, log)
		if cfg.Directory.Interval > 0 {
			go runDirectorySync(syncCtx, syncService, cfg.Directory.Interval, log)
		}
	}

	// Handlers
	saleHandler := handler.NewSaleHandler(orderService)
	inventoryHandler := handler.NewInventoryHandler(stockService)
	productHandler := handler.NewProductHandler(productService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	customerHandler := handler.NewCustomerHandler(customerService, syncService)
	authHandler := handler.NewAuthHandler(authService)
	systemHandler := handler.NewSystemHandler(db.DB)

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanErrorMarker())
	}
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsCfg.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsCfg.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsCfg))
	engine.Use(middleware.BodyLimit(maxRequestBodyBytes))

	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.TokenBlacklist = blacklist
	jwtCfg.Logger = log
	jwtCfg.SkipPaths = append(jwtCfg.SkipPaths,
		"/api/v1/system/ping",
		"/api/v1/system/info",
	)
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtCfg))

	engine.GET("/health", systemHandler.Health)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	registerRoutes(r, saleHandler, inventoryHandler, productHandler, categoryHandler, customerHandler, authHandler, systemHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", zap.String("signal", sig.String()))

	stopSync()
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("tracer provider shutdown failed", zap.Error(err))
	}

	log.Info("server stopped")
}

// registerRoutes wires all domain route groups onto the versioned router.
func registerRoutes(
	r *router.Router,
	saleHandler *handler.SaleHandler,
	inventoryHandler *handler.InventoryHandler,
	productHandler *handler.ProductHandler,
	categoryHandler *handler.CategoryHandler,
	customerHandler *handler.CustomerHandler,
	authHandler *handler.AuthHandler,
	systemHandler *handler.SystemHandler,
) {
	adminOnly := middleware.RequireRole("admin")

	authRoutes := router.NewDomainGroup("auth", "/auth").
		POST("/login", authHandler.Login).
		POST("/refresh", authHandler.Refresh).
		POST("/logout", authHandler.Logout).
		GET("/me", authHandler.Me).
		POST("/password", authHandler.ChangePassword)

	users := router.NewDomainGroup("users", "/users").
		Use(adminOnly).
		POST("", authHandler.CreateUser).
		GET("", authHandler.ListUsers).
		DELETE("/:id", authHandler.DeactivateUser)

	products := router.NewDomainGroup("products", "/products").
		POST("", adminOnly, productHandler.Create).
		PUT("/:id", adminOnly, productHandler.Update).
		GET("", productHandler.List).
		GET("/:id", productHandler.GetByID).
		GET("/barcode/:barcode", productHandler.GetByBarcode).
		POST("/:id/activate", adminOnly, productHandler.Activate).
		POST("/:id/deactivate", adminOnly, productHandler.Deactivate)

	categories := router.NewDomainGroup("categories", "/categories").
		POST("", adminOnly, categoryHandler.Create).
		PUT("/:id", adminOnly, categoryHandler.Update).
		GET("", categoryHandler.List).
		GET("/:id", categoryHandler.GetByID).
		DELETE("/:id", adminOnly, categoryHandler.Delete)

	customers := router.NewDomainGroup("customers", "/customers").
		POST("", customerHandler.Create).
		PUT("/:id", customerHandler.Update).
		GET("", customerHandler.List).
		GET("/:id", customerHandler.GetByID).
		DELETE("/:id", adminOnly, customerHandler.Deactivate).
		POST("/sync", adminOnly, customerHandler.Sync)

	stock := router.NewDomainGroup("stock", "/stock").
		GET("/movements", inventoryHandler.ListMovements).
		GET("/low", inventoryHandler.ListLowStock).
		GET("/report", inventoryHandler.Report).
		GET("/:product_id", inventoryHandler.GetStock).
		POST("/adjust", adminOnly, inventoryHandler.Adjust).
		POST("/receive", inventoryHandler.Receive)

	sales := router.NewDomainGroup("sales", "/sales").
		POST("", saleHandler.Create).
		GET("", saleHandler.List).
		GET("/:id", saleHandler.GetByID).
		GET("/code/:code", saleHandler.GetByCode).
		POST("/:id/cancel", saleHandler.Cancel)

	system := router.NewDomainGroup("system", "/system").
		GET("/info", systemHandler.GetSystemInfo).
		GET("/ping", systemHandler.Ping)

	r.Register(authRoutes).
		Register(users).
		Register(products).
		Register(categories).
		Register(customers).
		Register(stock).
		Register(sales).
		Register(system)
}

// runDirectorySync pushes and pulls customer records against the external
// directory on a fixed interval until the context is canceled.
func runDirectorySync(ctx context.Context, svc *partnerapp.DirectorySyncService, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastSync := time.Now().Add(-interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			started := time.Now()
			result, err := svc.Sync(ctx, lastSync)
			if err != nil {
				log.Error("directory sync failed", zap.Error(err))
				continue
			}
			lastSync = started
			log.Info("directory sync completed",
				zap.Int("pushed", result.Pushed),
				zap.Int("pulled", result.Pulled),
				zap.Duration("elapsed", time.Since(started)),
			)
		}
	}
}
