package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/audit"
	cartapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/cart"
	catalogapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/catalog"
	checkoutapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/checkout"
	eventapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/event"
	featureflagapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/featureflag"
	identityapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/identity"
	orderapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/order"
	paymentapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/payment"
	pricingapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/pricing"
	privacyapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/privacy"
	returnsapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/returns"
	shippingapp "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/application/shipping"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/catalog"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/featureflag"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/pricing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/domain/shared/valueobject"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/auth"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/cache"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/config"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/event"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/logger"
	paymentinfra "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/payment"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/persistence"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/printing"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/scheduler"
	shippinginfra "github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/shipping"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/storage"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/infrastructure/telemetry"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/interfaces/http/handler"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/interfaces/http/middleware"
	"github.com/SebastianDabkowski/mercatoApp11-sub000/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/SebastianDabkowski/mercatoApp11-sub000/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const version = "1.0.0"

//	@title			Mercato Marketplace API
//	@version		1.0
//	@description	Multi-vendor marketplace backend: catalog, carts, checkout with per-seller order split, payments, returns and disputes.

//	@contact.name	API Support
//	@contact.url	https://github.com/SebastianDabkowski/mercatoApp11-sub000

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	baseLog, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()

	// Telemetry first so that the log bridge and DB tracing can attach to it
	tel, err := telemetry.Setup(rootCtx, cfg.Telemetry, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			baseLog.Warn("Telemetry shutdown incomplete", zap.Error(err))
		}
	}()
	log := tel.Logs.Bridge(baseLog, cfg.Telemetry.ServiceName, zapcore.InfoLevel)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Mercato marketplace",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate schema", zap.Error(err))
		}
	}
	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBName:          cfg.Database.DBName,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log); err != nil {
		log.Warn("DB tracing not registered", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis backs rate limits, revocation, idempotency and cache fan-out.
	// Without it every one of those falls back to process memory.
	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(rootCtx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = client.Close()
		}()
		redisClient = client
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	var (
		revoker     auth.TokenRevoker
		broadcaster cache.Broadcaster
	)
	if redisClient != nil {
		revoker = auth.NewRedisTokenRevoker(redisClient)
		broadcaster = cache.NewRedisInvalidationBroadcaster(redisClient, cfg.Cache.InvalidationChannel, log)
	} else {
		revoker = auth.NewInMemoryTokenRevoker()
	}
	idempotency := cache.NewIdempotencyStore(redisClient, cfg.Cache, log)

	// Snapshot caches and the hub that keeps them coherent across instances
	categoryTrees := cache.NewSnapshotCache[*catalog.CategoryTree](catalogapp.CategoryTreeCacheName, cfg.Cache.SnapshotTTL)
	ruleSnapshots := cache.NewSnapshotCache[*pricing.RuleSnapshot](pricingapp.RuleSnapshotCacheName, cfg.Cache.SnapshotTTL)
	flagSnapshots := cache.NewSnapshotCache[*featureflag.Snapshot](featureflagapp.SnapshotCacheName, cfg.Cache.SnapshotTTL)
	hub := cache.NewHub(broadcaster, log)
	hub.Register(categoryTrees)
	hub.Register(ruleSnapshots)
	hub.Register(flagSnapshots)
	go func() {
		if err := hub.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Cache invalidation listener stopped", zap.Error(err))
		}
	}()

	currency, err := valueobject.ParseCurrency(cfg.Market.DefaultCurrency)
	if err != nil {
		log.Fatal("Invalid default currency", zap.String("currency", cfg.Market.DefaultCurrency), zap.Error(err))
	}

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	sellerRepo := persistence.NewGormSellerRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	commissionRepo := persistence.NewGormCommissionRuleRepository(db.DB)
	vatRepo := persistence.NewGormVatRuleRepository(db.DB)
	shippingRuleRepo := persistence.NewGormShippingRuleRepository(db.DB)
	promotionRepo := persistence.NewGormPromotionRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	returnRepo := persistence.NewGormReturnRepository(db.DB)
	disputeRepo := persistence.NewGormDisputeRepository(db.DB)
	flagRepo := persistence.NewGormFeatureFlagRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	dataRequestRepo := persistence.NewGormDataRequestRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Events raised inside a transaction are written to the outbox with it
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)
	txScope := persistence.NewGormTransactionScope(db.DB, outboxPublisher)

	// Providers
	providers := payment.NewRegistry()
	var simulated *paymentinfra.SimulatedGateway
	if cfg.Payment.GatewaySecret != "" {
		simulated, err = paymentinfra.NewSimulatedGateway(paymentinfra.SimulatedGatewayConfigFrom(cfg))
		if err != nil {
			log.Fatal("Invalid simulated gateway configuration", zap.Error(err))
		}
		providers.Register(simulated)
	}
	if cfg.Payment.Stripe.SecretKey != "" {
		stripeGateway, err := paymentinfra.NewStripeGateway(paymentinfra.StripeGatewayConfigFrom(cfg), log)
		if err != nil {
			log.Fatal("Invalid Stripe configuration", zap.Error(err))
		}
		providers.Register(stripeGateway)
	}
	if len(providers.Names()) == 0 {
		log.Warn("No payment provider configured; checkout will be rejected")
	} else if err := providers.SetDefault(cfg.Payment.DefaultProvider); err != nil {
		log.Warn("Default payment provider is not configured; using the first registered",
			zap.String("provider", cfg.Payment.DefaultProvider),
			zap.Strings("available", providers.Names()))
	}
	carriers, err := shippinginfra.NewRegistry(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize carriers", zap.Error(err))
	}

	var objectStore privacyapp.ObjectStore
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiry))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Store.EnsureBucket(rootCtx); err != nil {
			log.Fatal("Export bucket unavailable", zap.String("bucket", s3Store.Bucket()), zap.Error(err))
		}
		objectStore = s3Store
	} else {
		objectStore = storage.NewMemoryObjectStorage(cfg.App.BaseURL + "/files")
	}

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, sellerRepo, txScope, jwtService, revoker,
		identityapp.DefaultAuthServiceConfig(), log)
	userService := identityapp.NewUserService(userRepo, revoker, jwtService.RefreshTokenExpiration(), log)
	tenantService := identityapp.NewTenantService(tenantRepo, log)

	categoryService := catalogapp.NewCategoryService(categoryRepo, categoryTrees,
		hub.For(catalogapp.CategoryTreeCacheName), log)
	productService := catalogapp.NewProductService(productRepo, sellerRepo, categoryRepo, currency, log)
	sellerService := catalogapp.NewSellerService(sellerRepo, log)
	browseService := catalogapp.NewBrowseService(productRepo, categoryService, log)

	ruleProvider := pricingapp.NewSnapshotProvider(commissionRepo, vatRepo, shippingRuleRepo, ruleSnapshots,
		hub.For(pricingapp.RuleSnapshotCacheName), pricing.Defaults{
			CommissionPercent: cfg.Market.DefaultCommission,
			VatPercent:        cfg.Market.DefaultVat,
		})
	ruleService := pricingapp.NewRuleService(commissionRepo, vatRepo, shippingRuleRepo, ruleProvider, currency, log)
	promotionService := pricingapp.NewPromotionService(promotionRepo, currency, log)

	flagService := featureflagapp.NewFlagService(flagRepo, hub.For(featureflagapp.SnapshotCacheName), log)
	evaluationService := featureflagapp.NewEvaluationService(flagRepo, flagSnapshots, map[string]bool{
		featureflag.FlagCheckoutEnabled: true,
		featureflag.FlagReturnsEnabled:  true,
		featureflag.FlagDataExport:      true,
	}, log)

	quoter := cartapp.NewQuoter(sellerRepo, categoryService, ruleProvider)
	cartService := cartapp.NewService(cartRepo, productRepo, sellerRepo, promotionService, quoter, cartapp.Config{
		TTL:      cfg.Market.CartTTL,
		Currency: currency,
	}, log)
	checkoutService := checkoutapp.NewService(checkoutapp.ServiceConfig{
		TxScope:     txScope,
		CartRepo:    cartRepo,
		PaymentRepo: paymentRepo,
		Quoter:      quoter,
		Providers:   providers,
		Idempotency: idempotency,
		Flags:       evaluationService,
		Config: checkoutapp.Config{
			IdempotencyTTL:   cfg.Market.IdempotencyTTL,
			PaymentReturnURL: cfg.App.BaseURL + "/api/v1/payments/return",
		},
		Logger: log,
	})
	orderService := orderapp.NewService(orderRepo, log)
	if cfg.Printing.Enabled {
		chrome := printing.NewChromedpRenderer(printing.ChromedpConfigFrom(cfg, log.Named("printing")))
		defer func() {
			_ = chrome.Close()
		}()
		orderService.SetDocumentRenderer(printing.NewPackingSlipRenderer(chrome, cfg.Printing.PaperSize, log))
		log.Info("Packing slip printing enabled", zap.String("paper_size", cfg.Printing.PaperSize))
	}
	paymentService := paymentapp.NewService(txScope, paymentRepo, orderRepo, providers, log)
	returnService := returnsapp.NewReturnService(txScope, returnRepo, orderRepo, paymentService,
		cfg.Market.ReturnWindow(), log)
	disputeService := returnsapp.NewDisputeService(txScope, disputeRepo, returnRepo, orderRepo, paymentService, log)
	trackingService := shippingapp.NewTrackingService(orderRepo, carriers, log)
	privacyService := privacyapp.NewService(privacyapp.Deps{
		TxScope:     txScope,
		Requests:    dataRequestRepo,
		Users:       userRepo,
		Sellers:     sellerRepo,
		Orders:      orderRepo,
		Returns:     returnRepo,
		Disputes:    disputeRepo,
		Audit:       auditRepo,
		Store:       objectStore,
		DownloadTTL: cfg.Storage.PresignExpiry,
	}, log)
	auditService := auditapp.NewService(auditRepo, log)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	var checkoutFailures handler.CheckoutFailureRecorder
	metrics, err := telemetry.NewBusinessMetrics(tel.Meter.Meter("mercato"), cacheHitRatios(hub), log)
	if err != nil {
		log.Warn("Business metrics disabled", zap.Error(err))
	} else {
		defer func() {
			_ = metrics.Close()
		}()
		checkoutFailures = metrics
	}

	// Outbox delivery is at-least-once; subscribers with side effects are
	// deduplicated by event id
	subscribers := []shared.EventHandler{
		auditapp.NewEventSubscriber(auditRepo, log),
		catalogapp.NewStockHandler(txScope, orderRepo, log),
		shippingapp.NewShipmentHandler(orderRepo, carriers, shippingapp.DefaultCarriers(), log),
	}
	if metrics != nil {
		subscribers = append(subscribers, metrics)
	}
	for _, sub := range subscribers {
		eventBus.Subscribe(event.NewIdempotentHandler(sub, idempotency, log), sub.EventTypes()...)
	}

	if err := eventBus.Start(rootCtx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Outbox processor relays committed events to the bus
	if cfg.Event.ProcessorEnabled {
		outboxConfig := event.DefaultOutboxProcessorConfig()
		outboxConfig.BatchSize = cfg.Event.BatchSize
		outboxConfig.PollInterval = cfg.Event.PollInterval
		outboxConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		outboxConfig.CleanupRetention = cfg.Event.CleanupRetention
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxConfig, log)
		if err := outboxProcessor.Start(rootCtx); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := outboxProcessor.Stop(ctx); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", outboxConfig.BatchSize),
			zap.Duration("poll_interval", outboxConfig.PollInterval))
	}

	// Services outside a transaction publish straight to the bus
	for _, svc := range []interface {
		SetEventPublisher(shared.EventPublisher)
	}{
		authService, userService, categoryService, productService, sellerService,
		flagService, ruleService, promotionService, orderService,
		returnService, disputeService, trackingService, privacyService,
	} {
		svc.SetEventPublisher(eventBus)
	}

	// Background jobs
	var jobs handler.JobRunner
	if cfg.Scheduler.Enabled {
		sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
			Enabled:    true,
			JobTimeout: cfg.Scheduler.JobTimeout,
			Location:   time.UTC,
		}, log)
		if err := scheduler.RegisterMarketplaceJobs(sched, scheduler.Services{
			Orders:   orderService,
			Carts:    cartService,
			Privacy:  privacyService,
			Disputes: disputeService,
		}, cfg, log); err != nil {
			log.Fatal("Failed to register jobs", zap.Error(err))
		}
		if err := sched.Start(rootCtx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := sched.Stop(ctx); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
		jobs = sched
	}

	// Health probes
	checks := []handler.HealthCheck{{
		Name:  "database",
		Check: func(context.Context) error { return db.Ping() },
	}}
	if redisClient != nil {
		checks = append(checks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}
	systemOpts := []handler.SystemOption{
		handler.WithHealthChecks(checks...),
		handler.WithCacheStats(hub),
	}
	if jobs != nil {
		systemOpts = append(systemOpts, handler.WithJobRunner(jobs))
	}

	// Initialize HTTP handlers
	var hosted handler.HostedPaymentPage
	if simulated != nil {
		hosted = simulated
	}
	handlers := httpHandlers{
		auth:        handler.NewAuthHandler(authService),
		user:        handler.NewUserHandler(userService),
		tenant:      handler.NewTenantHandler(tenantService),
		catalog:     handler.NewCatalogHandler(browseService, categoryService, sellerService),
		category:    handler.NewCategoryHandler(categoryService),
		seller:      handler.NewSellerHandler(productService, sellerService),
		sellerAdmin: handler.NewSellerAdminHandler(sellerService),
		sellerOrder: handler.NewSellerOrderHandler(orderService),
		pricing:     handler.NewPricingHandler(ruleService, promotionService),
		cart:        handler.NewCartHandler(cartService),
		checkout:    handler.NewCheckoutHandler(checkoutService, checkoutFailures),
		order:       handler.NewOrderHandler(orderService, paymentService, trackingService),
		payment:     handler.NewPaymentHandler(paymentService, hosted),
		returns:     handler.NewReturnHandler(returnService),
		dispute:     handler.NewDisputeHandler(disputeService),
		privacy:     handler.NewPrivacyHandler(privacyService),
		featureFlag: handler.NewFeatureFlagHandler(flagService, evaluationService),
		audit:       handler.NewAuditHandler(auditService),
		outbox:      handler.NewOutboxHandler(outboxService),
		system:      handler.NewSystemHandler(version, systemOpts...),
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Register custom validators (currency, country, decimal amounts)
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to setup validator", zap.Error(err))
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.SecureHeaders(),
		middleware.CORS(corsConfig),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Tracing(cfg.Telemetry.ServiceName, tel.Tracer.IsEnabled()),
		middleware.HTTPMetrics(tel.Meter, log),
	)
	if cfg.HTTP.RateLimitEnabled {
		engine.Use(middleware.RateLimit(
			newLimiter(redisClient, "ratelimit:api:", cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow),
			middleware.ClientKey, log))
	}
	engine.NoRoute(middleware.NoRoute())

	// Liveness probe; readiness with dependency checks is /api/v1/system/health
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})

	jwtMiddleware := middleware.JWTAuth(middleware.JWTConfig{
		Validator: jwtService,
		Revoker:   revoker,
		Optional:  true,
		Logger:    log,
	})

	if cfg.Swagger.Enabled {
		engine.GET("/swagger/*any",
			middleware.SwaggerProtection(middleware.SwaggerConfig{
				Enabled:      true,
				RequireAdmin: cfg.Swagger.RequireAuth,
				AllowedIPs:   cfg.Swagger.AllowedIPs,
			}, jwtMiddleware),
			ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(jwtMiddleware, middleware.SpanErrorMarker())
	registerRoutes(r, handlers, routeDeps{
		tenants:   tenantService,
		flags:     evaluationService,
		audit:     auditService,
		authLimit: authRateLimit(cfg, redisClient, log),
		logger:    log,
	})
	r.Setup()
	log.Info("Routes registered", zap.Int("count", len(r.Routes())), zap.String("base_path", r.BasePath()))

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	stopRoot()

	log.Info("Server exited gracefully")
}

func newLimiter(client redis.UniversalClient, prefix string, limit int, window time.Duration) middleware.Limiter {
	if client != nil {
		return middleware.NewRedisRateLimiter(client, prefix, limit, window)
	}
	return middleware.NewRateLimiter(limit, window)
}

// authRateLimit throttles credential endpoints harder than the API as a whole
func authRateLimit(cfg *config.Config, client redis.UniversalClient, log *zap.Logger) gin.HandlerFunc {
	if !cfg.HTTP.AuthRateLimitEnabled {
		return nil
	}
	return middleware.RateLimit(
		newLimiter(client, "ratelimit:auth:", cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow),
		middleware.ClientKey, log)
}

func cacheHitRatios(hub *cache.Hub) telemetry.HitRatioFunc {
	return func() map[string]float64 {
		stats := hub.Stats()
		out := make(map[string]float64, len(stats))
		for _, s := range stats {
			out[s.Name] = s.HitRatio()
		}
		return out
	}
}
