package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	collectionapp "github.com/inkasso/backend/internal/application/collection"
	identityapp "github.com/inkasso/backend/internal/application/identity"
	"github.com/inkasso/backend/internal/domain/collection"
	"github.com/inkasso/backend/internal/domain/identity"
	"github.com/inkasso/backend/internal/infrastructure/auth"
	"github.com/inkasso/backend/internal/infrastructure/config"
	"github.com/inkasso/backend/internal/infrastructure/logger"
	"github.com/inkasso/backend/internal/infrastructure/persistence"
	"github.com/inkasso/backend/internal/infrastructure/rates"
	"github.com/inkasso/backend/internal/interfaces/http/handler"
	"github.com/inkasso/backend/internal/interfaces/http/middleware"
	"github.com/inkasso/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Inkasso Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database connection with zap-backed GORM logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis client for statutory rate caching
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()

	// Domain services: statutory rates, accrual ledger, scheduling, lifecycle
	rateLookup := rates.NewCachedRateLookup(
		rates.NewConsumerRateTable(),
		redisClient,
		cfg.Collection.RateCacheTTL,
		log,
	)
	ledger := collection.NewLedger(rateLookup)
	scheduler := collection.NewScheduler(schedulePolicyFromConfig(cfg.Collection, log), cfg.Collection.LimitationYears)
	stateMachine := collection.NewStateMachine(ledger, scheduler)

	// Repositories
	caseRepo := persistence.NewGormCaseRepository(db.DB)
	inquiryRepo := persistence.NewGormInquiryRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	caseService := collectionapp.NewCaseService(caseRepo, collectionapp.WithStateMachine(stateMachine))
	inquiryService := collectionapp.NewInquiryService(inquiryRepo, caseRepo)

	// HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	caseHandler := handler.NewCaseHandler(caseService)
	inquiryHandler := handler.NewInquiryHandler(inquiryService)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSFromHTTPConfig(cfg.HTTP)))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, redisClient))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Authentication applies to all API routes except login. The actor
	// middleware reloads the user on each request so deactivations and
	// portfolio changes take effect immediately.
	r.Use(
		middleware.JWTAuthMiddleware(jwtService, "/api/v1/auth/login"),
		middleware.ActorMiddleware(userRepo),
	)

	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.GET("/me", authHandler.GetMe)
	r.Register(authRoutes)

	userRoutes := router.NewDomainGroup("identity", "/users")
	userRoutes.POST("", authHandler.CreateUser)
	userRoutes.GET("/:id", authHandler.GetUser)
	userRoutes.POST("/:id/assignments", authHandler.AssignAgent)
	r.Register(userRoutes)

	caseRoutes := router.NewDomainGroup("collection", "/cases")
	caseRoutes.POST("", caseHandler.CreateCase)
	caseRoutes.GET("", caseHandler.ListCases)
	caseRoutes.GET("/:id", caseHandler.GetCase)
	caseRoutes.POST("/:id/transition", caseHandler.TransitionCase)
	caseRoutes.POST("/:id/recompute", caseHandler.RecomputeCase)
	caseRoutes.PUT("/:id/costs", caseHandler.UpdateCaseCosts)
	caseRoutes.POST("/:id/notes", caseHandler.AddCaseNote)
	caseRoutes.POST("/:id/inquiries", inquiryHandler.OpenInquiry)
	caseRoutes.GET("/:id/inquiries", inquiryHandler.ListInquiries)
	r.Register(caseRoutes)

	inquiryRoutes := router.NewDomainGroup("inquiries", "/inquiries")
	inquiryRoutes.POST("/:id/resolve", inquiryHandler.ResolveInquiry)
	r.Register(inquiryRoutes)

	kreditorRoutes := router.NewDomainGroup("kreditoren", "/kreditoren")
	kreditorRoutes.GET("/:id/inquiries/open", inquiryHandler.ListOpenInquiries)
	r.Register(kreditorRoutes)

	r.Setup()

	// Periodic accrual refresh keeps interest and totals of stored cases
	// current without waiting for a read
	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	defer stopRefresh()
	go runAccrualRefresher(refreshCtx, caseService, cfg.Collection.RecomputeInterval, log)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	stopRefresh()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// schedulePolicyFromConfig maps the configured follow-up lookahead days onto
// case statuses. Unknown status keys are logged and skipped; an empty map
// falls back to the built-in policy.
func schedulePolicyFromConfig(cfg config.CollectionConfig, log *zap.Logger) collection.SchedulePolicy {
	if len(cfg.NextActionDays) == 0 {
		return nil
	}
	policy := collection.SchedulePolicy{}
	for key, days := range cfg.NextActionDays {
		status := collection.CaseStatus(key)
		if !status.IsValid() {
			log.Warn("Ignoring next_action_days entry with unknown status", zap.String("status", key))
			continue
		}
		policy[status] = days
	}
	return policy
}

// runAccrualRefresher periodically recomputes interest and totals for all
// cases. Closed cases come back from Recompute unchanged, so the sweep
// needs no status filter.
func runAccrualRefresher(ctx context.Context, caseService *collectionapp.CaseService, interval time.Duration, log *zap.Logger) {
	if interval <= 0 {
		return
	}

	// Internal system identity, scoped like an administrator
	system := collection.Actor{Role: identity.RoleAdmin}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refreshed, failed := 0, 0
			page := 1
			for {
				cases, total, err := caseService.ListCases(ctx, system, collectionapp.CaseListFilter{Page: page, PageSize: 200})
				if err != nil {
					log.Error("Accrual refresh listing failed", zap.Error(err))
					break
				}
				for _, c := range cases {
					if _, err := caseService.RecomputeFinancials(ctx, system, c.ID); err != nil {
						failed++
						log.Warn("Accrual refresh failed for case",
							zap.String("case_id", c.ID.String()),
							zap.Error(err),
						)
						continue
					}
					refreshed++
				}
				if int64(page*200) >= total || len(cases) == 0 {
					break
				}
				page++
			}
			log.Info("Accrual refresh completed",
				zap.Int("refreshed", refreshed),
				zap.Int("failed", failed),
			)
		}
	}
}

// healthHandler reports process and dependency health
func healthHandler(db *persistence.Database, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)

		dbStatus := "ok"
		healthy := true
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			dbStatus = "error"
			healthy = false
		}

		// Redis is an optimization layer, its loss does not make us unhealthy
		redisStatus := "ok"
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		statusText := "healthy"
		if !healthy {
			status = http.StatusServiceUnavailable
			statusText = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":   statusText,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
			"redis":    redisStatus,
		})
	}
}
