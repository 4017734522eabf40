package router

import (
	"context"
	"time"

	"github.com/Jassur2025/metallerp-sub000/internal/config"
	"github.com/Jassur2025/metallerp-sub000/internal/handler"
	"github.com/Jassur2025/metallerp-sub000/internal/infra"
	"github.com/Jassur2025/metallerp-sub000/internal/ledger"
	"github.com/Jassur2025/metallerp-sub000/internal/middleware"
	"github.com/Jassur2025/metallerp-sub000/internal/model"
	"github.com/Jassur2025/metallerp-sub000/internal/realtime"
	"github.com/Jassur2025/metallerp-sub000/internal/repository"
	"github.com/Jassur2025/metallerp-sub000/internal/service"
	"github.com/Jassur2025/metallerp-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps is everything the composition root has already connected.
// Dispatcher and SheetsCB are nil when spreadsheet sync is disabled; Archive
// is nil when exports are not kept.
type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	Redis      *redis.Client
	Locker     *redislock.Client
	Engine     *ledger.Engine
	Hub        *realtime.Hub
	Dispatcher *worker.Dispatcher
	SheetsCB   *infra.CircuitBreaker
	Archive    infra.Archive
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// ctx bounds the rate limiter purge goroutines.
func New(ctx context.Context, d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	apiLimiter := middleware.APILimiter(1000, time.Minute)
	loginLimiter := middleware.LoginLimiter()
	go apiLimiter.Purge(ctx, 5*time.Minute)
	go loginLimiter.Purge(ctx, 5*time.Minute)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.Origins()...))
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Middleware())

	cache := infra.NewCache(d.Redis, cfg.CacheTTL())

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(d.DB)
	productRepo := repository.NewProductRepository(d.DB)
	purchaseRepo := repository.NewPurchaseRepository(d.DB)
	txRepo := repository.NewTransactionRepository(d.DB)
	movementRepo := repository.NewStockMovementRepository(d.DB)
	settingsRepo := repository.NewSettingsRepository(d.DB)
	orderRepo := repository.NewWorkflowOrderRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	settingsSvc := service.NewSettingsService(settingsRepo, cache, cfg, d.Engine, d.Hub)
	treasurySvc := service.NewTreasuryService(txRepo, cache, cfg, d.Locker, d.Dispatcher, d.Hub)
	productSvc := service.NewProductService(productRepo, movementRepo, d.Dispatcher, d.Hub)
	workflowSvc := service.NewWorkflowService(orderRepo, productRepo, d.Hub)
	procurementSvc := service.NewProcurementService(service.ProcurementDeps{
		Products:   productRepo,
		Purchases:  purchaseRepo,
		Txs:        txRepo,
		Movements:  movementRepo,
		Orders:     orderRepo,
		Settings:   settingsSvc,
		Treasury:   treasurySvc,
		Engine:     d.Engine,
		Config:     cfg,
		Locker:     d.Locker,
		Dispatcher: d.Dispatcher,
		Hub:        d.Hub,
		Archive:    d.Archive,
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	productsH := handler.NewProductsHandler(productSvc)
	procurementH := handler.NewProcurementHandler(procurementSvc)
	treasuryH := handler.NewTreasuryHandler(treasurySvc)
	settingsH := handler.NewSettingsHandler(settingsSvc)
	workflowH := handler.NewWorkflowHandler(workflowSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(d.DB, d.Redis, d.SheetsCB))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", loginLimiter.Middleware(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	const (
		admin      = model.RoleAdmin
		accountant = model.RoleAccountant
		storekeep  = model.RoleStorekeeper
	)
	anyRole := middleware.RequireRole(admin, accountant, storekeep)
	finance := middleware.RequireRole(admin, accountant)
	adminOnly := middleware.RequireRole(admin)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		v1.GET("/ws", anyRole, d.Hub.ServeWS)

		// Products: everyone reads, admin and storekeeper maintain the catalog
		v1.GET("/products", anyRole, productsH.List)
		v1.GET("/products/alerts", anyRole, productsH.Alerts)
		v1.GET("/products/movements", middleware.RequireRole(admin, storekeep), productsH.Movements)
		v1.GET("/products/:id", anyRole, productsH.Get)
		v1.POST("/products", middleware.RequireRole(admin, storekeep), productsH.Create)
		v1.PUT("/products/:id", middleware.RequireRole(admin, storekeep), productsH.Update)

		proc := v1.Group("/procurement")
		{
			proc.POST("/preview", anyRole, procurementH.Preview)
			proc.GET("/debts", finance, procurementH.SupplierDebts)

			purchases := proc.Group("/purchases", finance)
			{
				purchases.POST("", procurementH.CreatePurchase)
				purchases.GET("", procurementH.ListPurchases)
				purchases.GET("/export.xlsx", procurementH.Export)
				purchases.GET("/:id", procurementH.GetPurchase)
				purchases.GET("/:id/voucher.pdf", procurementH.Voucher)
				purchases.POST("/:id/repayments", procurementH.Repay)
				purchases.PUT("/:id/items/:index", adminOnly, procurementH.EditLine)
				purchases.DELETE("/:id/items/:index", adminOnly, procurementH.DeleteLine)
				purchases.POST("/:id/migrate", adminOnly, procurementH.MigrateLegacy)
			}
		}

		treasury := v1.Group("/treasury", finance)
		{
			treasury.GET("/balances", treasuryH.Balances)
			treasury.POST("/movements", treasuryH.RecordMovement)
			treasury.GET("/transactions", treasuryH.ListTransactions)
		}

		v1.GET("/settings", anyRole, settingsH.Get)
		v1.PUT("/settings", adminOnly, settingsH.Update)

		orders := v1.Group("/workflow-orders", anyRole)
		{
			orders.POST("", workflowH.Create)
			orders.GET("", workflowH.List)
			orders.GET("/:id", workflowH.Get)
			orders.GET("/:id/draft", procurementH.DraftFromOrder)
			orders.PATCH("/:id/status", workflowH.UpdateStatus)
		}

		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
		}
	}

	// Swagger UI outside production only
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
