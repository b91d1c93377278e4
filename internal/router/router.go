package router

import (
	"time"

	"crystalerp/internal/config"
	"crystalerp/internal/handler"
	"crystalerp/internal/middleware"
	"crystalerp/internal/repository"
	"crystalerp/internal/service"
	"crystalerp/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	operatorRepo := repository.NewOperatorRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	skuRepo := repository.NewSkuRepository(db)
	logRepo := repository.NewInventoryLogRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	dispatcher := worker.NewDispatcher(rdb)

	authSvc := service.NewAuthService(operatorRepo, cfg)
	ledger := service.NewMaterialLedger(materialRepo)
	allocator := service.NewAllocator(materialRepo, usageRepo, purchaseRepo)
	purchaseSvc := service.NewPurchaseService(purchaseRepo, materialRepo, usageRepo, ledger)
	materialSvc := service.NewMaterialService(materialRepo, usageRepo)
	skuSvc := service.NewSkuService(skuRepo, logRepo, usageRepo, materialRepo, allocator, dispatcher)
	reconcileSvc := service.NewReconcileService(purchaseRepo, materialRepo, usageRepo, skuRepo, logRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	operatorsH := handler.NewOperatorsHandler(authSvc)
	purchasesH := handler.NewPurchasesHandler(purchaseSvc)
	materialsH := handler.NewMaterialsHandler(materialSvc)
	skusH := handler.NewSkusHandler(skuSvc)
	reconcileH := handler.NewReconcileHandler(reconcileSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		// Roles: operator, manager, admin — declared per-endpoint
		read := middleware.RequireRole("operator", "manager", "admin")
		write := middleware.RequireRole("manager", "admin")

		v1.GET("/purchases", read, purchasesH.List)
		v1.GET("/purchases/:id", read, purchasesH.Get)
		v1.POST("/purchases", write, purchasesH.Create)
		v1.PUT("/purchases/:id", write, purchasesH.Update)
		v1.DELETE("/purchases/:id", middleware.RequireRole("admin"), purchasesH.Delete)

		v1.GET("/materials", read, materialsH.List)
		v1.GET("/materials/low-stock", read, materialsH.ListLowStock)
		v1.GET("/materials/:id", read, materialsH.Get)
		v1.GET("/materials/:id/usages", read, materialsH.ListUsages)

		v1.GET("/skus", read, skusH.List)
		v1.GET("/skus/:id", read, skusH.Get)
		v1.GET("/skus/:id/logs", read, skusH.ListLogs)
		v1.GET("/skus/:id/usages", read, skusH.ListUsages)
		v1.POST("/skus", write, skusH.Compose)
		v1.POST("/skus/:id/adjust", write, skusH.Adjust)
		v1.POST("/skus/:id/destroy", write, skusH.Destroy)
		v1.POST("/skus/:id/sell", read, skusH.Sell)

		v1.POST("/reconcile", middleware.RequireRole("admin"), reconcileH.Run)

		operators := v1.Group("/operators", middleware.RequireRole("admin"))
		{
			operators.POST("", operatorsH.Create)
			operators.GET("", operatorsH.List)
			operators.DELETE("/:id", operatorsH.Deactivate)
		}
	}

	return r
}
