package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"incentix/rewardhub/internal/config"
	"incentix/rewardhub/internal/handler/middleware"
	jwtpkg "incentix/rewardhub/pkg/jwt"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	participantHandler *ParticipantHandler,
	couponHandler *CouponHandler,
	adminHandler *AdminHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public catalog reads
	r.GET("/api/v1/coupons", couponHandler.List)
	r.GET("/api/v1/coupons/:id", couponHandler.Get)

	// Authenticated caller routes (operator or allow-listed service).
	// Authorization per capability happens in the service layer.
	api := r.Group("/api/v1")
	api.Use(middleware.CallerAuth(jwtManager, cfg.Auth.ServiceKeys))
	{
		api.POST("/participants", participantHandler.Register)
		api.GET("/participants/:id", participantHandler.Get)
		api.POST("/participants/:id/earn", participantHandler.Earn)
		api.POST("/participants/:id/activity", participantHandler.RecordActivity)
		api.POST("/participants/:id/referral", participantHandler.Referral)
		api.GET("/participants/:id/badges", participantHandler.Badges)
		api.GET("/participants/:id/redemptions", participantHandler.Redemptions)

		api.POST("/coupons/:id/purchase", couponHandler.Purchase)
		api.POST("/redemptions/:id/redeem", couponHandler.Redeem)
		api.POST("/redemptions/:id/validate", couponHandler.Validate)
	}

	// Operator routes
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.CallerAuth(jwtManager, cfg.Auth.ServiceKeys))
	admin.Use(middleware.OperatorAuth(cfg.Auth.Operators))
	{
		admin.POST("/coupons", adminHandler.CreateCoupon)
		admin.PUT("/coupons/:id/rates", adminHandler.UpdateRates)
		admin.PUT("/coupons/:id/active", adminHandler.SetActive)

		admin.POST("/inventory/:id", adminHandler.ManageInventory)
		admin.GET("/inventory", adminHandler.InventoryReport)

		admin.PUT("/tiers/:ordinal", adminHandler.UpdateTier)

		admin.POST("/pause", adminHandler.Pause)
		admin.POST("/unpause", adminHandler.Unpause)
		admin.PUT("/callers", adminHandler.RebindCallers)
		admin.POST("/tokens", adminHandler.IssueToken)

		admin.POST("/badges/:id/retype", adminHandler.RetypeBadge)
		admin.DELETE("/badges/:id", adminHandler.BurnBadge)

		admin.POST("/participants/:id/deactivate", adminHandler.DeactivateParticipant)
	}

	return r
}
