package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rackleblock/racklerush/internal/config"
	"rackleblock/racklerush/internal/handler/middleware"
	jwtpkg "rackleblock/racklerush/pkg/jwt"
	"rackleblock/racklerush/pkg/response"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	authHandler *AuthHandler,
	businessHandler *BusinessHandler,
	contestHandler *ContestHandler,
	participantHandler *ParticipantHandler,
	waitlistHandler *WaitlistHandler,
	billingHandler *BillingHandler,
	trackingHandler *TrackingHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))

	// Wrong-method requests must 405, not 404. The tracking endpoint's body
	// shape is contractual; everything else gets the standard envelope.
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/functions/track-referral") {
			trackingHandler.MethodNotAllowed(c)
			return
		}
		response.Error(c, http.StatusMethodNotAllowed, 405, "method not allowed")
	})

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public tracking endpoint. Its CORS policy is fixed (any origin, POST +
	// preflight, x-api-key header) independent of the dashboard CORS config.
	track := r.Group("/functions/track-referral", middleware.TrackingCORS())
	{
		track.POST("", trackingHandler.Track)
		track.OPTIONS("", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		track.Match(
			[]string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodDelete},
			"", trackingHandler.MethodNotAllowed,
		)
	}

	// Dashboard and marketing API
	api := r.Group("/api/v1", middleware.CORS(cfg.CORS))

	// Public routes
	api.POST("/waitlist/join", waitlistHandler.Join)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
	}

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.JWTAuth(jwtManager))
	{
		protected.POST("/auth/logout", authHandler.Logout)

		protected.POST("/businesses", businessHandler.Create)
		protected.GET("/businesses", businessHandler.List)
		protected.GET("/businesses/:business_id", businessHandler.Get)
		protected.GET("/businesses/:business_id/usage", businessHandler.Usage)
		protected.POST("/businesses/:business_id/rotate-key", businessHandler.RotateAPIKey)

		protected.POST("/businesses/:business_id/contests", contestHandler.Create)
		protected.GET("/businesses/:business_id/contests", contestHandler.ListByBusiness)
		protected.GET("/contests/:contest_id", contestHandler.Get)
		protected.PUT("/contests/:contest_id", contestHandler.Update)
		protected.GET("/contests/:contest_id/leaderboard", contestHandler.Leaderboard)

		protected.POST("/contests/:contest_id/participants", participantHandler.Add)
		protected.GET("/contests/:contest_id/participants", participantHandler.List)
		protected.GET("/contests/:contest_id/analytics", participantHandler.Analytics)
		protected.PUT("/participants/:participant_id/referral-count", participantHandler.SetReferralCount)

		protected.POST("/businesses/:business_id/payments/verify", billingHandler.VerifyPayment)
		protected.GET("/businesses/:business_id/payments", billingHandler.ListPayments)
	}

	return r
}
