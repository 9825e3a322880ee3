package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exam-engine/internal/config"
	"github.com/stemsi/exam-engine/internal/handler"
	"github.com/stemsi/exam-engine/internal/middleware"
	"github.com/stemsi/exam-engine/internal/response"
	"github.com/stemsi/exam-engine/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Exam       *handler.ExamHandler
	Submission *handler.SubmissionHandler
	System     *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// authLimiter guards the public auth routes; the caller owns its lifetime.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	authLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// Request ID first so recovery and access logs can reference it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestLogger(log.With().Str("component", "http").Logger()))

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID, "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(middleware.Brotli())

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrRouteNotFound)
	})

	router.GET("/health", handlers.System.Health)

	requireAuth := []gin.HandlerFunc{
		middleware.RequireAuth(authService),
		middleware.CheckTokenRevoked(authService, log),
	}

	// ─── 1. Auth Group ─────────────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		auth.GET("/me", append(requireAuth, handlers.Auth.Me)...)
		auth.POST("/logout", append(requireAuth, handlers.Auth.Logout)...)
	}

	// ─── 2. Exam Group (JWT) ───────────────────────────────────────────
	exams := router.Group("/api/v1/exams")
	exams.Use(requireAuth...)
	exams.Use(middleware.NoStore())
	{
		exams.GET("/:id", handlers.Exam.GetExam)
		exams.POST("/start", handlers.Exam.StartExam)
		exams.POST("/submit", handlers.Exam.SubmitExam)
	}

	// ─── 3. Submission Group (JWT) ─────────────────────────────────────
	submissions := router.Group("/api/v1/submissions")
	submissions.Use(requireAuth...)
	submissions.Use(middleware.NoStore())
	{
		submissions.GET("", handlers.Submission.ListSubmissions)
		submissions.GET("/:id", handlers.Submission.GetSubmission)
	}

	return router
}
