package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/onlinexam-backend/internal/config"
	"github.com/stemsi/onlinexam-backend/internal/handler"
	"github.com/stemsi/onlinexam-backend/internal/logger"
	"github.com/stemsi/onlinexam-backend/internal/middleware"
	"github.com/stemsi/onlinexam-backend/internal/model"
	"github.com/stemsi/onlinexam-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Course    *handler.CourseHandler
	Subject   *handler.SubjectHandler
	Exam      *handler.ExamHandler
	Question  *handler.QuestionHandler
	Attempt   *handler.AttemptHandler
	Media     *handler.MediaHandler
	Dashboard *handler.DashboardHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// authLimiter may be nil, which leaves the auth routes unthrottled.
func SetupRouter(
	auth middleware.TokenValidator,
	handlers *Handlers,
	authLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), logger.AccessLog(log))

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality: middleware.DefaultBrotliConfig.Quality,
		Skipper: middleware.SkipUploads,
	}))

	// Uploaded images never change under the same name (1 year).
	uploadsGroup := router.Group("/uploads")
	uploadsGroup.Use(middleware.CacheControl(31536000))
	{
		uploadsGroup.Static("/", cfg.UploadDir)
	}

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authAPI := router.Group("/api/v1/auth")
	{
		public := authAPI.Group("")
		if authLimiter != nil {
			public.Use(authLimiter.Middleware())
		}
		public.POST("/login", handlers.Auth.Login)
		public.POST("/register", handlers.Auth.Register)

		me := authAPI.Group("/me", middleware.RequireJWT(auth), middleware.NoStore())
		me.GET("", handlers.Auth.GetProfile)
		me.PUT("", handlers.Auth.UpdateProfile)
		me.PUT("/password", handlers.Auth.ChangePassword)
	}

	// ─── 2. User Group (JWT) ───────────────────────────────────────────
	userAPI := router.Group("/api/v1")
	userAPI.Use(middleware.RequireJWT(auth))
	{
		userAPI.GET("/courses", handlers.Course.GetAll)
		userAPI.GET("/courses/:id", handlers.Course.GetByID)
		userAPI.GET("/subjects", handlers.Subject.GetAll)
		userAPI.GET("/exams", handlers.Exam.ListExams)
		userAPI.GET("/exams/:id", handlers.Exam.GetExamDetail)

		attemptAPI := userAPI.Group("/exams/:id", middleware.NoStore())
		attemptAPI.POST("/attempt", handlers.Attempt.StartAttempt)
		attemptAPI.GET("/attempt", handlers.Attempt.GetAttempt)
		attemptAPI.PUT("/attempt/answers/:index", handlers.Attempt.SelectAnswer)
		attemptAPI.POST("/attempt/submit", handlers.Attempt.SubmitAttempt)
		attemptAPI.POST("/attempt/retake", handlers.Attempt.RetakeAttempt)
		attemptAPI.GET("/history", handlers.Attempt.GetHistory)
	}

	// ─── 3. WebSocket Group (Query Token Auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(auth))
	{
		ws.GET("/exams/:id/stream", handlers.WS.ExamWebSocketStream)
	}

	// ─── 4. Admin Group (JWT + Role) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireJWT(auth), middleware.RequireRole(model.RoleAdmin))
	{
		adminAPI.GET("/dashboard", handlers.Dashboard.GetDashboardData)
		adminAPI.POST("/media/upload", handlers.Media.UploadMedia)

		users := adminAPI.Group("/users")
		{
			users.GET("", handlers.User.List)
			users.GET("/:id", handlers.User.GetByID)
			users.POST("", handlers.User.Create)
			users.PUT("/:id", handlers.User.Update)
			users.DELETE("/:id", handlers.User.Delete)
		}

		courses := adminAPI.Group("/courses")
		{
			courses.GET("", handlers.Course.GetAll)
			courses.GET("/:id", handlers.Course.GetByID)
			courses.POST("", handlers.Course.Create)
			courses.PUT("/:id", handlers.Course.Update)
			courses.DELETE("/:id", handlers.Course.Delete)
		}

		subjects := adminAPI.Group("/subjects")
		{
			subjects.GET("", handlers.Subject.GetAll)
			subjects.GET("/:id", handlers.Subject.GetByID)
			subjects.POST("", handlers.Subject.Create)
			subjects.PUT("/:id", handlers.Subject.Update)
			subjects.DELETE("/:id", handlers.Subject.Delete)
		}

		exams := adminAPI.Group("/exams")
		{
			exams.GET("", handlers.Exam.ListExams)
			exams.GET("/:id", handlers.Exam.GetExam)
			exams.GET("/:id/questions", handlers.Question.ListByExam)
			exams.POST("", handlers.Exam.CreateExam)
			exams.PUT("/:id", handlers.Exam.UpdateExam)
			exams.DELETE("/:id", handlers.Exam.DeleteExam)
		}

		questions := adminAPI.Group("/questions")
		{
			questions.GET("/:id", handlers.Question.GetQuestion)
			questions.POST("", handlers.Question.CreateQuestion)
			questions.PUT("/:id", handlers.Question.UpdateQuestion)
			questions.DELETE("/:id", handlers.Question.DeleteQuestion)
		}
	}

	return router
}
