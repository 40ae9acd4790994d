package api

import (
	"net/http"
	"time"

	"codecampus/internal/api/handler"
	"codecampus/internal/app/service"
	"codecampus/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	problemService *service.ProblemService,
	judgeService *service.JudgeService,
	dailyService *service.DailyService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// JWT Auth Middleware Setup
	// It will search for a token in "Authorization: Bearer T".
	r.Use(jwtauth.Verifier(security.TokenAuth)) // Verifies token, puts claims in context

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public)
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", authHandler.RegisterRoutes)

		// Problem routes (some public, some admin)
		problemHandler := handler.NewProblemHandler(problemService)
		v1.Route("/problems", problemHandler.RegisterRoutes)

		// Judge routes (authenticated)
		judgeHandler := handler.NewJudgeHandler(judgeService)
		v1.Route("/judge", judgeHandler.RegisterRoutes)

		// Daily challenge routes (authenticated)
		dailyHandler := handler.NewDailyHandler(dailyService, judgeService)
		v1.Route("/daily", dailyHandler.RegisterRoutes)

		// Manual rotation trigger (admin)
		adminDailyHandler := handler.NewAdminDailyHandler(dailyService)
		v1.Route("/admin/daily", adminDailyHandler.RegisterRoutes)

		// Progress & leaderboard
		progressHandler := handler.NewProgressHandler(judgeService)
		v1.Route("/progress", progressHandler.RegisterRoutes)
	})

	return r
}
