package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codecampus/internal/api"
	"codecampus/internal/app/judge"
	"codecampus/internal/app/service"
	"codecampus/internal/common/security"
	"codecampus/internal/domain/repository"
	"codecampus/internal/platform/cache"
	"codecampus/internal/platform/config"
	"codecampus/internal/platform/database"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	cache.ConnectRedis()
	defer cache.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	dailyRepo := repository.NewPgDailyQuestionRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	progressRepo := repository.NewPgProgressRepository(database.DB)

	// 6. Initialize Judge core
	sandboxClient := judge.NewSandboxClient(
		config.AppConfig.SandboxURL,
		config.AppConfig.SandboxAuthToken,
		time.Duration(config.AppConfig.SandboxTimeoutSeconds)*time.Second,
	)
	runner := judge.NewRunner(sandboxClient)
	locker := cache.NewLocker(cache.RDB)

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo)
	problemService := service.NewProblemService(problemRepo)
	judgeService := service.NewJudgeService(
		problemRepo, dailyRepo, submissionRepo, progressRepo, runner, locker,
		time.Duration(config.AppConfig.ProgressLockTTLSeconds)*time.Second,
	)
	dailyService := service.NewDailyService(
		dailyRepo, problemRepo, locker,
		config.AppConfig.DailyLockKey,
		time.Duration(config.AppConfig.DailyLockTTLSeconds)*time.Second,
		config.AppConfig.DailyRotationHourUTC,
	)

	// 8. Start Daily Question Scheduler (as a goroutine)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	go dailyService.Start(schedulerCtx)
	fmt.Println("Daily question scheduler started.")

	// 9. Initialize Router & HTTP Server
	router := api.NewRouter(authService, problemService, judgeService, dailyService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 10. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	schedulerCancel() // Signal scheduler to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and scheduler stopped gracefully.")
}
