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

	"school_admin/internal/api"
	"school_admin/internal/api/middleware"
	"school_admin/internal/app/service"
	"school_admin/internal/common/security"
	"school_admin/internal/domain/repository"
	"school_admin/internal/platform/cache"
	"school_admin/internal/platform/config"
	"school_admin/internal/platform/database"
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

	if err := database.RunMigrations(database.DB); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}
	fmt.Println("Migrations applied.")

	// 4. Initialize Redis
	cache.ConnectRedis()
	defer cache.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	classRepo := repository.NewPgClassRepository(database.DB)
	subjectRepo := repository.NewPgSubjectRepository(database.DB)
	scRepo := repository.NewPgSubjectClassRepository(database.DB)
	termRepo := repository.NewPgTermRepository(database.DB)
	examRepo := repository.NewPgExamRepository(database.DB)
	responseRepo := repository.NewPgResponseRepository(database.DB)
	resultRepo := repository.NewPgResultRepository(database.DB)

	// 6. Seed baseline data
	if err := database.Seed(context.Background(), classRepo, termRepo, userRepo); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	// 7. Initialize Services
	termLock := cache.NewTermLock(cache.RDB)
	sessionEpochs := cache.NewSessionEpochStore(cache.RDB)
	middleware.SessionEpochs = sessionEpochs

	authService := service.NewAuthService(userRepo)
	termService := service.NewTermService(termRepo, termLock, sessionEpochs)
	subjectService := service.NewSubjectService(classRepo, subjectRepo, scRepo)
	teacherService := service.NewTeacherService(userRepo, scRepo, database.DB)
	studentService := service.NewStudentService(userRepo, scRepo)
	examService := service.NewExamService(examRepo, scRepo, termRepo, userRepo)
	responseService := service.NewResponseService(responseRepo, resultRepo, examRepo, userRepo)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(
		authService,
		termService,
		subjectService,
		teacherService,
		studentService,
		examService,
		responseService,
	)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
