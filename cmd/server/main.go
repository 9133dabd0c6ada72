package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"employee_manager/internal/api"
	"employee_manager/internal/app/service"
	"employee_manager/internal/app/worker"
	"employee_manager/internal/common/security"
	"employee_manager/internal/domain/repository"
	"employee_manager/internal/platform/cache"
	"employee_manager/internal/platform/config"
	"employee_manager/internal/platform/database"
	"employee_manager/internal/platform/storage"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	log.Println("Configuration loaded.")

	// 2. Initialize JWT
	jwt := security.NewJWTManager(cfg)

	// 3. Initialize Database
	db := database.Connect(cfg)
	defer database.Close(db)
	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	// 4. Initialize Redis
	rdb := cache.Connect(cfg)
	defer cache.Close(rdb)
	employeeCache := cache.NewEmployeeCache(rdb, cfg.EmployeeCacheTTL)

	// 5. Initialize Upload Store
	uploads, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize upload store: %v", err)
	}

	// 6. Initialize Repositories & Services
	userRepo := repository.NewPgUserRepository(db)
	employeeRepo := repository.NewPgEmployeeRepository(db)

	authService := service.NewAuthService(userRepo, jwt)
	employeeService := service.NewEmployeeService(employeeRepo, uploads, employeeCache)

	// 7. Initialize Upload Sweeper (as a goroutine)
	sweeper := worker.NewUploadSweeper(employeeRepo, uploads, cfg.SweepInterval, cfg.SweepGracePeriod)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go sweeper.Start(workerCtx)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(cfg, jwt, authService, employeeService)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	workerCancel() // Signal sweeper to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and sweeper stopped gracefully.")
}
