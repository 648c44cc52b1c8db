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

	"contacthub/internal/api"
	"contacthub/internal/app/service"
	"contacthub/internal/app/worker"
	"contacthub/internal/common/security"
	"contacthub/internal/domain/repository"
	"contacthub/internal/platform/cache"
	"contacthub/internal/platform/config"
	"contacthub/internal/platform/database"
	"contacthub/internal/platform/mail"
	"contacthub/internal/platform/metrics"
	"contacthub/internal/platform/storage"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize Database
	database.Connect()
	defer database.Close()
	database.Migrate()
	fmt.Println("Database connected.")

	// 3. Initialize Redis
	cache.Connect()
	defer cache.Close()
	fmt.Println("Redis connected.")

	// 4. Initialize Avatar Storage
	avatarStore, err := storage.NewMinioStore(
		context.Background(),
		config.AppConfig.MinioEndpoint,
		config.AppConfig.MinioAccessKey,
		config.AppConfig.MinioSecretKey,
		config.AppConfig.MinioBucket,
		config.AppConfig.MinioUseSSL,
	)
	if err != nil {
		log.Fatalf("Could not connect to object storage: %v", err)
	}
	fmt.Println("Object storage connected.")

	// 5. Initialize Metrics
	metrics.Init()

	// 6. Initialize Token Codec
	codec, err := security.NewTokenCodec(
		config.AppConfig.JWTSecret,
		config.AppConfig.JWTAlgorithm,
		config.AppConfig.JWTExp,
	)
	if err != nil {
		log.Fatalf("Could not initialize token codec: %v", err)
	}

	// 7. Initialize Mail Worker (as a goroutine)
	smtpMailer := mail.NewSMTPMailer(
		config.AppConfig.MailHost,
		config.AppConfig.MailPort,
		config.AppConfig.MailUsername,
		config.AppConfig.MailPassword,
		config.AppConfig.MailFrom,
		config.AppConfig.MailFromName,
	)
	mailWorker := worker.NewMailWorker(smtpMailer, 64)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go mailWorker.Start(workerCtx)
	fmt.Println("Mail worker started.")

	// 8. Initialize Repositories & Services
	userRepo := repository.NewPgUserRepository(database.DB)
	contactRepo := repository.NewPgContactRepository(database.DB)

	identityCache := service.NewIdentityCache(cache.NewRedisStore(cache.RDB), config.AppConfig.CacheTTL)
	authService := service.NewAuthService(userRepo, identityCache, codec, mailWorker, config.AppConfig.BaseURL)
	userService := service.NewUserService(userRepo, identityCache, avatarStore)
	contactService := service.NewContactService(contactRepo)

	// 9. Initialize Router & HTTP Server
	router := api.NewRouter(database.DB, authService, userService, contactService)

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
	workerCancel() // Signal mail worker to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and worker stopped gracefully.")
}
