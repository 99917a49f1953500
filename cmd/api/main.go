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

	"github.com/joho/godotenv"

	"github.com/quiz-kiosk-api/internal/config"
	"github.com/quiz-kiosk-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/quiz-kiosk-api/internal/infrastructure/jwt"
	s3infra "github.com/quiz-kiosk-api/internal/infrastructure/s3"
	"github.com/quiz-kiosk-api/internal/infrastructure/smtp"
	transporthttp "github.com/quiz-kiosk-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	// JWT provider (optional — graceful fallback if keys are missing).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg); err == nil {
		jwtProvider = p
	} else {
		log.Printf("WARN: JWT provider not available, admin routes disabled: %v", err)
	}

	// S3 export archive (optional).
	var s3Store *s3infra.Store
	if cfg.S3ExportBucket != "" {
		s3Store = s3infra.NewStore(s3infra.NewClient(cfg), cfg.S3ExportBucket)
	} else {
		log.Println("No export bucket configured, CSV exports will not be archived")
	}

	deps := &transporthttp.Deps{
		ChallengeRepo: dynamo.NewChallengeRepo(dynamoClient, cfg.DynamoTables.OTPChallenges),
		SessionRepo:   dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.GameSessions),
		S3Store:       s3Store,
		Mailer:        smtp.NewMailer(cfg),
		JWTProvider:   jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
