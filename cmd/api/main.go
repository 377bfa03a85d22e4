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

	"github.com/frelsi/frelsi-api/internal/application/audit"
	"github.com/frelsi/frelsi-api/internal/application/auth"
	"github.com/frelsi/frelsi-api/internal/application/item"
	"github.com/frelsi/frelsi-api/internal/config"
	"github.com/frelsi/frelsi-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/frelsi/frelsi-api/internal/infrastructure/jwt"
	s3infra "github.com/frelsi/frelsi-api/internal/infrastructure/s3"
	"github.com/frelsi/frelsi-api/internal/infrastructure/smtp"
	snsinfra "github.com/frelsi/frelsi-api/internal/infrastructure/sns"
	transporthttp "github.com/frelsi/frelsi-api/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	// S3 store for drawing images.
	s3Client := s3infra.NewClient(cfg)
	s3Store := s3infra.NewStore(s3Client, cfg.S3BucketName)

	mailer := smtp.NewMailer(cfg)

	// SNS brute-force alerts, disabled when no topic ARN is configured.
	var alerter snsinfra.Alerter
	if a, err := snsinfra.NewAlerter(cfg); err == nil {
		alerter = a
	} else {
		log.Printf("WARN: SNS alerter not available: %v", err)
	}

	sink := audit.NewSink(dynamo.NewAuthLogRepo(dynamoClient, cfg.DynamoTables.AuthLogs))

	authService := auth.NewService(auth.ServiceDeps{
		Codes:      dynamo.NewAuthCodeRepo(dynamoClient, cfg.DynamoTables.AuthCodes),
		Sender:     mailer,
		Signer:     jwtProvider,
		Sink:       sink,
		Alerter:    alerter,
		AdminEmail: cfg.AdminEmail,
		CodeExpiry: cfg.CodeExpiry,
	})
	itemService := item.NewService(dynamo.NewItemRepo(dynamoClient, cfg.DynamoTables.Items), s3Store)

	router := transporthttp.NewRouter(transporthttp.Deps{
		Config:      cfg,
		JWTProvider: jwtProvider,
		AuthService: authService,
		ItemService: itemService,
	})

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
