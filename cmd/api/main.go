package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-signup-gate/internal/application/identity"
	"github.com/go-signup-gate/internal/application/signup"
	"github.com/go-signup-gate/internal/application/verification"
	"github.com/go-signup-gate/internal/config"
	"github.com/go-signup-gate/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-signup-gate/internal/infrastructure/jwt"
	"github.com/go-signup-gate/internal/infrastructure/reoon"
	"github.com/go-signup-gate/internal/infrastructure/smtp"
	"github.com/go-signup-gate/internal/pkg/logging"
	transporthttp "github.com/go-signup-gate/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	slog.SetDefault(logging.Setup(cfg.LogFormat, cfg.LogLevel, nil))
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient, err := dynamo.NewClient(context.Background(), cfg)
	if err != nil {
		slog.Error("dynamodb client not available", "err", err)
		os.Exit(1)
	}
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		slog.Error("jwt provider not available", "err", err)
		os.Exit(1)
	}

	mailer, err := smtp.NewMailer(cfg)
	if err != nil {
		slog.Error("mailer not available", "err", err)
		os.Exit(1)
	}

	if cfg.ReoonAPIKey == "" {
		slog.Warn("REOON_API_KEY is not set, every signup will fail verification")
	}

	verificationSvc := verification.NewService(verification.ServiceDeps{
		Store:   dynamo.NewEmailVerificationRepo(dynamoClient, cfg.DynamoTables.EmailVerifications),
		Checker: reoon.NewClient(cfg),
	})
	identitySvc := identity.NewService(identity.ServiceDeps{
		UserRepo:    dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users),
		SessionRepo: dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions),
		OTPRepo:     dynamo.NewOTPRepo(dynamoClient, cfg.DynamoTables.OTPs),
		Mailer:      mailer,
		JWTProvider: jwtProvider,
		OTPExpiry:   cfg.OTPExpiry,
		SessionTTL:  jwtProvider.Expiry(),
	})
	signupSvc := signup.NewService(signup.ServiceDeps{
		Verifier:    verificationSvc,
		Identity:    identitySvc,
		Mailer:      mailer,
		Attempts:    jwtProvider,
		SiteURL:     cfg.SiteURL,
		CallTimeout: cfg.ExternalCallTimeout,
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	router := transporthttp.NewRouter(ctx, cfg, &transporthttp.Deps{
		Signup:   signupSvc,
		Identity: identitySvc,
		Store:    dynamo.NewTablePinger(dynamoClient, cfg.DynamoTables.Users),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
	}
	stop()
	// Background welcome and reset-confirmation emails finish before exit.
	signupSvc.Wait()
	slog.Info("server stopped")
}
