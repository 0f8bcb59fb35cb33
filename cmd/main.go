/*
Package main is the entry point for the Mikuchat server.

It loads configuration, initializes logging and the Postgres pool, wires the
chat hub and gateway together with the HTTP edge, and handles operating
system interrupt signals for a graceful shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mikuchat/internal/app/chat"
	"mikuchat/internal/app/db"
	"mikuchat/internal/app/sanitize"
	"mikuchat/internal/app/storage"
	"mikuchat/internal/configs"
	"mikuchat/internal/handler"
	"mikuchat/internal/pkg/auth/googleauth"
	"mikuchat/internal/pkg/captcha"
	"mikuchat/internal/pkg/logx"
)

func main() {
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("google_login", cfg.GoogleConfigured()).
		Bool("captcha", cfg.CaptchaConfigured()).
		Bool("avatar_storage", cfg.StorageConfigured()).
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(cfg.DatabaseDSN)
	if err != nil {
		logx.Fatal(err, "Failed to connect to the database")
	}
	defer pool.Close()

	users := db.NewUserRepository(pool)
	messages := db.NewMessageRepository(pool)
	sanitizer := sanitize.NewHTML()

	deps := &handler.AppDeps{
		Config:    cfg,
		Users:     users,
		Sanitizer: sanitizer,
	}

	if cfg.StorageConfigured() {
		store, err := storage.NewService(storage.ServiceConfig{
			S3BucketName:      cfg.S3BucketName,
			S3Endpoint:        cfg.S3Endpoint,
			S3AccessKeyID:     cfg.S3AccessKeyID,
			S3SecretAccessKey: cfg.S3SecretAccessKey,
			S3PublicBaseURL:   cfg.S3PublicBaseURL,
		})
		if err != nil {
			logx.Fatal(err, "Failed to initialize avatar storage")
		}
		deps.Storage = store
	} else {
		logx.Warn("Avatar storage not configured; uploads are disabled")
	}

	if cfg.GoogleConfigured() {
		deps.Google = googleauth.New(googleauth.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			CallbackURL:  cfg.GoogleCallbackURL,
		})
	} else {
		logx.Warn("Google login not configured; delegated sign-in is disabled")
	}

	if cfg.CaptchaConfigured() {
		deps.Captcha = captcha.NewVerifier(cfg.TurnstileSecretKey)
	} else {
		logx.Warn("Captcha not configured; human verification is disabled")
	}

	hub := chat.NewHub()
	deps.Hub = hub
	deps.Gateway = chat.NewGateway(messages, sanitizer)

	router := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Mikuchat server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	hub.Shutdown()

	logx.Info("Server gracefully stopped.")
}
