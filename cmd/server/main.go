package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blogmanity/internal/config"
	apphttp "blogmanity/internal/http"
	"blogmanity/internal/mailer"
	"blogmanity/internal/repository/sqlite"
	"blogmanity/internal/service"
	"blogmanity/internal/storage"
	"blogmanity/internal/token"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	postRepo := sqlite.NewPostRepository(db)
	feedbackRepo := sqlite.NewFeedbackRepository(db)
	pocketRepo := sqlite.NewPocketRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := postRepo.Init(ctx); err != nil {
		logger.Fatalf("init post repository: %v", err)
	}
	if err := feedbackRepo.Init(ctx); err != nil {
		logger.Fatalf("init feedback repository: %v", err)
	}
	if err := pocketRepo.Init(ctx); err != nil {
		logger.Fatalf("init pocket repository: %v", err)
	}

	mail := buildMailer(cfg, logger)

	userService := service.NewUserService(userRepo, pocketRepo, mail)
	postService := service.NewPostService(postRepo, feedbackRepo)
	pocketService := service.NewPocketService(pocketRepo, postRepo)
	feedbackService := service.NewFeedbackService(feedbackRepo, postRepo)

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	tokens := token.NewService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	handler := apphttp.NewHandler(
		userService,
		postService,
		pocketService,
		feedbackService,
		apphttp.Options{
			Tokens:       tokens,
			Storage:      storageSvc,
			Bucket:       cfg.Storage.Bucket,
			KeyPrefix:    cfg.Storage.KeyPrefix,
			CookieTTL:    time.Duration(cfg.Auth.CookieExpiresDays) * 24 * time.Hour,
			SecureCookie: cfg.Production(),
			DevMode:      !cfg.Production(),
			Logger:       logger,
		},
	)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

// buildMailer prefers the configured SMTP relay; without one, mail is logged
// so password resets stay usable in development.
func buildMailer(cfg config.Config, logger *logrus.Logger) mailer.Mailer {
	if cfg.SMTP.Host != "" {
		logger.Infof("sending mail through %s:%d", cfg.SMTP.Host, cfg.SMTP.Port)
		return mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	}
	logger.Warn("smtp host not configured, mail will be logged instead of sent")
	return &mailer.LogMailer{Logger: logger}
}

// buildStorage is optional: without a bucket the server runs, photo uploads
// are rejected and stored keys pass through unresolved.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Bucket == "" {
		logger.Warn("storage bucket not configured, photo uploads disabled")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client), nil
}
