package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	appcontext "github.com/Salo-Quispe/backend-poli-path/internal/api/http/context"
	"github.com/Salo-Quispe/backend-poli-path/internal/api/http/router"
	"github.com/Salo-Quispe/backend-poli-path/internal/config"
	"github.com/Salo-Quispe/backend-poli-path/internal/hasher"
	"github.com/Salo-Quispe/backend-poli-path/internal/logger"
	"github.com/Salo-Quispe/backend-poli-path/internal/mail"
	"github.com/Salo-Quispe/backend-poli-path/internal/repository/postgres"
	"github.com/Salo-Quispe/backend-poli-path/internal/server"
	"github.com/Salo-Quispe/backend-poli-path/internal/service"
	storage "github.com/Salo-Quispe/backend-poli-path/internal/storage/minio"
	"github.com/Salo-Quispe/backend-poli-path/internal/token"
	"github.com/Salo-Quispe/backend-poli-path/internal/validate"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)
	logger.Info("starting server",
		"build_version", buildVersion,
		"build_date", buildDate,
		"build_commit", buildCommit)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)
	passwordHasher := hasher.NewBcrypt(cfg.Bcrypt.Cost)
	validator := validate.New(cfg.Email.OrgDomain)

	mailDispatcher, err := mail.NewSMTP(cfg.SMTP, cfg.HTTP.PublicBaseURL)
	if err != nil {
		logger.Fatal("failed to create mail dispatcher", "error", err)
	}

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	authService := service.NewAuth(userRepo, passwordHasher, tokenManager, mailDispatcher, validator, logger)
	userService := service.NewUser(userRepo, logger)
	imageService := service.NewProfileImage(userRepo, storageClient, cfg.HTTP.PublicBaseURL, logger)
	ctxMgr := appcontext.NewManager()

	go userService.RunSweep(ctx, cfg.Sweep.Interval, cfg.Sweep.Retention)

	mux := router.New(authService, userService, imageService, tokenManager, userRepo, ctxMgr, logger).Register()

	var securityLayer server.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		securityLayer = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		securityLayer = server.NewPlainListener()
	}

	listener, err := securityLayer.Listen(cfg.HTTP.Address)
	if err != nil {
		logger.Fatal("failed to listen", "address", cfg.HTTP.Address, "error", err)
	}

	srv := &http.Server{Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down server", "error", err)
		}
	}()

	logger.Info("server listening", "address", cfg.HTTP.Address)
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", "error", err)
	}

	logger.Info("server stopped")
}
