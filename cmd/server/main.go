package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blog-api/internal/auth"
	"blog-api/internal/config"
	apphttp "blog-api/internal/http"
	"blog-api/internal/repository"
	"blog-api/internal/repository/memory"
	"blog-api/internal/repository/postgres"
	"blog-api/internal/repository/sqlite"
	"blog-api/internal/service"
	"blog-api/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	userRepo, postRepo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer closeStore()

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := postRepo.Init(ctx); err != nil {
		logger.Fatalf("init post repository: %v", err)
	}

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  cfg.Auth.AccessTokenSecret,
		AccessTTL:     cfg.Auth.AccessTokenExpiry,
		RefreshSecret: cfg.Auth.RefreshTokenSecret,
		RefreshTTL:    cfg.Auth.RefreshTokenExpiry,
	})
	if err != nil {
		logger.Fatalf("setup tokens: %v", err)
	}

	media, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}
	cleaner := storage.NewCleaner(media, storage.NewLogObserver(logger))

	userService := service.NewUserService(userRepo, tokens, media, cleaner)
	postService := service.NewPostService(postRepo, userRepo, media, cleaner)

	uploadDir := cfg.Upload.TempDir
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		logger.Fatalf("create upload dir: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := apphttp.NewRouter(apphttp.RouterOptions{
		CORSOrigin:    cfg.Server.CORSOrigin,
		BodyLimit:     cfg.Server.BodyLimit,
		CookieSecure:  cfg.Auth.CookieSecure,
		PublicDir:     cfg.Server.PublicDir,
		UploadDir:     filepath.Clean(uploadDir),
		MaxUploadSize: cfg.Upload.MaxSize,
	}, userService, postService, logger)

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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	cleaner.Wait()

	logger.Info("bye")
}

func openStore(ctx context.Context, cfg config.Config, logger *logrus.Logger) (repository.UserRepository, repository.PostRepository, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := postgres.Open(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Infof("using postgres database %s", cfg.Database.Name)
		return postgres.NewUserRepository(pool), postgres.NewPostRepository(pool), pool.Close, nil
	case config.DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return memory.NewUserRepository(), memory.NewPostRepository(), func() {}, nil
	default:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Infof("using sqlite database %s", cfg.Database.Path)
		return sqlite.NewUserRepository(db), sqlite.NewPostRepository(db), func() { _ = db.Close() }, nil
	}
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Media.Bucket == "" {
		return nil, fmt.Errorf("media bucket is required")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Media.Region),
	}
	if cfg.Media.AccessKey != "" && cfg.Media.SecretKey != "" {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Media.AccessKey, cfg.Media.SecretKey, ""),
		))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Media.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Media.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Media.Bucket, cfg.Media.Region)
	return storage.NewS3Service(client, storage.S3Config{
		Bucket:        cfg.Media.Bucket,
		KeyPrefix:     cfg.Media.KeyPrefix,
		Endpoint:      cfg.Media.Endpoint,
		Region:        cfg.Media.Region,
		PublicBaseURL: cfg.Media.PublicBaseURL,
	}), nil
}
