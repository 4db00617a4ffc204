package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/edustore/edustore-backend/handlers"
	"github.com/edustore/edustore-backend/internal/config"
	contenthandler "github.com/edustore/edustore-backend/internal/content/handler"
	contentrepo "github.com/edustore/edustore-backend/internal/content/repository"
	contentservice "github.com/edustore/edustore-backend/internal/content/service"
	"github.com/edustore/edustore-backend/internal/sessions"
	"github.com/edustore/edustore-backend/internal/storage"
	"github.com/edustore/edustore-backend/internal/tokens"
	"github.com/edustore/edustore-backend/internal/users"
	"github.com/edustore/edustore-backend/pkg/logger"
	"github.com/edustore/edustore-backend/pkg/metrics"
	"github.com/edustore/edustore-backend/pkg/middleware"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware: set common headers and respond to OPTIONS.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	// Redis is optional; it backs the token blacklist and, when asked for,
	// the distributed rate limiter.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v — revocation disabled", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}
	blacklist := sessions.NewBlacklist(redisClient)

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// credential store
	userRepo, err := users.NewFileRepository(cfg.Storage.UsersFile)
	if err != nil {
		logger.Fatalf("failed to open users file: %v", err)
	}
	userSvc := users.NewService(userRepo)
	if err := userSvc.EnsureAdmin(cfg.Admin.Username, cfg.Admin.Password); err != nil {
		logger.Fatalf("failed to seed admin account: %v", err)
	}

	// content catalog
	catalogRepo, err := contentrepo.NewFileRepository(cfg.Storage.DataFile)
	if err != nil {
		logger.Fatalf("failed to open catalog file: %v", err)
	}
	files := storage.NewLocalStorage(cfg.Storage.UploadDir, cfg.Storage.MaxUploadSize)
	if mcfg := storage.LoadMinIOConfig(); mcfg.Endpoint != "" {
		mirror, err := storage.NewMinIOStorage(mcfg)
		if err != nil {
			logger.Warnf("minio mirror disabled: %v", err)
		} else {
			files = files.WithMirror(mirror)
			logger.Infof("mirroring uploads to minio bucket %q", mcfg.Bucket)
		}
	}
	catalogSvc := contentservice.NewService(catalogRepo, files)

	tokenMgr := tokens.NewManager(cfg.JWT.Secret, cfg.JWT.TokenTTL)
	requireAuth := middleware.RequireAuth(tokenMgr, blacklist)
	requireAdmin := middleware.RequireAdmin()

	// routes
	handlers.NewHealthHandler(cfg.Server.Environment).Register(r)
	handlers.NewAuthHandler(userSvc, tokenMgr, blacklist).Register(r.Group("/api"), requireAuth)
	contenthandler.NewHandler(catalogSvc, files).Register(r, requireAuth, requireAdmin)

	// uploaded files are served statically, mirroring the on-disk layout
	r.Static("/uploads", cfg.Storage.UploadDir)

	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("listening on %s (%s)", srv.Addr, cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
