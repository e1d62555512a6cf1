package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yunshui/materials-api/config"
	"github.com/yunshui/materials-api/controllers"
	"github.com/yunshui/materials-api/logger"
	"github.com/yunshui/materials-api/metrics"
	"github.com/yunshui/materials-api/middleware"
	"github.com/yunshui/materials-api/repository"
	"github.com/yunshui/materials-api/services"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		ServiceName: "materials-api",
		Environment: cfg.GoEnv,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.EnvFile != "" {
		zlog.Info("loaded environment file", zap.String("file", cfg.EnvFile))
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		zlog.Fatal("failed to open store", zap.Error(err))
	}

	images, err := newImageService(ctx, cfg)
	if err != nil {
		zlog.Fatal("failed to initialize image storage", zap.Error(err))
	}

	svc := services.New(store, images, nil, metrics.New(prometheus.DefaultRegisterer))

	auth, err := middleware.EnsureValidToken(cfg)
	if err != nil {
		zlog.Fatal("failed to set up authentication", zap.Error(err))
	}

	router := setupRouter(cfg, store, svc, prometheus.DefaultGatherer, auth)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}
	go func() {
		zlog.Info("server is running", zap.String("addr", srv.Addr), zap.String("store", store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore builds the repository backend selected by DB_DRIVER
func openStore(cfg *config.Config) (*repository.Store, error) {
	if cfg.DBDriver == config.DriverMemory {
		zap.L().Warn("using the in-memory store; data is lost on restart")
		return repository.NewMemoryStore(), nil
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db); err != nil {
		return nil, err
	}
	zap.L().Info("database migration completed successfully")
	return repository.NewGormStore(db), nil
}

// newImageService stores material images in S3 when a bucket is configured,
// otherwise on local disk under UPLOAD_DIR
func newImageService(ctx context.Context, cfg *config.Config) (services.ImageService, error) {
	if !cfg.UsesS3() {
		zap.L().Info("storing material images locally", zap.String("dir", cfg.UploadDir))
		return services.NewLocalImageService(cfg.UploadDir), nil
	}
	s3Service, err := services.InitS3Service(ctx, cfg)
	if err != nil {
		return nil, err
	}
	zap.L().Info("storing material images in S3", zap.String("bucket", cfg.AWSS3Bucket))
	return services.NewS3ImageService(s3Service), nil
}

// setupRouter builds the gin engine. auth guards every non-public v1 route.
func setupRouter(cfg *config.Config, store *repository.Store, svc *services.Services, gatherer prometheus.Gatherer, auth gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinMiddleware(services.ClassifyError))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", logger.RequestIDHeader},
		ExposeHeaders:    []string{logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus(store))
	}
	controllers.NewHandler(svc, cfg.UploadDir).RegisterRoutes(v1, auth)

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Materials API is running",
	})
}

// databaseStatus reports whether the store backend is reachable
func databaseStatus(store *repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			logger.FromContext(c.Request.Context()).Error("database ping failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_CONNECTION_ERROR",
					"message": "Database connection failed",
				},
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Database connected",
			"driver":  store.Driver,
		})
	}
}
