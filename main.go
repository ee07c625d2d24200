package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/resumeforge/resumeforge/backend/go-services/handlers"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/config"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/editor/handler"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/editor/repository"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/editor/service"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/rewrite"
	"github.com/resumeforge/resumeforge/backend/go-services/internal/storage"
	"github.com/resumeforge/resumeforge/backend/go-services/pkg/logger"
	"github.com/resumeforge/resumeforge/backend/go-services/pkg/metrics"
	"github.com/resumeforge/resumeforge/backend/go-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: redis=%v llm=%s jwt_secret_set=%v", cfg.Redis.Host != "", cfg.LLM.Provider, cfg.JWT.Secret != "")
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := gin.New()
	// Lightweight CORS for the browser editor.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})
	r.Use(gin.Logger(), gin.Recovery())

	// Redis is optional: it shares rewrite sequencing and rate limits across instances.
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s), using in-memory sequencing: %v", cfg.Redis.Host, cfg.Redis.Port, err)
			_ = client.Close()
		} else {
			rdb = client
			logger.Infof("connected to Redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
		cancel()
	}

	var seq repository.Sequencer = repository.NewMemorySequencer()
	if rdb != nil {
		seq = repository.NewRedisSequencer(rdb, cfg.Redis.SeqPrefix, cfg.History.SessionTTL)
	}

	var limiter gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			limiter = middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)
		} else {
			limiter = middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}

	var rewriter rewrite.Rewriter
	switch cfg.LLM.Provider {
	case "gemini":
		gen, err := rewrite.NewGemini(ctx, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			logger.Warnf("AI rewrites disabled: %v", err)
		} else {
			defer gen.Close()
			rewriter = rewrite.NewLLMRewriter(gen, cfg.LLM.Timeout)
		}
	case "openai":
		rewriter = rewrite.NewLLMRewriter(rewrite.NewOpenAI(cfg.LLM.APIKey, cfg.LLM.Model), cfg.LLM.Timeout)
	case "none", "":
		logger.Infof("no LLM provider configured; only client-driven rewrites are available")
	default:
		logger.Warnf("unknown LLM_PROVIDER %q; AI rewrites disabled", cfg.LLM.Provider)
	}

	var publisher storage.Publisher
	if mcfg := storage.LoadMinIOConfig(); mcfg.Enabled() {
		store, err := storage.NewMinIOStorage(mcfg)
		if err != nil {
			logger.Warnf("snapshot export disabled: %v", err)
		} else {
			publisher = storage.NewSnapshotPublisher(store, mcfg.URLExpiry)
			logger.Infof("snapshot export to MinIO bucket %s", mcfg.Bucket)
		}
	}

	repo := repository.NewMemoryRepo()
	svc := service.New(service.Deps{
		Repo:         repo,
		Sequencer:    seq,
		Rewriter:     rewriter,
		Publisher:    publisher,
		HistoryLimit: cfg.History.Limit,
	})
	repository.StartJanitor(ctx, repo, cfg.History.JanitorInterval, cfg.History.SessionTTL, func(ids []string) {
		svc.Expired(ctx, ids)
	})

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// ready only when every configured dependency is usable
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{
			"rewriter": rewriter != nil,
			"storage":  publisher != nil,
		}
		if cfg.Redis.Host != "" {
			deps["redis"] = rdb != nil && rdb.Ping(c.Request.Context()).Err() == nil
			ready = deps["redis"]
		}
		body := gin.H{"deps": deps, "sessions": repo.Len(), "uptime": time.Since(startTime).String()}
		if !ready {
			body["status"] = "not_ready"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["status"] = "ready"
		c.JSON(http.StatusOK, body)
	})

	handlers.RegisterSwagger(r)
	handler.RegisterSessionRoutes(r, svc, handler.Options{
		TokenSecret: cfg.JWT.Secret,
		TokenTTL:    cfg.JWT.SessionTokenTTL,
		Limiter:     limiter,
	})

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting editor service on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("graceful shutdown failed: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
