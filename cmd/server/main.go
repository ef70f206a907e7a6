// @title Daily Poem API
// @version 1.0
// @description 诗歌库管理与每日随机发布
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/daily-poem/config"
	"github.com/d60-Lab/daily-poem/internal/api"
	"github.com/d60-Lab/daily-poem/internal/api/handler"
	"github.com/d60-Lab/daily-poem/internal/cache"
	"github.com/d60-Lab/daily-poem/internal/publisher"
	"github.com/d60-Lab/daily-poem/internal/repository"
	"github.com/d60-Lab/daily-poem/internal/scheduler"
	"github.com/d60-Lab/daily-poem/internal/service"
	"github.com/d60-Lab/daily-poem/pkg/database"
	"github.com/d60-Lab/daily-poem/pkg/logger"
	"github.com/d60-Lab/daily-poem/pkg/monitoring"
	"github.com/d60-Lab/daily-poem/pkg/tracing"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	cfg := must(config.Load())
	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := monitoring.Init(cfg.Sentry); err != nil {
		logger.Warn("sentry disabled", zap.Error(err))
	}
	defer monitoring.Flush(2 * time.Second)

	shutdownTracing := must(tracing.Init(context.Background(), cfg.Tracing))

	db := must(database.InitDB(cfg))
	if err := repository.InitSchema(db); err != nil {
		logger.L().Fatal("migrate schema", zap.Error(err))
	}

	repo := repository.NewPoemRepository(db)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		pc := cache.NewPoemCache(rdb, cfg.Redis.TTL)
		if err := pc.Ping(context.Background()); err != nil {
			logger.Warn("redis unreachable, list cache falls back to database", zap.Error(err))
		}
		repo = repository.NewCachedPoemRepository(repo, pc)
	}

	if !cfg.Twitter.HasUserContext() && cfg.Twitter.BearerToken == "" {
		logger.Warn("no publishing credentials configured, publish requests will be rejected")
	}
	job := service.NewSelectionJob(repo, publisher.NewTwitterClient(cfg.Twitter))

	var sched *scheduler.Scheduler
	if cfg.Schedule.Enabled {
		sched = must(scheduler.New(scheduler.JobFunc(func(ctx context.Context) error {
			res, err := job.Run(ctx)
			if err != nil {
				return err
			}
			if !res.Posted {
				logger.Info("no unposted poems left")
			}
			return nil
		}), cfg.Schedule))
		sched.Start()
	}

	gin.SetMode(cfg.Server.Mode)
	h := handler.NewHandler(service.NewPoemService(repo), job, cfg.Auth, db)
	router := must(api.NewRouter(h, cfg))

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if sched != nil {
		if err := sched.Stop(ctx); err != nil {
			logger.Warn("scheduler stop", zap.Error(err))
		}
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
}
