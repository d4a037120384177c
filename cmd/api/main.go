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

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-signage-cms/internal/core/auth"
	"go-signage-cms/internal/core/cache"
	"go-signage-cms/internal/core/config"
	"go-signage-cms/internal/core/database"
	"go-signage-cms/internal/core/logger"
	"go-signage-cms/internal/core/server"
	"go-signage-cms/internal/domain"
	"go-signage-cms/internal/repo"
	"go-signage-cms/internal/service"
	"go-signage-cms/internal/storage"
	"go-signage-cms/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))

	var log *zap.Logger
	var cleanup func()
	if cfg.Log.File != "" {
		log, cleanup = logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON,
			cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays, cfg.Log.Compress)
	} else {
		log, cleanup = logger.New(cfg.Log.Level, cfg.Log.JSON)
	}
	defer cleanup()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	// 自动迁移
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(
			&domain.User{},
			&domain.Slideshow{},
			&domain.Slide{},
			&domain.Setting{},
		); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// 缓存（未配置 addr 则不启用，feed 直接走库）
	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		log.Info("redis cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// JWT
	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
	}

	// 上传存储
	files := storage.NewLocal(cfg.Upload.Dir, cfg.Upload.PublicBaseURL, cfg.Upload.MaxSizeMB, cfg.Upload.AllowSVG)

	// 仓储 + 服务
	userRepo := repo.NewUserRepo(db)
	showRepo := repo.NewSlideshowRepo(db)
	slideRepo := repo.NewSlideRepo(db)
	settingRepo := repo.NewSettingRepo(db)

	feedTTL := time.Duration(cfg.Redis.FeedTTLSec) * time.Second
	feedSvc := service.NewFeedService(showRepo, slideRepo, c, feedTTL, log)
	showSvc := service.NewSlideshowService(showRepo, slideRepo, files, feedSvc, log)
	userSvc := service.NewUserService(userRepo)
	settingSvc := service.NewSettingsService(settingRepo, log)
	statsSvc := service.NewStatsService(db)

	// 播种：默认设置 + 默认管理员（库为空时）
	boot := service.NewBootstrap(userRepo, settingRepo, log)
	if err := boot.Run(context.Background(), cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword, cfg.Bootstrap.AdminName); err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}

	// 路由
	r := router.NewEngine(router.Deps{
		Log:           log,
		DB:            db,
		JWT:           jwter,
		Users:         userSvc,
		Shows:         showSvc,
		Feed:          feedSvc,
		Settings:      settingSvc,
		Stats:         statsSvc,
		Files:         files,
		UploadDir:     cfg.Upload.Dir,
		UploadBaseURL: cfg.Upload.PublicBaseURL,
		MaxBodyMB:     cfg.Upload.MaxSizeMB + 2, // 表单其余字段留点余量
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("signage api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("feed", baseURL+"/api/v1/display/feed"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("signage api start FAILED", zap.Error(err))
		}
	}()
	log.Info("signage api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("signage api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
