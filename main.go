package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"adaptive_coach/auth"
	"adaptive_coach/cache"
	"adaptive_coach/config"
	"adaptive_coach/db"
	"adaptive_coach/handlers"
	"adaptive_coach/logger"
	"adaptive_coach/repository"
	"adaptive_coach/scheduler"
	"adaptive_coach/services"
	"adaptive_coach/sources"
)

func main() {
	cfg := config.Load()

	// 初始化日志系统
	if err := logger.Init(cfg); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	logger.Info("日志系统初始化成功", "level", cfg.Log.Level, "format", cfg.Log.Format, "output", cfg.Log.Output)

	conn, dialect, err := db.Open(cfg)
	if err != nil {
		logger.Error("初始化数据库失败", "driver", cfg.DB.Driver, "error", err)
		os.Exit(1)
	}
	defer conn.Close()
	logger.Info("数据库连接成功",
		"driver", dialect,
		"max_open_conns", cfg.DB.MaxOpenConns,
		"max_idle_conns", cfg.DB.MaxIdleConns,
		"conn_max_lifetime", cfg.DB.ConnMaxLifetime)

	if cfg.DB.AutoMigrate {
		if err := db.Migrate(context.Background(), conn, dialect); err != nil {
			logger.Error("创建数据表失败", "error", err)
			os.Exit(1)
		}
		logger.Info("数据表已就绪")
	}
	store := repository.New(conn, dialect)

	var feedCache services.FeedCache = cache.Noop{}
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, time.Duration(cfg.Redis.CacheTTLSec)*time.Second)
		if err != nil {
			logger.Warn("Redis不可用，推荐流不使用缓存", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer rc.Close()
			feedCache = rc
			logger.Info("Redis连接成功", "addr", cfg.Redis.Addr, "ttl_sec", cfg.Redis.CacheTTLSec)
		}
	}

	loc, err := time.LoadLocation(cfg.Inquiry.Timezone)
	if err != nil {
		logger.Warn("无法加载时区，使用UTC", "timezone", cfg.Inquiry.Timezone, "error", err)
		loc = time.UTC
	}

	bg := services.NewBackground(time.Duration(cfg.Background.TimeoutSec) * time.Second)
	ranker := services.NewRanker(services.DefaultTagKeywords(), services.DefaultKeywords())
	contexts := services.NewInquiryContextService(store)
	profiles := services.NewProfileService(store, contexts)
	refresh := services.NewRefreshService(store, store, profiles, ranker, feedCache, loc)

	inquiries := services.NewInquiryService(cfg.Inquiry, services.InquiryDeps{
		Inquiries:    store,
		Calibrations: store,
		Activity:     store,
		Candidates:   store,
		Refresher:    refresh,
		Background:   bg,
	})

	feed := services.NewFeedService(services.FeedDeps{
		Profiles:     profiles,
		Aggregator:   services.NewAggregator(time.Duration(cfg.Sources.TimeoutSec)*time.Second, buildSources(cfg)...),
		Ranker:       ranker,
		Candidates:   store,
		Cache:        feedCache,
		Background:   bg,
		PersistLimit: cfg.Feed.PersistLimit,
	})

	var pusher *services.InquiryPusher
	if cfg.ExternalAPI.InquiryPushURL != "" {
		pusher = services.NewInquiryPusher(store, store, services.PushConfig{
			URL:         cfg.ExternalAPI.InquiryPushURL,
			APIKey:      cfg.ExternalAPI.APIKey,
			Concurrency: cfg.Cron.PushConcurrency,
			Timezone:    loc,
		})
	} else {
		logger.Warn("未配置问询推送地址，推送任务不启用")
	}

	authenticator := auth.New(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.Timeouts.ResponseSec) * time.Second))
	r.Use(authenticator.Middleware)

	h := &handlers.Handler{
		Feed:         feed,
		Inquiry:      inquiries,
		Contexts:     contexts,
		Refresh:      refresh,
		Pusher:       pusher,
		LookbackDays: cfg.Cron.LookbackDays,
		Concurrency:  cfg.Cron.Concurrency,
	}
	handlers.RegisterRoutes(r, h)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// start cron
	// pusher 为 nil 时不能直接传入接口，否则接口值非 nil
	var push scheduler.InquiryPusher
	if pusher != nil {
		push = pusher
	}
	sched := scheduler.NewScheduler(cfg, refresh, push)
	sched.Start(ctx)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Timeouts.RequestSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Timeouts.ResponseSec+5) * time.Second,
		IdleTimeout:  time.Duration(cfg.Timeouts.IdleSec) * time.Second,
	}

	go func() {
		logger.Info("服务器启动", "address", cfg.Server.Addr)
		logger.Info("Swagger文档可访问", "url", fmt.Sprintf("http://%s/swagger/index.html", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("服务器异常退出", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("正在关闭服务器")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("关闭服务器失败", "error", err)
	}
	sched.Wait()
	bg.Wait()
	logger.Info("服务器已关闭")
}

// buildSources 按配置启用内容源，顺序即合并时的优先顺序
func buildSources(cfg *config.Config) []sources.Source {
	client := &http.Client{Timeout: time.Duration(cfg.Sources.TimeoutSec) * time.Second}
	srcs := make([]sources.Source, 0, 5)

	sc := cfg.Sources
	if sc.PubMed.Enabled {
		srcs = append(srcs, &sources.PubMed{
			BaseURL: sc.PubMed.BaseURL,
			APIKey:  sc.PubMed.APIKey,
			Limit:   sc.PubMed.Limit,
			Client:  client,
		})
	}
	if sc.SemanticScholar.Enabled {
		srcs = append(srcs, &sources.SemanticScholar{
			BaseURL: sc.SemanticScholar.BaseURL,
			APIKey:  sc.SemanticScholar.APIKey,
			Limit:   sc.SemanticScholar.Limit,
			Client:  client,
		})
	}
	if sc.YouTube.Enabled && len(sc.YouTube.Channels) > 0 {
		srcs = append(srcs, &sources.YouTube{
			FeedURL:    sc.YouTube.FeedURL,
			PerChannel: sc.YouTube.PerChannel,
			Channels:   sc.YouTube.Channels,
			Client:     client,
		})
	}
	if sc.Trending.Enabled {
		t, err := sources.LoadTrending(sc.Trending.Path)
		if err != nil {
			logger.Warn("加载热门话题失败，跳过该内容源", "path", sc.Trending.Path, "error", err)
		} else {
			srcs = append(srcs, t)
		}
	}
	if sc.Knowledge.Enabled && sc.Knowledge.URL != "" {
		srcs = append(srcs, &sources.Knowledge{
			URL:            sc.Knowledge.URL,
			APIKey:         sc.Knowledge.APIKey,
			KnowledgeIDs:   sc.Knowledge.KnowledgeIDs,
			TopK:           sc.Knowledge.TopK,
			Threshold:      sc.Knowledge.Threshold,
			DocURLTemplate: sc.Knowledge.DocURLTemplate,
			Client:         client,
		})
	}

	names := make([]string, 0, len(srcs))
	for _, s := range srcs {
		names = append(names, s.Name())
	}
	logger.Info("内容源已启用", "sources", names)
	return srcs
}
