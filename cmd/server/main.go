package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"sisustusbot/internal/ai"
	"sisustusbot/internal/bundle"
	"sisustusbot/internal/catalog"
	"sisustusbot/internal/chat"
	"sisustusbot/internal/chatlog"
	"sisustusbot/internal/clarify"
	"sisustusbot/internal/common/cache"
	"sisustusbot/internal/common/config"
	"sisustusbot/internal/common/database"
	"sisustusbot/internal/common/logger"
	"sisustusbot/internal/common/observability"
	"sisustusbot/internal/faq"
	"sisustusbot/internal/httpapi"
	"sisustusbot/internal/search"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	log.Info("starting sisustusbot", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	var store cache.Cache = cache.NewMemory()
	if cfg.Database.Redis.Enabled {
		redisClient, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			log.Warn("redis unavailable, using in-memory cache", map[string]interface{}{"error": err.Error()})
		} else {
			defer redisClient.Close()
			store = cache.NewRedis(redisClient.Client)
			log.Info("redis cache connected", map[string]interface{}{"address": cfg.Database.Redis.Address})
		}
	}

	var transcripts *chatlog.Store
	if cfg.Database.Postgres.Enabled {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			log.Warn("postgres unavailable, chat transcripts disabled", map[string]interface{}{"error": err.Error()})
		} else {
			defer pg.Close()
			transcripts = chatlog.NewStore(pg.DB, cfg.Store.BaseURL, log)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := transcripts.EnsureSchema(ctx); err != nil {
				log.Warn("chat log schema setup failed", map[string]interface{}{"error": err.Error()})
				transcripts = nil
			}
			cancel()
		}
	}

	catalogClient := catalog.NewClient(cfg.Store)
	catalogSvc := catalog.NewService(catalogClient, store, log, obs, cfg.Catalog)

	var assistClient ai.Client
	if cfg.Assist.Enabled && cfg.Assist.APIKey != "" {
		assistClient = ai.NewOpenAIClient(cfg.Assist)
		log.Info("assist enabled", map[string]interface{}{"model": cfg.Assist.Model})
	} else {
		log.Info("assist disabled, deterministic fallbacks active", nil)
	}
	assist := ai.NewAssist(assistClient, log, obs, faq.BuildKnowledgeBlock(), faq.Commerce.SupportEmail, faq.Commerce.SupportPhone)

	recommender := search.NewRecommender(catalogSvc, assist, log)
	clarifier := clarify.NewPlanner(catalogSvc)
	chatSvc := chat.NewService(assist, catalogSvc, recommender, clarifier, transcripts, log, obs)
	assembler := bundle.NewAssembler(catalogSvc, assist, log)

	apiServer := httpapi.NewServer(chatSvc, assembler, recommender, catalogSvc, obs, assist.Enabled(), log)
	router := apiServer.Router(cfg.Server)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		log.Info("http server listening", map[string]interface{}{"port": cfg.Server.Port})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed", map[string]interface{}{"error": err.Error()})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	log.Info("server stopped", nil)
}
