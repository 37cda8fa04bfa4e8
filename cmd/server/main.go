package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"school_journal/internal/api"
	"school_journal/internal/app/service"
	"school_journal/internal/common/security"
	"school_journal/internal/domain/repository"
	"school_journal/internal/platform/cache"
	"school_journal/internal/platform/config"
	"school_journal/internal/platform/database"
	"school_journal/internal/platform/logging"
	"school_journal/internal/platform/storage"
)

func main() {
	config.Load()

	log, err := logging.New(config.AppConfig.LogLevel, config.AppConfig.AppEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	tokens := security.NewTokenService(config.AppConfig.JWTKey, config.AppConfig.JWTExp)

	db, err := database.Connect(config.AppConfig.DBConnStr)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}
	log.Info("database ready")

	rdb, err := cache.Connect(config.AppConfig.RedisAddr, config.AppConfig.RedisPassword, config.AppConfig.RedisDB)
	if err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	defer rdb.Close()
	feedCache := cache.NewFeedCache(rdb, config.AppConfig.FeedCacheTTL)

	store, err := storage.NewLocalStore(config.AppConfig.UploadDir)
	if err != nil {
		log.Fatal("upload store init failed", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(db)
	journalRepo := repository.NewPgJournalRepository(db)

	authService := service.NewAuthService(userRepo, tokens)
	journalService := service.NewJournalService(journalRepo, db, feedCache, log)

	router := api.NewRouter(tokens, authService, journalService, store, log)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("server starting", zap.String("port", config.AppConfig.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-stop
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server shutdown failed", zap.Error(err))
	}
	log.Info("server stopped gracefully")
}
