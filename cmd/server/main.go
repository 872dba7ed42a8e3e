package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	disputeapp "github.com/riskledger/backend/internal/application/dispute"
	"github.com/riskledger/backend/internal/infrastructure/cache"
	"github.com/riskledger/backend/internal/infrastructure/config"
	"github.com/riskledger/backend/internal/infrastructure/logger"
	"github.com/riskledger/backend/internal/infrastructure/persistence"
	"github.com/riskledger/backend/internal/interfaces/http/handler"
	"github.com/riskledger/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	recordRepo := persistence.NewGormDisputeRecordRepository(db.DB)
	runRepo := persistence.NewGormImportRunRepository(db.DB)

	locker := cache.NewOwnerLockerFactory(cfg.Redis, cache.WithLogger(log)).CreateLocker()

	reconciler := disputeapp.NewReconciler(recordRepo, locker, log, cfg.Import)
	importService := disputeapp.NewImportService(reconciler, runRepo, log, cfg.Import.MaxRowErrors)
	syncService := disputeapp.NewFeedSyncService(reconciler, runRepo, log)
	ledgerService := disputeapp.NewLedgerService(recordRepo, runRepo, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.MaxMultipartMemory = cfg.Import.MaxFileSize

	engine.GET("/health", healthHandler(db))

	ledgerHandler := handler.NewLedgerHandler(importService, syncService, ledgerService, log, cfg.Import.MaxFileSize)
	router.NewRouter(engine).
		Register(ledgerHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
