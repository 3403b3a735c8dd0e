package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"tulisan/config"
	"tulisan/config/database"
	"tulisan/internal/content/repository"
	"tulisan/internal/content/service"
	"tulisan/internal/editor"
	"tulisan/pkg/logger"
	"tulisan/router"
	"tulisan/socket"

	"github.com/joho/godotenv"
)

const draftCleanupInterval = 10 * time.Minute

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	if envErr != nil {
		logger.Sugar.Info("No .env file found, using environment variables from OS")
	}
	if cfg.GeneratedSecret {
		logger.Sugar.Warn("SESSION_SECRET not set, editor sessions will not survive a restart")
	}

	widget, err := config.LoadEditorConfig(cfg.EditorConfigPath)
	if err != nil {
		logger.Sugar.Fatalf("Failed to load editor config: %v", err)
	}

	// The store handle is opened once here and handed to the repository.
	db, err := database.Open(cfg)
	if err != nil {
		logger.Sugar.Fatalf("Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	if db != nil {
		defer db.Close()
	}

	repo, err := repository.New(cfg.StoreDriver, db)
	if err != nil {
		logger.Sugar.Fatal(err)
	}
	svc := service.NewContentService(repo)
	drafts := editor.NewStore(cfg.MaxDrafts, cfg.SessionTTL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := socket.NewHub(drafts, svc)
	go hub.Run(ctx)
	go hub.CleanupWorker(ctx, draftCleanupInterval)

	handler, err := router.Setup(router.Deps{
		Config:  cfg,
		Widget:  widget,
		Service: svc,
		Drafts:  drafts,
		Hub:     hub,
	})
	if err != nil {
		logger.Sugar.Fatalf("Failed to set up routes: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Sugar.Errorf("Graceful shutdown failed: %v", err)
		}
	}()

	logger.Sugar.Infof("tulisan listening on %s (store: %s)", srv.Addr, cfg.StoreDriver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Sugar.Fatalf("Server error: %v", err)
	}
	logger.Sugar.Info("Server stopped")
}
