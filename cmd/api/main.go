package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todolist/internal/config"
	"todolist/internal/handlers"
	"todolist/internal/logging"
	"todolist/internal/store"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("load config", "err", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		log.Fatal("create logger", "err", err)
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := cfg.Database
	todoStore, err := store.Open(ctx, store.Options{
		Driver:          db.Driver,
		DSN:             db.DSN(),
		MaxOpenConns:    db.MaxOpenConns,
		MaxIdleConns:    db.MaxIdleConns,
		ConnMaxIdleTime: db.ConnMaxIdleTime.Duration,
		ConnMaxLifetime: db.ConnMaxLifetime.Duration,
	})
	if err != nil {
		logger.Fatal("open store", "driver", db.Driver, "err", err)
	}
	defer todoStore.Close()
	logger.Info("connected to database", "driver", db.Driver)

	server := &http.Server{
		Addr:     ":" + cfg.Port,
		Handler:  handlers.New(todoStore, logger, cfg.ServiceName).Router(),
		ErrorLog: logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	go func() {
		logger.Info("server running", "addr", "http://localhost:"+cfg.Port, "health", "/health", "todos", "/api/todos")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}

func newLogger(cfg config.LogConfig) (*log.Logger, error) {
	opts := logging.Options{Level: cfg.Level, Format: cfg.Format, Prefix: "api"}
	if cfg.File == "" {
		return logging.New(os.Stderr, opts)
	}

	// The file stays open for the life of the process.
	logger, _, err := logging.NewFile(cfg.File, opts)
	return logger, err
}
