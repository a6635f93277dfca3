// Command backend serves the employee, department and service order API from a
// local SQLite database so the scheduler can run without the production backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/service-order-scheduler/internal/config"
	"github.com/example/service-order-scheduler/internal/devbackend"
	"github.com/example/service-order-scheduler/internal/logging"
	"github.com/example/service-order-scheduler/internal/persistence/sqlite"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadBackend()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Env, os.Stdout)

	storage, err := sqlite.Open(ctx, sqlite.DefaultConfig(cfg.Backend.SQLiteDSN), logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	api := devbackend.New(devbackend.Options{
		Employees:   sqlite.NewEmployeeRepository(storage),
		Departments: sqlite.NewDepartmentRepository(storage),
		Orders:      sqlite.NewServiceOrderRepository(storage),
		Logger:      logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Backend.HTTPPort),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("backend API listening", "addr", server.Addr, "dsn", cfg.Backend.SQLiteDSN)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
