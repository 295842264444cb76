package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/itzrizvi/yooda-hostel-server/internal/config"
	"github.com/itzrizvi/yooda-hostel-server/internal/database"
	"github.com/itzrizvi/yooda-hostel-server/internal/handler"
	"github.com/itzrizvi/yooda-hostel-server/internal/model"
	"github.com/itzrizvi/yooda-hostel-server/internal/server"
	"github.com/itzrizvi/yooda-hostel-server/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Printf("service=backend msg=%q err=%v", "stopped_with_error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	store, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Printf("service=backend msg=%q err=%v", "store_close_failed", err)
		}
		log.Printf("service=backend msg=%q", "store_closed")
	}()

	foods, err := store.Collection(model.FoodItemCollection)
	if err != nil {
		return err
	}
	students, err := store.Collection(model.StudentCollection)
	if err != nil {
		return err
	}
	distributions, err := store.Collection(model.DistributionCollection)
	if err != nil {
		return err
	}

	// Initialize services
	foodItemService := service.NewFoodItemService(foods)
	studentService := service.NewStudentService(students)
	distributionService := service.NewDistributionService(distributions)
	importService := service.NewImportService(ctx, students)
	defer importService.Close()

	// Initialize handlers and server
	srv := server.New(server.Config{
		Addr:           cfg.Addr(),
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
	}, server.Handlers{
		FoodItems:     handler.NewFoodItemHandler(foodItemService),
		Students:      handler.NewStudentHandler(studentService),
		Distributions: handler.NewDistributionHandler(distributionService),
		Imports:       handler.NewImportHandler(importService, cfg.UploadDir),
		Progress:      handler.NewProgressHandler(importService),
		Health:        handler.NewHealthHandler(store),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Printf("service=backend msg=%q addr=%s driver=%s", "listening", cfg.Addr(), cfg.StorageDriver)
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("service=backend msg=%q", "shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
