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

	"github.com/jengzang/trip-eval-backend-go/internal/api"
	"github.com/jengzang/trip-eval-backend-go/internal/config"
	"github.com/jengzang/trip-eval-backend-go/internal/database"
	"github.com/jengzang/trip-eval-backend-go/internal/datastore"
	"github.com/jengzang/trip-eval-backend-go/internal/handler"
	"github.com/jengzang/trip-eval-backend-go/internal/repository"
	"github.com/jengzang/trip-eval-backend-go/internal/service"
	"github.com/jengzang/trip-eval-backend-go/internal/timeutil"

	// Import analyzer packages to register them
	_ "github.com/jengzang/trip-eval-backend-go/internal/analysis/evaluation"
)

func main() {
	// 加载配置
	cfg := config.Load()

	tuning := config.DefaultTuningConfig()
	if cfg.TuningPath != "" {
		var err error
		if tuning, err = config.LoadTuningConfig(cfg.TuningPath); err != nil {
			log.Fatal("Failed to load tuning:", err)
		}
	}

	// 初始化数据库
	dbConfig := database.Config{
		Path:           cfg.DBPath,
		MigrationsPath: cfg.MigrationsPath,
	}
	if err := database.Init(dbConfig); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()
	db := database.GetDB()

	entryRepo := repository.NewEntryRepository(db)
	var store datastore.Retriever = datastore.NewSQLStore(entryRepo)
	if cfg.DatastoreURL != "" {
		store = datastore.NewRetrying(datastore.NewHTTPStore(cfg.DatastoreURL, nil), tuning.GetRetryDelay(), timeutil.RealClock{})
		log.Printf("Reading phone data from %s", cfg.DatastoreURL)
	}

	evaluations := service.NewEvaluationService(repository.NewEvaluationTaskRepository(db), store, tuning, timeutil.RealClock{}, cfg.AuthorEmail)

	// 初始化路由
	router := api.SetupRouter(cfg, api.Handlers{
		Evaluation: handler.NewEvaluationHandler(evaluations),
		Entry:      handler.NewEntryHandler(service.NewEntryService(entryRepo)),
	})

	srv := &http.Server{Addr: cfg.Port, Handler: router}
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("Shutting down, waiting for running evaluations")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
	evaluations.Wait()
}
