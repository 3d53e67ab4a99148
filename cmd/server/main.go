package main // Entry point package

import (
	"context"   // shutdown and startup deadlines
	"errors"    // distinguishes a clean server close
	"net/http"  // http.ErrServerClosed
	"os"        // os.Signal
	"os/signal" // SIGINT/SIGTERM handling
	"syscall"   // signal numbers
	"time"      // timeouts

	"github.com/labstack/echo/v4" // Echo web framework
	"github.com/rs/zerolog/log"   // global structured logger

	"github.com/iliyamo/todo-api/internal/cache"      // Redis list cache
	"github.com/iliyamo/todo-api/internal/config"     // Internal config loader
	"github.com/iliyamo/todo-api/internal/database"   // store connection and schema
	"github.com/iliyamo/todo-api/internal/handler"    // HTTP handlers
	"github.com/iliyamo/todo-api/internal/logger"     // zerolog setup
	"github.com/iliyamo/todo-api/internal/repository" // data access
	"github.com/iliyamo/todo-api/internal/router"     // Internal router setup
	"github.com/iliyamo/todo-api/internal/service"    // business logic
	"github.com/iliyamo/todo-api/internal/utils"      // hashing and tokens
)

func main() {
	cfg, err := config.Load() // Load environment config; any problem stops startup
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.LogLevel, cfg.Env)

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open database")
	}
	defer func() { _ = db.Close() }()

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(startCtx, db, cfg.DBDriver); err != nil {
		cancelStart()
		log.Fatal().Err(err).Msg("migrate schema")
	}

	tokens, err := utils.NewTokenService(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.AccessTTLMin)
	if err != nil {
		cancelStart()
		log.Fatal().Err(err).Msg("token service")
	}
	hasher := utils.NewPasswordHasher(cfg.BcryptCost)

	var lists *cache.TodoLists
	if rdb := config.NewRedisClient(startCtx); rdb != nil {
		defer func() { _ = rdb.Close() }()
		lists = cache.NewTodoLists(config.LoadCacheConfig(), rdb)
	}
	cancelStart()

	// Assign only a non-nil publisher so the interface stays nil when
	// events are disabled.
	var events service.EventPublisher
	if p := service.NewRabbitPublisher(cfg.RabbitURL); p != nil {
		events = p
	}

	users := repository.NewUserRepo(db)
	authSvc, err := service.NewAuthService(users, hasher, tokens, events)
	if err != nil {
		log.Fatal().Err(err).Msg("auth service")
	}
	todoSvc := service.NewTodoService(repository.NewTodoRepo(db), lists, events)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HidePort = true
	router.RegisterMiddleware(e)
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authSvc), authSvc)
	router.RegisterTodos(e, handler.NewTodoHandler(todoSvc), authSvc)

	addr := ":" + cfg.Port
	go func() {
		log.Info().
			Str("addr", addr).
			Str("env", cfg.Env).
			Str("db_driver", cfg.DBDriver).
			Bool("cache", lists != nil).
			Bool("events", events != nil).
			Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
