package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"labtrack-data/internal/config"
	"labtrack-data/internal/database"
	httpapi "labtrack-data/internal/http"
	"labtrack-data/internal/logger"
	"labtrack-data/internal/repository"
	"labtrack-data/internal/service"
	"labtrack-data/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "labtrack-data")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Sessions live in Redis; if it is unreachable fall back to memory so the
	// app still starts in dev (sessions then don't survive a restart).
	var kv store.KV
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err == nil {
		kv = store.NewRedisKV(redisClient)
		log.Info("Redis session store enabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		kv = store.NewMemoryKV()
		log.Warn("Redis unavailable, using in-memory session store", zap.Error(err))
	}
	pingCancel()

	var (
		db        *sql.DB
		users     repository.UsersRepository
		practices repository.PracticesRepository
		doctors   repository.DoctorsRepository
		jobs      repository.JobsRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for labtrack-data")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repositories", zap.Error(err))
		}
	}
	if db != nil {
		users = repository.NewPostgresUsersRepository(db)
		practices = repository.NewPostgresPracticesRepository(db)
		doctors = repository.NewPostgresDoctorsRepository(db)
		jobs = repository.NewPostgresJobsRepository(db)
	} else {
		users = repository.NewMemoryUsersRepository()
		practices = repository.NewMemoryPracticesRepository()
		doctors = repository.NewMemoryDoctorsRepository()
		jobs = repository.NewMemoryJobsRepository()
	}

	policy := service.NewAccessPolicy(cfg.Access.UserPractices, cfg.Access.DefaultDeny)
	authSvc := service.NewAuthService(users, log)
	jobSvc := service.NewJobService(jobs, practices, doctors, policy, log)
	catalogSvc := service.NewCatalogService(practices, doctors, log)

	// Dev bootstrap: without at least one admin nobody can register users.
	seedAdmin(authSvc, log)

	sessions := httpapi.NewSessionStore(kv, cfg.Session.TTL, cfg.Session.RememberTTL)

	router := httpapi.NewRouter(log)
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authSvc, sessions, log))
	router.RegisterJobRoutes(httpapi.NewJobsHandler(jobSvc, catalogSvc, sessions, log))
	router.RegisterCatalogRoutes(httpapi.NewCatalogHandler(catalogSvc, sessions, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}

// seedAdmin ensures a usable admin login exists. Controlled by SEED_ADMIN
// (default on); credentials via SEED_ADMIN_USER / SEED_ADMIN_PASSWORD.
func seedAdmin(auth *service.AuthService, log *zap.Logger) {
	if os.Getenv("SEED_ADMIN") == "false" {
		return
	}
	username := os.Getenv("SEED_ADMIN_USER")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "ChangeMe123!"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := auth.Register(ctx, username, password, true); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return
		}
		log.Warn("Failed to seed admin user", zap.String("username", username), zap.Error(err))
		return
	}
	log.Info("Seeded admin user", zap.String("username", username))
}
