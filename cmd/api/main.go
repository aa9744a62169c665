package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"maternity-platform/internal/audit"
	"maternity-platform/internal/auth"
	"maternity-platform/internal/birth"
	"maternity-platform/internal/config"
	"maternity-platform/internal/httpapi"
	"maternity-platform/internal/patient"
	"maternity-platform/internal/rbac"
	"maternity-platform/internal/reporting"
	"maternity-platform/internal/users"
	"maternity-platform/pkg/logger"
	"maternity-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	// Services. The policy engine and catalog are shared by everything that
	// makes access decisions.
	engine := rbac.NewEngine(rbac.DefaultCatalog())
	auditSvc := audit.NewService(audit.NewPostgresRepo(db))
	revoker := auth.NewRevoker(rdb)

	h := httpapi.Handlers{
		Auth:     authManager,
		Revoker:  revoker,
		Users:    users.NewService(users.NewPostgresRepo(db), engine, auditSvc),
		Patients: patient.NewService(patient.NewPostgresRepo(db), engine, auditSvc),
		Births:   birth.NewService(birth.NewPostgresRepo(db), engine, auditSvc),
		Reports:  reporting.NewService(reporting.NewPostgresRepo(db), engine, auditSvc),
		Audit:    auditSvc,
		Redis:    rdb,
		Login:    cfg.Login,
	}
	guard := rbac.NewGuard(engine, httpapi.AuditDenials{Audit: auditSvc})

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, guard, auth.RequireAccessToken(authManager, revoker))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
