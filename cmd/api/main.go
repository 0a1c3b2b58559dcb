package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/meditrack/authorization-api/internal/config"
	"github.com/meditrack/authorization-api/internal/handler"
	authHandler "github.com/meditrack/authorization-api/internal/handler/auth"
	authorizationHandler "github.com/meditrack/authorization-api/internal/handler/authorization"
	patientHandler "github.com/meditrack/authorization-api/internal/handler/patient"
	reportHandler "github.com/meditrack/authorization-api/internal/handler/report"
	"github.com/meditrack/authorization-api/internal/insurance"
	"github.com/meditrack/authorization-api/internal/middleware"
	"github.com/meditrack/authorization-api/internal/repository/postgres"
	"github.com/meditrack/authorization-api/internal/router"
	"github.com/meditrack/authorization-api/internal/service/access"
	authorizationService "github.com/meditrack/authorization-api/internal/service/authorization"
	evaluationService "github.com/meditrack/authorization-api/internal/service/evaluation"
	patientService "github.com/meditrack/authorization-api/internal/service/patient"
	reportService "github.com/meditrack/authorization-api/internal/service/report"
	userService "github.com/meditrack/authorization-api/internal/service/user"
	"github.com/meditrack/authorization-api/pkg/auth"
	"github.com/meditrack/authorization-api/pkg/logger"
	"github.com/meditrack/authorization-api/pkg/metrics"
	"github.com/meditrack/authorization-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	m := metrics.New("meditrack")

	patientRepo := postgres.NewPatientRepository(db)
	userRepo := postgres.NewUserRepository(db)
	authorizationRepo := postgres.NewAuthorizationRepository(db)
	evaluationRepo := postgres.NewEvaluationRepository(db)
	txManager := postgres.NewTxManager(db)

	hasher := security.NewBcryptHasher(cfg.JWT.BcryptCost)
	tokens := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	checker := access.NewChecker(userRepo)
	insurer := insurance.NewClient(cfg.Insurance, log, m)

	patientSvc := patientService.NewService(patientRepo, userRepo, txManager, checker, hasher)
	userSvc := userService.NewService(userRepo, txManager, checker, hasher, tokens, log)
	authorizationSvc := authorizationService.NewService(authorizationRepo, patientRepo, txManager, checker, m, log)
	evaluationSvc := evaluationService.NewService(evaluationRepo, authorizationRepo, patientRepo,
		txManager, checker, insurer, m, log)
	reportSvc := reportService.NewService(patientRepo, authorizationRepo, evaluationRepo, checker)

	r, err := router.New(cfg.Server, log, m,
		middleware.NewAuthMiddleware(tokens),
		handler.NewHealthHandler(db),
		authHandler.NewHandler(userSvc, patientSvc),
		patientHandler.NewHandler(patientSvc),
		authorizationHandler.NewHandler(authorizationSvc, evaluationSvc),
		reportHandler.NewHandler(reportSvc),
	)
	if err != nil {
		log.Fatal(err, "building router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "forced shutdown")
	}
	log.Info("server stopped")
}
