package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/campusplan/solver-api/internal/handler"
	internalmiddleware "github.com/campusplan/solver-api/internal/middleware"
	"github.com/campusplan/solver-api/internal/service"
	"github.com/campusplan/solver-api/pkg/config"
	"github.com/campusplan/solver-api/pkg/logger"
	corsmiddleware "github.com/campusplan/solver-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusplan/solver-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	solveSvc := service.NewSolveService(nil, logr, metricsSvc, cfg.Solver)

	solveHandler := handler.NewSolveHandler(solveSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", solveHandler.Health)
	r.POST("/validate-constraints", solveHandler.ValidateConstraints)
	r.POST("/solve", solveHandler.Solve)
	r.GET("/metrics", metricsHandler.Prometheus)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
