package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/creditdesk/backend/internal/auth"
	"github.com/creditdesk/backend/internal/config"
	"github.com/creditdesk/backend/internal/database"
	"github.com/creditdesk/backend/internal/workflow/repository"
	"github.com/creditdesk/backend/internal/workflow/router"
	"github.com/creditdesk/backend/internal/workflow/service"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.WithField("error", err).Error("failed to close database")
		}
	}()

	if err := database.HealthCheck(db); err != nil {
		log.Fatalf("database health check failed: %v", err)
	}

	engine := service.NewEngine(
		db,
		repository.NewRequestRepository(),
		repository.NewOrderRepository(),
		repository.NewStepRepository(),
		repository.NewRuleRepository(),
	)

	authMW := auth.NewMiddleware(cfg.Token.SigningSecret)
	rt := router.NewRouter(engine, authMW, func() error {
		return database.HealthCheck(db)
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))
	rt.RegisterRoutes(r)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("addr", serverAddr).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithField("error", err).Error("failed to start server")
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithField("error", err).Error("server forced to shutdown")
	} else {
		log.Info("server gracefully stopped")
	}
}
