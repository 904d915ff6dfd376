package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/techagentng/thermotrack/config"
	"github.com/techagentng/thermotrack/db"
	"github.com/techagentng/thermotrack/mailingservices"
	"github.com/techagentng/thermotrack/services"
)

// Server holds the wired application: config, repositories and services
// the handlers reach through.
type Server struct {
	Config                 *config.Config
	Mail                   *mailingservices.Mailgun
	AuthRepository         db.AuthRepository
	ReportRepository       db.ReportRepository
	LedgerRepository       db.LedgerRepository
	RewardRepository       db.RewardRepository
	NotificationRepository db.NotificationRepository
	AuthService            services.AuthService
	ReportService          services.ReportService
	VerificationService    services.VerificationService
	LedgerService          services.LedgerService
	PrecheckService        services.PrecheckService
	MediaService           services.MediaService
	NotificationService    services.NotificationService
	DB                     *db.GormDB
}

// Start runs the HTTP server until an interrupt, then drains in-flight
// requests before exiting.
func (s *Server) Start() {
	r := s.setupRouter()

	port := s.Config.Port
	if port == 0 {
		port = 8080
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	go func() {
		log.Printf("listening on :%d", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	log.Println("server exited")
}

// handleHealthCheck reports liveness and database reachability.
func (s *Server) handleHealthCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.DB == nil || s.DB.DB == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "not configured"})
			return
		}
		sqlDB, err := s.DB.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// decode reads the request body into v.
func decode(c *gin.Context, v interface{}) error {
	return json.NewDecoder(c.Request.Body).Decode(v)
}
