package server

import (
	"fmt"
	"os"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func (s *Server) setupRouter() *gin.Engine {
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()

	// LoggerWithFormatter middleware will write the logs to gin.DefaultWriter
	// By default gin.DefaultWriter = os.Stdout
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.MaxMultipartMemory = 32 << 20
	s.defineRoutes(r)

	return r
}

func (s *Server) defineRoutes(router *gin.Engine) {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 10,
	})
	limitReports := limitRateForReportSubmission(store)

	router.GET("/health", s.handleHealthCheck())

	apirouter := router.Group("/api/v1")
	apirouter.POST("/auth/signup", s.handleSignup())
	apirouter.POST("/auth/login", s.handleLogin())
	apirouter.GET("/google/login", s.HandleGoogleLogin())
	apirouter.GET("auth/google/callback", s.HandleGoogleCallback())
	apirouter.GET("/reports", s.handleGetRecentReports())

	authorized := apirouter.Group("/")
	authorized.Use(s.Authorize())
	authorized.GET("/logout", s.handleLogout())
	authorized.GET("/me", s.handleShowProfile())
	authorized.POST("/user/report", limitReports, s.handleSubmitReport())
	authorized.POST("/user/report/precheck", s.handlePrecheckReport())
	authorized.PUT("/upload", s.handleUploadReportImage())
	authorized.GET("/verify/tasks", s.handleGetVerifyTasks())
	authorized.POST("/verify/:reportID/claim", s.handleClaimReport())
	authorized.POST("/verify/:reportID", s.handleVerifyReport())
	authorized.GET("/rewards/balance", s.handleGetRewardBalance())
	authorized.GET("/rewards/transactions", s.handleGetRewardTransactions())
	authorized.GET("/rewards/available", s.handleGetAvailableRewards())
	authorized.POST("/rewards/:rewardID/redeem", s.handleRedeemReward())
	authorized.GET("/rewards/leaderboard", s.handleGetLeaderboard())
	authorized.GET("/notifications", s.handleGetNotifications())
	authorized.PUT("/notifications/:id/read", s.handleMarkNotificationRead())
	authorized.GET("/notifications/stream", s.handleNotificationStream())
	authorized.POST("/notifications/device-token", s.handleRegisterDeviceToken())
}
