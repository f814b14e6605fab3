package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"travel-friend/api/handlers"
	"travel-friend/api/kafka"
	"travel-friend/api/logger"
	"travel-friend/api/middleware"
	"travel-friend/api/mongodb"
	"travel-friend/api/worker"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	development := gin.Mode() != gin.ReleaseMode
	if err := logger.Init(development); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := mongodb.InitMongoDB(); err != nil {
		logger.Get().Fatal("failed to initialize MongoDB", zap.Error(err))
	}
	defer mongodb.CloseMongoDB()

	// Email dispatch is optional: without a broker the API still runs,
	// notifications just stay in-app.
	pool := worker.NewWorkerPool(4)
	if os.Getenv("KAFKA_BOOTSTRAP_SERVERS") != "" {
		if err := kafka.InitProducer(); err != nil {
			logger.Get().Fatal("failed to initialize Kafka producer", zap.Error(err))
		}
		pool.Start()
		defer pool.Stop()
		if err := kafka.StartEmailConsumer(pool); err != nil {
			logger.Get().Fatal("failed to start email consumer", zap.Error(err))
		}
	} else {
		logger.Get().Warn("KAFKA_BOOTSTRAP_SERVERS not set, email dispatch disabled")
	}

	router := gin.Default()
	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})
	router.Use(middleware.CorsMiddleware)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapF(pool.MetricsHandler))

	// SSE authenticates via query token, not the auth middleware
	router.GET("/sse/notifications", handlers.HandleNotificationStream)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware)
	{
		// Expense routes
		api.POST("/expenses", handlers.CreateExpense)
		api.GET("/expenses/:id", handlers.GetExpensesByGroup)
		api.GET("/expenses/:id/summary", handlers.GetGroupSummary)
		api.POST("/expenses/:id/settle/:userId", handlers.SettleExpense)
		api.PUT("/expenses/:id", handlers.UpdateExpense)
		api.PUT("/expenses/:id/status", handlers.UpdateExpenseStatus)
		api.DELETE("/expenses/:id", handlers.DeleteExpense)

		// Group routes
		api.POST("/groups", handlers.CreateGroup)
		api.GET("/groups", handlers.GetGroups)
		api.GET("/groups/:id", handlers.GetGroup)
		api.POST("/groups/:id/join", handlers.JoinGroup)
		api.POST("/groups/:id/requests/:userId/approve", handlers.ApproveJoinRequest)
		api.POST("/groups/:id/requests/:userId/reject", handlers.RejectJoinRequest)
		api.POST("/groups/:id/invite", handlers.InviteToGroup)

		// Notification routes
		api.GET("/notifications", handlers.GetNotifications)
		api.PUT("/notifications/read-all", handlers.MarkAllNotificationsRead)
		api.PUT("/notifications/:id/read", handlers.MarkNotificationRead)

		// User routes
		api.GET("/users/me", handlers.GetMe)
		api.PUT("/users/payment-handle", handlers.SetPaymentHandle)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Get().Info("server starting", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		logger.Get().Fatal("failed to start server", zap.Error(err))
	}
}
