package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskhive/internal/collaboration"
	"taskhive/internal/config"
	"taskhive/internal/db"
	"taskhive/internal/domain"
	"taskhive/internal/email"
	"taskhive/internal/middleware"
	"taskhive/internal/notification"
	"taskhive/internal/presence"
	"taskhive/internal/push"
	"taskhive/internal/realtime"
	"taskhive/internal/task"
	"taskhive/internal/user"
	"taskhive/internal/worker"
	"taskhive/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.LoadConfig()
	cfg := config.AppConfig

	// Connect to database
	db.ConnectDb()
	defer db.CloseDb()

	// Migrate database schema
	db.Migrate()

	// Seed database with initial data (for development)
	db.SeedData()

	// Initialize Redis
	redis.InitRedis()
	cache := redis.NewCache(redis.RedisClient)

	// Presence and typing share the same atomic primitives
	connStore := presence.NewRedisConnStore(redis.RedisClient)
	tracker := presence.NewTracker(connStore, cfg.HeartbeatInterval)
	typing := presence.NewTypingThrottle(connStore, cfg.TypingWindow)

	// Worker pool for the fire-and-forget side channels
	pool := worker.NewWorkerPool(8)
	defer pool.Shutdown()

	// Initialize repositories
	userRepo := user.NewRepository(db.AppDb)
	taskRepo := task.NewRepository(db.AppDb)
	collabRepo := collaboration.NewRepository(db.AppDb)
	notificationRepo := notification.NewRepository(db.AppDb)

	// Outbound clients
	pushClient := push.NewClient()
	mailer := email.NewClient(cfg.MailerAddress, cfg.MailerSecret)

	// Initialize services. The hub, collaboration and notification layers
	// reference each other, so the hub's member source is wired last.
	userService := user.NewService(userRepo, nil)
	hub := realtime.NewHub(tracker, typing)
	notificationService := notification.NewService(
		notificationRepo, tracker, hub, pushClient, userService, pool)
	resolver := collaboration.NewAccessResolver(taskRepo, collabRepo)
	collabService := collaboration.NewService(
		collabRepo, resolver, taskRepo, userService, userService,
		notificationService, mailer, pool, cache,
		cfg.FrontendAddress, cfg.InviteTTL)
	hub.SetMemberSource(collabService)
	userService.SetClaimer(collabService)
	taskService := task.NewService(taskRepo, collabService, notificationService, cache, cfg.FrontendAddress)

	// Initialize handlers
	userHandler := user.NewHandler(userService)
	taskHandler := task.NewHandler(taskService)
	collabHandler := collaboration.NewHandler(collabService)
	notificationHandler := notification.NewHandler(notificationService)

	authMiddleware := &middleware.Auth{
		UserService:    userService,
		InternalSecret: cfg.InternalSecret,
	}

	// Initialize Gin router
	router := gin.Default()
	router.Use(middleware.ErrorHandler())

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}

	if cfg.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		// Restrict origins in production
		corsConfig.AllowOrigins = []string{cfg.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))

	// User routes
	router.POST("/register", userHandler.Register)
	router.POST("/login", userHandler.Login)
	router.POST("/refresh", userHandler.RefreshToken)

	// Invitation token routes work from an email link, session optional
	router.POST("/invitations/:token/accept", authMiddleware.OptionalAuth(), collabHandler.Accept)
	router.POST("/invitations/:token/decline", collabHandler.Decline)

	authed := router.Group("/", authMiddleware.AuthMiddleWare())
	{
		authed.DELETE("/logout", userHandler.Logout)
		authed.GET("/profile", userHandler.GetProfile)
		authed.PUT("/profile/push", userHandler.UpdatePushPreference)
		authed.GET("/users", userHandler.SearchUsers)

		authed.POST("/tasks", taskHandler.Create)
		authed.GET("/tasks", taskHandler.ListOwn)
		authed.GET("/tasks/shared", taskHandler.ListShared)
		authed.GET("/tasks/:id", taskHandler.Show)
		authed.PUT("/tasks/:id", taskHandler.Update)
		authed.DELETE("/tasks/:id", taskHandler.Delete)
		authed.POST("/tasks/:id/restore", taskHandler.Restore)
		authed.POST("/tasks/:id/complete", taskHandler.ToggleComplete)
		authed.POST("/tasks/:id/review-request", taskHandler.RequestReview)

		authed.GET("/tasks/:id/collaborators", collabHandler.ListCollaboratorsFor(domain.EntityTask))
		authed.POST("/tasks/:id/collaborators", collabHandler.InviteFor(domain.EntityTask))
		authed.POST("/tasks/:id/share-links", collabHandler.CreateShareLinkFor(domain.EntityTask))
		authed.DELETE("/invitations/:id", collabHandler.Cancel)
		authed.PUT("/collaborations/:id/role", collabHandler.UpdateRole)
		authed.DELETE("/collaborations/:id", collabHandler.Remove)
		authed.POST("/share-links/:token/redeem", collabHandler.RedeemShareLink)

		authed.GET("/notifications", notificationHandler.List)
		authed.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		authed.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		authed.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
		authed.DELETE("/notifications/:id", notificationHandler.Delete)
		authed.POST("/push-subscriptions", notificationHandler.Subscribe)
		authed.DELETE("/push-subscriptions/:id", notificationHandler.Unsubscribe)

		authed.GET("/ws", hub.ServeWS)
	}

	// internal use routes
	router.GET("/internal/tasks/:id/permission",
		authMiddleware.InternalAuthMiddleware(),
		collabHandler.ShowAccessFor(domain.EntityTask))

	// Server configuration
	serverPort := cfg.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		log.Printf("Server listening on port %s", serverPort)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Println("Server shutdown error:", err)
	}

	<-ctx.Done()
	log.Println("Server shutdown complete")
}
