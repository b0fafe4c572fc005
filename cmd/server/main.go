package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/warblerhq/warbler/internal/broker"
	"github.com/warblerhq/warbler/internal/config"
	"github.com/warblerhq/warbler/internal/database"
	"github.com/warblerhq/warbler/internal/handler"
	"github.com/warblerhq/warbler/internal/middleware"
	"github.com/warblerhq/warbler/internal/repository"
	"github.com/warblerhq/warbler/internal/service"
	"github.com/warblerhq/warbler/internal/session"
	"github.com/warblerhq/warbler/internal/web"
	"github.com/warblerhq/warbler/pkg/logger"
)

func main() {
	cfg := config.Load()
	log.Println("Config loaded successfully")

	isProduction := cfg.Environment == "production"

	if err := logger.Init(!isProduction); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	database.Connect(cfg)
	database.Migrate()

	// Session store (Redis)
	sessionStore, err := session.NewStore(cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	defer sessionStore.Close()

	// Live feed broker (Redis pub/sub)
	warbleBroker, err := broker.NewRedisWarbleBroker(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to initialize warble broker: %v", err)
	}
	defer warbleBroker.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)
	followRepo := repository.NewFollowRepository(database.DB)
	likeRepo := repository.NewLikeRepository(database.DB)

	// Initialize services
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, followRepo, messageRepo, likeRepo)
	messageService := service.NewMessageService(messageRepo, followRepo, likeRepo, warbleBroker)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, sessionStore)
	userHandler := handler.NewUserHandler(userService, messageService, sessionStore)
	messageHandler := handler.NewMessageHandler(messageService, sessionStore)
	homeHandler := handler.NewHomeHandler(messageService, sessionStore)
	feedHandler := handler.NewFeedHandler(warbleBroker, cfg.FeedTokenSecret, cfg.FeedTokenTTL)

	// Setup Gin router
	if isProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.SetHTMLTemplate(web.Templates())

	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.HSTS(isProduction))
	router.Use(middleware.Sessions(sessionStore, userRepo, cfg.SessionTTL, isProduction))

	requireLogin := middleware.RequireLogin(sessionStore)

	// Auth rate limiter
	rateLimiter := middleware.NewRateLimiter(newRedisClient(cfg.RedisURL), middleware.RateLimiterConfig{
		MaxRequests: cfg.RateLimitMaxRequests,
		Window:      cfg.RateLimitWindow,
		BlockTime:   cfg.RateLimitBlockTime,
	})

	// Public routes
	router.GET("/", homeHandler.Home)
	router.GET("/signup", authHandler.ShowSignup)
	router.POST("/signup", rateLimiter.Middleware(), authHandler.Signup)
	router.GET("/login", authHandler.ShowLogin)
	router.POST("/login", rateLimiter.Middleware(), authHandler.Login)
	router.POST("/logout", authHandler.Logout)

	router.GET("/users", userHandler.Index)
	router.GET("/users/:id", userHandler.Show)
	router.GET("/users/:id/following", requireLogin, userHandler.ShowFollowing)
	router.GET("/users/:id/followers", requireLogin, userHandler.ShowFollowers)
	router.GET("/users/:id/likes", requireLogin, userHandler.ShowLikes)
	router.POST("/users/follow/:id", requireLogin, userHandler.Follow)
	router.POST("/users/stop-following/:id", requireLogin, userHandler.Unfollow)
	router.POST("/users/delete", requireLogin, userHandler.Delete)

	router.GET("/messages/new", requireLogin, messageHandler.NewForm)
	router.POST("/messages/new", requireLogin, messageHandler.Create)
	router.GET("/messages/:id", messageHandler.Show)
	router.POST("/messages/:id/delete", requireLogin, messageHandler.Delete)
	router.POST("/messages/:id/like", requireLogin, messageHandler.Like)

	// API surface (live feed)
	api := router.Group("/api")
	api.Use(cors.Default())
	{
		api.GET("/feed/token", requireLogin, feedHandler.Token)
		api.GET("/feed", feedHandler.Stream)
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newRedisClient(redisURL string) *redis.Client {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	return redis.NewClient(opt)
}
