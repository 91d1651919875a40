package main

import (
	"golang-cart-backend/configs"
	"golang-cart-backend/internal/handlers"
	"golang-cart-backend/internal/middleware"
	"golang-cart-backend/internal/models"
	"golang-cart-backend/internal/repositories"
	"golang-cart-backend/internal/services"
	"golang-cart-backend/pkg/auth"
	"golang-cart-backend/pkg/cache"
	"golang-cart-backend/pkg/database"
	"golang-cart-backend/pkg/messaging"
	"log"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config := configs.LoadConfig()

	// Set Gin mode
	gin.SetMode(config.Server.Mode)

	// Initialize database connections
	db, err := database.NewDatabase(config.Database.PostgresURL, config.Database.MongoURL, config.Database.MongoDBName)
	if err != nil {
		log.Fatal("Failed to connect to databases:", err)
	}
	defer db.Close()

	// Auto-migrate PostgreSQL tables
	if err := autoMigratePostgres(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize Redis (local cart store + caches)
	redisCache := cache.NewRedisCache(config.Redis.URL, config.Redis.Password, config.Redis.DB)
	if redisCache == nil {
		log.Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	// Initialize Kafka producer for cart events
	kafkaProducer := messaging.NewKafkaProducer(config.Kafka.Brokers)
	defer kafkaProducer.Close()

	// Initialize JWT manager (access: config hours, refresh: 30 days)
	jwtManager := auth.NewJWTManager(config.JWT.SecretKey, config.JWT.ExpiryHours, 30)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db.Postgres)
	cartRepo := repositories.NewCartRepository(db.Postgres)
	cartItemRepo := repositories.NewCartItemRepository(db.Postgres)
	couponRepo := repositories.NewCouponRepository(db.Postgres)
	localCartRepo := repositories.NewLocalCartRepository(redisCache)

	// MongoDB repositories
	productRepo := repositories.NewProductRepository(db.MongoDB)

	// Initialize services
	userService := services.NewUserService(userRepo)
	productService := services.NewProductService(productRepo, redisCache)
	couponService := services.NewCouponService(couponRepo)
	remoteCartService := services.NewRemoteCartService(cartRepo, cartItemRepo, redisCache)
	eventSink := services.NewKafkaNotificationSink(kafkaProducer, config.Kafka.Brokers, config.Kafka.EventTopic)

	cartEngine := services.NewCartEngine(
		localCartRepo,
		remoteCartService,
		productService,
		couponService,
		eventSink,
		config.Cart.FreshnessWindow,
	)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	// Initialize handlers
	cartHandler := handlers.NewCartHandler(cartEngine, productService, userService)
	couponHandler := handlers.NewCouponHandler(couponService)
	productHandler := handlers.NewProductHandler(productService)

	// Initialize Gin router
	router := gin.New()

	// Global middleware
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.RequestIDMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "golang-cart-backend",
		})
	})

	// API routes
	api := router.Group("/api/v1")

	// Register routes
	cartHandler.RegisterRoutes(api, authMiddleware)
	couponHandler.RegisterRoutes(api, authMiddleware)
	productHandler.RegisterRoutes(api, authMiddleware)

	log.Printf("Server starting on port %s", config.Server.Port)
	log.Fatal(router.Run(":" + config.Server.Port))
}

func autoMigratePostgres(db *database.Database) error {
	return db.Postgres.AutoMigrate(
		&models.User{},
		&models.Cart{},
		&models.CartItem{},
		&models.Coupon{},
	)
}
