package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"protector-server/chat"
	"protector-server/config"
	"protector-server/database"
	"protector-server/jobs"
	"protector-server/middleware"
	"protector-server/models"
	"protector-server/payments"
	"protector-server/routes"
	"protector-server/services"
	"protector-server/store"
	ws "protector-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	config.Load()

	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Stores
	bookingStore := store.NewBookingStore(database.DB)
	messageStore := store.NewMessageStore(database.DB)

	// Chat service over the Postgres change feed
	feed := chat.NewPostgresFeed(config.AppConfig.Database.URL)
	resyncEvery := time.Duration(config.AppConfig.Chat.ResyncSeconds) * time.Second
	chatService := chat.NewService(messageStore, feed, resyncEvery)
	if err := chatService.Start(); err != nil {
		log.Fatal("Failed to start chat service:", err)
	}
	defer chatService.Stop()

	// Status transitions become system messages in the thread
	notifier := chat.NewStatusNotifier(messageStore)
	bookingStore.Notify(func(t models.StatusTransition) {
		if err := notifier.HandleTransition(t); err != nil {
			log.Printf("❌ Failed to announce transition %s: %v", t.TransitionID, err)
		}
	})

	// Payment sub-flow
	gateway := payments.NewPaystackClient(config.AppConfig.Paystack.SecretKey, config.AppConfig.Paystack.BaseURL)
	paymentService := payments.NewService(
		gateway,
		messageStore,
		bookingStore,
		payments.NewGormSessionStore(database.DB),
		config.AppConfig.Paystack.CallbackURL,
	)

	jwtService := services.NewJWTService()
	provisioningService := services.NewProvisioningService(database.DB)

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.InputValidationMiddleware())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(middleware.CORSMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"message":  "Protector server is running",
			"degraded": chatService.Degraded(),
			"time":     time.Now().UTC(),
		})
	})

	// WebSocket fan-out hub
	hub := ws.NewHub(chatService)
	go hub.Run()

	routes.ChatRoutes(router, hub, chatService, bookingStore)

	api := router.Group("/api/v1")
	{
		authRoutes := api.Group("/auth")
		authRoutes.Use(middleware.AuthRateLimitMiddleware())
		routes.RegisterAuthRoutes(authRoutes, jwtService)

		serviceRoutes := api.Group("/services")
		routes.RegisterServiceRoutes(serviceRoutes)

		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			routes.RegisterBookingRoutes(protected.Group("/bookings"), bookingStore)
			routes.RegisterInvoiceRoutes(protected.Group("/invoices"), chatService, bookingStore)
			routes.RegisterPaymentRoutes(protected.Group("/payments"), paymentService, bookingStore)
			routes.RegisterAdminRoutes(protected.Group("/admin"), provisioningService)
		}
	}

	// Cancel pending bookings nobody accepted in time
	expiration := jobs.NewExpirationJob(bookingStore,
		time.Duration(config.AppConfig.Booking.PendingExpiryHours)*time.Hour)
	expiration.Start()
	defer expiration.Stop()

	port := config.AppConfig.Server.Port
	log.Printf("🚀 Protector server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server failed:", err)
	}
}
