package main

import (
	"log"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/models"
	"storefront/internal/redis"
	"storefront/internal/repository"
	"storefront/internal/services"
	"storefront/pkg/courier"
	"storefront/pkg/mailer"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis
	redisClient, err := redis.Initialize(cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	// Initialize external clients
	courierClient := courier.NewClient(cfg.CourierAPIURL, cfg.CourierUsername, cfg.CourierPassword)
	mailerClient := mailer.NewClient(cfg.MailerAPIURL, cfg.MailerAPIKey, cfg.MailerSender)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	rewardRepo := repository.NewRewardRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	pincodeRepo := repository.NewPincodeRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	ticketRepo := repository.NewTicketRepository(db)
	bannerRepo := repository.NewBannerRepository(db)

	// Initialize services
	loyaltyService := services.NewLoyaltyService(rewardRepo, userRepo)
	referralService := services.NewReferralService(referralRepo, userRepo, loyaltyService)
	userService := services.NewUserService(userRepo, referralService, redisClient, time.Duration(cfg.SessionTTL)*time.Second)
	couponService := services.NewCouponService(couponRepo)
	serviceabilityService := services.NewServiceabilityService(pincodeRepo, redisClient, time.Duration(cfg.PincodeCacheTTL)*time.Second)
	catalogService := services.NewCatalogService(productRepo, bannerRepo)
	ticketService := services.NewTicketService(ticketRepo)
	reportService := services.NewReportService(orderRepo)
	orderService := services.NewOrderService(
		orderRepo, productRepo, pincodeRepo, referralRepo, userRepo,
		couponService, loyaltyService, referralService,
		courierClient, mailerClient,
	)

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(userService, loyaltyService, referralService, ticketService)
	storefrontHandler := handlers.NewStorefrontHandler(catalogService, serviceabilityService)
	orderHandler := handlers.NewOrderHandler(orderService)
	adminHandler := handlers.NewAdminHandler(couponService, ticketService, reportService, referralService, catalogService, serviceabilityService)

	// Setup routes
	router := gin.Default()

	// Public storefront
	router.POST("/api/auth/register", accountHandler.Register)
	router.POST("/api/auth/login", accountHandler.Login)
	router.GET("/api/products", storefrontHandler.ListProducts)
	router.GET("/api/products/:slug", storefrontHandler.GetProduct)
	router.GET("/api/banners", storefrontHandler.ListBanners)
	router.GET("/api/offers", storefrontHandler.ListOffers)
	router.GET("/api/serviceability/:pincode", storefrontHandler.CheckServiceability)

	// Payment gateway webhook
	router.POST("/api/payments/callback", orderHandler.PaymentCallback)

	// Authenticated account area
	auth := router.Group("/api", handlers.RequireAuth(redisClient))
	{
		auth.POST("/auth/logout", accountHandler.Logout)
		auth.GET("/account/me", accountHandler.Me)
		auth.GET("/account/rewards", accountHandler.Rewards)
		auth.POST("/account/rewards/redeem", accountHandler.RedeemPoints)
		auth.GET("/account/referrals", accountHandler.Referrals)
		auth.POST("/account/tickets", accountHandler.CreateTicket)
		auth.GET("/account/tickets", accountHandler.MyTickets)
		auth.GET("/account/tickets/:id", accountHandler.GetTicket)
		auth.POST("/account/tickets/:id/replies", accountHandler.ReplyTicket)

		auth.POST("/orders", orderHandler.PlaceOrder)
		auth.GET("/orders", orderHandler.ListOrders)
		auth.GET("/orders/:id", orderHandler.GetOrder)

		// Seller and admin surface
		staff := auth.Group("", handlers.RequireRole(models.RoleSeller, models.RoleAdmin))
		{
			staff.PATCH("/orders/:id/status", orderHandler.UpdateStatus)
			staff.POST("/products", storefrontHandler.CreateProduct)
		}

		// Admin back-office
		admin := auth.Group("/admin", handlers.RequireRole(models.RoleAdmin))
		{
			admin.POST("/coupons", adminHandler.CreateCoupon)
			admin.GET("/coupons", adminHandler.ListCoupons)
			admin.DELETE("/coupons/:id", adminHandler.DeactivateCoupon)
			admin.GET("/tickets", adminHandler.ListTickets)
			admin.PATCH("/tickets/:id/status", adminHandler.UpdateTicketStatus)
			admin.POST("/referrals/:id/settle", adminHandler.SettleReferral)
			admin.GET("/reports/sales", adminHandler.SalesSummary)
			admin.GET("/reports/top-products", adminHandler.TopProducts)
			admin.POST("/pincodes", adminHandler.CreatePincode)
			admin.GET("/pincodes", adminHandler.ListPincodes)
			admin.POST("/banners", adminHandler.CreateBanner)
			admin.POST("/offers", adminHandler.CreateOffer)
		}
	}

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
