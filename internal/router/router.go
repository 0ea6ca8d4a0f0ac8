// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kon/onlineshop/internal/config"
	"github.com/kon/onlineshop/internal/handlers"
	"github.com/kon/onlineshop/internal/middleware"
	"github.com/kon/onlineshop/internal/services"
	"github.com/kon/onlineshop/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(cfg)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage service")
	}

	authService := services.NewAuthService(db, cfg)
	categoryService := services.NewCategoryService(db)
	attributeService := services.NewAttributeService(db)
	productService := services.NewProductService(db, categoryService, attributeService)
	cartService := services.NewCartService(db)
	orderService := services.NewOrderService(db, notificationService)
	reviewService := services.NewReviewService(db, storageService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, cartService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, productService)
	productHandler := handlers.NewProductHandler(productService, reviewService)
	attributeHandler := handlers.NewAttributeHandler(attributeService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(orderService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS([]string{cfg.Frontend.BaseURL}))
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Category routes
		categories := v1.Group("/categories")
		{
			categories.GET("/tree", categoryHandler.GetTree)
			categories.GET("/:id", categoryHandler.GetSubtree)
			categories.GET("/:id/products", categoryHandler.GetProducts)
			categories.GET("/:id/products/filter", categoryHandler.FilterProducts)
		}

		// Product routes
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.GET("/:id/categories", productHandler.GetProductCategories)
			products.GET("/:id/reviews", reviewHandler.GetReviews)
			products.GET("/:id/rating", reviewHandler.GetRating)

			protected := products.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/:id/reviews", middleware.UploadRateLimit(), reviewHandler.AddReview)
			}
		}

		// Attribute routes
		attributes := v1.Group("/attributes")
		{
			attributes.GET("", attributeHandler.GetAttributes)
			attributes.GET("/:id", attributeHandler.GetAttribute)
		}

		// Cart routes
		cart := v1.Group("/cart")
		cart.Use(middleware.AuthRequired())
		{
			cart.GET("", cartHandler.GetCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items", cartHandler.UpdateItem)
			cart.DELETE("/items/:productId", cartHandler.RemoveItem)
			cart.POST("/merge", cartHandler.MergeCart)
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("/checkout", orderHandler.Checkout)
			orders.GET("", orderHandler.GetOrders)
			orders.GET("/:id", orderHandler.GetOrder)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			adminCategories := admin.Group("/categories")
			{
				adminCategories.POST("", categoryHandler.CreateCategory)
				adminCategories.PUT("/:id", categoryHandler.UpdateCategory)
				adminCategories.DELETE("/:id", categoryHandler.DeleteCategory)
			}

			adminProducts := admin.Group("/products")
			{
				adminProducts.POST("", productHandler.CreateProduct)
				adminProducts.PUT("/:id", productHandler.UpdateProduct)
				adminProducts.DELETE("/:id", productHandler.DeleteProduct)
				adminProducts.PUT("/:id/categories", productHandler.UpdateProductCategories)
				adminProducts.PUT("/:id/attributes", productHandler.UpdateProductAttributes)
			}

			adminAttributes := admin.Group("/attributes")
			{
				adminAttributes.POST("", attributeHandler.CreateAttribute)
				adminAttributes.PUT("/:id", attributeHandler.UpdateAttribute)
				adminAttributes.DELETE("/:id", attributeHandler.DeleteAttribute)
			}

			adminReviews := admin.Group("/reviews")
			{
				adminReviews.DELETE("/:id", reviewHandler.DeleteReview)
			}
		}
	}

	return r
}
