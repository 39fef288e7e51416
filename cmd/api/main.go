package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/viknesh-web/grocery-management-api-sub001/internal/auth"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/cart"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/categories"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/config"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/customers"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/dashboard"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/db"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/geocode"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/jobs"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/notify"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/orders"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/priceupdates"
	"github.com/viknesh-web/grocery-management-api-sub001/internal/products"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
	cfg := config.Load()

	ctx := context.Background()
	pool, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.Options{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := db.Bootstrap(ctx, pool); err != nil {
		log.Fatalf("bootstrap schema: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("redis unavailable, caching disabled: %v", err)
			redisClient = nil
		}
	}

	jwtMgr := auth.NewJWTManager(auth.JWTConfig{
		Issuer:         cfg.JWTIssuer,
		AccessSecret:   cfg.JWTAccessSecret,
		RefreshSecret:  cfg.JWTRefreshSecret,
		AccessTTLMin:   cfg.AccessTokenTTLMin,
		RefreshTTLDays: cfg.RefreshTokenTTLDays,
	})

	authHandler := auth.NewHandler(auth.Dependencies{
		JWT:     jwtMgr,
		Users:   auth.NewUserRepo(pool),
		Refresh: auth.NewRefreshRepo(pool),
	})

	categoryRepo := categories.NewRepo(pool)
	productRepo := products.NewRepo(pool)
	customerRepo := customers.NewRepo(pool)
	priceUpdateRepo := priceupdates.NewRepo(pool)
	orderRepo := orders.NewRepo(pool)
	cartRepo := cart.NewRepo(pool)
	jobRepo := jobs.NewRepo(pool, cfg.JobMaxAttempts)
	dashboardRepo := dashboard.NewRepo(pool)

	orderSvc := orders.NewService(productRepo, orderRepo)

	sender := notify.NewCloudAPISender(notify.CloudAPIConfig{
		BaseURL: cfg.WhatsAppBaseURL,
		Token:   cfg.WhatsAppToken,
		PhoneID: cfg.WhatsAppPhoneID,
	})
	dispatcher := notify.NewDispatcher(customerRepo, productRepo, sender, jobRepo)

	geocoder := geocode.NewCachedSearcher(
		geocode.NewClient(cfg.GeocodeBaseURL),
		redisClient,
		time.Duration(cfg.GeocodeCacheTTLMin)*time.Minute,
	)

	categoryHandler := categories.NewHandler(categoryRepo)
	productHandler := products.NewHandler(productRepo)
	customerHandler := customers.NewHandler(customerRepo)
	priceUpdateHandler := priceupdates.NewHandler(priceUpdateRepo)
	orderHandler := orders.NewHandler(orderRepo, orderSvc)
	cartHandler := cart.NewHandler(cartRepo, productRepo, orderSvc, customerRepo)
	jobHandler := jobs.NewHandler(jobRepo)
	notifyHandler := notify.NewHandler(dispatcher)
	geocodeHandler := geocode.NewHandler(geocoder)
	dashboardHandler := dashboard.NewHandler(dashboardRepo)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	if cfg.CORSOrigins == "*" || cfg.CORSOrigins == "" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = strings.Split(cfg.CORSOrigins, ",")
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	api := r.Group("/api")

	// Public storefront routes.
	api.GET("/categories", categoryHandler.ListPublic)
	api.GET("/products", productHandler.ListPublic)
	api.GET("/products/search", productHandler.Search)
	api.GET("/products/:id", productHandler.Show)
	api.GET("/orders/track/:number", orderHandler.Track)
	api.GET("/geocode/search", geocodeHandler.Search)

	api.POST("/cart", cartHandler.Create)
	api.GET("/cart/:token", cartHandler.Show)
	api.PUT("/cart/:token/items", cartHandler.PutItem)
	api.DELETE("/cart/:token/items/:productId", cartHandler.RemoveItem)
	api.PUT("/cart/:token/customer", cartHandler.SetCustomer)
	api.GET("/cart/:token/review", cartHandler.Review)
	api.POST("/cart/:token/confirm", cartHandler.Confirm)

	authGroup := api.Group("/auth")
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(auth.AuthMiddleware(jwtMgr))
	protected.GET("/auth/me", authHandler.Me)
	protected.POST("/auth/password", authHandler.ChangePassword)

	admin := protected.Group("/admin")
	admin.Use(auth.RequireRole("admin"))

	admin.GET("/dashboard", dashboardHandler.Overview)
	admin.GET("/dashboard/low-stock", dashboardHandler.LowStock)

	admin.GET("/categories", categoryHandler.Index)
	admin.GET("/categories/:id", categoryHandler.Show)
	admin.POST("/categories", categoryHandler.Store)
	admin.PUT("/categories/:id", categoryHandler.Update)
	admin.PATCH("/categories/:id/toggle", categoryHandler.ToggleStatus)
	admin.DELETE("/categories/:id", categoryHandler.Destroy)

	admin.GET("/products", productHandler.Index)
	admin.POST("/products", productHandler.Store)
	admin.PUT("/products/:id", productHandler.Update)
	admin.PATCH("/products/:id/toggle", productHandler.ToggleStatus)
	admin.DELETE("/products/:id", productHandler.Destroy)
	admin.POST("/products/bulk-price-update", productHandler.BulkUpdate)
	admin.POST("/products/:id/discounts", productHandler.AddDiscount)
	admin.PUT("/products/:id/discounts/:discountId", productHandler.UpdateDiscount)
	admin.DELETE("/products/:id/discounts/:discountId", productHandler.DeleteDiscount)

	admin.GET("/price-updates", priceUpdateHandler.Index)
	admin.GET("/price-updates/recent", priceUpdateHandler.Recent)

	admin.GET("/customers", customerHandler.Index)
	admin.GET("/customers/:id", customerHandler.Show)
	admin.POST("/customers", customerHandler.Store)
	admin.PUT("/customers/:id", customerHandler.Update)
	admin.PATCH("/customers/:id/toggle", customerHandler.ToggleStatus)
	admin.DELETE("/customers/:id", customerHandler.Destroy)

	admin.GET("/orders", orderHandler.Index)
	admin.GET("/orders/:id", orderHandler.Show)
	admin.PATCH("/orders/:id/status", orderHandler.UpdateStatus)

	admin.POST("/whatsapp/send", notifyHandler.Send)
	admin.POST("/whatsapp/validate-number", notifyHandler.ValidateNumber)
	admin.GET("/whatsapp/price-list.pdf", notifyHandler.PriceListPDF)

	admin.GET("/jobs/failed", jobHandler.ListFailed)
	admin.POST("/jobs/:id/retry", jobHandler.Retry)

	log.Printf("listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
