package main

import (
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"gstbilling/internal/handler"
	"gstbilling/internal/middleware"
	"gstbilling/internal/model"
	"gstbilling/internal/tenant"
	"gstbilling/pkg/config"
	"gstbilling/pkg/database"
	"gstbilling/pkg/jwtutil"
	"gstbilling/pkg/logger"
	"gstbilling/prometheus"
)

func main() {
	// Load configuration
	conf, err := config.Load("gstbilling")
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.InitLogger(&logger.LogConfig{
		Level:       conf.Log.Level,
		Environment: conf.Server.Env,
		ServiceName: conf.ServiceName,
	})
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	log.Info("Configuration loaded", conf.LogConfig()...)

	// Initialize the shared database. It holds the companies registry and
	// any legacy single-tenant records awaiting adoption.
	sharedDB, err := database.InitDB(&conf.DB)
	if err != nil {
		log.Fatal("Failed to initialize database")
	}

	if err := database.MigrateModels(sharedDB,
		&model.Company{},
		&model.Party{},
		&model.Product{},
		&model.Voucher{},
		&model.VoucherItem{},
	); err != nil {
		log.Fatal("Failed to migrate database models")
	}

	// Tenant directory: per-company partitions open through the postgres
	// driver with the service pool defaults.
	dbLogLevel := conf.DB.LogLevel
	directory := tenant.NewDirectory(sharedDB, &conf.DB, func(dsn string) (*gorm.DB, error) {
		return database.Open(dsn, dbLogLevel)
	})

	// Initialize JWT utility
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      conf.JWT.SigningKey,
		ExpirationHours: conf.JWT.ExpirationHours,
	})

	// Handlers
	authHandler := handler.NewAuthHandler(sharedDB, jwt, conf.Vendor)
	companyHandler := handler.NewCompanyHandler(sharedDB, directory)
	partyHandler := handler.NewPartyHandler(directory)
	productHandler := handler.NewProductHandler(directory)
	voucherHandler := handler.NewVoucherHandler(directory)

	// Initialize Echo framework
	e := echo.New()

	// Apply middleware
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/vendor/login", authHandler.VendorLogin)

	// Vendor routes - company registry management
	vendor := e.Group("/vendor")
	vendor.Use(middleware.VendorAuthMiddleware(jwt))
	vendor.GET("/companies", companyHandler.List)
	vendor.POST("/companies", companyHandler.Create)
	vendor.PUT("/companies/:id", companyHandler.Update)
	vendor.PUT("/companies/:id/status", companyHandler.SetStatus)
	vendor.DELETE("/companies/:id", companyHandler.Delete)

	// Company routes - tenant-scoped records
	api := e.Group("")
	api.Use(middleware.SessionMiddleware(jwt, directory))

	api.GET("/parties", partyHandler.List)
	api.POST("/parties", partyHandler.Create)
	api.GET("/parties/:id", partyHandler.Get)
	api.PUT("/parties/:id", partyHandler.Update)
	api.DELETE("/parties/:id", partyHandler.Delete)

	api.GET("/products", productHandler.List)
	api.POST("/products", productHandler.Create)
	api.GET("/products/:id", productHandler.Get)
	api.PUT("/products/:id", productHandler.Update)
	api.DELETE("/products/:id", productHandler.Delete)

	api.GET("/vouchers", voucherHandler.List)
	api.POST("/vouchers", voucherHandler.Create)
	api.GET("/vouchers/:id", voucherHandler.Get)
	api.DELETE("/vouchers/:id", voucherHandler.Delete)

	// Start server
	log.Info("Starting gstbilling on port " + conf.Server.Port)
	e.Logger.Fatal(e.Start(":" + conf.Server.Port))
}
