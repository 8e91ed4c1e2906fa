package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"real-estate-site/internal/auth"
	"real-estate-site/internal/catalog"
	"real-estate-site/internal/cleanup"
	"real-estate-site/internal/config"
	"real-estate-site/internal/database"
	"real-estate-site/internal/editor"
	"real-estate-site/internal/handlers"
	"real-estate-site/internal/ratelimit"
	"real-estate-site/internal/scheduler"
	"real-estate-site/internal/search"
	"real-estate-site/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	configPath := getEnv("CONFIG_PATH", "config/config.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	// Initialize database based on configuration. Both backends implement
	// the repository, user store and reference store surfaces.
	var repo editor.Repository
	var users auth.UserStore
	var refs cleanup.ReferenceStore

	dbType := appConfig.Database.Type
	if dbType == "" {
		dbType = getEnv("DB_TYPE", "mysql")
	}

	if dbType == "postgres" {
		log.Println("Using PostgreSQL")
		pgCfg := appConfig.Database.Postgres

		portStr := ""
		if pgCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", pgCfg.Port)
		}

		db, err := database.NewDB(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			getEnvOrConfig(portStr, "DB_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "DB_USER", "realestate_user"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", "realestate_pass"),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "realestate_db"),
			getEnvOrConfig(pgCfg.SSLMode, "DB_SSLMODE", "disable"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		repo, users, refs = db, db, db
	} else {
		log.Println("Using MySQL with GORM")
		mysqlCfg := appConfig.Database.MySQL

		portStr := ""
		if mysqlCfg.Port > 0 {
			portStr = fmt.Sprintf("%d", mysqlCfg.Port)
		}

		gormDB, err := database.NewGormDB(
			getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
			getEnvOrConfig(portStr, "DB_PORT", "3306"),
			getEnvOrConfig(mysqlCfg.User, "DB_USER", "realestate_user"),
			getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "realestate_pass"),
			getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "realestate_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to MySQL: %v", err)
		}
		defer gormDB.Close()

		if err := gormDB.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		repo, users, refs = gormDB, gormDB, gormDB
	}

	// Image store
	imageStore := storage.NewStore(appConfig.Uploads.Dir)
	log.Printf("Image store initialized at %s", imageStore.Dir())

	// Initialize Meilisearch using config
	meilisearchHost := appConfig.Search.Meilisearch.Host
	if meilisearchHost == "" {
		meilisearchHost = getEnv("MEILISEARCH_HOST", "http://meilisearch:7700")
	}
	meilisearchKey := appConfig.Search.Meilisearch.APIKey
	if meilisearchKey == "" {
		meilisearchKey = getEnv("MEILISEARCH_KEY", "masterKey123")
	}

	searchClient := search.NewSearchClient(meilisearchHost, meilisearchKey)
	if err := searchClient.InitIndex(); err != nil {
		log.Printf("Warning: Failed to initialize search index: %v", err)
	}

	// Core services
	propertyEditor := editor.New(repo, imageStore, searchClient)
	propertyCatalog := catalog.New(repo)
	cleanupService := cleanup.NewService(refs, appConfig.Uploads.Dir)

	// Seed the bootstrap admin account on an empty user table
	authService := auth.NewService(users)
	adminUser := getEnvOrConfig(appConfig.Admin.Username, "ADMIN_USERNAME", "admin")
	adminPass := getEnvOrConfig(appConfig.Admin.Password, "ADMIN_PASSWORD", "")
	if adminPass == "" {
		log.Println("Warning: no admin password configured, skipping admin bootstrap")
	} else if err := authService.EnsureAdmin(adminUser, adminPass); err != nil {
		log.Fatalf("Failed to ensure admin account: %v", err)
	}

	// Login throttle
	loginLimiter := ratelimit.NewRateLimiter(
		appConfig.RateLimit.LoginsPerMinute,
		appConfig.RateLimit.LoginsPerHour,
		appConfig.RateLimit.Enabled,
	)
	log.Printf("Login limiter initialized: %d/min, %d/hour (enabled: %v)",
		appConfig.RateLimit.LoginsPerMinute,
		appConfig.RateLimit.LoginsPerHour,
		appConfig.RateLimit.Enabled,
	)

	// Nightly orphan image sweep
	appScheduler := scheduler.NewScheduler(cleanupService, appConfig)
	if err := appScheduler.Start(); err != nil {
		log.Printf("Warning: Failed to start scheduler: %v", err)
	}
	defer appScheduler.Stop()

	// Setup Gin router
	r := gin.Default()
	r.MaxMultipartMemory = appConfig.Uploads.MaxUploadBytes()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	// Session store for the admin back office
	sessionSecret := appConfig.Session.Secret
	if sessionSecret == "" {
		sessionSecret = getEnv("SESSION_SECRET", "")
	}
	if sessionSecret == "" {
		log.Fatal("SESSION_SECRET is required (config session.secret or environment)")
	}
	sessionStore := cookie.NewStore([]byte(sessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(appConfig.Session.SessionMaxAge().Seconds()),
		HttpOnly: true,
	})
	r.Use(sessions.Sessions(appConfig.Session.CookieName, sessionStore))

	publicHandler := handlers.NewPublicHandler(propertyCatalog, searchClient)
	adminHandler := handlers.NewAdminHandler(propertyEditor, authService, cleanupService, loginLimiter)

	// Routes
	r.GET("/health", healthCheck)
	r.Static("/uploads", appConfig.Uploads.Dir)

	r.GET("/api/properties", publicHandler.ListProperties)
	r.GET("/api/properties/featured", publicHandler.GetFeatured)
	r.GET("/api/properties/:id", publicHandler.GetProperty)
	r.GET("/api/search", publicHandler.SearchProperties)

	r.POST("/api/admin/login", adminHandler.Login)
	r.POST("/api/admin/logout", adminHandler.Logout)

	admin := r.Group("/api/admin", auth.AdminRequired())
	{
		admin.POST("/properties", adminHandler.CreateProperty)
		admin.PUT("/properties/:id", adminHandler.UpdateProperty)
		admin.DELETE("/properties/:id", adminHandler.DeleteProperty)
		admin.POST("/properties/:id/gallery/remove", adminHandler.RemoveGalleryImage)

		admin.POST("/cleanup/run", adminHandler.RunSweep)
		admin.GET("/cleanup/logs", adminHandler.GetDeleteLogs)
		admin.GET("/stats", adminHandler.GetStats)
	}
	log.Println("Admin API routes registered at /api/admin/*")

	port := appConfig.Server.Port
	if port == "" {
		port = getEnv("PORT", "8084")
	}
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}
