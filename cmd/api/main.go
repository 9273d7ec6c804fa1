package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mibel-dam/internal/api/handlers"
	"mibel-dam/internal/api/middleware"
	"mibel-dam/internal/config"
)

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}

	var log *zap.Logger
	var err error
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.Default()
	if path := os.Getenv("API_CONFIG"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			log.Fatal("load config", zap.String("path", path), zap.Error(err))
		}
		cfg = *loaded
	}

	router := gin.New()
	router.Use(middleware.CORS())
	router.Use(middleware.Logger(log))
	router.Use(middleware.ErrorHandler())

	clearingHandler := handlers.NewClearingHandler(log, cfg)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/clear", clearingHandler.RunClearing)
	}

	log.Info("listening", zap.String("port", port))
	if err := router.Run(":" + port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
