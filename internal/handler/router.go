package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/patrickmvla/shiru/internal/config"
)

func SetupRouter(cfg *config.Config, ingest Ingestor, answer Answerer) *gin.Engine {
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/health", healthCheck)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Study Buddy AI server is running!",
		})
	})

	uploadHandler := NewUploadHandler(ingest)
	chatHandler := NewChatHandler(answer)

	api := r.Group("/api")
	{
		api.POST("/upload", uploadHandler.Upload)
		api.POST("/chat", chatHandler.Chat)
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
