package main

import (
	"log"
	"net/http"

	"chatbridge/internal/api"
	"chatbridge/internal/config"
	"chatbridge/internal/database"
	"chatbridge/internal/dispatch"
	"chatbridge/internal/store"
	"chatbridge/internal/webhook"
	"chatbridge/internal/whatsapp"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	r := gin.Default()
	r.HandleMethodNotAllowed = true

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	whatsappClient := whatsapp.NewClient(cfg)
	firmStore := store.NewFirmStore(db)
	chatUserStore := store.NewChatUserStore(db)
	messageLogStore := store.NewMessageLogStore(db)
	dispatcher := dispatch.NewDispatcher(firmStore, chatUserStore, messageLogStore, whatsappClient)
	webhookHandler := webhook.NewHandler(cfg, dispatcher)
	dashboardHandler := api.NewDashboardHandler(messageLogStore, whatsappClient)
	firmHandler := api.NewFirmHandler(db)

	// Webhook Routes
	r.GET("/webhook", webhookHandler.VerifyWebhook)
	r.POST("/webhook", webhookHandler.HandleMessage)

	// Dashboard API Routes
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/messages", dashboardHandler.GetMessages)
		apiGroup.POST("/send", dashboardHandler.SendMessage)

		// Firm Admin Routes
		apiGroup.GET("/firms", firmHandler.GetFirms)
		apiGroup.POST("/firms", firmHandler.CreateFirm)
		apiGroup.GET("/firms/:id", firmHandler.GetFirm)
		apiGroup.PUT("/firms/:id", firmHandler.UpdateFirm)
		apiGroup.DELETE("/firms/:id", firmHandler.DeleteFirm)
		apiGroup.POST("/firms/:id/toggle", firmHandler.ToggleFirm)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
