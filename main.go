package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/atorhub/Anj-dual-v1/client"
	"github.com/atorhub/Anj-dual-v1/config"
	"github.com/atorhub/Anj-dual-v1/handler"
	"github.com/atorhub/Anj-dual-v1/service"
	"github.com/atorhub/Anj-dual-v1/store"
)

func main() {
	// Initialize configuration
	cfg := config.LoadConfig()

	// Initialize Tesseract client
	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)
	defer tesseractClient.Close()

	// Initialize PDF processor
	pdfProcessor := service.NewPDFProcessor()

	// Initialize history store
	history, err := store.Open(cfg.HistoryDBPath)
	if err != nil {
		log.Fatalf("Failed to open history store: %v", err)
	}
	defer history.Close()

	// Initialize service layer
	invoiceService := service.NewInvoiceService(tesseractClient, pdfProcessor, history, cfg)

	// Initialize handler layer
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)

	// Setup Gin router
	router := gin.Default()

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Invoice Verification",
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		invoice := api.Group("/invoice")
		{
			invoice.POST("/verify", invoiceHandler.VerifyInvoice)
			invoice.POST("/parse", invoiceHandler.ParseText)
			invoice.GET("/history", invoiceHandler.History)
		}
	}

	// Start server
	log.Printf("Starting Invoice Verification Service on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
