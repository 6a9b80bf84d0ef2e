package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/sbs-nexus/docrisk/alerts"
	"github.com/sbs-nexus/docrisk/contracts"
	"github.com/sbs-nexus/docrisk/documents"
	"github.com/sbs-nexus/docrisk/invoices"
	"github.com/sbs-nexus/docrisk/shared/config"
	"github.com/sbs-nexus/docrisk/shared/events"
	"github.com/sbs-nexus/docrisk/shared/middleware"
	"github.com/sbs-nexus/docrisk/shared/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	// Initialize Redis for the analysis fingerprint cache
	if err := utils.InitRedis(); err != nil {
		logrus.Warnf("Redis unavailable, analysis skip-cache disabled: %v", err)
	}
	defer utils.CloseRedis()

	// Initialize database
	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := config.MigrateSchema(db); err != nil {
		log.Fatal("Failed to migrate schema:", err)
	}

	// Initialize Kafka alert publisher (optional)
	var publisher *events.Publisher
	if broker := os.Getenv("KAFKA_BROKER"); broker != "" {
		publisher, err = events.NewPublisher(broker)
		if err != nil {
			log.Fatal("Failed to initialize Kafka publisher:", err)
		}
		defer publisher.Close()
	} else {
		logrus.Warn("KAFKA_BROKER not set, alert events disabled")
	}

	alertStore := alerts.NewStore(db)
	documentService := documents.NewService(db)
	contractService := contracts.NewService(db, alertStore, publisher)
	invoiceService := invoices.NewService(db)
	reconciler := invoices.NewReconciler(db, alertStore, publisher)
	scanner := invoices.NewScanner(db, alertStore, publisher)

	// Initialize Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		utils.OKResponse(c, "Risk service is healthy", nil)
	})

	// Tenant binding: verified JWT when a JWKS endpoint is configured,
	// X-Tenant-ID header otherwise (internal wiring behind the gateway)
	var requireTenant gin.HandlerFunc
	if jwksURL := os.Getenv("JWKS_URL"); jwksURL != "" {
		requireTenant = middleware.NewTenantMiddleware(jwksURL).RequireTenant()
	} else {
		logrus.Warn("JWKS_URL not set, binding tenant from X-Tenant-ID header")
		requireTenant = middleware.TenantHeaderMiddleware()
	}

	risk := router.Group("/risk")
	risk.Use(requireTenant)
	{
		// Alerts (read-only, append happens through the checks)
		risk.GET("/alerts", handleListAlerts(alertStore))

		// Document metadata lifecycle
		risk.POST("/documents", handleCreateDocument(documentService))
		risk.GET("/documents/:id", handleGetDocument(documentService))
		risk.POST("/documents/:id/processed", handleMarkProcessed(documentService))
		risk.DELETE("/documents/:id", handleSoftDeleteDocument(documentService))

		// Contracts
		risk.POST("/contracts", handleRegisterContract(contractService))
		risk.POST("/contracts/analyze", handleAnalyzeContract(contractService))
		risk.GET("/contracts/analyses/:id", handleGetAnalysis(contractService))

		// Invoices
		risk.POST("/invoices", handleRegisterInvoice(invoiceService))
		risk.POST("/invoices/check-terms", handleCheckPaymentTerms(invoiceService, reconciler))
		risk.POST("/invoices/scan-overdue", handleScanOverdue(scanner))
	}

	// Start server
	port := os.Getenv("RISK_SERVICE_PORT")
	if port == "" {
		port = "8004"
	}

	logrus.Infof("Risk service starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start risk service:", err)
	}
}
