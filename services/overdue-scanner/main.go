package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/sbs-nexus/docrisk/alerts"
	"github.com/sbs-nexus/docrisk/invoices"
	"github.com/sbs-nexus/docrisk/shared/config"
	"github.com/sbs-nexus/docrisk/shared/events"
	"github.com/sbs-nexus/docrisk/shared/tenant"
)

// Batch entrypoint for the overdue invoice scan, run per tenant by the
// external scheduler. Usage: overdue-scanner <tenant-id> [<tenant-id>...]
func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	tenantIDs := os.Args[1:]
	if len(tenantIDs) == 0 {
		log.Fatal("Usage: overdue-scanner <tenant-id> [<tenant-id>...]")
	}

	db, err := config.ConnectDatabase()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	var publisher *events.Publisher
	if broker := os.Getenv("KAFKA_BROKER"); broker != "" {
		publisher, err = events.NewPublisher(broker)
		if err != nil {
			log.Fatal("Failed to initialize Kafka publisher:", err)
		}
		defer publisher.Close()
	}

	scanner := invoices.NewScanner(db, alerts.NewStore(db), publisher)

	failed := false
	for _, tenantID := range tenantIDs {
		ctx, err := tenant.WithTenant(context.Background(), tenantID)
		if err != nil {
			logrus.Errorf("Skipping invalid tenant id %q: %v", tenantID, err)
			failed = true
			continue
		}

		created, err := scanner.ScanOverdue(ctx)
		if err != nil {
			// The scan rolled back; nothing was written for this tenant
			logrus.WithError(err).Errorf("Overdue scan failed for tenant %s", tenantID)
			failed = true
			continue
		}

		logrus.Infof("Tenant %s: %d overdue alert(s) created", tenantID, created)
	}

	if failed {
		os.Exit(1)
	}
}
