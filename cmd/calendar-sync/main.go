package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/models"
	"github.com/growship/commerce_backend/workflow"
	"github.com/joho/godotenv"
)

// Scheduled calendar reconciliation: recomputes derived events for one
// brand or for all active brands. Run from cron / Cloud Scheduler.
func main() {
	godotenv.Load()

	brandId := flag.String("brand", "", "sync a single brand id (default: all active brands)")
	types := flag.String("types", "", "comma separated event types (default: all)")
	flag.Parse()

	var eventTypes []string
	if *types != "" {
		eventTypes = strings.Split(*types, ",")
	}

	config.ConnectDatabaseWithRetry()
	ctx := context.Background()

	var brandIds []string
	if *brandId != "" {
		brandIds = []string{*brandId}
	} else {
		db := config.GetDB()
		if err := db.WithContext(ctx).Model(&models.Brand{}).Where("is_active = ?", true).Pluck("id", &brandIds).Error; err != nil {
			log.Fatalf("list brands: %v", err)
		}
	}

	for _, id := range brandIds {
		counts, err := workflow.SyncCalendarEvents(ctx, id, eventTypes)
		if err != nil {
			log.Printf("brand %s: sync failed: %v", id, err)
			continue
		}
		log.Printf("brand %s: created=%d updated=%d cancelled=%d", id, counts.Created, counts.Updated, counts.Cancelled)
	}
}
