package main

import (
	"context"
	"log"

	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/models"
	"github.com/growship/commerce_backend/workflow"
	"github.com/joho/godotenv"
)

// Safety net for the digest queue: rolls up every user's unflushed digest
// items regardless of whether the push delivery fired. Run daily.
func main() {
	godotenv.Load()

	config.ConnectDatabaseWithRetry()
	ctx := context.Background()
	db := config.GetDB()

	type pending struct {
		BrandId string
		UserId  string
	}
	var targets []pending
	err := db.WithContext(ctx).Model(&models.DigestItem{}).
		Select("brand_id, user_id").
		Where("flushed_at IS NULL").
		Group("brand_id, user_id").
		Scan(&targets).Error
	if err != nil {
		log.Fatalf("list pending digests: %v", err)
	}

	total := 0
	for _, t := range targets {
		flushed, err := workflow.FlushDigestItems(ctx, t.BrandId, t.UserId)
		if err != nil {
			log.Printf("user %s: flush failed: %v", t.UserId, err)
			continue
		}
		total += flushed
	}
	log.Printf("flushed %d digest items for %d users", total, len(targets))
}
