package main

import (
	"context"
	"flag"
	"log"

	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/models"
	"github.com/joho/godotenv"
)

// Seeds a super admin account and, optionally, a first brand. Intended for
// fresh environments; refuses to overwrite an existing account.
func main() {
	godotenv.Load()

	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "admin password (required)")
	name := flag.String("name", "Administrator", "display name")
	brandName := flag.String("brand", "", "also create a brand with this name")
	brandSlug := flag.String("brand-slug", "", "slug for the created brand")
	migrate := flag.Bool("migrate", false, "run auto migration first")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("-email and -password are required")
	}

	config.ConnectDatabaseWithRetry()
	ctx := context.Background()

	if *migrate {
		if err := models.MigrateDatabase(config.GetDB()); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		log.Println("migration done")
	}

	if _, err := models.GetUserProfileByEmail(ctx, *email); err == nil {
		log.Fatalf("account %s already exists", *email)
	}

	profile, err := models.CreateUserProfile(ctx, models.NewUserProfile{
		Email:    *email,
		Password: *password,
		FullName: *name,
		Role:     string(models.RoleSuperAdmin),
	})
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}
	if _, err := models.UpdateUserStatus(ctx, profile.ID, models.UserStatusApproved); err != nil {
		log.Fatalf("approve admin: %v", err)
	}
	log.Printf("created super admin %s (%s)", profile.Email, profile.ID)

	if *brandName != "" {
		slug := *brandSlug
		if slug == "" {
			log.Fatal("-brand-slug is required with -brand")
		}
		brand, err := models.CreateBrand(ctx, models.NewBrand{Name: *brandName, Slug: slug})
		if err != nil {
			log.Fatalf("create brand: %v", err)
		}
		log.Printf("created brand %s (%s)", brand.Name, brand.ID)
	}
}
