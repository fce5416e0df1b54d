package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/utils"
)

type Brand struct {
	ID        string    `gorm:"primaryKey;type:char(36)" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(100);uniqueIndex" json:"slug"`
	LogoUrl   string    `gorm:"type:varchar(500)" json:"logo_url"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewBrand struct {
	Name    string `json:"name" binding:"required"`
	Slug    string `json:"slug" binding:"required"`
	LogoUrl string `json:"logo_url"`
}

func CreateBrand(ctx context.Context, input NewBrand) (*Brand, error) {
	db := config.GetDB()

	var count int64
	if err := db.WithContext(ctx).Model(&Brand{}).Where("slug = ?", input.Slug).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("duplicate slug")
	}

	brand := Brand{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Slug:     input.Slug,
		LogoUrl:  input.LogoUrl,
		IsActive: true,
	}
	if err := db.WithContext(ctx).Create(&brand).Error; err != nil {
		if utils.IsDuplicateKeyError(err) {
			return nil, errors.New("duplicate slug")
		}
		return nil, err
	}
	return &brand, nil
}

func GetBrand(ctx context.Context, id string) (*Brand, error) {
	db := config.GetDB()
	var brand Brand
	if err := db.WithContext(ctx).First(&brand, "id = ?", id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &brand, nil
}
