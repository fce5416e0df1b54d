package models

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/utils"
)

type Distributor struct {
	ID        string    `gorm:"primaryKey;type:char(36)" json:"id"`
	BrandId   string    `gorm:"type:char(36);index;not null" json:"brand_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Region    string    `gorm:"type:varchar(100)" json:"region"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NewDistributor struct {
	Name   string `json:"name" binding:"required"`
	Region string `json:"region"`
}

func CreateDistributor(ctx context.Context, input NewDistributor) (*Distributor, error) {
	db := config.GetDB()
	brandId, _ := utils.GetBrandIdFromContext(ctx)

	distributor := Distributor{
		ID:       uuid.NewString(),
		BrandId:  brandId,
		Name:     input.Name,
		Region:   input.Region,
		IsActive: true,
	}
	if err := db.WithContext(ctx).Create(&distributor).Error; err != nil {
		return nil, err
	}
	return &distributor, nil
}

func GetDistributor(ctx context.Context, brandId string, id string) (*Distributor, error) {
	db := config.GetDB()
	var distributor Distributor
	if err := db.WithContext(ctx).Where("brand_id = ?", brandId).First(&distributor, "id = ?", id).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &distributor, nil
}
