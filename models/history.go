package models

import (
	"context"
	"time"

	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/utils"
)

// History records status transitions for audit (orders and purchase
// orders). Append only.
type History struct {
	ID            int       `gorm:"primaryKey" json:"id"`
	BrandId       string    `gorm:"type:char(36);index" json:"brand_id"`
	ReferenceType string    `gorm:"type:varchar(30);index" json:"reference_type"`
	ReferenceId   int       `gorm:"index" json:"reference_id"`
	FromStatus    string    `gorm:"type:varchar(30)" json:"from_status"`
	ToStatus      string    `gorm:"type:varchar(30)" json:"to_status"`
	Note          string    `gorm:"type:varchar(500)" json:"note"`
	CreatedBy     string    `gorm:"type:char(36)" json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

func RecordHistory(ctx context.Context, referenceType string, referenceId int, fromStatus string, toStatus string, note string) {
	db := config.GetDB()
	brandId, _ := utils.GetBrandIdFromContext(ctx)
	userId, _ := utils.GetUserIdFromContext(ctx)

	row := History{
		BrandId:       brandId,
		ReferenceType: referenceType,
		ReferenceId:   referenceId,
		FromStatus:    fromStatus,
		ToStatus:      toStatus,
		Note:          note,
		CreatedBy:     userId,
	}
	if err := db.WithContext(ctx).Create(&row).Error; err != nil {
		config.LogError(config.GetLogger(), "models", "RecordHistory", referenceType, row, err)
	}
}

func ListHistory(ctx context.Context, referenceType string, referenceId int) ([]*History, error) {
	db := config.GetDB()
	brandId, _ := utils.GetBrandIdFromContext(ctx)

	var rows []*History
	err := db.WithContext(ctx).
		Where("brand_id = ? AND reference_type = ? AND reference_id = ?", brandId, referenceType, referenceId).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
