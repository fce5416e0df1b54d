package models

import (
	"context"
	"errors"
	"time"

	"github.com/growship/commerce_backend/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryTransaction is the append-only stock ledger. One row per stock
// movement with before/after snapshots of all three planes, so on-hand can
// always be replayed from the ledger.
type InventoryTransaction struct {
	ID              int                      `gorm:"primaryKey" json:"id"`
	BrandId         string                   `gorm:"type:char(36);index;not null" json:"brand_id"`
	ProductId       int                      `gorm:"index;not null" json:"product_id"`
	TransactionType InventoryTransactionType `gorm:"type:varchar(30);index;not null" json:"transaction_type"`
	Quantity        decimal.Decimal          `gorm:"type:decimal(20,4)" json:"quantity"`
	OnHandBefore    decimal.Decimal          `gorm:"type:decimal(20,4)" json:"on_hand_before"`
	OnHandAfter     decimal.Decimal          `gorm:"type:decimal(20,4)" json:"on_hand_after"`
	AllocatedBefore decimal.Decimal          `gorm:"type:decimal(20,4)" json:"allocated_before"`
	AllocatedAfter  decimal.Decimal          `gorm:"type:decimal(20,4)" json:"allocated_after"`
	InboundBefore   decimal.Decimal          `gorm:"type:decimal(20,4)" json:"inbound_before"`
	InboundAfter    decimal.Decimal          `gorm:"type:decimal(20,4)" json:"inbound_after"`
	ReferenceType   string                   `gorm:"type:varchar(30);index" json:"reference_type"`
	ReferenceId     int                      `gorm:"index" json:"reference_id"`
	Note            string                   `gorm:"type:varchar(500)" json:"note"`
	CreatedBy       string                   `gorm:"type:char(36)" json:"created_by"`
	CreatedAt       time.Time                `json:"created_at"`
}

// ledger rows are immutable once written
func (t *InventoryTransaction) BeforeSave(tx *gorm.DB) error {
	if t.ID != 0 {
		return errors.New("inventory transactions are append only")
	}
	return nil
}

func ListInventoryTransactions(ctx context.Context, brandId string, productId int, limit int) ([]*InventoryTransaction, error) {
	db := config.GetDB()
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	dbCtx := db.WithContext(ctx).Where("brand_id = ?", brandId)
	if productId > 0 {
		dbCtx = dbCtx.Where("product_id = ?", productId)
	}
	var rows []*InventoryTransaction
	if err := dbCtx.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
