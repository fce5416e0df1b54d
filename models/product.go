package models

import (
	"context"
	"errors"
	"time"

	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/utils"
	"github.com/shopspring/decimal"
)

// Product carries the three stock planes. QuantityInStock is physical
// on-hand, AllocatedStock is reserved by open orders, InboundStock is
// expected from approved purchase orders. Available = on-hand - allocated.
type Product struct {
	ID                int             `gorm:"primaryKey" json:"id"`
	BrandId           string          `gorm:"type:char(36);index;not null" json:"brand_id"`
	Sku               string          `gorm:"type:varchar(100);not null" json:"sku"`
	Name              string          `gorm:"type:varchar(255);not null" json:"name"`
	Description       string          `gorm:"type:text" json:"description"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(20,4)" json:"unit_price"`
	QuantityInStock   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity_in_stock"`
	AllocatedStock    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"allocated_stock"`
	InboundStock      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"inbound_stock"`
	LowStockThreshold decimal.Decimal `gorm:"type:decimal(20,4);default:10" json:"low_stock_threshold"`
	CriticalThreshold decimal.Decimal `gorm:"type:decimal(20,4);default:3" json:"critical_threshold"`
	EnableStockAlerts bool            `gorm:"default:true" json:"enable_stock_alerts"`
	IsActive          bool            `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (p *Product) AvailableStock() decimal.Decimal {
	return p.QuantityInStock.Sub(p.AllocatedStock)
}

type NewProduct struct {
	Sku               string           `json:"sku" binding:"required"`
	Name              string           `json:"name" binding:"required"`
	Description       string           `json:"description"`
	UnitPrice         decimal.Decimal  `json:"unit_price"`
	QuantityInStock   decimal.Decimal  `json:"quantity_in_stock"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold"`
	CriticalThreshold *decimal.Decimal `json:"critical_threshold"`
	EnableStockAlerts *bool            `json:"enable_stock_alerts"`
}

func CreateProduct(ctx context.Context, input NewProduct) (*Product, error) {
	db := config.GetDB()
	brandId, _ := utils.GetBrandIdFromContext(ctx)
	if brandId == "" {
		return nil, errors.New("brand scope is required")
	}

	if err := utils.ValidateUnique[Product](ctx, brandId, "sku", input.Sku, 0); err != nil {
		return nil, err
	}
	if input.QuantityInStock.IsNegative() {
		return nil, errors.New("quantity_in_stock must not be negative")
	}

	product := Product{
		BrandId:           brandId,
		Sku:               input.Sku,
		Name:              input.Name,
		Description:       input.Description,
		UnitPrice:         input.UnitPrice,
		QuantityInStock:   input.QuantityInStock,
		LowStockThreshold: decimal.NewFromInt(10),
		CriticalThreshold: decimal.NewFromInt(3),
		EnableStockAlerts: true,
		IsActive:          true,
	}
	if input.LowStockThreshold != nil {
		product.LowStockThreshold = *input.LowStockThreshold
	}
	if input.CriticalThreshold != nil {
		product.CriticalThreshold = *input.CriticalThreshold
	}
	if input.EnableStockAlerts != nil {
		product.EnableStockAlerts = *input.EnableStockAlerts
	}
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

type UpdateProductInput struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	UnitPrice         *decimal.Decimal `json:"unit_price"`
	LowStockThreshold *decimal.Decimal `json:"low_stock_threshold"`
	CriticalThreshold *decimal.Decimal `json:"critical_threshold"`
	EnableStockAlerts *bool            `json:"enable_stock_alerts"`
	IsActive          *bool            `json:"is_active"`
}

// UpdateProduct never touches the stock columns; those only move through
// the inventory workflow so every change has a ledger row.
func UpdateProduct(ctx context.Context, id int, input UpdateProductInput) (*Product, error) {
	db := config.GetDB()
	brandId, _ := utils.GetBrandIdFromContext(ctx)

	product, err := utils.FetchModel[Product](ctx, brandId, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.UnitPrice != nil {
		updates["unit_price"] = *input.UnitPrice
	}
	if input.LowStockThreshold != nil {
		updates["low_stock_threshold"] = *input.LowStockThreshold
	}
	if input.CriticalThreshold != nil {
		updates["critical_threshold"] = *input.CriticalThreshold
	}
	if input.EnableStockAlerts != nil {
		updates["enable_stock_alerts"] = *input.EnableStockAlerts
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return product, nil
	}

	if err := db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
		return nil, err
	}
	return utils.FetchModel[Product](ctx, brandId, id)
}

func ListProducts(ctx context.Context, activeOnly bool) ([]*Product, error) {
	db := config.GetDB()
	brandId, _ := utils.GetBrandIdFromContext(ctx)

	dbCtx := db.WithContext(ctx).Where("brand_id = ?", brandId)
	if activeOnly {
		dbCtx = dbCtx.Where("is_active = ?", true)
	}
	var products []*Product
	if err := dbCtx.Order("sku").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
