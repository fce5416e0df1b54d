package models

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/utils"
	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ProductId   int             `json:"product_id"`
	Sku         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type OrderItems []OrderItem

func (items OrderItems) Value() (driver.Value, error) {
	return json.Marshal(items)
}

func (items *OrderItems) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, items)
	case string:
		return json.Unmarshal([]byte(v), items)
	case nil:
		*items = nil
		return nil
	}
	return errors.New("unsupported order items column type")
}

type Order struct {
	ID              int             `gorm:"primaryKey" json:"id"`
	OrderNumber     string          `gorm:"type:varchar(50);index;not null" json:"order_number"`
	BrandId         string          `gorm:"type:char(36);index;not null" json:"brand_id"`
	DistributorId   *string         `gorm:"type:char(36);index" json:"distributor_id"`
	Status          OrderStatus     `gorm:"type:varchar(20);index;default:pending" json:"status"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);default:unpaid" json:"payment_status"`
	Items           OrderItems      `gorm:"type:json" json:"items"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(20,4)" json:"total_amount"`
	ShippingAddress string          `gorm:"type:varchar(500)" json:"shipping_address"`
	ShippingCity    string          `gorm:"type:varchar(100)" json:"shipping_city"`
	ShippingCountry string          `gorm:"type:varchar(100)" json:"shipping_country"`
	TrackingNumber  string          `gorm:"type:varchar(100)" json:"tracking_number"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedBy       string          `gorm:"type:char(36)" json:"created_by"`
	UpdatedBy       string          `gorm:"type:char(36)" json:"updated_by"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type NewOrderItem struct {
	ProductId int             `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

type NewOrder struct {
	DistributorId   *string        `json:"distributor_id"`
	Items           []NewOrderItem `json:"items" binding:"required,min=1"`
	ShippingAddress string         `json:"shipping_address"`
	ShippingCity    string         `json:"shipping_city"`
	ShippingCountry string         `json:"shipping_country"`
	Notes           string         `json:"notes"`
}

func CreateOrder(ctx context.Context, input NewOrder) (*Order, error) {
	db := config.GetDB()
	brandId, _ := utils.GetBrandIdFromContext(ctx)
	userId, _ := utils.GetUserIdFromContext(ctx)
	if brandId == "" {
		return nil, errors.New("brand scope is required")
	}

	if input.DistributorId != nil {
		if err := GuardDistributorScope(ctx, *input.DistributorId); err != nil {
			return nil, err
		}
	}

	items := make(OrderItems, 0, len(input.Items))
	total := decimal.Zero
	for _, line := range input.Items {
		if !line.Quantity.IsPositive() {
			return nil, errors.New("quantity must be positive")
		}
		product, err := utils.FetchModel[Product](ctx, brandId, line.ProductId)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", line.ProductId, err)
		}
		lineTotal := product.UnitPrice.Mul(line.Quantity)
		items = append(items, OrderItem{
			ProductId:   product.ID,
			Sku:         product.Sku,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.UnitPrice,
			LineTotal:   lineTotal,
		})
		total = total.Add(lineTotal)
	}

	seq, err := utils.GetSequence[Order](ctx, brandId, "order")
	if err != nil {
		return nil, err
	}

	order := Order{
		OrderNumber:     fmt.Sprintf("ORD-%06d", seq),
		BrandId:         brandId,
		DistributorId:   input.DistributorId,
		Status:          OrderStatusPending,
		PaymentStatus:   PaymentStatusUnpaid,
		Items:           items,
		TotalAmount:     total,
		ShippingAddress: input.ShippingAddress,
		ShippingCity:    input.ShippingCity,
		ShippingCountry: input.ShippingCountry,
		Notes:           input.Notes,
		CreatedBy:       userId,
		UpdatedBy:       userId,
	}
	if err := db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

type UpdateOrderInput struct {
	PaymentStatus   *string `json:"payment_status"`
	ShippingAddress *string `json:"shipping_address"`
	ShippingCity    *string `json:"shipping_city"`
	ShippingCountry *string `json:"shipping_country"`
	TrackingNumber  *string `json:"tracking_number"`
	Notes           *string `json:"notes"`
}

// UpdateOrder handles the mutable metadata only. Status moves through the
// transition workflow, and identity fields (order number, brand, creator)
// never change after creation.
func UpdateOrder(ctx context.Context, id int, input UpdateOrderInput) (*Order, error) {
	db := config.GetDB()
	brandId, _ := utils.GetBrandIdFromContext(ctx)
	userId, _ := utils.GetUserIdFromContext(ctx)

	order, err := utils.FetchModel[Order](ctx, brandId, id)
	if err != nil {
		return nil, err
	}
	if order.Status == OrderStatusCancelled {
		return nil, errors.New("cancelled orders cannot be updated")
	}

	updates := map[string]interface{}{"updated_by": userId}
	if input.PaymentStatus != nil {
		ps := PaymentStatus(*input.PaymentStatus)
		if !ps.IsValid() {
			return nil, errors.New("invalid payment_status")
		}
		updates["payment_status"] = ps
	}
	if input.ShippingAddress != nil {
		updates["shipping_address"] = *input.ShippingAddress
	}
	if input.ShippingCity != nil {
		updates["shipping_city"] = *input.ShippingCity
	}
	if input.ShippingCountry != nil {
		updates["shipping_country"] = *input.ShippingCountry
	}
	if input.TrackingNumber != nil {
		updates["tracking_number"] = *input.TrackingNumber
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}

	if err := db.WithContext(ctx).Model(order).Updates(updates).Error; err != nil {
		return nil, err
	}
	return utils.FetchModel[Order](ctx, brandId, id)
}

type OrderFilter struct {
	Status        string
	PaymentStatus string
	DistributorId string
	Search        string
	DateFrom      *time.Time
	DateTo        *time.Time
	Limit         int
	Offset        int
}

func ListOrders(ctx context.Context, filter OrderFilter) ([]*Order, int64, error) {
	db := config.GetDB()
	brandId, _ := utils.GetBrandIdFromContext(ctx)

	dbCtx := db.WithContext(ctx).Model(&Order{}).Where("brand_id = ?", brandId)
	if distributorId, ok := utils.GetDistributorIdFromContext(ctx); ok && distributorId != "" {
		dbCtx = dbCtx.Where("distributor_id = ?", distributorId)
	} else if filter.DistributorId != "" {
		dbCtx = dbCtx.Where("distributor_id = ?", filter.DistributorId)
	}
	if filter.Status != "" {
		dbCtx = dbCtx.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		dbCtx = dbCtx.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.Search != "" {
		dbCtx = dbCtx.Where("order_number LIKE ? OR tracking_number LIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.DateFrom != nil {
		dbCtx = dbCtx.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		dbCtx = dbCtx.Where("created_at <= ?", *filter.DateTo)
	}

	var total int64
	if err := dbCtx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var orders []*Order
	if err := dbCtx.Order("id DESC").Limit(limit).Offset(filter.Offset).Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

type OrderStats struct {
	TotalOrders     int64           `json:"total_orders"`
	PendingOrders   int64           `json:"pending_orders"`
	ShippedOrders   int64           `json:"shipped_orders"`
	DeliveredOrders int64           `json:"delivered_orders"`
	CancelledOrders int64           `json:"cancelled_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
}

// GetOrderStats summarizes the brand's orders; revenue excludes cancelled.
func GetOrderStats(ctx context.Context) (*OrderStats, error) {
	db := config.GetDB()
	brandId, _ := utils.GetBrandIdFromContext(ctx)

	var stats OrderStats
	type statusCount struct {
		Status OrderStatus
		Count  int64
	}
	var counts []statusCount
	err := db.WithContext(ctx).Model(&Order{}).
		Select("status, COUNT(*) AS count").
		Where("brand_id = ?", brandId).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	for _, c := range counts {
		stats.TotalOrders += c.Count
		switch c.Status {
		case OrderStatusPending:
			stats.PendingOrders = c.Count
		case OrderStatusShipped:
			stats.ShippedOrders = c.Count
		case OrderStatusDelivered:
			stats.DeliveredOrders = c.Count
		case OrderStatusCancelled:
			stats.CancelledOrders = c.Count
		}
	}

	var revenue decimal.NullDecimal
	err = db.WithContext(ctx).Model(&Order{}).
		Select("SUM(total_amount)").
		Where("brand_id = ? AND status <> ?", brandId, OrderStatusCancelled).
		Scan(&revenue).Error
	if err != nil {
		return nil, err
	}
	if revenue.Valid {
		stats.TotalRevenue = revenue.Decimal
	}
	return &stats, nil
}

// GuardDistributorScope verifies the distributor belongs to the caller's
// brand, and that distributor-scoped callers only touch their own.
func GuardDistributorScope(ctx context.Context, distributorId string) error {
	brandId, _ := utils.GetBrandIdFromContext(ctx)
	if _, err := GetDistributor(ctx, brandId, distributorId); err != nil {
		return errors.New("distributor not found")
	}
	if ownId, ok := utils.GetDistributorIdFromContext(ctx); ok && ownId != "" && ownId != distributorId {
		return errors.New("distributor scope mismatch")
	}
	return nil
}
