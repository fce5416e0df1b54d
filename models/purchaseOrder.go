package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/utils"
	"github.com/shopspring/decimal"
)

type PurchaseOrderLine struct {
	ID                 int             `gorm:"primaryKey" json:"id"`
	PurchaseOrderId    int             `gorm:"index;not null" json:"purchase_order_id"`
	ProductId          int             `gorm:"index;not null" json:"product_id"`
	Sku                string          `gorm:"type:varchar(100)" json:"sku"`
	ProductName        string          `gorm:"type:varchar(255)" json:"product_name"`
	RequestedQty       decimal.Decimal `gorm:"type:decimal(20,4)" json:"requested_qty"`
	AvailableStockSnap decimal.Decimal `gorm:"type:decimal(20,4)" json:"available_stock_snap"`
	ApprovedQty        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"approved_qty"`
	BackorderQty       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"backorder_qty"`
	RejectedQty        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rejected_qty"`
	UnitPrice          decimal.Decimal `gorm:"type:decimal(20,4)" json:"unit_price"`
	LineStatus         POLineStatus    `gorm:"type:varchar(30);default:pending" json:"line_status"`
	DecisionOverridden bool            `gorm:"default:false" json:"decision_overridden"`
	DecisionNote       string          `gorm:"type:varchar(500)" json:"decision_note"`
	DecidedBy          string          `gorm:"type:char(36)" json:"decided_by"`
	DecidedAt          *time.Time      `json:"decided_at"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

type PurchaseOrder struct {
	ID                 int                 `gorm:"primaryKey" json:"id"`
	PoNumber           string              `gorm:"type:varchar(50);index;not null" json:"po_number"`
	BrandId            string              `gorm:"type:char(36);index;not null" json:"brand_id"`
	DistributorId      *string             `gorm:"type:char(36);index" json:"distributor_id"`
	Status             PurchaseOrderStatus `gorm:"type:varchar(20);index;default:draft" json:"status"`
	Lines              []PurchaseOrderLine `gorm:"foreignKey:PurchaseOrderId" json:"lines"`
	TotalAmount        decimal.Decimal     `gorm:"type:decimal(20,4)" json:"total_amount"`
	FulfillmentPercent *int                `json:"fulfillment_percent"`
	ExpectedDate       *time.Time          `json:"expected_date"`
	Notes              string              `gorm:"type:text" json:"notes"`
	SubmittedAt        *time.Time          `json:"submitted_at"`
	ApprovedAt         *time.Time          `json:"approved_at"`
	ReceivedAt         *time.Time          `json:"received_at"`
	CreatedBy          string              `gorm:"type:char(36)" json:"created_by"`
	UpdatedBy          string              `gorm:"type:char(36)" json:"updated_by"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

type NewPurchaseOrderLine struct {
	ProductId    int             `json:"product_id" binding:"required"`
	RequestedQty decimal.Decimal `json:"requested_qty" binding:"required"`
}

type NewPurchaseOrder struct {
	DistributorId *string                `json:"distributor_id"`
	Lines         []NewPurchaseOrderLine `json:"lines" binding:"required,min=1"`
	ExpectedDate  *time.Time             `json:"expected_date"`
	Notes         string                 `json:"notes"`
}

func CreatePurchaseOrder(ctx context.Context, input NewPurchaseOrder) (*PurchaseOrder, error) {
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

	lines := make([]PurchaseOrderLine, 0, len(input.Lines))
	total := decimal.Zero
	for _, l := range input.Lines {
		if !l.RequestedQty.IsPositive() {
			return nil, errors.New("requested_qty must be positive")
		}
		product, err := utils.FetchModel[Product](ctx, brandId, l.ProductId)
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", l.ProductId, err)
		}
		lines = append(lines, PurchaseOrderLine{
			ProductId:    product.ID,
			Sku:          product.Sku,
			ProductName:  product.Name,
			RequestedQty: l.RequestedQty,
			UnitPrice:    product.UnitPrice,
			LineStatus:   POLineStatusPending,
		})
		total = total.Add(product.UnitPrice.Mul(l.RequestedQty))
	}

	seq, err := utils.GetSequence[PurchaseOrder](ctx, brandId, "purchase_order")
	if err != nil {
		return nil, err
	}

	po := PurchaseOrder{
		PoNumber:      fmt.Sprintf("PO-%06d", seq),
		BrandId:       brandId,
		DistributorId: input.DistributorId,
		Status:        PurchaseOrderStatusDraft,
		Lines:         lines,
		TotalAmount:   total,
		ExpectedDate:  input.ExpectedDate,
		Notes:         input.Notes,
		CreatedBy:     userId,
		UpdatedBy:     userId,
	}
	if err := db.WithContext(ctx).Create(&po).Error; err != nil {
		return nil, err
	}
	return &po, nil
}

func GetPurchaseOrder(ctx context.Context, id int) (*PurchaseOrder, error) {
	brandId, _ := utils.GetBrandIdFromContext(ctx)
	return utils.FetchModel[PurchaseOrder](ctx, brandId, id, "Lines")
}

type UpdatePurchaseOrderInput struct {
	ExpectedDate *time.Time `json:"expected_date"`
	Notes        *string    `json:"notes"`
}

// only drafts are editable; submitted orders change through transitions
// and line decisions
func UpdatePurchaseOrder(ctx context.Context, id int, input UpdatePurchaseOrderInput) (*PurchaseOrder, error) {
	db := config.GetDB()
	userId, _ := utils.GetUserIdFromContext(ctx)

	po, err := GetPurchaseOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if po.Status != PurchaseOrderStatusDraft {
		return nil, errors.New("only draft purchase orders can be edited")
	}

	updates := map[string]interface{}{"updated_by": userId}
	if input.ExpectedDate != nil {
		updates["expected_date"] = input.ExpectedDate
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}
	if err := db.WithContext(ctx).Model(po).Updates(updates).Error; err != nil {
		return nil, err
	}
	return GetPurchaseOrder(ctx, id)
}

type PurchaseOrderFilter struct {
	Status        string
	DistributorId string
	Search        string
	Limit         int
	Offset        int
}

func ListPurchaseOrders(ctx context.Context, filter PurchaseOrderFilter) ([]*PurchaseOrder, int64, error) {
	db := config.GetDB()
	brandId, _ := utils.GetBrandIdFromContext(ctx)

	dbCtx := db.WithContext(ctx).Model(&PurchaseOrder{}).Where("brand_id = ?", brandId)
	if distributorId, ok := utils.GetDistributorIdFromContext(ctx); ok && distributorId != "" {
		dbCtx = dbCtx.Where("distributor_id = ?", distributorId)
	} else if filter.DistributorId != "" {
		dbCtx = dbCtx.Where("distributor_id = ?", filter.DistributorId)
	}
	if filter.Status != "" {
		dbCtx = dbCtx.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		dbCtx = dbCtx.Where("po_number LIKE ?", "%"+filter.Search+"%")
	}

	var total int64
	if err := dbCtx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var pos []*PurchaseOrder
	if err := dbCtx.Preload("Lines").Order("id DESC").Limit(limit).Offset(filter.Offset).Find(&pos).Error; err != nil {
		return nil, 0, err
	}
	return pos, total, nil
}
