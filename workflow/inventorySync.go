package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/models"
	"github.com/growship/commerce_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SyncResult is the contract every inventory operation returns. Callers
// must not treat a failed sync as fatal to an already committed status
// change; the ledger plus this error string are the reconciliation trail.
type SyncResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func syncOk() SyncResult {
	return SyncResult{Success: true}
}

func syncFail(err error) SyncResult {
	return SyncResult{Success: false, Error: err.Error()}
}

const (
	syncStepAllocate = "allocate"
	syncStepFulfill  = "fulfill"
	syncStepCancel   = "cancel"
)

// OrderSyncSteps maps a status transition onto ledger steps. A direct
// pending→shipped ship runs allocate then fulfill back to back, each step
// independently failable. Cancelling a shipped order performs no release
// (that needs a return flow) and only yields a warning.
func OrderSyncSteps(from models.OrderStatus, to models.OrderStatus) ([]string, string) {
	switch to {
	case models.OrderStatusProcessing:
		return []string{syncStepAllocate}, ""
	case models.OrderStatusShipped:
		if from == models.OrderStatusPending {
			return []string{syncStepAllocate, syncStepFulfill}, ""
		}
		return []string{syncStepFulfill}, ""
	case models.OrderStatusCancelled:
		if from == models.OrderStatusShipped || from == models.OrderStatusDelivered {
			return nil, "stock not released for cancellation after shipment; a return flow must handle it"
		}
		if from == models.OrderStatusProcessing {
			return []string{syncStepCancel}, ""
		}
		return nil, ""
	}
	return nil, ""
}

// StockAlertTier picks the most severe matching alert tier after a stock
// decrease, or "" when no alert applies.
func StockAlertTier(onHand decimal.Decimal, criticalThreshold decimal.Decimal, lowThreshold decimal.Decimal, alertsEnabled bool) string {
	if !alertsEnabled {
		return ""
	}
	if onHand.LessThanOrEqual(decimal.Zero) {
		return "stock_out"
	}
	if onHand.LessThanOrEqual(criticalThreshold) {
		return "stock_critical"
	}
	if onHand.LessThanOrEqual(lowThreshold) {
		return "stock_low"
	}
	return ""
}

type stockLine struct {
	ProductId int
	Name      string
	Sku       string
	Quantity  decimal.Decimal
}

// ShortfallMessage aggregates every insufficient line into one sentence,
// or "" when all lines are coverable.
func ShortfallMessage(lines []stockLine, available map[int]decimal.Decimal) string {
	var parts []string
	for _, line := range lines {
		have, ok := available[line.ProductId]
		if !ok {
			continue
		}
		if have.LessThan(line.Quantity) {
			parts = append(parts, fmt.Sprintf("%s (%s) short by %s", line.Name, line.Sku, line.Quantity.Sub(have).String()))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

func orderLines(order *models.Order) []stockLine {
	lines := make([]stockLine, 0, len(order.Items))
	for _, item := range order.Items {
		lines = append(lines, stockLine{
			ProductId: item.ProductId,
			Name:      item.ProductName,
			Sku:       item.Sku,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

// mutateProductStock applies atomic column arithmetic and writes the
// ledger row, serialized per product by a redis lock. The deltas land as
// single SET col = col + ? statements so concurrent syncs never lose an
// update even if the lock is unavailable.
func mutateProductStock(ctx context.Context, brandId string, line stockLine,
	txType models.InventoryTransactionType, refType string, refId int,
	onHandDelta, allocatedDelta, inboundDelta decimal.Decimal,
	floorAllocated bool, floorInbound bool, note string) error {

	db := config.GetDB()
	userId, _ := utils.GetUserIdFromContext(ctx)

	lock, err := utils.ProductLock(ctx, brandId, line.ProductId)
	if err != nil {
		return err
	}
	defer utils.ReleaseLock(ctx, lock)

	product, err := utils.FetchModel[models.Product](ctx, brandId, line.ProductId)
	if err != nil {
		return fmt.Errorf("product %d not found", line.ProductId)
	}

	onHandAfter := product.QuantityInStock.Add(onHandDelta)
	allocatedAfter := product.AllocatedStock.Add(allocatedDelta)
	if floorAllocated && allocatedAfter.IsNegative() {
		allocatedAfter = decimal.Zero
	}
	inboundAfter := product.InboundStock.Add(inboundDelta)
	if floorInbound && inboundAfter.IsNegative() {
		inboundAfter = decimal.Zero
	}

	updates := map[string]interface{}{}
	if !onHandDelta.IsZero() {
		updates["quantity_in_stock"] = gorm.Expr("quantity_in_stock + ?", onHandDelta)
	}
	if !allocatedDelta.IsZero() {
		if floorAllocated {
			updates["allocated_stock"] = gorm.Expr("GREATEST(allocated_stock + ?, 0)", allocatedDelta)
		} else {
			updates["allocated_stock"] = gorm.Expr("allocated_stock + ?", allocatedDelta)
		}
	}
	if !inboundDelta.IsZero() {
		if floorInbound {
			updates["inbound_stock"] = gorm.Expr("GREATEST(inbound_stock + ?, 0)", inboundDelta)
		} else {
			updates["inbound_stock"] = gorm.Expr("inbound_stock + ?", inboundDelta)
		}
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if len(updates) > 0 {
		if err := tx.Model(&models.Product{}).
			Where("id = ? AND brand_id = ?", line.ProductId, brandId).
			Updates(updates).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	ledger := models.InventoryTransaction{
		BrandId:         brandId,
		ProductId:       line.ProductId,
		TransactionType: txType,
		Quantity:        line.Quantity,
		OnHandBefore:    product.QuantityInStock,
		OnHandAfter:     onHandAfter,
		AllocatedBefore: product.AllocatedStock,
		AllocatedAfter:  allocatedAfter,
		InboundBefore:   product.InboundStock,
		InboundAfter:    inboundAfter,
		ReferenceType:   refType,
		ReferenceId:     refId,
		Note:            note,
		CreatedBy:       userId,
	}
	if err := tx.Create(&ledger).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	if txType == models.TransactionOrderFulfilled {
		raiseStockAlert(ctx, brandId, product, onHandAfter)
	}
	return nil
}

// at most one alert per product per sync, most severe tier wins
func raiseStockAlert(ctx context.Context, brandId string, product *models.Product, onHandAfter decimal.Decimal) {
	tier := StockAlertTier(onHandAfter, product.CriticalThreshold, product.LowStockThreshold, product.EnableStockAlerts)
	if tier == "" {
		return
	}
	result := DispatchNotification(ctx, tier, NotificationPayload{
		BrandId:       brandId,
		Title:         fmt.Sprintf("%s is running low", product.Name),
		Message:       fmt.Sprintf("%s (%s) has %s units on hand", product.Name, product.Sku, onHandAfter.String()),
		Priority:      models.NotificationPriorityHigh,
		ReferenceType: "product",
		ReferenceId:   product.ID,
	})
	if !result.Success {
		config.LogWarn(config.GetLogger(), "workflow", "raiseStockAlert", tier, result.Error)
	}
}

// checkAvailability is the all-or-nothing pre-check before an order
// allocation when negative stock is disallowed.
func checkAvailability(ctx context.Context, brandId string, lines []stockLine) error {
	available := map[int]decimal.Decimal{}
	for _, line := range lines {
		product, err := utils.FetchModel[models.Product](ctx, brandId, line.ProductId)
		if err != nil {
			continue
		}
		available[line.ProductId] = product.AvailableStock()
	}
	if msg := ShortfallMessage(lines, available); msg != "" {
		return fmt.Errorf("%s", msg)
	}
	return nil
}

// runLines processes lines one at a time; a failing line is logged and
// skipped, the rest still run. Best-effort batch, not a transaction.
func runLines(ctx context.Context, funcName string, lines []stockLine, apply func(stockLine) error) SyncResult {
	logger := config.GetLogger()
	var failed []string
	for _, line := range lines {
		if line.ProductId == 0 || line.Quantity.IsZero() {
			config.LogWarn(logger, "workflow", funcName, "skip", fmt.Sprintf("line without product or quantity (sku=%s)", line.Sku))
			continue
		}
		if err := apply(line); err != nil {
			config.LogError(logger, "workflow", funcName, "line", line, err)
			failed = append(failed, fmt.Sprintf("product %d: %s", line.ProductId, err.Error()))
		}
	}
	if len(failed) > 0 {
		return SyncResult{Success: false, Error: strings.Join(failed, "; ")}
	}
	return syncOk()
}

/* order operations */

func SyncOrderAllocation(ctx context.Context, order *models.Order) SyncResult {
	lines := orderLines(order)
	if !config.AllowNegativeStock() {
		if err := checkAvailability(ctx, order.BrandId, lines); err != nil {
			return syncFail(err)
		}
	}
	return runLines(ctx, "SyncOrderAllocation", lines, func(line stockLine) error {
		return mutateProductStock(ctx, order.BrandId, line,
			models.TransactionOrderAllocated, "order", order.ID,
			decimal.Zero, line.Quantity, decimal.Zero,
			false, false, "allocated for "+order.OrderNumber)
	})
}

func SyncOrderFulfillment(ctx context.Context, order *models.Order) SyncResult {
	return runLines(ctx, "SyncOrderFulfillment", orderLines(order), func(line stockLine) error {
		return mutateProductStock(ctx, order.BrandId, line,
			models.TransactionOrderFulfilled, "order", order.ID,
			line.Quantity.Neg(), line.Quantity.Neg(), decimal.Zero,
			true, false, "fulfilled for "+order.OrderNumber)
	})
}

func SyncOrderCancellation(ctx context.Context, order *models.Order, reason string) SyncResult {
	note := "released for cancelled " + order.OrderNumber
	if reason != "" {
		note += ": " + reason
	}
	return runLines(ctx, "SyncOrderCancellation", orderLines(order), func(line stockLine) error {
		return mutateProductStock(ctx, order.BrandId, line,
			models.TransactionOrderCancelled, "order", order.ID,
			decimal.Zero, line.Quantity.Neg(), decimal.Zero,
			true, false, note)
	})
}

// ApplyOrderStockForStatusTransition runs the ledger steps a transition
// implies. Each step is independently failable; a failed allocate does not
// stop the fulfill of a direct ship, per the best-effort contract.
func ApplyOrderStockForStatusTransition(ctx context.Context, order *models.Order, from models.OrderStatus, to models.OrderStatus, reason string) SyncResult {
	steps, warn := OrderSyncSteps(from, to)
	if warn != "" {
		config.LogWarn(config.GetLogger(), "workflow", "ApplyOrderStockForStatusTransition", order.OrderNumber, warn)
	}

	var errs []string
	for _, step := range steps {
		var result SyncResult
		switch step {
		case syncStepAllocate:
			result = SyncOrderAllocation(ctx, order)
		case syncStepFulfill:
			result = SyncOrderFulfillment(ctx, order)
		case syncStepCancel:
			result = SyncOrderCancellation(ctx, order, reason)
		}
		if !result.Success {
			errs = append(errs, result.Error)
		}
	}
	if len(errs) > 0 {
		return SyncResult{Success: false, Error: strings.Join(errs, "; ")}
	}
	return syncOk()
}

/* purchase order operations */

func poLines(po *models.PurchaseOrder, useApproved bool) []stockLine {
	lines := make([]stockLine, 0, len(po.Lines))
	for _, l := range po.Lines {
		qty := l.RequestedQty
		if useApproved {
			qty = l.ApprovedQty
		}
		if qty.IsZero() {
			continue
		}
		lines = append(lines, stockLine{
			ProductId: l.ProductId,
			Name:      l.ProductName,
			Sku:       l.Sku,
			Quantity:  qty,
		})
	}
	return lines
}

// SyncPOAllocation books approved quantities as inbound stock.
func SyncPOAllocation(ctx context.Context, po *models.PurchaseOrder) SyncResult {
	return runLines(ctx, "SyncPOAllocation", poLines(po, true), func(line stockLine) error {
		return mutateProductStock(ctx, po.BrandId, line,
			models.TransactionPOApproved, "purchase_order", po.ID,
			decimal.Zero, decimal.Zero, line.Quantity,
			false, false, "approved on "+po.PoNumber)
	})
}

// SyncPOReceipt moves approved quantities from inbound to on-hand.
func SyncPOReceipt(ctx context.Context, po *models.PurchaseOrder) SyncResult {
	return runLines(ctx, "SyncPOReceipt", poLines(po, true), func(line stockLine) error {
		return mutateProductStock(ctx, po.BrandId, line,
			models.TransactionPOReceived, "purchase_order", po.ID,
			line.Quantity, decimal.Zero, line.Quantity.Neg(),
			false, true, "received on "+po.PoNumber)
	})
}

// SyncPOCancellation releases inbound stock booked at approval. Cancelling
// a draft or submitted PO has no inbound yet and is a no-op.
func SyncPOCancellation(ctx context.Context, po *models.PurchaseOrder, from models.PurchaseOrderStatus, reason string) SyncResult {
	if from != models.PurchaseOrderStatusApproved && from != models.PurchaseOrderStatusOrdered {
		return syncOk()
	}
	note := "released for cancelled " + po.PoNumber
	if reason != "" {
		note += ": " + reason
	}
	return runLines(ctx, "SyncPOCancellation", poLines(po, true), func(line stockLine) error {
		return mutateProductStock(ctx, po.BrandId, line,
			models.TransactionPOCancelled, "purchase_order", po.ID,
			decimal.Zero, decimal.Zero, line.Quantity.Neg(),
			false, true, note)
	})
}

// AdjustProductStock is the manual escape hatch; it moves on-hand only and
// always leaves a MANUAL_ADJUSTMENT ledger row.
func AdjustProductStock(ctx context.Context, productId int, delta decimal.Decimal, note string) SyncResult {
	brandId, _ := utils.GetBrandIdFromContext(ctx)
	if delta.IsZero() {
		return syncFail(fmt.Errorf("adjustment quantity must not be zero"))
	}

	product, err := utils.FetchModel[models.Product](ctx, brandId, productId)
	if err != nil {
		return syncFail(fmt.Errorf("product %d not found", productId))
	}
	if !config.AllowNegativeStock() && product.QuantityInStock.Add(delta).IsNegative() {
		return syncFail(fmt.Errorf("adjustment would drive %s (%s) negative", product.Name, product.Sku))
	}

	line := stockLine{ProductId: product.ID, Name: product.Name, Sku: product.Sku, Quantity: delta.Abs()}
	err = mutateProductStock(ctx, brandId, line,
		models.TransactionManualAdjustment, "manual", 0,
		delta, decimal.Zero, decimal.Zero,
		false, false, note)
	if err != nil {
		return syncFail(err)
	}
	return syncOk()
}
