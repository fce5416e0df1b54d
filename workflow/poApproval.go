package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/models"
	"github.com/growship/commerce_backend/utils"
	"github.com/shopspring/decimal"
)

var decisionTolerance = decimal.NewFromFloat(0.001)

// LineDecision is one reviewer's verdict on a PO line: how much of the
// requested quantity is approved, backordered and rejected.
type LineDecision struct {
	ApprovedQty  decimal.Decimal `json:"approved_qty"`
	BackorderQty decimal.Decimal `json:"backorder_qty"`
	RejectedQty  decimal.Decimal `json:"rejected_qty"`
	Override     bool            `json:"override"`
	Note         string          `json:"note"`
}

// SuggestLineDecision proposes the default split for a line given current
// available stock: full approval when covered, approve-what-we-have plus
// backorder when short, full backorder when out.
func SuggestLineDecision(requestedQty decimal.Decimal, availableStock decimal.Decimal) LineDecision {
	if availableStock.GreaterThanOrEqual(requestedQty) {
		return LineDecision{ApprovedQty: requestedQty}
	}
	if availableStock.IsPositive() {
		return LineDecision{
			ApprovedQty:  availableStock,
			BackorderQty: requestedQty.Sub(availableStock),
		}
	}
	return LineDecision{BackorderQty: requestedQty}
}

// ValidateLineDecision enforces the quantity invariant before any write:
// the three parts must sum to the request (within rounding tolerance), be
// non-negative, and approval beyond available stock needs an override.
func ValidateLineDecision(requestedQty decimal.Decimal, availableStock decimal.Decimal, d LineDecision) error {
	if d.ApprovedQty.IsNegative() || d.BackorderQty.IsNegative() || d.RejectedQty.IsNegative() {
		return errors.New("quantities must not be negative")
	}
	sum := d.ApprovedQty.Add(d.BackorderQty).Add(d.RejectedQty)
	if sum.Sub(requestedQty).Abs().GreaterThan(decisionTolerance) {
		return fmt.Errorf("approved + backorder + rejected must equal requested %s, got %s", requestedQty.String(), sum.String())
	}
	if !d.Override && d.ApprovedQty.GreaterThan(availableStock) {
		return fmt.Errorf("approved %s exceeds available stock %s without an override", d.ApprovedQty.String(), availableStock.String())
	}
	return nil
}

// DecisionLineStatus derives the line status a committed decision implies.
func DecisionLineStatus(requestedQty decimal.Decimal, d LineDecision) models.POLineStatus {
	switch {
	case d.ApprovedQty.Sub(requestedQty).Abs().LessThanOrEqual(decisionTolerance):
		return models.POLineStatusApproved
	case d.RejectedQty.Sub(requestedQty).Abs().LessThanOrEqual(decisionTolerance):
		return models.POLineStatusRejected
	case d.ApprovedQty.IsPositive():
		return models.POLineStatusPartiallyApproved
	case d.BackorderQty.IsPositive():
		return models.POLineStatusBackordered
	default:
		return models.POLineStatusRejected
	}
}

// ApplyLineDecision validates and commits one line's decision. Available
// stock is snapshotted onto the line at this moment so the audit trail
// shows what the reviewer saw.
func ApplyLineDecision(ctx context.Context, poId int, lineId int, d LineDecision) (*models.PurchaseOrderLine, error) {
	db := config.GetDB()
	userId, _ := utils.GetUserIdFromContext(ctx)

	result := CheckPOPermission(ctx, userId, poId, "approve")
	if !result.Allowed {
		return nil, errors.New(result.Reason)
	}

	// unscoped on purpose: the gate already enforced brand access, and a
	// super_admin context may carry no brand id at all
	po, err := loadPurchaseOrder(ctx, poId)
	if err != nil {
		return nil, errors.New("purchase order not found")
	}
	if po.Status != models.PurchaseOrderStatusSubmitted {
		return nil, errors.New("line decisions are only allowed on submitted purchase orders")
	}

	var line *models.PurchaseOrderLine
	for i := range po.Lines {
		if po.Lines[i].ID == lineId {
			line = &po.Lines[i]
			break
		}
	}
	if line == nil {
		return nil, errors.New("purchase order line not found")
	}

	available := decimal.Zero
	if product, err := utils.FetchModel[models.Product](ctx, po.BrandId, line.ProductId); err == nil {
		available = product.AvailableStock()
	}

	if err := ValidateLineDecision(line.RequestedQty, available, d); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"available_stock_snap": available,
		"approved_qty":         d.ApprovedQty,
		"backorder_qty":        d.BackorderQty,
		"rejected_qty":         d.RejectedQty,
		"line_status":          DecisionLineStatus(line.RequestedQty, d),
		"decision_overridden":  d.Override,
		"decision_note":        d.Note,
		"decided_by":           userId,
		"decided_at":           &now,
	}
	if err := db.WithContext(ctx).Model(line).Updates(updates).Error; err != nil {
		return nil, err
	}
	return line, nil
}

// FulfillmentPercent is approved over requested as a rounded integer
// percentage; zero when nothing was requested.
func FulfillmentPercent(totalApproved decimal.Decimal, totalRequested decimal.Decimal) int {
	if totalRequested.IsZero() {
		return 0
	}
	return int(totalApproved.Div(totalRequested).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// OverallStatusFromLines aggregates line outcomes. Any approved quantity
// counts the PO as approved; only a fully rejected/cancelled PO is
// rejected.
func OverallStatusFromLines(lines []models.PurchaseOrderLine) models.PurchaseOrderStatus {
	allRejected := true
	for _, line := range lines {
		if line.LineStatus != models.POLineStatusRejected && line.LineStatus != models.POLineStatusCancelled {
			allRejected = false
			break
		}
	}
	if allRejected {
		return models.PurchaseOrderStatusRejected
	}
	return models.PurchaseOrderStatusApproved
}

type TransitionResult struct {
	Success bool                  `json:"success"`
	Error   string                `json:"error,omitempty"`
	PO      *models.PurchaseOrder `json:"po,omitempty"`
}

func transitionFail(reason string) TransitionResult {
	return TransitionResult{Success: false, Error: reason}
}

// FinalizeApproval closes the review: every line must have a decision,
// then line sums determine the overall status and fulfillment percentage,
// and an approval books the approved quantities as inbound stock.
func FinalizeApproval(ctx context.Context, poId int, userId string) TransitionResult {
	db := config.GetDB()

	result := CheckPOPermission(ctx, userId, poId, "approve")
	if !result.Allowed {
		return transitionFail(result.Reason)
	}

	po, err := loadPurchaseOrder(ctx, poId)
	if err != nil {
		return transitionFail("purchase order not found")
	}
	if po.Status != models.PurchaseOrderStatusSubmitted {
		return transitionFail("only submitted purchase orders can be finalized")
	}
	for _, line := range po.Lines {
		if line.LineStatus == models.POLineStatusPending {
			return transitionFail("every line must be reviewed before finalizing")
		}
	}

	totalRequested := decimal.Zero
	totalApproved := decimal.Zero
	for _, line := range po.Lines {
		totalRequested = totalRequested.Add(line.RequestedQty)
		totalApproved = totalApproved.Add(line.ApprovedQty)
	}
	percent := FulfillmentPercent(totalApproved, totalRequested)
	newStatus := OverallStatusFromLines(po.Lines)

	if !IsValidPOTransition(po.Status, newStatus) {
		return transitionFail(InvalidTransitionError("purchase order", string(po.Status), string(newStatus)).Error())
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":              newStatus,
		"fulfillment_percent": percent,
		"updated_by":          userId,
	}
	if newStatus == models.PurchaseOrderStatusApproved {
		updates["approved_at"] = &now
	}
	if err := db.WithContext(ctx).Model(po).Updates(updates).Error; err != nil {
		return transitionFail(err.Error())
	}
	models.RecordHistory(ctx, "purchase_order", po.ID, string(models.PurchaseOrderStatusSubmitted), string(newStatus), "finalized review")
	po.Status = newStatus
	po.FulfillmentPercent = &percent

	if newStatus == models.PurchaseOrderStatusApproved {
		if sync := SyncPOAllocation(ctx, po); !sync.Success {
			config.LogWarn(config.GetLogger(), "workflow", "FinalizeApproval", po.PoNumber, sync.Error)
		}
	}

	notifyPOEvent(ctx, po, newStatus, userId)
	return TransitionResult{Success: true, PO: po}
}

// ExecuteTransition drives a purchase order through one action: gate,
// transition table, entity update, inventory sync, notification, history.
// Approval routes through FinalizeApproval so line math always runs.
func ExecuteTransition(ctx context.Context, poId int, userId string, action string, comments string) TransitionResult {
	db := config.GetDB()

	if action == "approve" {
		return FinalizeApproval(ctx, poId, userId)
	}

	result := CheckPOPermission(ctx, userId, poId, action)
	if !result.Allowed {
		return transitionFail(result.Reason)
	}

	po, err := loadPurchaseOrder(ctx, poId)
	if err != nil {
		return transitionFail("purchase order not found")
	}

	next := GetNextPOStatus(po.Status, action)
	if next == nil {
		return transitionFail(fmt.Sprintf("action %s is not available from status %s", action, po.Status))
	}
	fromStatus := po.Status

	now := time.Now()
	updates := map[string]interface{}{
		"status":     *next,
		"updated_by": userId,
	}
	switch *next {
	case models.PurchaseOrderStatusSubmitted:
		updates["submitted_at"] = &now
	case models.PurchaseOrderStatusReceived:
		updates["received_at"] = &now
	}
	if err := db.WithContext(ctx).Model(po).Updates(updates).Error; err != nil {
		return transitionFail(err.Error())
	}
	models.RecordHistory(ctx, "purchase_order", po.ID, string(fromStatus), string(*next), comments)
	po.Status = *next

	var sync SyncResult
	switch *next {
	case models.PurchaseOrderStatusReceived:
		sync = SyncPOReceipt(ctx, po)
	case models.PurchaseOrderStatusCancelled:
		sync = SyncPOCancellation(ctx, po, fromStatus, comments)
	default:
		sync = syncOk()
	}
	if !sync.Success {
		config.LogWarn(config.GetLogger(), "workflow", "ExecuteTransition", po.PoNumber, sync.Error)
	}

	notifyPOEvent(ctx, po, *next, userId)

	res := TransitionResult{Success: true, PO: po}
	if !sync.Success {
		res.Error = sync.Error
	}
	return res
}

func notifyPOEvent(ctx context.Context, po *models.PurchaseOrder, status models.PurchaseOrderStatus, actorId string) {
	typeKey := "po_" + string(status)
	result := DispatchNotification(ctx, typeKey, NotificationPayload{
		BrandId:       po.BrandId,
		DistributorId: po.DistributorId,
		Title:         fmt.Sprintf("Purchase order %s %s", po.PoNumber, status),
		Message:       fmt.Sprintf("Purchase order %s moved to %s", po.PoNumber, status),
		Priority:      models.NotificationPriorityMedium,
		ReferenceType: "purchase_order",
		ReferenceId:   po.ID,
		ExcludeUserId: actorId,
	})
	if !result.Success {
		config.LogWarn(config.GetLogger(), "workflow", "notifyPOEvent", typeKey, result.Error)
	}
}
