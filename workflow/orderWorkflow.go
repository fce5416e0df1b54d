package workflow

import (
	"context"
	"fmt"

	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/models"
)

type OrderTransitionResult struct {
	Success bool          `json:"success"`
	Error   string        `json:"error,omitempty"`
	Order   *models.Order `json:"order,omitempty"`
}

// ExecuteOrderTransition drives an order through one action with the same
// pipeline as purchase orders: gate, transition table, entity update,
// inventory sync, notification, history. A sync failure is reported but
// never rolls the committed status back.
func ExecuteOrderTransition(ctx context.Context, orderId int, userId string, action string, reason string) OrderTransitionResult {
	db := config.GetDB()

	gate := CheckOrderPermission(ctx, userId, orderId, action)
	if !gate.Allowed {
		return OrderTransitionResult{Success: false, Error: gate.Reason}
	}

	order, err := loadOrder(ctx, orderId)
	if err != nil {
		return OrderTransitionResult{Success: false, Error: "order not found"}
	}

	next := GetNextOrderStatus(order.Status, action)
	if next == nil {
		return OrderTransitionResult{Success: false, Error: fmt.Sprintf("action %s is not available from status %s", action, order.Status)}
	}
	fromStatus := order.Status

	updates := map[string]interface{}{
		"status":     *next,
		"updated_by": userId,
	}
	if err := db.WithContext(ctx).Model(order).Updates(updates).Error; err != nil {
		return OrderTransitionResult{Success: false, Error: err.Error()}
	}
	models.RecordHistory(ctx, "order", order.ID, string(fromStatus), string(*next), reason)
	order.Status = *next

	sync := ApplyOrderStockForStatusTransition(ctx, order, fromStatus, *next, reason)
	if !sync.Success {
		config.LogWarn(config.GetLogger(), "workflow", "ExecuteOrderTransition", order.OrderNumber, sync.Error)
	}

	notifyOrderEvent(ctx, order, *next, userId)

	res := OrderTransitionResult{Success: true, Order: order}
	if !sync.Success {
		res.Error = sync.Error
	}
	return res
}

// CancelOrder is the soft delete: orders are never removed, only moved to
// cancelled when the table allows it.
func CancelOrder(ctx context.Context, orderId int, userId string, reason string) OrderTransitionResult {
	return ExecuteOrderTransition(ctx, orderId, userId, "cancel", reason)
}

func notifyOrderEvent(ctx context.Context, order *models.Order, status models.OrderStatus, actorId string) {
	typeKey := "order_" + string(status)
	result := DispatchNotification(ctx, typeKey, NotificationPayload{
		BrandId:       order.BrandId,
		DistributorId: order.DistributorId,
		Title:         fmt.Sprintf("Order %s %s", order.OrderNumber, status),
		Message:       fmt.Sprintf("Order %s moved to %s", order.OrderNumber, status),
		Priority:      models.NotificationPriorityMedium,
		ReferenceType: "order",
		ReferenceId:   order.ID,
		ExcludeUserId: actorId,
	})
	if !result.Success {
		config.LogWarn(config.GetLogger(), "workflow", "notifyOrderEvent", typeKey, result.Error)
	}
}
