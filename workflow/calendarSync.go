package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/growship/commerce_backend/config"
	"github.com/growship/commerce_backend/models"
)

type SyncCounts struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Cancelled int `json:"cancelled"`
}

// EventCandidate is one event the current entity state implies. The key
// triple (EventType, RelatedType, RelatedId) identifies it across syncs.
type EventCandidate struct {
	EventType   string
	RelatedType string
	RelatedId   int
	Title       string
	Description string
	EventDate   time.Time
}

func (c EventCandidate) key() string {
	return fmt.Sprintf("%s|%s|%d", c.EventType, c.RelatedType, c.RelatedId)
}

func eventKey(e *models.CalendarEvent) string {
	return fmt.Sprintf("%s|%s|%d", e.EventType, e.RelatedType, e.RelatedId)
}

type calendarDiff struct {
	toCreate []EventCandidate
	toUpdate map[int]EventCandidate
	toCancel []int
}

// DiffCalendarEvents compares the recomputed candidate set against stored
// non-custom events: new keys are created, date drift is updated in place,
// keys no longer implied by entity state are cancelled (never deleted).
// Custom events are untouched.
func DiffCalendarEvents(existing []*models.CalendarEvent, candidates []EventCandidate) calendarDiff {
	diff := calendarDiff{toUpdate: map[int]EventCandidate{}}

	byKey := map[string]*models.CalendarEvent{}
	for _, e := range existing {
		if e.IsCustom {
			continue
		}
		byKey[eventKey(e)] = e
	}

	seen := map[string]bool{}
	for _, c := range candidates {
		k := c.key()
		seen[k] = true
		stored, ok := byKey[k]
		if !ok {
			diff.toCreate = append(diff.toCreate, c)
			continue
		}
		if !stored.EventDate.Equal(c.EventDate) || stored.Status == models.CalendarEventStatusCancelled {
			diff.toUpdate[stored.ID] = c
		}
	}

	for k, stored := range byKey {
		if !seen[k] && stored.Status != models.CalendarEventStatusCancelled {
			diff.toCancel = append(diff.toCancel, stored.ID)
		}
	}
	return diff
}

func wantType(eventTypes []string, t string) bool {
	if len(eventTypes) == 0 {
		return true
	}
	for _, et := range eventTypes {
		if et == t {
			return true
		}
	}
	return false
}

// collectCandidates recomputes the full forward-looking event set from
// live orders and purchase orders.
func collectCandidates(ctx context.Context, brandId string, eventTypes []string) ([]EventCandidate, error) {
	db := config.GetDB()
	var candidates []EventCandidate

	var orders []*models.Order
	if err := db.WithContext(ctx).Where("brand_id = ?", brandId).Find(&orders).Error; err != nil {
		return nil, err
	}
	for _, o := range orders {
		if wantType(eventTypes, "payment_due") &&
			o.Status != models.OrderStatusCancelled &&
			(o.PaymentStatus == models.PaymentStatusUnpaid || o.PaymentStatus == models.PaymentStatusPartial) {
			candidates = append(candidates, EventCandidate{
				EventType:   "payment_due",
				RelatedType: "order",
				RelatedId:   o.ID,
				Title:       "Payment due for " + o.OrderNumber,
				Description: fmt.Sprintf("%s due for order %s", o.TotalAmount.String(), o.OrderNumber),
				EventDate:   o.CreatedAt.AddDate(0, 0, 30),
			})
		}
		if wantType(eventTypes, "order_delivery") && o.Status == models.OrderStatusShipped {
			candidates = append(candidates, EventCandidate{
				EventType:   "order_delivery",
				RelatedType: "order",
				RelatedId:   o.ID,
				Title:       "Expected delivery of " + o.OrderNumber,
				EventDate:   o.UpdatedAt.AddDate(0, 0, 7),
			})
		}
	}

	var pos []*models.PurchaseOrder
	if err := db.WithContext(ctx).Preload("Lines").Where("brand_id = ?", brandId).Find(&pos).Error; err != nil {
		return nil, err
	}
	for _, po := range pos {
		if wantType(eventTypes, "po_approval_due") && po.Status == models.PurchaseOrderStatusSubmitted {
			base := po.CreatedAt
			if po.SubmittedAt != nil {
				base = *po.SubmittedAt
			}
			candidates = append(candidates, EventCandidate{
				EventType:   "po_approval_due",
				RelatedType: "purchase_order",
				RelatedId:   po.ID,
				Title:       "Review due for " + po.PoNumber,
				EventDate:   base.AddDate(0, 0, 3),
			})
		}
		if wantType(eventTypes, "po_delivery") && po.ExpectedDate != nil &&
			(po.Status == models.PurchaseOrderStatusApproved || po.Status == models.PurchaseOrderStatusOrdered) {
			candidates = append(candidates, EventCandidate{
				EventType:   "po_delivery",
				RelatedType: "purchase_order",
				RelatedId:   po.ID,
				Title:       "Expected delivery of " + po.PoNumber,
				EventDate:   *po.ExpectedDate,
			})
		}
		if wantType(eventTypes, "backorder_review") && po.Status == models.PurchaseOrderStatusReceived && po.ReceivedAt != nil {
			hasBackorder := false
			for _, line := range po.Lines {
				if line.BackorderQty.IsPositive() {
					hasBackorder = true
					break
				}
			}
			if hasBackorder {
				candidates = append(candidates, EventCandidate{
					EventType:   "backorder_review",
					RelatedType: "purchase_order",
					RelatedId:   po.ID,
					Title:       "Backorder review for " + po.PoNumber,
					EventDate:   po.ReceivedAt.AddDate(0, 0, 7),
				})
			}
		}
	}

	return candidates, nil
}

// SyncCalendarEvents recomputes a brand's derived events and reconciles
// the stored table against them. Safe to call repeatedly: a second run
// with unchanged entities reports all-zero counts.
func SyncCalendarEvents(ctx context.Context, brandId string, eventTypes []string) (SyncCounts, error) {
	db := config.GetDB()
	var counts SyncCounts

	candidates, err := collectCandidates(ctx, brandId, eventTypes)
	if err != nil {
		return counts, err
	}

	var existing []*models.CalendarEvent
	query := db.WithContext(ctx).Where("brand_id = ? AND is_custom = ?", brandId, false)
	if len(eventTypes) > 0 {
		query = query.Where("event_type IN ?", eventTypes)
	}
	if err := query.Find(&existing).Error; err != nil {
		return counts, err
	}

	diff := DiffCalendarEvents(existing, candidates)

	for _, c := range diff.toCreate {
		event := models.CalendarEvent{
			BrandId:     brandId,
			EventType:   c.EventType,
			RelatedType: c.RelatedType,
			RelatedId:   c.RelatedId,
			Title:       c.Title,
			Description: c.Description,
			EventDate:   c.EventDate,
			Status:      models.CalendarEventStatusUpcoming,
		}
		if err := db.WithContext(ctx).Create(&event).Error; err != nil {
			return counts, err
		}
		counts.Created++
	}

	for id, c := range diff.toUpdate {
		updates := map[string]interface{}{
			"event_date": c.EventDate,
			"title":      c.Title,
			"status":     models.CalendarEventStatusUpcoming,
		}
		if err := db.WithContext(ctx).Model(&models.CalendarEvent{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return counts, err
		}
		counts.Updated++
	}

	if len(diff.toCancel) > 0 {
		err := db.WithContext(ctx).Model(&models.CalendarEvent{}).
			Where("id IN ?", diff.toCancel).
			Update("status", models.CalendarEventStatusCancelled).Error
		if err != nil {
			return counts, err
		}
		counts.Cancelled = len(diff.toCancel)
	}

	return counts, nil
}
