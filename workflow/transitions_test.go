package workflow

import (
	"testing"

	"github.com/growship/commerce_backend/models"
)

func TestPOTransitionTable(t *testing.T) {
	cases := []struct {
		from  models.PurchaseOrderStatus
		to    models.PurchaseOrderStatus
		valid bool
	}{
		{models.PurchaseOrderStatusDraft, models.PurchaseOrderStatusSubmitted, true},
		{models.PurchaseOrderStatusSubmitted, models.PurchaseOrderStatusApproved, true},
		{models.PurchaseOrderStatusSubmitted, models.PurchaseOrderStatusRejected, true},
		{models.PurchaseOrderStatusApproved, models.PurchaseOrderStatusOrdered, true},
		{models.PurchaseOrderStatusOrdered, models.PurchaseOrderStatusReceived, true},
		{models.PurchaseOrderStatusDraft, models.PurchaseOrderStatusCancelled, true},
		{models.PurchaseOrderStatusSubmitted, models.PurchaseOrderStatusCancelled, true},
		{models.PurchaseOrderStatusApproved, models.PurchaseOrderStatusCancelled, true},
		{models.PurchaseOrderStatusOrdered, models.PurchaseOrderStatusCancelled, true},

		{models.PurchaseOrderStatusDraft, models.PurchaseOrderStatusApproved, false},
		{models.PurchaseOrderStatusDraft, models.PurchaseOrderStatusReceived, false},
		{models.PurchaseOrderStatusApproved, models.PurchaseOrderStatusSubmitted, false},
		{models.PurchaseOrderStatusRejected, models.PurchaseOrderStatusSubmitted, false},
		{models.PurchaseOrderStatusRejected, models.PurchaseOrderStatusCancelled, false},
		{models.PurchaseOrderStatusReceived, models.PurchaseOrderStatusCancelled, false},
		{models.PurchaseOrderStatusCancelled, models.PurchaseOrderStatusDraft, false},
	}

	for _, tc := range cases {
		if got := IsValidPOTransition(tc.from, tc.to); got != tc.valid {
			t.Errorf("IsValidPOTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.valid)
		}
	}
}

func TestOrderTransitionTable(t *testing.T) {
	cases := []struct {
		from  models.OrderStatus
		to    models.OrderStatus
		valid bool
	}{
		{models.OrderStatusPending, models.OrderStatusProcessing, true},
		{models.OrderStatusProcessing, models.OrderStatusShipped, true},
		{models.OrderStatusPending, models.OrderStatusShipped, true},
		{models.OrderStatusShipped, models.OrderStatusDelivered, true},
		{models.OrderStatusPending, models.OrderStatusCancelled, true},
		{models.OrderStatusProcessing, models.OrderStatusCancelled, true},

		{models.OrderStatusShipped, models.OrderStatusCancelled, false},
		{models.OrderStatusDelivered, models.OrderStatusCancelled, false},
		{models.OrderStatusShipped, models.OrderStatusProcessing, false},
		{models.OrderStatusDelivered, models.OrderStatusPending, false},
		{models.OrderStatusCancelled, models.OrderStatusPending, false},
		{models.OrderStatusPending, models.OrderStatusDelivered, false},
	}

	for _, tc := range cases {
		if got := IsValidOrderTransition(tc.from, tc.to); got != tc.valid {
			t.Errorf("IsValidOrderTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.valid)
		}
	}
}

func TestGetNextStatusUnknownActionReturnsNil(t *testing.T) {
	if next := GetNextPOStatus(models.PurchaseOrderStatusDraft, "approve"); next != nil {
		t.Errorf("draft + approve should have no next status, got %s", *next)
	}
	if next := GetNextPOStatus(models.PurchaseOrderStatusReceived, "cancel"); next != nil {
		t.Errorf("received + cancel should have no next status, got %s", *next)
	}
	if next := GetNextOrderStatus(models.OrderStatusShipped, "cancel"); next != nil {
		t.Errorf("shipped + cancel should have no next status, got %s", *next)
	}
	if next := GetNextOrderStatus(models.OrderStatusDelivered, "ship"); next != nil {
		t.Errorf("delivered + ship should have no next status, got %s", *next)
	}
}

func TestGetNextStatusResolvesActions(t *testing.T) {
	next := GetNextPOStatus(models.PurchaseOrderStatusSubmitted, "reject")
	if next == nil || *next != models.PurchaseOrderStatusRejected {
		t.Fatalf("submitted + reject should resolve to rejected, got %v", next)
	}
	orderNext := GetNextOrderStatus(models.OrderStatusPending, "ship")
	if orderNext == nil || *orderNext != models.OrderStatusShipped {
		t.Fatalf("pending + ship should resolve to shipped, got %v", orderNext)
	}
}

func TestAvailableActions(t *testing.T) {
	actions := GetAvailablePOActions(models.PurchaseOrderStatusSubmitted)
	want := map[string]bool{"approve": true, "reject": true, "cancel": true}
	if len(actions) != len(want) {
		t.Fatalf("submitted actions = %v, want approve/reject/cancel", actions)
	}
	for _, a := range actions {
		if !want[a] {
			t.Errorf("unexpected action %s for submitted", a)
		}
	}

	if actions := GetAvailablePOActions(models.PurchaseOrderStatusReceived); len(actions) != 0 {
		t.Errorf("received is terminal, got actions %v", actions)
	}
	if actions := GetAvailableOrderActions(models.OrderStatusDelivered); len(actions) != 0 {
		t.Errorf("delivered is terminal, got actions %v", actions)
	}
}
