package workflow

import (
	"reflect"
	"strings"
	"testing"

	"github.com/growship/commerce_backend/models"
	"github.com/shopspring/decimal"
)

func TestStockAlertTier(t *testing.T) {
	critical := dec("3")
	low := dec("10")

	cases := []struct {
		name    string
		onHand  string
		enabled bool
		want    string
	}{
		{"zero is out of stock", "0", true, "stock_out"},
		{"negative is out of stock", "-1", true, "stock_out"},
		{"at critical threshold", "3", true, "stock_critical"},
		{"between critical and low", "7", true, "stock_low"},
		{"at low threshold", "10", true, "stock_low"},
		{"above low threshold", "11", true, ""},
		{"alerts disabled", "0", false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StockAlertTier(dec(tc.onHand), critical, low, tc.enabled); got != tc.want {
				t.Errorf("StockAlertTier(%s) = %q, want %q", tc.onHand, got, tc.want)
			}
		})
	}
}

func TestShortfallMessage(t *testing.T) {
	lines := []stockLine{
		{ProductId: 1, Name: "Widget", Sku: "W-1", Quantity: dec("10")},
		{ProductId: 2, Name: "Gadget", Sku: "G-2", Quantity: dec("5")},
	}

	t.Run("all covered", func(t *testing.T) {
		available := map[int]decimal.Decimal{1: dec("10"), 2: dec("8")}
		if msg := ShortfallMessage(lines, available); msg != "" {
			t.Errorf("expected no shortfall, got %q", msg)
		}
	})

	t.Run("aggregates every short line", func(t *testing.T) {
		available := map[int]decimal.Decimal{1: dec("4"), 2: dec("0")}
		msg := ShortfallMessage(lines, available)
		if msg == "" {
			t.Fatal("expected a shortfall message")
		}
		if !strings.Contains(msg, "Widget (W-1) short by 6") {
			t.Errorf("message missing widget shortfall: %q", msg)
		}
		if !strings.Contains(msg, "Gadget (G-2) short by 5") {
			t.Errorf("message missing gadget shortfall: %q", msg)
		}
	})

	t.Run("unknown product is not reported", func(t *testing.T) {
		available := map[int]decimal.Decimal{1: dec("10")}
		if msg := ShortfallMessage(lines, available); msg != "" {
			t.Errorf("line without availability info should be skipped, got %q", msg)
		}
	})
}

func TestOrderSyncSteps(t *testing.T) {
	cases := []struct {
		name      string
		from      models.OrderStatus
		to        models.OrderStatus
		wantSteps []string
		wantWarn  bool
	}{
		{"processing allocates", models.OrderStatusPending, models.OrderStatusProcessing, []string{syncStepAllocate}, false},
		{"ship from processing fulfills", models.OrderStatusProcessing, models.OrderStatusShipped, []string{syncStepFulfill}, false},
		{"direct ship allocates then fulfills", models.OrderStatusPending, models.OrderStatusShipped, []string{syncStepAllocate, syncStepFulfill}, false},
		{"cancel from processing releases", models.OrderStatusProcessing, models.OrderStatusCancelled, []string{syncStepCancel}, false},
		{"cancel from pending releases nothing", models.OrderStatusPending, models.OrderStatusCancelled, nil, false},
		{"cancel after shipment warns only", models.OrderStatusShipped, models.OrderStatusCancelled, nil, true},
		{"deliver has no stock effect", models.OrderStatusShipped, models.OrderStatusDelivered, nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			steps, warn := OrderSyncSteps(tc.from, tc.to)
			if !reflect.DeepEqual(steps, tc.wantSteps) {
				t.Errorf("steps = %v, want %v", steps, tc.wantSteps)
			}
			if (warn != "") != tc.wantWarn {
				t.Errorf("warn = %q, wantWarn %v", warn, tc.wantWarn)
			}
		})
	}
}

// allocate-then-cancel must be a clean round trip; the floor keeps a
// double release from driving allocation negative
func TestAllocationReleaseFloorsAtZero(t *testing.T) {
	allocatedBefore := dec("4")
	qty := dec("4")

	allocatedAfterAllocate := allocatedBefore.Add(qty)
	allocatedAfterCancel := allocatedAfterAllocate.Sub(qty)
	if !allocatedAfterCancel.Equal(allocatedBefore) {
		t.Errorf("allocate then cancel should restore %s, got %s", allocatedBefore, allocatedAfterCancel)
	}

	doubleRelease := allocatedAfterCancel.Sub(qty)
	if doubleRelease.IsNegative() {
		doubleRelease = decimal.Zero
	}
	if !doubleRelease.IsZero() {
		t.Errorf("floored release should be 0, got %s", doubleRelease)
	}
}
